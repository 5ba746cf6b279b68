package api

import (
	"context"
	"net/http"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login handles POST /api/login. Depending on the auth mode it starts a
// session, returns a bearer token, or both.
func (h *Handler) Login(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	res, err := h.authn.Login(ctx, req.Username, req.Password)
	if err != nil {
		if apperr.Status(err) == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid Credentials"})
			return
		}
		respondError(c, err)
		return
	}

	if h.useSessions {
		if err := h.sessions.Start(c.Writer, c.Request, res.Principal); err != nil {
			respondError(c, err)
			return
		}
	}
	body := gin.H{"success": true, "user": res.User}
	if h.issueTokens {
		body["token"] = res.Token
		body["expires_at"] = res.ExpiresAt
	}
	c.JSON(http.StatusOK, body)
}

// Logout handles POST /api/logout. Tokens stay valid until they expire.
func (h *Handler) Logout(c *gin.Context) {
	if h.useSessions {
		if err := h.sessions.Clear(c.Writer, c.Request); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CheckAuth handles GET /api/check-auth.
func (h *Handler) CheckAuth(c *gin.Context) {
	p, err := h.strategy.Authenticate(c.Request)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          models.UserSummary{Name: p.Name, Role: p.Role},
	})
}
