package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/auth"
	"github.com/Arisudan/Varshini-Industrries/internal/catalog"
	"github.com/Arisudan/Varshini-Industrries/internal/categories"
	"github.com/Arisudan/Varshini-Industrries/internal/dashboard"
	"github.com/Arisudan/Varshini-Industrries/internal/intake"
	"github.com/Arisudan/Varshini-Industrries/internal/storage"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
	"github.com/Arisudan/Varshini-Industrries/internal/storefront"
	"github.com/gin-gonic/gin"
)

const requestTimeout = 10 * time.Second

// Deps wires the services behind the HTTP API.
type Deps struct {
	Store         store.DocumentStore
	Authenticator *auth.Authenticator
	Strategy      auth.Strategy
	Sessions      *auth.SessionManager
	AuthMode      string
	Catalog       *catalog.Service
	Intake        *intake.Service
	Categories    *categories.Service
	Dashboard     *dashboard.Service
	Carts         *storefront.CartStore
	Images        *storage.Images
	WhatsAppPhone string
}

// Handler holds the services and provides the HTTP handlers.
type Handler struct {
	store         store.DocumentStore
	authn         *auth.Authenticator
	strategy      auth.Strategy
	sessions      *auth.SessionManager
	issueTokens   bool
	useSessions   bool
	catalog       *catalog.Service
	intake        *intake.Service
	categories    *categories.Service
	dashboard     *dashboard.Service
	carts         *storefront.CartStore
	images        *storage.Images
	whatsAppPhone string
}

func NewHandler(d Deps) *Handler {
	images := d.Images
	if images == nil {
		images = &storage.Images{Uploader: storage.NewLocalUploader("")}
	}
	return &Handler{
		store:         d.Store,
		authn:         d.Authenticator,
		strategy:      d.Strategy,
		sessions:      d.Sessions,
		issueTokens:   d.AuthMode != "session",
		useSessions:   d.AuthMode != "token" && d.Sessions != nil,
		catalog:       d.Catalog,
		intake:        d.Intake,
		categories:    d.Categories,
		dashboard:     d.Dashboard,
		carts:         d.Carts,
		images:        images,
		whatsAppPhone: d.WhatsAppPhone,
	}
}

// Health reports whether the document store is reachable.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "Store unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "varshini-api",
	})
}

// respondError writes {success:false, message} with the status mapped from err.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	msg := err.Error()
	switch {
	case errors.Is(err, apperr.ErrAlreadyInCart):
		msg = "Item is already in your cart."
	case status >= http.StatusInternalServerError:
		// the request logger reports the cause
		_ = c.Error(err)
		msg = "Internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": msg})
}
