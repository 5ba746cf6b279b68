package api

import (
	"context"
	"net/http"

	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/Arisudan/Varshini-Industrries/internal/storefront"
	"github.com/gin-gonic/gin"
)

func cartBody(cart *storefront.Cart) gin.H {
	return gin.H{"items": cart.Items, "count": len(cart.Items)}
}

// GetCart handles GET /api/cart.
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartBody(h.carts.Get(c.Request)))
}

// AddToCart handles POST /api/cart {id}.
func (h *Handler) AddToCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var req struct {
		ID models.NumericID `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		badRequest(c, "Product id is required")
		return
	}
	p, err := h.catalog.Get(ctx, req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	cart := h.carts.Get(c.Request)
	if err := cart.Add(storefront.ItemFromProduct(p)); err != nil {
		respondError(c, err)
		return
	}
	if err := h.carts.Save(c.Writer, c.Request, cart); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartBody(cart))
}

// RemoveFromCart handles DELETE /api/cart/:id. Removing an absent item succeeds.
func (h *Handler) RemoveFromCart(c *gin.Context) {
	id, err := models.ParseNumericID(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid product ID")
		return
	}
	cart := h.carts.Get(c.Request)
	cart.Remove(id)
	if err := h.carts.Save(c.Writer, c.Request, cart); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartBody(cart))
}

// CartEnquiry handles GET /api/cart/enquiry and returns the WhatsApp link.
func (h *Handler) CartEnquiry(c *gin.Context) {
	cart := h.carts.Get(c.Request)
	url, err := storefront.EnquiryURL(h.whatsAppPhone, cart.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":     url,
		"message": storefront.EnquiryMessage(cart.Items),
	})
}
