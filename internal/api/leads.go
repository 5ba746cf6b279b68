package api

import (
	"context"
	"net/http"

	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/gin-gonic/gin"
)

// SubmitLead handles POST /api/leads from the contact form.
func (h *Handler) SubmitLead(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var in models.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	id, err := h.intake.SubmitLead(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Lead captured successfully", "id": id})
}

// GetLeads handles GET /api/leads?status=.
func (h *Handler) GetLeads(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	leads, err := h.intake.ListLeads(ctx, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

type leadStatusRequest struct {
	ID     models.LeadID `json:"id"`
	Status string        `json:"status"`
}

// UpdateLeadStatus handles POST /api/leads/status.
func (h *Handler) UpdateLeadStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var req leadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		badRequest(c, "Lead id and status are required")
		return
	}
	if err := h.intake.UpdateLeadStatus(ctx, req.ID, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteLead handles DELETE /api/leads/:id.
func (h *Handler) DeleteLead(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.intake.DeleteLead(ctx, models.LeadID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SubmitWarranty handles POST /api/warranties.
func (h *Handler) SubmitWarranty(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var in models.WarrantyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	id, err := h.intake.SubmitWarranty(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// GetWarranties handles GET /api/warranties?status=.
func (h *Handler) GetWarranties(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	ws, err := h.intake.ListWarranties(ctx, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

// UpdateWarranty handles PUT /api/warranties/:id {status}.
func (h *Handler) UpdateWarranty(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, err := models.ParseNumericID(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid warranty ID")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if err := h.intake.UpdateWarrantyStatus(ctx, id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteWarranty handles DELETE /api/warranties/:id.
func (h *Handler) DeleteWarranty(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, err := models.ParseNumericID(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid warranty ID")
		return
	}
	if err := h.intake.DeleteWarranty(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
