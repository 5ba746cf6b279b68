package models

import (
	"fmt"
	"strings"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
)

type WarrantyStatus string

const (
	WarrantyPending  WarrantyStatus = "Pending"
	WarrantyApproved WarrantyStatus = "Approved"
	WarrantyRejected WarrantyStatus = "Rejected"
)

func ParseWarrantyStatus(s string) (WarrantyStatus, error) {
	for _, st := range []WarrantyStatus{WarrantyPending, WarrantyApproved, WarrantyRejected} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown warranty status %q: %w", s, apperr.ErrValidation)
}

// WarrantyRequest is a product registration submitted from the storefront.
type WarrantyRequest struct {
	ID      NumericID      `json:"id"`
	Date    Timestamp      `json:"date"`
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Phone   string         `json:"phone,omitempty"`
	City    string         `json:"city,omitempty"`
	Product string         `json:"product,omitempty"`
	Address string         `json:"address,omitempty"`
	Message string         `json:"message,omitempty"`
	Status  WarrantyStatus `json:"status"`

	extra fields
}

func (w *WarrantyRequest) UnmarshalJSON(b []byte) error {
	f, err := splitObject(b)
	if err != nil {
		return err
	}
	*w = WarrantyRequest{}
	if err := f.require("id", &w.ID); err != nil {
		return fmt.Errorf("warranty: %w", err)
	}
	f.decode("date", &w.Date)
	f.text("name", &w.Name)
	f.text("email", &w.Email)
	f.text("phone", &w.Phone)
	f.text("city", &w.City)
	f.text("product", &w.Product)
	f.text("address", &w.Address)
	f.text("message", &w.Message)
	var status string
	f.text("status", &status)
	w.Status = WarrantyStatus(status)
	w.extra = f.clone()
	return nil
}

func (w WarrantyRequest) MarshalJSON() ([]byte, error) {
	out := newObjectWriter(w.extra)
	out.put("id", w.ID)
	out.put("date", w.Date)
	out.put("name", w.Name)
	out.put("email", w.Email)
	out.text("phone", w.Phone)
	out.text("city", w.City)
	out.text("product", w.Product)
	out.text("address", w.Address)
	out.text("message", w.Message)
	out.put("status", string(w.Status))
	return out.finish()
}

type WarrantyInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Product string `json:"product"`
	Address string `json:"address"`
	Message string `json:"message"`
}
