package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
)

// LeadStatus tracks an enquiry through the sales pipeline.
type LeadStatus string

const (
	LeadNew       LeadStatus = "New Lead"
	LeadContacted LeadStatus = "Contacted"
	LeadSold      LeadStatus = "Sold"
)

// ParseLeadStatus rejects anything outside the pipeline states.
func ParseLeadStatus(s string) (LeadStatus, error) {
	for _, st := range []LeadStatus{LeadNew, LeadContacted, LeadSold} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown lead status %q: %w", s, apperr.ErrValidation)
}

type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`

	extra fields
}

func (c *Contact) UnmarshalJSON(b []byte) error {
	f, err := splitObject(b)
	if err != nil {
		return err
	}
	*c = Contact{}
	f.text("email", &c.Email)
	f.text("phone", &c.Phone)
	c.extra = f.clone()
	return nil
}

func (c Contact) MarshalJSON() ([]byte, error) {
	w := newObjectWriter(c.extra)
	w.put("email", c.Email)
	w.put("phone", c.Phone)
	return w.finish()
}

// Lead is a public enquiry.
type Lead struct {
	ID       LeadID     `json:"id"`
	Date     Timestamp  `json:"date"`
	Client   string     `json:"client"`
	Interest string     `json:"interest"`
	Contact  Contact    `json:"contact"`
	Status   LeadStatus `json:"status"`

	numericID bool // id was stored as a JSON number
	extra     fields
}

func (l *Lead) UnmarshalJSON(b []byte) error {
	f, err := splitObject(b)
	if err != nil {
		return err
	}
	*l = Lead{}
	if raw, ok := f["id"]; ok {
		l.numericID = !isNull(raw) && bytes.TrimSpace(raw)[0] != '"'
	}
	if err := f.require("id", &l.ID); err != nil {
		return fmt.Errorf("lead: %w", err)
	}
	f.decode("date", &l.Date)
	f.text("client", &l.Client)
	f.text("interest", &l.Interest)
	f.decode("contact", &l.Contact)
	var status string
	f.text("status", &status)
	l.Status = LeadStatus(status)
	l.extra = f.clone()
	return nil
}

func (l Lead) MarshalJSON() ([]byte, error) {
	w := newObjectWriter(l.extra)
	if id := string(l.ID); l.numericID && json.Valid([]byte(id)) {
		w.raw("id", []byte(id))
	} else {
		w.put("id", id)
	}
	w.put("date", l.Date)
	w.put("client", l.Client)
	w.put("interest", l.Interest)
	if _, kept := l.extra["contact"]; !kept || l.Contact.Email != "" || l.Contact.Phone != "" {
		w.put("contact", l.Contact)
	}
	w.put("status", string(l.Status))
	return w.finish()
}

// LeadInput is the contact form payload.
type LeadInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// InterestSummary is "Enquiry: " followed by the first 30 characters of the message and "...".
func InterestSummary(message string) string {
	r := []rune(message)
	if len(r) > 30 {
		r = r[:30]
	}
	return "Enquiry: " + string(r) + "..."
}
