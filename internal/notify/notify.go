// Package notify tells the sales team about new enquiries.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Arisudan/Varshini-Industrries/internal/models"
)

// Notifier receives new leads.
type Notifier interface {
	LeadCreated(ctx context.Context, lead models.Lead) error
}

// Nop drops every notification.
type Nop struct{}

func (Nop) LeadCreated(context.Context, models.Lead) error { return nil }

// Multi fans a lead out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) LeadCreated(ctx context.Context, lead models.Lead) error {
	var errs []error
	for _, n := range m {
		if err := n.LeadCreated(ctx, lead); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func subject(lead models.Lead) string {
	return fmt.Sprintf("New enquiry from %s", displayName(lead))
}

// summary is the plain-text form shared by SMS and the email text part.
func summary(lead models.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New enquiry from %s", displayName(lead))
	if lead.Contact.Phone != "" {
		fmt.Fprintf(&b, "\nPhone: %s", lead.Contact.Phone)
	}
	if lead.Contact.Email != "" {
		fmt.Fprintf(&b, "\nEmail: %s", lead.Contact.Email)
	}
	if lead.Interest != "" {
		fmt.Fprintf(&b, "\n%s", lead.Interest)
	}
	return b.String()
}

func displayName(lead models.Lead) string {
	if name := strings.TrimSpace(lead.Client); name != "" {
		return name
	}
	return "a visitor"
}
