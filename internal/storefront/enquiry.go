package storefront

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
)

// ErrEmptyCart is returned when an enquiry is requested for an empty cart.
var ErrEmptyCart = fmt.Errorf("your cart is empty: %w", apperr.ErrValidation)

const enquiryGreeting = "Hello Varshini Industrries, I am interested in the following products:"

// EnquiryMessage lists the cart items as a numbered plain-text message.
func EnquiryMessage(items []CartItem) string {
	var b strings.Builder
	b.WriteString(enquiryGreeting)
	b.WriteString("\n\n")
	for i, it := range items {
		if it.Series != "" {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, it.Name, it.Series)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", i+1, it.Name)
		}
	}
	return b.String()
}

// EnquiryURL builds the wa.me link that opens a chat prefilled with the cart.
func EnquiryURL(phone string, items []CartItem) (string, error) {
	if len(items) == 0 {
		return "", ErrEmptyCart
	}
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "+")
	text := strings.ReplaceAll(url.QueryEscape(EnquiryMessage(items)), "+", "%20")
	return "https://wa.me/" + phone + "?text=" + text, nil
}
