// Package whatsapp builds the order summary text handed to the chat
// deep link. Opening the link is the entire integration; no delivery
// confirmation is tracked.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
)

// OrderLine is one cart line rendered into the summary.
type OrderLine struct {
	Name        string
	VariantName string
	Quantity    int
	UnitPrice   float64
}

// OrderSummary carries everything the message template needs.
type OrderSummary struct {
	StoreName   string
	OrderNumber string
	FullName    string
	Phone       string
	City        string
	Address     string
	Note        string
	Lines       []OrderLine
	Subtotal    float64
	DeliveryFee float64
	Total       float64
	Currency    string
}

// FormatMessage renders the human-readable order text.
func FormatMessage(s OrderSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "New order %s - %s\n\n", s.OrderNumber, s.StoreName)
	fmt.Fprintf(&b, "Customer: %s\n", s.FullName)
	fmt.Fprintf(&b, "Phone: %s\n", s.Phone)
	fmt.Fprintf(&b, "City: %s\n", s.City)
	fmt.Fprintf(&b, "Address: %s\n", s.Address)
	if s.Note != "" {
		fmt.Fprintf(&b, "Note: %s\n", s.Note)
	}

	b.WriteString("\nItems:\n")
	for _, line := range s.Lines {
		name := line.Name
		if line.VariantName != "" {
			name = fmt.Sprintf("%s (%s)", name, line.VariantName)
		}
		fmt.Fprintf(&b, "- %s x%d @ %.2f %s\n", name, line.Quantity, line.UnitPrice, s.Currency)
	}

	fmt.Fprintf(&b, "\nSubtotal: %.2f %s\n", s.Subtotal, s.Currency)
	if s.DeliveryFee > 0 {
		fmt.Fprintf(&b, "Delivery: %.2f %s\n", s.DeliveryFee, s.Currency)
	} else {
		b.WriteString("Delivery: free\n")
	}
	fmt.Fprintf(&b, "Total: %.2f %s", s.Total, s.Currency)

	return b.String()
}

// DeepLink builds the wa.me URL for a destination number and message.
// The number must be digits only, with country code and no leading plus.
func DeepLink(phone, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", sanitizePhone(phone), url.QueryEscape(message))
}

func sanitizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
