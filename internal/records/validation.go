package records

import (
	"fmt"
	"strings"

	"billgen/pkg/models"
)

// ValidationError represents a missing or malformed required field. It is
// reported synchronously and aborts the operation before any side effect.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, value, "required field is empty")
	}
	return nil
}

func requireNumeric(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil // optional, computed when absent
	}
	if !models.IsNumeric(value) {
		return NewValidationError(field, value, "must be numeric")
	}
	return nil
}

// validateInvoice checks field presence and numeric shape only; it never
// touches storage.
func validateInvoice(inv *models.Invoice) error {
	required := map[string]string{
		"project": inv.Project,
		"number":  inv.Number,
		"date":    inv.Date,
	}
	for field, value := range required {
		if err := requireField(field, value); err != nil {
			return err
		}
	}
	for field, value := range map[string]string{
		"subtotal":     inv.Subtotal,
		"exchangeRate": inv.ExchangeRate,
	} {
		if err := requireNumeric(field, value); err != nil {
			return err
		}
	}
	if len(inv.Items) == 0 {
		return NewValidationError("items", inv.Items, "at least one line item is required")
	}
	return nil
}

func validateCreditNote(cn *models.CreditNote) error {
	required := map[string]string{
		"project": cn.Project,
		"number":  cn.Number,
		"date":    cn.Date,
	}
	for field, value := range required {
		if err := requireField(field, value); err != nil {
			return err
		}
	}
	for field, value := range map[string]string{
		"subtotal":     cn.Subtotal,
		"exchangeRate": cn.ExchangeRate,
	} {
		if err := requireNumeric(field, value); err != nil {
			return err
		}
	}
	if len(cn.Items) == 0 {
		return NewValidationError("items", cn.Items, "at least one line item is required")
	}
	return nil
}

// validateContract allows an empty item list; contracts without service
// milestones are legitimate.
func validateContract(c *models.Contract) error {
	required := map[string]string{
		"project": c.Project,
		"number":  c.Number,
		"date":    c.Date,
		"start":   c.Start,
		"end":     c.End,
	}
	for field, value := range required {
		if err := requireField(field, value); err != nil {
			return err
		}
	}
	if err := requireNumeric("fee", c.Fee); err != nil {
		return err
	}
	return nil
}

// subtotalFromItems sums the last cell of each item when the caller did not
// supply a subtotal.
func subtotalFromItems(items []models.LineItem) string {
	total := "0"
	for _, item := range items {
		if len(item) == 0 {
			continue
		}
		amount := item[len(item)-1]
		if !models.IsNumeric(amount) {
			continue
		}
		total = models.AddAmounts(total, amount)
	}
	return models.FormatAmount(total)
}
