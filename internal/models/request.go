package models

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// PortfolioRequest is the JSON payload accepted by the portfolio endpoint
type PortfolioRequest struct {
	Category      string   `json:"category" validate:"required,max=128"`
	Addresses     []string `json:"addresses,omitempty" validate:"max=100,dive,required,max=128"`
	IncludePrices bool     `json:"include_prices,omitempty"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Normalize trims whitespace from the category and addresses
func (r *PortfolioRequest) Normalize() {
	r.Category = strings.TrimSpace(r.Category)
	for i, address := range r.Addresses {
		r.Addresses[i] = strings.TrimSpace(address)
	}
}

// Validate validates the request against its struct tags
func (r *PortfolioRequest) Validate() error {
	if err := getValidator().Struct(r); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return fmt.Errorf("validation failed: %s", FormatValidationErrors(validationErrors))
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// FormatValidationErrors renders validator errors as a single readable line
func FormatValidationErrors(errs validator.ValidationErrors) string {
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := fe.Namespace()
		if idx := strings.Index(field, "."); idx >= 0 {
			field = field[idx+1:]
		}
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "max":
			messages = append(messages, fmt.Sprintf("%s exceeds maximum of %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(messages, "; ")
}
