package handlers

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// newValidator builds the shared validator with the custom password rule.
func newValidator() *validator.Validate {
	v := validator.New()
	// Registration can only fail for a blank tag or nil func.
	_ = v.RegisterValidation("password", validPassword)
	return v
}

// validPassword enforces the signup complexity rule: at least one
// lowercase letter, one uppercase letter, one digit, and one special
// character.
func validPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune("@$!%*?&", r):
			special = true
		}
	}
	return lower && upper && digit && special
}

// validationDetails turns validator errors into one human-readable message
// per violated rule. Every violation is reported, not just the first.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, messageFor(e))
	}
	return details
}

func messageFor(e validator.FieldError) string {
	switch e.Field() {
	case "Username":
		switch e.Tag() {
		case "required":
			return "Username is required"
		case "min":
			return "Username must be at least 3 characters"
		case "max":
			return "Username must be at most 30 characters"
		}
	case "Email":
		switch e.Tag() {
		case "required":
			return "Email is required"
		case "email":
			return "Please provide a valid email address"
		}
	case "Password":
		switch e.Tag() {
		case "required":
			return "Password is required"
		case "min":
			return "Password must be at least 8 characters"
		case "max":
			return "Password must be at most 100 characters"
		case "password":
			return "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character (@$!%*?&)"
		}
	case "Role":
		if e.Tag() == "oneof" {
			return "Role must be either CUSTOMER or ADMIN"
		}
	case "Name":
		switch e.Tag() {
		case "required":
			return "Product name is required"
		case "min":
			return "Product name cannot be empty"
		case "max":
			return "Product name must be at most 255 characters"
		}
	case "Description":
		if e.Tag() == "max" {
			return "Description must be at most 1000 characters"
		}
	case "Price":
		switch e.Tag() {
		case "required":
			return "Price is required"
		case "gt":
			return "Price must be a positive number"
		}
	case "Stock":
		if e.Tag() == "gte" {
			return "Stock cannot be negative"
		}
	case "Items":
		switch e.Tag() {
		case "required":
			return "Order items are required"
		case "min":
			return "Order must contain at least one item"
		}
	case "ProductID":
		return "Product ID must be a positive number"
	case "Quantity":
		switch e.Tag() {
		case "required":
			return "Quantity is required"
		case "min":
			return "Quantity must be at least 1"
		}
	}
	return fmt.Sprintf("%s failed on the '%s' rule", e.Field(), e.Tag())
}
