// Package validation holds the pure input checks that run before any store mutation.
package validation

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"

	MaxPrice = 1_000_000
)

// Validation messages. They are stable English text and double as
// translation keys.
const (
	MsgProductNameTooShort = "Product name must be at least 2 characters long"
	MsgProductNameTooLong  = "Product name must not exceed 100 characters"
	MsgCategoryTooShort    = "Category must be at least 2 characters long"
	MsgQuantityNegative    = "Quantity must be a non-negative number"
	MsgPriceNotPositive    = "Price must be a positive number"
	MsgPriceTooHigh        = "Price cannot exceed 1,000,000"
	MsgProductIDRequired   = "Product ID is required"
	MsgProductNameRequired = "Product name is required"
	MsgQuantityNotPositive = "Quantity must be a positive number"
	MsgTotalNotPositive    = "Total amount must be a positive number"
	MsgTotalMismatch       = "Total amount calculation is incorrect"
	MsgUsernameTooShort    = "Username must be at least 3 characters long"
	MsgUsernameTooLong     = "Username must not exceed 50 characters"
	MsgUsernameCharset     = "Username can only contain letters, numbers, and underscores"
	MsgPasswordTooShort    = "Password must be at least 6 characters long"
	MsgEmailInvalid        = "Invalid email format"
	MsgRoleInvalid         = "Invalid user role"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	saleTolerance = decimal.New(1, -2)
)

// Error carries every message produced by a failed validation.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Result is the outcome of a validator. Callers must check IsValid.
type Result struct {
	IsValid bool
	Errors  []string
}

// Err returns nil when valid, otherwise a *Error.
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	return &Error{Messages: r.Errors}
}

func result(errs []string) Result {
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// NewProductInput is the caller-supplied part of a product.
type NewProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int64   `json:"quantity"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// ProductPatch is a partial update; nil fields are left unchanged.
type ProductPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Quantity    *int64   `json:"quantity,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// Apply merges the patch onto base.
func (p ProductPatch) Apply(base NewProductInput) NewProductInput {
	if p.Name != nil {
		base.Name = *p.Name
	}
	if p.Description != nil {
		base.Description = *p.Description
	}
	if p.Quantity != nil {
		base.Quantity = *p.Quantity
	}
	if p.Price != nil {
		base.Price = *p.Price
	}
	if p.Category != nil {
		base.Category = *p.Category
	}
	return base
}

// Sanitized trims and strips markup from the free-text fields.
func (in NewProductInput) Sanitized() NewProductInput {
	in.Name = SanitizeString(in.Name)
	in.Description = SanitizeString(in.Description)
	in.Category = SanitizeString(in.Category)
	return in
}

func ValidateProduct(p NewProductInput) Result {
	var errs []string
	name := strings.TrimSpace(p.Name)
	if len([]rune(name)) < 2 {
		errs = append(errs, MsgProductNameTooShort)
	}
	if len([]rune(p.Name)) > 100 {
		errs = append(errs, MsgProductNameTooLong)
	}
	if len([]rune(strings.TrimSpace(p.Category))) < 2 {
		errs = append(errs, MsgCategoryTooShort)
	}
	if p.Quantity < 0 {
		errs = append(errs, MsgQuantityNegative)
	}
	if !finite(p.Price) || p.Price <= 0 {
		errs = append(errs, MsgPriceNotPositive)
	}
	if p.Price > MaxPrice {
		errs = append(errs, MsgPriceTooHigh)
	}
	return result(errs)
}

// NewSaleInput is the caller-supplied part of a sale.
type NewSaleInput struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int64   `json:"quantity"`
	Price       float64 `json:"price"`
	TotalAmount float64 `json:"totalAmount"`
	BarcodeScan string  `json:"barcodeScan,omitempty"`
}

func ValidateSale(s NewSaleInput) Result {
	var errs []string
	if strings.TrimSpace(s.ProductID) == "" {
		errs = append(errs, MsgProductIDRequired)
	}
	if strings.TrimSpace(s.ProductName) == "" {
		errs = append(errs, MsgProductNameRequired)
	}
	if s.Quantity <= 0 {
		errs = append(errs, MsgQuantityNotPositive)
	}
	priceOK := finite(s.Price) && s.Price > 0
	if !priceOK {
		errs = append(errs, MsgPriceNotPositive)
	}
	totalOK := finite(s.TotalAmount) && s.TotalAmount > 0
	if !totalOK {
		errs = append(errs, MsgTotalNotPositive)
	}
	if priceOK && totalOK && !TotalMatches(s.Quantity, s.Price, s.TotalAmount) {
		errs = append(errs, MsgTotalMismatch)
	}
	return result(errs)
}

// TotalMatches reports whether total equals quantity*price within 0.01.
func TotalMatches(quantity int64, price, total float64) bool {
	expected := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(quantity))
	diff := decimal.NewFromFloat(total).Sub(expected).Abs()
	return diff.LessThanOrEqual(saleTolerance)
}

// UserInput is the payload checked before creating an account.
type UserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

func ValidateUser(u UserInput) Result {
	var errs []string
	if len([]rune(strings.TrimSpace(u.Username))) < 3 {
		errs = append(errs, MsgUsernameTooShort)
	}
	if len([]rune(u.Username)) > 50 {
		errs = append(errs, MsgUsernameTooLong)
	}
	if u.Username != "" && !usernamePattern.MatchString(u.Username) {
		errs = append(errs, MsgUsernameCharset)
	}
	if len([]rune(u.Password)) < 6 {
		errs = append(errs, MsgPasswordTooShort)
	}
	if u.Email != "" && !emailPattern.MatchString(u.Email) {
		errs = append(errs, MsgEmailInvalid)
	}
	if u.Role != RoleAdmin && u.Role != RoleEmployee {
		errs = append(errs, MsgRoleInvalid)
	}
	return result(errs)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
