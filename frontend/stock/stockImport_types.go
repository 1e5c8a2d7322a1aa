package stock

import (
	"context"

	"stocksence/models"
	"stocksence/validation"
)

// ImportSummary counts the outcome of one CSV upload.
type ImportSummary struct {
	Inserted  int      `json:"inserted"`
	Updated   int      `json:"updated"`
	Errors    int      `json:"errors"`
	RowErrors []string `json:"rowErrors,omitempty"`
}

// Catalog is the part of the store a stock import writes through.
type Catalog interface {
	Products(ctx context.Context) ([]models.Product, error)
	AddProduct(ctx context.Context, in validation.NewProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, id string, patch validation.ProductPatch) (models.Product, error)
}
