package store

import (
	"context"
	"fmt"

	"stocksence/infrastructure/security"
	"stocksence/models"
	"stocksence/validation"
)

const productSerialDigits = 12

// Products lists the caller's company catalog.
func (s *Store) Products(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := s.do(ctx, "products", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		out = make([]models.Product, 0)
		for _, p := range s.state.Products {
			if p.CompanyID == u.CompanyID {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

// Product returns one product of the caller's company.
func (s *Store) Product(ctx context.Context, id string) (models.Product, error) {
	var out models.Product
	err := s.do(ctx, "product", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		idx := s.productIndex(id, u.CompanyID)
		if idx < 0 {
			return s.fail(fmt.Errorf("product %s: %w", id, ErrNotFound), msgProductNotFound)
		}
		out = s.state.Products[idx]
		return nil
	})
	return out, err
}

// AddProduct validates, sanitizes and stores a product with a generated serial.
func (s *Store) AddProduct(ctx context.Context, in validation.NewProductInput) (models.Product, error) {
	var out models.Product
	err := s.do(ctx, "addProduct", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		if err := validation.ValidateProduct(in).Err(); err != nil {
			return s.failValidation(err)
		}
		in = in.Sanitized()
		if err := validation.ValidateProduct(in).Err(); err != nil {
			return s.failValidation(err)
		}

		now := s.now()
		out = models.Product{
			ID:           s.ids.NewID(),
			Name:         in.Name,
			Description:  in.Description,
			Quantity:     in.Quantity,
			Price:        in.Price,
			Category:     in.Category,
			SerialNumber: s.newProductSerial(),
			CompanyID:    u.CompanyID,
			CreatedBy:    u.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
			IsActive:     true,
		}
		o.touch()
		s.state.Products = append(s.state.Products, out)
		s.record("PRODUCT_CREATED", "product", out.ID, nil, out)
		s.notify(models.NotificationSuccess, msgProductAdded, out.SerialNumber)
		return nil
	})
	return out, err
}

// UpdateProduct merges patch into the product and validates the merged record.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch validation.ProductPatch) (models.Product, error) {
	var out models.Product
	err := s.do(ctx, "updateProduct", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		p, err := s.updateProductLocked(o, u, id, patch)
		if err != nil {
			return err
		}
		out = p
		s.notify(models.NotificationSuccess, msgProductUpdated)
		return nil
	})
	return out, err
}

func (s *Store) updateProductLocked(o *op, u models.User, id string, patch validation.ProductPatch) (models.Product, error) {
	idx := s.productIndex(id, u.CompanyID)
	if idx < 0 {
		return models.Product{}, s.fail(fmt.Errorf("product %s: %w", id, ErrNotFound), msgProductNotFound)
	}
	before := s.state.Products[idx]
	merged := patch.Apply(productInput(before)).Sanitized()
	if err := validation.ValidateProduct(merged).Err(); err != nil {
		return models.Product{}, s.failValidation(err)
	}

	after := before
	after.Name = merged.Name
	after.Description = merged.Description
	after.Quantity = merged.Quantity
	after.Price = merged.Price
	after.Category = merged.Category
	after.UpdatedAt = s.now()
	after.LastModifiedBy = u.ID

	o.touch()
	s.state.Products[idx] = after
	s.record("PRODUCT_UPDATED", "product", after.ID, before, after)
	return after, nil
}

// DeleteProduct removes a product permanently. Products have no trash.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return s.do(ctx, "deleteProduct", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		idx := s.productIndex(id, u.CompanyID)
		if idx < 0 {
			return s.fail(fmt.Errorf("product %s: %w", id, ErrNotFound), msgProductNotFound)
		}
		removed := s.state.Products[idx]
		o.touch()
		s.state.Products = append(s.state.Products[:idx:idx], s.state.Products[idx+1:]...)
		s.record("PRODUCT_DELETED", "product", removed.ID, removed, nil)
		s.notify(models.NotificationSuccess, msgProductDeleted)
		return nil
	})
}

func (s *Store) productIndex(id, companyID string) int {
	for i := range s.state.Products {
		if s.state.Products[i].ID == id && s.state.Products[i].CompanyID == companyID {
			return i
		}
	}
	return -1
}

func (s *Store) newProductSerial() string {
	for {
		code := security.GenerateSerialNumber(productSerialDigits)
		taken := false
		for _, p := range s.state.Products {
			if p.SerialNumber == code {
				taken = true
				break
			}
		}
		if !taken {
			return code
		}
	}
}

func productInput(p models.Product) validation.NewProductInput {
	return validation.NewProductInput{
		Name:        p.Name,
		Description: p.Description,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Category:    p.Category,
	}
}
