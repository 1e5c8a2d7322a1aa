package store

import (
	"context"
	"fmt"

	"stocksence/infrastructure/security"
	"stocksence/models"
	"stocksence/validation"
)

// Sales lists the active sales of the caller's company.
func (s *Store) Sales(ctx context.Context) ([]models.Sale, error) {
	var out []models.Sale
	err := s.do(ctx, "sales", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		out = make([]models.Sale, 0)
		for _, sale := range s.state.Sales {
			if sale.CompanyID == u.CompanyID {
				out = append(out, sale)
			}
		}
		return nil
	})
	return out, err
}

// AddSale records a sale and decrements stock in one step. Expired trash is
// purged first.
func (s *Store) AddSale(ctx context.Context, in validation.NewSaleInput) (models.Sale, error) {
	var out models.Sale
	err := s.do(ctx, "addSale", func(o *op) error {
		s.cleanupOldDeletedSales(o)

		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		in.ProductName = validation.SanitizeString(in.ProductName)
		in.BarcodeScan = validation.SanitizeString(in.BarcodeScan)
		if err := validation.ValidateSale(in).Err(); err != nil {
			return s.failValidation(err)
		}

		idx := s.productIndex(in.ProductID, u.CompanyID)
		if idx < 0 {
			return s.fail(fmt.Errorf("product %s: %w", in.ProductID, ErrNotFound), msgProductNotFound)
		}
		product := s.state.Products[idx]
		if product.Quantity < in.Quantity {
			return s.fail(fmt.Errorf("%w: %d requested, %d available", ErrInsufficientStock, in.Quantity, product.Quantity), msgInsufficientStock)
		}

		remaining := product.Quantity - in.Quantity
		if _, err := s.updateProductLocked(o, u, product.ID, validation.ProductPatch{Quantity: &remaining}); err != nil {
			return err
		}

		out = models.Sale{
			ID:               s.ids.NewID(),
			ProductID:        product.ID,
			ProductName:      in.ProductName,
			Quantity:         in.Quantity,
			Price:            in.Price,
			TotalAmount:      in.TotalAmount,
			SaleDate:         s.now(),
			BarcodeScan:      in.BarcodeScan,
			SoldBy:           u.ID,
			CompanyID:        u.CompanyID,
			IsVerified:       true,
			VerificationCode: security.GenerateVerificationCode(),
		}
		o.touch()
		s.state.Sales = append(s.state.Sales, out)
		s.record("SALE_CREATED", "sale", out.ID, nil, out)
		s.notify(models.NotificationSuccess, msgSaleCompleted)
		if remaining < LowStockThreshold {
			s.notify(models.NotificationWarning, msgLowStock, product.Name, remaining)
		}
		return nil
	})
	return out, err
}

// DeleteSale moves a sale to the trash. Stock is not given back.
func (s *Store) DeleteSale(ctx context.Context, id, reason string) error {
	return s.do(ctx, "deleteSale", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		idx := s.saleIndex(id, u.CompanyID)
		if idx < 0 {
			return s.fail(fmt.Errorf("sale %s: %w", id, ErrNotFound), msgSaleNotFound)
		}
		sale := s.state.Sales[idx]
		trashed := models.DeletedSale{
			Sale:           sale,
			DeletedAt:      s.now(),
			DeletedBy:      u.ID,
			DeletionReason: validation.SanitizeString(reason),
		}
		o.touch()
		s.state.Sales = append(s.state.Sales[:idx:idx], s.state.Sales[idx+1:]...)
		s.state.DeletedSales = append(s.state.DeletedSales, trashed)
		s.record("SALE_DELETED", "sale", sale.ID, sale, trashed)
		s.notify(models.NotificationSuccess, msgSaleDeleted)
		return nil
	})
}

// VerifySale marks a sale verified. Repeated calls are harmless.
func (s *Store) VerifySale(ctx context.Context, id string) (models.Sale, error) {
	var out models.Sale
	err := s.do(ctx, "verifySale", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		idx := s.saleIndex(id, u.CompanyID)
		if idx < 0 {
			return s.fail(fmt.Errorf("sale %s: %w", id, ErrNotFound), msgSaleNotFound)
		}
		o.touch()
		before := s.state.Sales[idx]
		s.state.Sales[idx].IsVerified = true
		out = s.state.Sales[idx]
		s.record("SALE_VERIFIED", "sale", out.ID, before, out)
		s.notify(models.NotificationSuccess, msgSaleVerified)
		return nil
	})
	return out, err
}

func (s *Store) saleIndex(id, companyID string) int {
	for i := range s.state.Sales {
		if s.state.Sales[i].ID == id && s.state.Sales[i].CompanyID == companyID {
			return i
		}
	}
	return -1
}
