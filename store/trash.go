package store

import (
	"context"
	"fmt"

	"stocksence/models"
)

// DeletedSales lists the trash of the caller's company.
func (s *Store) DeletedSales(ctx context.Context) ([]models.DeletedSale, error) {
	var out []models.DeletedSale
	err := s.do(ctx, "deletedSales", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		out = make([]models.DeletedSale, 0)
		for _, d := range s.state.DeletedSales {
			if d.CompanyID == u.CompanyID {
				out = append(out, d)
			}
		}
		return nil
	})
	return out, err
}

// RestoreSale moves a trashed sale back to the active list. Stock is not re-checked.
func (s *Store) RestoreSale(ctx context.Context, id string) (models.Sale, error) {
	var out models.Sale
	err := s.do(ctx, "restoreSale", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		idx := s.deletedSaleIndex(id, u.CompanyID)
		if idx < 0 {
			return s.fail(fmt.Errorf("deleted sale %s: %w", id, ErrNotFound), msgSaleNotFound)
		}
		trashed := s.state.DeletedSales[idx]
		out = trashed.Sale
		o.touch()
		s.state.DeletedSales = append(s.state.DeletedSales[:idx:idx], s.state.DeletedSales[idx+1:]...)
		s.state.Sales = append(s.state.Sales, out)
		s.record("SALE_RESTORED", "sale", out.ID, trashed, out)
		s.notify(models.NotificationSuccess, msgSaleRestored)
		return nil
	})
	return out, err
}

// PermanentlyDeleteSale removes a trashed sale for good.
func (s *Store) PermanentlyDeleteSale(ctx context.Context, id string) error {
	return s.do(ctx, "permanentlyDeleteSale", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		idx := s.deletedSaleIndex(id, u.CompanyID)
		if idx < 0 {
			return s.fail(fmt.Errorf("deleted sale %s: %w", id, ErrNotFound), msgSaleNotFound)
		}
		removed := s.state.DeletedSales[idx]
		o.touch()
		s.state.DeletedSales = append(s.state.DeletedSales[:idx:idx], s.state.DeletedSales[idx+1:]...)
		s.record("SALE_PERMANENTLY_DELETED", "sale", removed.ID, removed, nil)
		s.notify(models.NotificationSuccess, msgSalePurged)
		return nil
	})
}

// EmptyTrash purges every trashed sale of the caller's company.
func (s *Store) EmptyTrash(ctx context.Context) (int, error) {
	removed := 0
	err := s.do(ctx, "emptyTrash", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		kept := s.state.DeletedSales[:0:0]
		for _, d := range s.state.DeletedSales {
			if d.CompanyID == u.CompanyID {
				removed++
				continue
			}
			kept = append(kept, d)
		}
		o.touch()
		s.state.DeletedSales = kept
		s.record("TRASH_EMPTIED", "sale", "", nil, map[string]int{"count": removed})
		s.notify(models.NotificationSuccess, msgTrashEmptied, removed)
		return nil
	})
	return removed, err
}

// CleanupOldDeletedSales purges trash older than TrashRetention across all companies.
func (s *Store) CleanupOldDeletedSales(ctx context.Context) (int, error) {
	removed := 0
	err := s.do(ctx, "cleanupOldDeletedSales", func(o *op) error {
		removed = s.cleanupOldDeletedSales(o)
		return nil
	})
	return removed, err
}

func (s *Store) cleanupOldDeletedSales(o *op) int {
	now := s.now()
	kept := s.state.DeletedSales[:0:0]
	var companies []string
	purged := make(map[string][]string)
	for _, d := range s.state.DeletedSales {
		if now.Sub(d.DeletedAt) > TrashRetention {
			if _, seen := purged[d.CompanyID]; !seen {
				companies = append(companies, d.CompanyID)
			}
			purged[d.CompanyID] = append(purged[d.CompanyID], d.ID)
			continue
		}
		kept = append(kept, d)
	}
	removed := len(s.state.DeletedSales) - len(kept)
	if removed == 0 {
		return 0
	}
	o.touch()
	s.state.DeletedSales = kept
	for _, company := range companies {
		ids := purged[company]
		s.recordSystem(company, "AUTO_CLEANUP_DELETED_SALES", "sale", "", nil, map[string]any{
			"count": len(ids),
			"ids":   ids,
		})
	}
	return removed
}

func (s *Store) deletedSaleIndex(id, companyID string) int {
	for i := range s.state.DeletedSales {
		if s.state.DeletedSales[i].ID == id && s.state.DeletedSales[i].CompanyID == companyID {
			return i
		}
	}
	return -1
}
