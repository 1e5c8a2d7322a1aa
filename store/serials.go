package store

import (
	"context"
	"fmt"
	"strings"

	"stocksence/infrastructure/security"
	"stocksence/models"
)

// SerialNumbers lists the activation serials of the caller's company.
func (s *Store) SerialNumbers(ctx context.Context) ([]models.SerialNumber, error) {
	var out []models.SerialNumber
	err := s.do(ctx, "serialNumbers", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		out = make([]models.SerialNumber, 0)
		for _, sn := range s.state.SerialNumbers {
			if sn.CompanyID == u.CompanyID {
				out = append(out, sn)
			}
		}
		return nil
	})
	return out, err
}

// AddSerialNumber registers an unused activation serial for the caller's
// company. Codes are unique per company only.
func (s *Store) AddSerialNumber(ctx context.Context, code string) (models.SerialNumber, error) {
	var out models.SerialNumber
	err := s.do(ctx, "addSerialNumber", func(o *op) error {
		admin, err := s.requireAdmin(o)
		if err != nil {
			return err
		}
		code = strings.TrimSpace(code)
		if !security.ValidateSerialNumber(code) {
			return s.fail(ErrInvalidSerial, msgSerialInvalid)
		}
		for _, sn := range s.state.SerialNumbers {
			if sn.CompanyID == admin.CompanyID && sn.SerialNumber == code {
				return s.fail(ErrDuplicateSerial, msgSerialExists)
			}
		}
		out = models.SerialNumber{
			ID:           s.ids.NewID(),
			SerialNumber: code,
			CompanyID:    admin.CompanyID,
			CreatedAt:    s.now(),
		}
		o.touch()
		s.state.SerialNumbers = append(s.state.SerialNumbers, out)
		s.record("SERIAL_ADDED", "serialNumber", out.ID, nil, out)
		s.notify(models.NotificationSuccess, msgSerialAdded)
		return nil
	})
	return out, err
}

// RemoveSerialNumber deletes an unused serial of the caller's company.
func (s *Store) RemoveSerialNumber(ctx context.Context, id string) error {
	return s.do(ctx, "removeSerialNumber", func(o *op) error {
		admin, err := s.requireAdmin(o)
		if err != nil {
			return err
		}
		idx := -1
		for i, sn := range s.state.SerialNumbers {
			if sn.ID == id && sn.CompanyID == admin.CompanyID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return s.fail(fmt.Errorf("serial %s: %w", id, ErrNotFound), msgSerialNotFound)
		}
		removed := s.state.SerialNumbers[idx]
		if removed.IsUsed {
			return s.fail(ErrSerialInUse, msgSerialInUse)
		}
		o.touch()
		s.state.SerialNumbers = append(s.state.SerialNumbers[:idx:idx], s.state.SerialNumbers[idx+1:]...)
		s.record("SERIAL_REMOVED", "serialNumber", removed.ID, removed, nil)
		s.notify(models.NotificationSuccess, msgSerialRemoved)
		return nil
	})
}
