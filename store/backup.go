package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"stocksence/infrastructure/security"
	"stocksence/models"
	"stocksence/validation"
)

// BackupVersion is written into every exported envelope.
const BackupVersion = "1.0.0"

// BackupEnvelope is the exported file. Data is the encrypted payload and
// Checksum a keyed digest of the plaintext payload.
type BackupEnvelope struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	CompanyID string    `json:"companyId"`
	Data      string    `json:"data"`
	Checksum  string    `json:"checksum"`
}

// BackupPayload is one company's exportable data.
type BackupPayload struct {
	Products      []models.Product      `json:"products"`
	Sales         []models.Sale         `json:"sales"`
	DeletedSales  []models.DeletedSale  `json:"deletedSales"`
	SerialNumbers []models.SerialNumber `json:"serialNumbers"`
	Settings      Settings              `json:"settings"`
}

// ExportBackup encrypts the caller's company data into a portable envelope.
func (s *Store) ExportBackup(ctx context.Context) ([]byte, error) {
	var out []byte
	err := s.do(ctx, "exportBackup", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		if s.cipher == nil {
			return s.fail(ErrFeatureUnavailable, msgBackupUnavailable)
		}

		payload := BackupPayload{
			Products:      filterCompany(s.state.Products, u.CompanyID, func(p models.Product) string { return p.CompanyID }),
			Sales:         filterCompany(s.state.Sales, u.CompanyID, func(v models.Sale) string { return v.CompanyID }),
			DeletedSales:  filterCompany(s.state.DeletedSales, u.CompanyID, func(v models.DeletedSale) string { return v.CompanyID }),
			SerialNumbers: filterCompany(s.state.SerialNumbers, u.CompanyID, func(v models.SerialNumber) string { return v.CompanyID }),
			Settings:      s.settingsLocked(),
		}
		plain, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode backup payload: %w", err)
		}
		data, err := s.cipher.Encrypt(plain)
		if err != nil {
			return fmt.Errorf("encrypt backup: %w", err)
		}
		env := BackupEnvelope{
			Version:   BackupVersion,
			Timestamp: s.now(),
			CompanyID: u.CompanyID,
			Data:      data,
			Checksum:  s.cipher.Checksum(plain),
		}
		out, err = json.MarshalIndent(env, "", "  ")
		if err != nil {
			return fmt.Errorf("encode backup envelope: %w", err)
		}
		o.touch()
		s.record("BACKUP_EXPORTED", "backup", u.CompanyID, nil, map[string]int{
			"products":      len(payload.Products),
			"sales":         len(payload.Sales),
			"deletedSales":  len(payload.DeletedSales),
			"serialNumbers": len(payload.SerialNumbers),
		})
		s.notify(models.NotificationSuccess, msgBackupExported)
		return nil
	})
	return out, err
}

// ImportBackup replaces the caller's company data with the backup contents.
// Nothing is changed unless the whole file decrypts, matches its checksum
// and validates.
func (s *Store) ImportBackup(ctx context.Context, raw []byte) error {
	return s.do(ctx, "importBackup", func(o *op) error {
		u, err := s.requireSession(o)
		if err != nil {
			return err
		}
		if s.cipher == nil {
			return s.fail(ErrFeatureUnavailable, msgBackupUnavailable)
		}

		payload, err := s.openBackup(raw)
		if err != nil {
			s.log.Warn("backup rejected", zap.Error(err))
			return s.fail(err, msgBackupInvalid)
		}

		for i, p := range payload.Products {
			if err := validation.ValidateProduct(productInput(p)).Err(); err != nil {
				verr := &validation.Error{Messages: []string{fmt.Sprintf(msgBackupProduct, i+1, p.Name, err.Error())}}
				return s.fail(verr, msgBackupProduct, i+1, p.Name, s.validationText(err))
			}
		}
		for _, sn := range payload.SerialNumbers {
			if !security.ValidateSerialNumber(sn.SerialNumber) {
				return s.fail(ErrInvalidSerial, msgSerialInvalid)
			}
		}
		if _, ok := s.currencies.Lookup(payload.Settings.Currency); !ok {
			payload.Settings.Currency = s.state.CurrentCurrency
		}

		company := u.CompanyID
		for i := range payload.Products {
			payload.Products[i].CompanyID = company
		}
		for i := range payload.Sales {
			payload.Sales[i].CompanyID = company
		}
		for i := range payload.DeletedSales {
			payload.DeletedSales[i].CompanyID = company
		}
		for i := range payload.SerialNumbers {
			payload.SerialNumbers[i].CompanyID = company
		}

		o.touch()
		s.state.Products = replaceCompany(s.state.Products, payload.Products, company, func(p models.Product) string { return p.CompanyID })
		s.state.Sales = replaceCompany(s.state.Sales, payload.Sales, company, func(v models.Sale) string { return v.CompanyID })
		s.state.DeletedSales = replaceCompany(s.state.DeletedSales, payload.DeletedSales, company, func(v models.DeletedSale) string { return v.CompanyID })
		s.state.SerialNumbers = replaceCompany(s.state.SerialNumbers, payload.SerialNumbers, company, func(v models.SerialNumber) string { return v.CompanyID })
		if payload.Settings.Theme == ThemeLight || payload.Settings.Theme == ThemeDark {
			s.state.Theme = payload.Settings.Theme
		}
		if _, ok := printers[payload.Settings.Language]; ok {
			s.state.Language = payload.Settings.Language
		}
		s.state.CurrentCurrency = payload.Settings.Currency
		s.state.AutoLoginWithGoogle = payload.Settings.AutoLoginWithGoogle

		s.record("BACKUP_IMPORTED", "backup", company, nil, map[string]int{
			"products":      len(payload.Products),
			"sales":         len(payload.Sales),
			"deletedSales":  len(payload.DeletedSales),
			"serialNumbers": len(payload.SerialNumbers),
		})
		s.notify(models.NotificationSuccess, msgBackupImported)
		return nil
	})
}

// openBackup decrypts, authenticates and sanitizes an envelope.
func (s *Store) openBackup(raw []byte) (BackupPayload, error) {
	var env BackupEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return BackupPayload{}, fmt.Errorf("%w: malformed envelope: %v", ErrIntegrity, err)
	}
	if !strings.HasPrefix(env.Version, "1.") {
		return BackupPayload{}, fmt.Errorf("%w: unsupported version %q", ErrIntegrity, env.Version)
	}
	plain, err := s.cipher.Decrypt(env.Data)
	if err != nil {
		return BackupPayload{}, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	if !s.cipher.VerifyChecksum(plain, env.Checksum) {
		return BackupPayload{}, fmt.Errorf("%w: checksum mismatch", ErrIntegrity)
	}

	var generic any
	if err := json.Unmarshal(plain, &generic); err != nil {
		return BackupPayload{}, fmt.Errorf("%w: malformed payload: %v", ErrIntegrity, err)
	}
	clean, err := json.Marshal(validation.SanitizeData(generic))
	if err != nil {
		return BackupPayload{}, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	var payload BackupPayload
	if err := json.Unmarshal(clean, &payload); err != nil {
		return BackupPayload{}, fmt.Errorf("%w: malformed payload: %v", ErrIntegrity, err)
	}
	return payload, nil
}

func filterCompany[T any](items []T, companyID string, company func(T) string) []T {
	out := make([]T, 0)
	for _, it := range items {
		if company(it) == companyID {
			out = append(out, it)
		}
	}
	return out
}

// replaceCompany drops companyID's items from all and appends incoming.
func replaceCompany[T any](all, incoming []T, companyID string, company func(T) string) []T {
	out := make([]T, 0, len(all)+len(incoming))
	for _, it := range all {
		if company(it) != companyID {
			out = append(out, it)
		}
	}
	return append(out, incoming...)
}
