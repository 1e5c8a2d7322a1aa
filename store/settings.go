package store

import (
	"context"
	"strings"

	"stocksence/infrastructure/currency"
	"stocksence/models"
	"stocksence/validation"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Settings are the UI preferences stored with the state.
type Settings struct {
	Theme               string `json:"theme"`
	Language            string `json:"language"`
	Currency            string `json:"currency"`
	AutoLoginWithGoogle bool   `json:"autoLoginWithGoogle"`
}

// SettingsPatch updates the non-nil fields.
type SettingsPatch struct {
	Theme               *string `json:"theme,omitempty"`
	Language            *string `json:"language,omitempty"`
	Currency            *string `json:"currency,omitempty"`
	AutoLoginWithGoogle *bool   `json:"autoLoginWithGoogle,omitempty"`
}

func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingsLocked()
}

func (s *Store) settingsLocked() Settings {
	return Settings{
		Theme:               s.state.Theme,
		Language:            s.state.Language,
		Currency:            s.state.CurrentCurrency,
		AutoLoginWithGoogle: s.state.AutoLoginWithGoogle,
	}
}

// UpdateSettings validates and applies every field of patch or none of them.
func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) (Settings, error) {
	var out Settings
	err := s.do(ctx, "updateSettings", func(o *op) error {
		next := s.settingsLocked()
		if patch.Theme != nil {
			next.Theme = strings.ToLower(strings.TrimSpace(*patch.Theme))
		}
		if patch.Language != nil {
			next.Language = strings.ToLower(strings.TrimSpace(*patch.Language))
		}
		if patch.Currency != nil {
			next.Currency = strings.ToUpper(strings.TrimSpace(*patch.Currency))
		}
		if patch.AutoLoginWithGoogle != nil {
			next.AutoLoginWithGoogle = *patch.AutoLoginWithGoogle
		}

		var errs []string
		if next.Theme != ThemeLight && next.Theme != ThemeDark {
			errs = append(errs, msgThemeInvalid)
		}
		if _, ok := printers[next.Language]; !ok {
			errs = append(errs, msgLanguageInvalid)
		}
		if len(errs) > 0 {
			err := &validation.Error{Messages: errs}
			return s.failValidation(err)
		}
		if _, ok := s.currencies.Lookup(next.Currency); !ok {
			return s.fail(currency.ErrUnknownCurrency, msgUnknownCurrency)
		}

		before := s.settingsLocked()
		o.touch()
		s.state.Theme = next.Theme
		s.state.Language = next.Language
		s.state.CurrentCurrency = next.Currency
		s.state.AutoLoginWithGoogle = next.AutoLoginWithGoogle
		s.record("SETTINGS_UPDATED", "settings", "", before, next)
		s.notify(models.NotificationSuccess, msgSettingsSaved)
		out = next
		return nil
	})
	return out, err
}

func (s *Store) SetTheme(ctx context.Context, theme string) error {
	_, err := s.UpdateSettings(ctx, SettingsPatch{Theme: &theme})
	return err
}

// ToggleTheme flips between light and dark.
func (s *Store) ToggleTheme(ctx context.Context) (string, error) {
	next := ThemeDark
	if s.Settings().Theme == ThemeDark {
		next = ThemeLight
	}
	st, err := s.UpdateSettings(ctx, SettingsPatch{Theme: &next})
	return st.Theme, err
}

func (s *Store) SetLanguage(ctx context.Context, lang string) error {
	_, err := s.UpdateSettings(ctx, SettingsPatch{Language: &lang})
	return err
}

func (s *Store) SetCurrency(ctx context.Context, code string) error {
	_, err := s.UpdateSettings(ctx, SettingsPatch{Currency: &code})
	return err
}

func (s *Store) SetAutoLoginWithGoogle(ctx context.Context, enabled bool) error {
	_, err := s.UpdateSettings(ctx, SettingsPatch{AutoLoginWithGoogle: &enabled})
	return err
}

// Currencies lists the supported currencies.
func (s *Store) Currencies() []currency.Currency {
	return s.currencies.All()
}

// ConvertPrice converts between currencies; an empty target means the
// selected currency.
func (s *Store) ConvertPrice(price float64, from, to string) float64 {
	if from == "" {
		from = s.currencies.Base
	}
	if to == "" {
		to = s.Settings().Currency
	}
	return s.currencies.Convert(price, from, to)
}

// FormatPrice renders a base-currency price in code, or in the selected
// currency when code is empty.
func (s *Store) FormatPrice(price float64, code string) string {
	if code == "" {
		code = s.Settings().Currency
	}
	return s.currencies.Format(price, code)
}
