package currency

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

//go:embed currencies.yaml
var embeddedTable []byte

var ErrUnknownCurrency = errors.New("unknown currency")

// Currency is one entry of the static conversion table. Rate is units per base unit.
type Currency struct {
	Code   string          `yaml:"code" json:"code"`
	Symbol string          `yaml:"symbol" json:"symbol"`
	Name   string          `yaml:"name" json:"name"`
	NameAr string          `yaml:"nameAr" json:"nameAr"`
	Rate   decimal.Decimal `yaml:"rate" json:"rate"`
}

// Table is an ordered, read-only currency set.
type Table struct {
	Base       string
	currencies []Currency
	byCode     map[string]Currency
}

type tableFile struct {
	Base       string     `yaml:"base"`
	Currencies []Currency `yaml:"currencies"`
}

// Default parses the embedded table.
func Default() (*Table, error) {
	return Parse(embeddedTable)
}

// Parse decodes and validates a YAML currency table.
func Parse(raw []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode currency table: %w", err)
	}
	t := &Table{Base: strings.ToUpper(f.Base), byCode: make(map[string]Currency, len(f.Currencies))}
	for _, c := range f.Currencies {
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		if _, err := currency.ParseISO(c.Code); err != nil {
			return nil, fmt.Errorf("currency %q: %w", c.Code, err)
		}
		if !c.Rate.IsPositive() {
			return nil, fmt.Errorf("currency %s: rate must be positive", c.Code)
		}
		if _, dup := t.byCode[c.Code]; dup {
			return nil, fmt.Errorf("currency %s listed twice", c.Code)
		}
		t.byCode[c.Code] = c
		t.currencies = append(t.currencies, c)
	}
	base, ok := t.byCode[t.Base]
	if !ok {
		return nil, fmt.Errorf("base currency %q missing from table", f.Base)
	}
	if !base.Rate.Equal(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("base currency %s must have rate 1", t.Base)
	}
	return t, nil
}

func (t *Table) Lookup(code string) (Currency, bool) {
	c, ok := t.byCode[strings.ToUpper(code)]
	return c, ok
}

func (t *Table) All() []Currency {
	out := make([]Currency, len(t.currencies))
	copy(out, t.currencies)
	return out
}

// Convert moves price between two currencies through the base rate.
// Unknown codes fall back to a rate of 1.
func (t *Table) Convert(price float64, from, to string) float64 {
	if strings.EqualFold(from, to) {
		return price
	}
	fromRate := t.rate(from)
	toRate := t.rate(to)
	return decimal.NewFromFloat(price).Div(fromRate).Mul(toRate).InexactFloat64()
}

// Format converts a base-currency price into code and renders it with the
// currency symbol and two grouped decimals.
func (t *Table) Format(price float64, code string) string {
	p := message.NewPrinter(language.English)
	c, ok := t.Lookup(code)
	if !ok {
		return p.Sprintf("%.2f", price)
	}
	converted := t.Convert(price, t.Base, c.Code)
	return c.Symbol + p.Sprintf("%.2f", converted)
}

func (t *Table) rate(code string) decimal.Decimal {
	if c, ok := t.Lookup(code); ok {
		return c.Rate
	}
	return decimal.NewFromInt(1)
}
