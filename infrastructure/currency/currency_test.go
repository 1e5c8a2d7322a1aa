package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedTable(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "EGP", tbl.Base)

	codes := make([]string, 0)
	for _, c := range tbl.All() {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"EGP", "SAR", "USD", "EUR"}, codes)
}

func TestConvert(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)

	assert.InDelta(t, 3.2, tbl.Convert(100, "EGP", "USD"), 1e-9)
	assert.InDelta(t, 100, tbl.Convert(3.2, "USD", "EGP"), 1e-9)
	assert.InDelta(t, 13, tbl.Convert(100, "EGP", "SAR"), 1e-9)
	assert.Equal(t, 42.5, tbl.Convert(42.5, "USD", "usd"))
	assert.InDelta(t, 100, tbl.Convert(100, "XXX", "EGP"), 1e-9, "unknown codes use rate 1")
}

func TestFormat(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "$3.20", tbl.Format(100, "USD"))
	assert.Equal(t, "$32,000.00", tbl.Format(1000000, "USD"))
	assert.Equal(t, "12.50", tbl.Format(12.5, "JPY"))
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad code":     "base: EGP\ncurrencies:\n  - {code: ZZZZ, rate: '1'}\n",
		"no base":      "base: EGP\ncurrencies:\n  - {code: USD, rate: '1'}\n",
		"zero rate":    "base: EGP\ncurrencies:\n  - {code: EGP, rate: '1'}\n  - {code: USD, rate: '0'}\n",
		"base rate":    "base: EGP\ncurrencies:\n  - {code: EGP, rate: '2'}\n",
		"invalid yaml": "base: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}
