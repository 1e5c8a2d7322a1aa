package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksence/infrastructure/security"
	"stocksence/models"
	"stocksence/validation"
)

func TestBackupRoundTrip(t *testing.T) {
	h := newHarness(t)
	alice := h.register("alice")
	widget := h.addProduct("Widget", 6, 10)
	sale, err := h.sell(widget, 2)
	require.NoError(t, err)
	require.NoError(t, h.store.SetCurrency(h.ctx, "USD"))
	h.drain()

	raw, err := h.store.ExportBackup(h.ctx)
	require.NoError(t, err)

	var env BackupEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, BackupVersion, env.Version)
	assert.Equal(t, alice.CompanyID, env.CompanyID)
	assert.NotContains(t, string(raw), "Widget", "payload is encrypted")

	require.NoError(t, h.store.DeleteProduct(h.ctx, widget.ID))
	require.NoError(t, h.store.SetCurrency(h.ctx, "EGP"))
	require.NoError(t, h.store.ImportBackup(h.ctx, raw))

	products, err := h.store.Products(h.ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, widget.ID, products[0].ID)
	assert.Equal(t, int64(4), products[0].Quantity)

	sales, err := h.store.Sales(h.ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, sale.ID, sales[0].ID)
	assert.Equal(t, "USD", h.store.Settings().Currency)
}

func TestImportBackup_RejectsTampering(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	h.addProduct("Widget", 6, 10)
	raw, err := h.store.ExportBackup(h.ctx)
	require.NoError(t, err)
	h.drain()

	var env BackupEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))

	badChecksum := env
	badChecksum.Checksum = flipFirstHex(env.Checksum)
	sealed, err := base64.StdEncoding.DecodeString(env.Data)
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff
	badData := env
	badData.Data = base64.StdEncoding.EncodeToString(sealed)

	for name, e := range map[string]BackupEnvelope{"checksum": badChecksum, "data": badData} {
		t.Run(name, func(t *testing.T) {
			tampered, err := json.Marshal(e)
			require.NoError(t, err)
			err = h.store.ImportBackup(h.ctx, tampered)
			require.ErrorIs(t, err, ErrIntegrity)
			requireOneError(t, h.drain(), msgBackupInvalid)
		})
	}

	require.ErrorIs(t, h.store.ImportBackup(h.ctx, []byte("not json")), ErrIntegrity)
	h.drain()
	products, err := h.store.Products(h.ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestImportBackup_WrongKey(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	raw, err := h.store.ExportBackup(h.ctx)
	require.NoError(t, err)

	other := newHarness(t, func(c *Config) {
		cipher, err := security.NewCipher("another-secret")
		require.NoError(t, err)
		c.Cipher = cipher
	})
	other.register("bob")
	require.ErrorIs(t, other.store.ImportBackup(other.ctx, raw), ErrIntegrity)
}

func TestImportBackup_ValidatesProducts(t *testing.T) {
	h := newHarness(t)
	alice := h.register("alice")
	h.addProduct("Widget", 6, 10)

	payload := BackupPayload{
		Products: []models.Product{{ID: "bad", Name: "X", Category: "Tools", Quantity: 1, Price: -5, CompanyID: alice.CompanyID}},
		Settings: h.store.Settings(),
	}
	plain, err := json.Marshal(payload)
	require.NoError(t, err)
	data, err := h.store.cipher.Encrypt(plain)
	require.NoError(t, err)
	raw, err := json.Marshal(BackupEnvelope{Version: BackupVersion, Data: data, Checksum: h.store.cipher.Checksum(plain)})
	require.NoError(t, err)

	err = h.store.ImportBackup(h.ctx, raw)
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	requireOneError(t, h.drain(), "")

	products, err := h.store.Products(h.ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0].Name)
}

func TestImportBackup_StaysInCallersCompany(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	h.addProduct("Widget", 6, 10)
	raw, err := h.store.ExportBackup(h.ctx)
	require.NoError(t, err)
	require.NoError(t, h.store.Logout(h.ctx))

	bob := h.register("bob")
	h.addProduct("Gadget", 2, 4)
	require.NoError(t, h.store.ImportBackup(h.ctx, raw))

	products, err := h.store.Products(h.ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0].Name)
	assert.Equal(t, bob.CompanyID, products[0].CompanyID)

	// Alice's catalog is untouched and bob's import did not replace it.
	aliceCount := 0
	for _, p := range h.store.state.Products {
		if p.CompanyID != bob.CompanyID {
			aliceCount++
		}
	}
	assert.Equal(t, 1, aliceCount)
}

func TestBackupUnavailableWithoutCipher(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.Cipher = nil })
	h.register("alice")
	_, err := h.store.ExportBackup(h.ctx)
	require.ErrorIs(t, err, ErrFeatureUnavailable)
	requireOneError(t, h.drain(), msgBackupUnavailable)
}

func flipFirstHex(s string) string {
	if s[0] == '0' {
		return "1" + s[1:]
	}
	return "0" + s[1:]
}
