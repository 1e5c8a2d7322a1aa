package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksence/infrastructure/security"
	"stocksence/models"
	"stocksence/validation"
)

func TestAddProduct_GeneratesSerialAndSanitizes(t *testing.T) {
	h := newHarness(t)
	alice := h.register("alice")

	p, err := h.store.AddProduct(h.ctx, validation.NewProductInput{
		Name:        "  <b>Widget</b> ",
		Description: "blue <script>",
		Category:    "Tools",
		Quantity:    3,
		Price:       9.99,
	})
	require.NoError(t, err)
	assert.Equal(t, "bWidget/b", p.Name)
	assert.Equal(t, "blue script", p.Description)
	assert.Len(t, p.SerialNumber, productSerialDigits)
	assert.True(t, security.ValidateSerialNumber(p.SerialNumber))
	assert.Equal(t, alice.CompanyID, p.CompanyID)
	assert.Equal(t, alice.ID, p.CreatedBy)
	assert.True(t, p.IsActive)

	ns := h.drain()
	require.Len(t, ns, 1)
	assert.Equal(t, fmt.Sprintf(msgProductAdded, p.SerialNumber), ns[0].Message)
}

func TestAddProduct_RejectsInvalid(t *testing.T) {
	h := newHarness(t)
	h.register("alice")

	_, err := h.store.AddProduct(h.ctx, validation.NewProductInput{Name: "W", Category: "T", Quantity: -1, Price: 0})
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Messages, 4)
	requireOneError(t, h.drain(), "")

	_, err = h.store.AddProduct(h.ctx, validation.NewProductInput{Name: "<>", Category: "Tools", Quantity: 1, Price: 1})
	require.True(t, errors.As(err, &verr), "a name that sanitizes to nothing is rejected")

	products, err := h.store.Products(h.ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestUpdateProduct_ValidatesMergedRecord(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	p := h.addProduct("Widget", 5, 10)

	price := 12.5
	updated, err := h.store.UpdateProduct(h.ctx, p.ID, validation.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 12.5, updated.Price)
	assert.Equal(t, "Widget", updated.Name)
	assert.Equal(t, p.SerialNumber, updated.SerialNumber)
	assert.NotEmpty(t, updated.LastModifiedBy)
	h.drain()

	negative := int64(-3)
	_, err = h.store.UpdateProduct(h.ctx, p.ID, validation.ProductPatch{Quantity: &negative})
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	requireOneError(t, h.drain(), "")

	got, err := h.store.Product(h.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Quantity)
}

func TestUpdateProduct_Unknown(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	name := "Gadget"
	_, err := h.store.UpdateProduct(h.ctx, "missing", validation.ProductPatch{Name: &name})
	require.ErrorIs(t, err, ErrNotFound)
	requireOneError(t, h.drain(), msgProductNotFound)
}

func TestDeleteProduct_IsPermanent(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	p := h.addProduct("Widget", 5, 10)

	require.NoError(t, h.store.DeleteProduct(h.ctx, p.ID))
	_, err := h.store.Product(h.ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, h.store.DeleteProduct(h.ctx, p.ID), ErrNotFound)
}

func TestProductsAreTenantScoped(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	widget := h.addProduct("Widget", 5, 10)
	require.NoError(t, h.store.Logout(h.ctx))

	h.register("bob")
	products, err := h.store.Products(h.ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	_, err = h.store.Product(h.ctx, widget.ID)
	require.ErrorIs(t, err, ErrNotFound)
	qty := int64(0)
	_, err = h.store.UpdateProduct(h.ctx, widget.ID, validation.ProductPatch{Quantity: &qty})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, h.store.DeleteProduct(h.ctx, widget.ID), ErrNotFound)
	assert.Len(t, h.store.state.Products, 1)
}

func TestSerialNumbers(t *testing.T) {
	h := newHarness(t)
	alice := h.register("alice")

	sn, err := h.store.AddSerialNumber(h.ctx, " 123456 ")
	require.NoError(t, err)
	assert.Equal(t, "123456", sn.SerialNumber)
	assert.False(t, sn.IsUsed)
	assert.Equal(t, alice.CompanyID, sn.CompanyID)
	h.drain()

	_, err = h.store.AddSerialNumber(h.ctx, "123456")
	require.ErrorIs(t, err, ErrDuplicateSerial)
	requireOneError(t, h.drain(), msgSerialExists)

	_, err = h.store.AddSerialNumber(h.ctx, "12ab")
	require.ErrorIs(t, err, ErrInvalidSerial)
	requireOneError(t, h.drain(), msgSerialInvalid)

	serials, err := h.store.SerialNumbers(h.ctx)
	require.NoError(t, err)
	require.Len(t, serials, 2)

	var used models.SerialNumber
	for _, s := range serials {
		if s.IsUsed {
			used = s
		}
	}
	require.ErrorIs(t, h.store.RemoveSerialNumber(h.ctx, used.ID), ErrSerialInUse)
	require.NoError(t, h.store.RemoveSerialNumber(h.ctx, sn.ID))
	require.ErrorIs(t, h.store.RemoveSerialNumber(h.ctx, sn.ID), ErrNotFound)
}

func TestSerialNumbersUniquePerCompanyOnly(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	_, err := h.store.AddSerialNumber(h.ctx, "999999")
	require.NoError(t, err)
	require.NoError(t, h.store.Logout(h.ctx))

	h.register("bob")
	_, err = h.store.AddSerialNumber(h.ctx, "999999")
	require.NoError(t, err)
}

func TestSerialNumbersRequireAdmin(t *testing.T) {
	h := newHarness(t)
	alice := h.register("alice")
	h.store.state.Users[h.store.userIndex(alice.ID)].Role = models.RoleEmployee

	_, err := h.store.AddSerialNumber(h.ctx, "123456")
	require.ErrorIs(t, err, ErrForbidden)
	requireOneError(t, h.drain(), msgForbidden)
}
