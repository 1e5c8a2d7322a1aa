package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesSummary(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	widget := h.addProduct("Widget", 10, 2.5)
	gadget := h.addProduct("Gadget", 3, 100)

	_, err := h.sell(widget, 4)
	require.NoError(t, err)
	_, err = h.sell(gadget, 1)
	require.NoError(t, err)
	trashed, err := h.sell(widget, 1)
	require.NoError(t, err)
	require.NoError(t, h.store.DeleteSale(h.ctx, trashed.ID, ""))

	sum, err := h.store.SalesSummary(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.SaleCount)
	assert.Equal(t, int64(5), sum.UnitsSold)
	assert.Equal(t, 110.0, sum.TotalRevenue)
	assert.Equal(t, 2, sum.ProductCount)
	assert.Equal(t, 5*2.5+2*100.0, sum.InventoryValue)
	assert.Equal(t, 1, sum.TrashCount)

	require.Len(t, sum.ByProduct, 2)
	assert.Equal(t, gadget.ID, sum.ByProduct[0].ProductID)
	assert.Equal(t, int64(4), sum.ByProduct[1].Units)

	require.Len(t, sum.LowStock, 1)
	assert.Equal(t, gadget.ID, sum.LowStock[0].ID)
}

func TestSalesSummaryEmptyTenant(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	sum, err := h.store.SalesSummary(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.SaleCount)
	assert.NotNil(t, sum.ByProduct)
	assert.NotNil(t, sum.LowStock)
}

func TestAuditLogsAreTenantScoped(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	h.addProduct("Widget", 10, 2.5)
	require.NoError(t, h.store.Logout(h.ctx))
	bob := h.register("bob")

	logs, err := h.store.AuditLogs(h.ctx)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	for _, l := range logs {
		assert.Equal(t, bob.CompanyID, l.CompanyID)
		assert.NotEqual(t, "PRODUCT_CREATED", l.Action)
	}
}

func TestAuditLogsHideOtherTenantsSystemEntries(t *testing.T) {
	h := newHarness(t)
	alice := h.register("alice")
	p := h.addProduct("Widget", 10, 3)
	s := trashAged(t, h, p, 0)
	backdate(h, s.ID, 31*24*time.Hour)
	require.NoError(t, h.store.Logout(h.ctx))
	for i := 0; i < 5; i++ {
		_, _ = h.store.Login(h.ctx, "alice", "wrong-pass", alice.CompanyID)
	}
	require.True(t, h.user(alice.ID).IsLocked)
	_, err := h.store.CleanupOldDeletedSales(h.ctx)
	require.NoError(t, err)
	h.drain()

	h.register("bob")
	logs, err := h.store.AuditLogs(h.ctx)
	require.NoError(t, err)
	for _, l := range logs {
		assert.NotEqual(t, "ACCOUNT_LOCKED", l.Action)
		assert.NotEqual(t, "AUTO_CLEANUP_DELETED_SALES", l.Action)
		assert.NotEqual(t, alice.ID, l.UserID)
	}

	var locked, cleanup bool
	for _, l := range h.store.state.AuditLogs {
		switch l.Action {
		case "ACCOUNT_LOCKED":
			locked = true
			assert.Equal(t, alice.ID, l.UserID)
			assert.Equal(t, alice.CompanyID, l.CompanyID)
		case "AUTO_CLEANUP_DELETED_SALES":
			cleanup = true
			assert.Equal(t, alice.CompanyID, l.CompanyID)
		}
	}
	assert.True(t, locked)
	assert.True(t, cleanup)
}
