package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksence/infrastructure/argon"
	"stocksence/infrastructure/clock"
	"stocksence/infrastructure/idgen"
	"stocksence/infrastructure/metrics"
	"stocksence/infrastructure/security"
	"stocksence/models"
	"stocksence/validation"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	t     *testing.T
	ctx   context.Context
	store *Store
	clock *clock.Fake
	repo  *MemoryRepository
}

func newHarness(t *testing.T, opts ...func(*Config)) *harness {
	t.Helper()
	c := clock.NewFake(t0)
	repo := NewMemoryRepository()
	return newHarnessWith(t, c, repo, opts...)
}

func newHarnessWith(t *testing.T, c *clock.Fake, repo Repository, opts ...func(*Config)) *harness {
	t.Helper()
	cipher, err := security.NewCipher("backup-secret")
	require.NoError(t, err)
	cfg := Config{
		Clock:   c,
		IDs:     idgen.NewSequence("id"),
		Hasher:  argon.NewHasher("pepper", argon.FastParams),
		Cipher:  cipher,
		Metrics: metrics.New("test"),
	}
	for _, o := range opts {
		o(&cfg)
	}
	s, err := New(context.Background(), repo, cfg)
	require.NoError(t, err)
	mem, _ := repo.(*MemoryRepository)
	return &harness{t: t, ctx: context.Background(), store: s, clock: c, repo: mem}
}

// drain returns and dismisses every live notification.
func (h *harness) drain() []models.Notification {
	ns := h.store.Notifications()
	for _, n := range ns {
		h.store.DismissNotification(n.ID)
	}
	return ns
}

func (h *harness) register(username string) models.User {
	h.t.Helper()
	u, err := h.store.Register(h.ctx, username, "Secret1!", "")
	require.NoError(h.t, err)
	h.drain()
	return u
}

func (h *harness) addProduct(name string, qty int64, price float64) models.Product {
	h.t.Helper()
	p, err := h.store.AddProduct(h.ctx, validation.NewProductInput{Name: name, Category: "Tools", Quantity: qty, Price: price})
	require.NoError(h.t, err)
	h.drain()
	return p
}

func (h *harness) sell(p models.Product, qty int64) (models.Sale, error) {
	h.t.Helper()
	return h.store.AddSale(h.ctx, validation.NewSaleInput{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    qty,
		Price:       p.Price,
		TotalAmount: p.Price * float64(qty),
	})
}

func (h *harness) user(id string) models.User {
	h.t.Helper()
	i := h.store.userIndex(id)
	require.GreaterOrEqual(h.t, i, 0, "user %s missing", id)
	return h.store.state.Users[i]
}

func requireOneError(t *testing.T, ns []models.Notification, message string) {
	t.Helper()
	require.Len(t, ns, 1, "expected exactly one notification, got %+v", ns)
	assert.Equal(t, models.NotificationError, ns[0].Type)
	if message != "" {
		assert.Equal(t, message, ns[0].Message)
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(context.Background(), nil, Config{Hasher: argon.NewHasher("p", argon.FastParams)})
	assert.Error(t, err)
	_, err = New(context.Background(), NewMemoryRepository(), Config{})
	assert.Error(t, err)
}

func TestStatePersistsAcrossRestarts(t *testing.T) {
	h := newHarness(t)
	alice := h.register("alice")
	h.addProduct("Widget", 6, 10)

	reopened := newHarnessWith(t, h.clock, h.repo)
	products, err := reopened.store.Products(reopened.ctx)
	require.NoError(t, err, "session survives a restart")
	require.Len(t, products, 1)
	assert.Equal(t, alice.CompanyID, products[0].CompanyID)

	cur, err := reopened.store.CurrentUser(reopened.ctx)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, cur.ID)
}

func TestSaveFailureRestoresState(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	saves := h.repo.Saves()

	h.repo.SetFailSaves(true)
	_, err := h.store.AddProduct(h.ctx, validation.NewProductInput{Name: "Widget", Category: "Tools", Quantity: 1, Price: 5})
	require.ErrorIs(t, err, ErrSaveFailed)
	requireOneError(t, h.drain(), msgSaveFailed)
	assert.Equal(t, saves, h.repo.Saves())

	h.repo.SetFailSaves(false)
	products, err := h.store.Products(h.ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

type panickingRepo struct{ *MemoryRepository }

func (panickingRepo) Save(context.Context, models.State) error { panic("disk on fire") }

func TestPanicsAreContained(t *testing.T) {
	c := clock.NewFake(t0)
	h := newHarnessWith(t, c, panickingRepo{NewMemoryRepository()})

	_, err := h.store.Register(h.ctx, "alice", "Secret1!", "")
	require.ErrorIs(t, err, ErrUnexpected)
	requireOneError(t, h.drain(), msgUnexpected)
	assert.Empty(t, h.store.state.Users, "state rolled back")
	assert.False(t, h.store.state.IsAuthenticated)
}

func TestNotificationsExpire(t *testing.T) {
	h := newHarness(t)
	h.store.Register(h.ctx, "alice", "Secret1!", "")
	require.Len(t, h.store.Notifications(), 1)

	h.clock.Advance(4 * time.Second)
	require.Len(t, h.store.Notifications(), 1)
	h.clock.Advance(time.Second)
	assert.Empty(t, h.store.Notifications())
}

func TestDismissNotification(t *testing.T) {
	h := newHarness(t)
	h.store.Register(h.ctx, "alice", "Secret1!", "")
	ns := h.store.Notifications()
	require.Len(t, ns, 1)
	h.store.DismissNotification(ns[0].ID)
	assert.Empty(t, h.store.Notifications())
}

func TestNotificationsFollowLanguage(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetLanguage(h.ctx, "ar"))
	h.drain()

	_, err := h.store.Login(h.ctx, "ghost", "whatever", "X")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	requireOneError(t, h.drain(), arabic[msgInvalidCredentials])
}

func TestPerformanceStatsRecorded(t *testing.T) {
	h := newHarness(t)
	h.register("alice")
	h.store.Products(h.ctx)
	h.store.Products(h.ctx)

	stats, ok := h.store.PerformanceStats("products")
	require.True(t, ok)
	assert.Equal(t, 2, stats.Count)
}

func TestOptimizeSweeps(t *testing.T) {
	h := newHarness(t)
	h.store.Login(h.ctx, "ghost", "whatever", "X")
	h.clock.Advance(LoginWindow + time.Second)

	r := h.store.Optimize()
	assert.Equal(t, 1, r.Notifications)
	assert.Equal(t, 1, r.RateLimitKeys)
	assert.GreaterOrEqual(t, r.MetricSeries, 1)
}

func TestRunMaintenanceStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.store.RunMaintenance(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("maintenance loop did not stop")
	}
}

func TestErrorsAreDistinguishable(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Products(h.ctx)
	assert.True(t, errors.Is(err, ErrNotAuthenticated))
	requireOneError(t, h.drain(), msgNotAuthenticated)
}
