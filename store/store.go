// Package store is the single authority over StockSence state. Every public
// method runs under one lock, persists a full snapshot after a mutation and
// reports failures as one user notification plus a returned error.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"stocksence/infrastructure/argon"
	"stocksence/infrastructure/audit"
	"stocksence/infrastructure/clock"
	"stocksence/infrastructure/currency"
	"stocksence/infrastructure/identity"
	"stocksence/infrastructure/idgen"
	"stocksence/infrastructure/metrics"
	"stocksence/infrastructure/ratelimit"
	"stocksence/infrastructure/security"
	"stocksence/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrRateLimited        = errors.New("too many attempts")
	ErrInvalidCompanyID   = errors.New("invalid company id")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrSessionExpired     = errors.New("session expired")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateSerial    = errors.New("serial number already exists")
	ErrInvalidSerial      = errors.New("invalid serial number")
	ErrSerialInUse        = errors.New("serial number in use")
	ErrFeatureUnavailable = errors.New("feature unavailable")
	ErrIntegrity          = errors.New("integrity check failed")
	ErrUnexpected         = errors.New("unexpected error")
)

const (
	SessionTTL        = 24 * time.Hour
	TrashRetention    = 30 * 24 * time.Hour
	LoginMaxAttempts  = 5
	LoginWindow       = 15 * time.Minute
	LockDuration      = 30 * time.Minute
	LowStockThreshold = 5
	NotificationTTL   = 5 * time.Second
	SlowOperation     = time.Second

	DemoCompanyID = "DEMO_COMPANY"
)

// Repository loads and saves the whole persisted state.
type Repository interface {
	Load(ctx context.Context) (models.State, bool, error)
	Save(ctx context.Context, state models.State) error
}

// Config carries the collaborators of a Store. Nil fields get defaults,
// except Hasher which is required.
type Config struct {
	Clock      clock.Clock
	IDs        idgen.Generator
	Hasher     *argon.Hasher
	Cipher     *security.Cipher
	Limiter    *ratelimit.Limiter
	Audit      *audit.Service
	Currencies *currency.Table
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	Identity   identity.Verifier
	UserAgent  string
}

type Store struct {
	mu sync.Mutex

	repo       Repository
	clock      clock.Clock
	ids        idgen.Generator
	hasher     *argon.Hasher
	cipher     *security.Cipher
	limiter    *ratelimit.Limiter
	audit      *audit.Service
	currencies *currency.Table
	metrics    *metrics.Metrics
	log        *zap.Logger
	identity   identity.Verifier
	userAgent  string

	state         models.State
	notifications []models.Notification
}

// New rehydrates the store from repo. A missing slot starts a fresh installation.
func New(ctx context.Context, repo Repository, cfg Config) (*Store, error) {
	if repo == nil {
		return nil, errors.New("store repository is required")
	}
	if cfg.Hasher == nil {
		return nil, errors.New("password hasher is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.IDs == nil {
		cfg.IDs = idgen.UUID{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.New(cfg.Clock, cfg.Logger)
	}
	if cfg.Audit == nil {
		cfg.Audit = audit.NewService(cfg.Clock, cfg.IDs)
	}
	if cfg.Currencies == nil {
		t, err := currency.Default()
		if err != nil {
			return nil, err
		}
		cfg.Currencies = t
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "stocksence"
	}

	state, found, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if !found {
		state = models.NewState()
	}

	s := &Store{
		repo:       repo,
		clock:      cfg.Clock,
		ids:        cfg.IDs,
		hasher:     cfg.Hasher,
		cipher:     cfg.Cipher,
		limiter:    cfg.Limiter,
		audit:      cfg.Audit,
		currencies: cfg.Currencies,
		metrics:    cfg.Metrics,
		log:        cfg.Logger.Named("store"),
		identity:   cfg.Identity,
		userAgent:  cfg.UserAgent,
		state:      state,
	}
	s.log.Info("store loaded",
		zap.Bool("existing_state", found),
		zap.Int("users", len(state.Users)),
		zap.Int("products", len(state.Products)),
		zap.Int("sales", len(state.Sales)),
	)
	return s, nil
}

// op tracks whether the running operation mutated state.
type op struct {
	name    string
	changed bool
}

func (o *op) touch() { o.changed = true }

// do runs fn under the store lock. Mutations are persisted when fn touched the
// state, even on a failure (failed-login counters, forced logout). An error
// from an untouched operation, a panic, or a failed save restores the snapshot;
// the latter two also withdraw the notifications fn queued.
func (s *Store) do(ctx context.Context, name string, fn func(o *op) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	snapshot := s.state.Clone()
	queued := len(s.notifications)
	o := &op{name: name}

	defer func() {
		if r := recover(); r != nil {
			s.state = snapshot
			s.notifications = s.notifications[:queued]
			s.log.Error("store operation panicked",
				zap.String("operation", name),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			s.notify(models.NotificationError, msgUnexpected)
			err = ErrUnexpected
		}
		s.measure(name, time.Since(start), err)
	}()

	err = fn(o)
	if !o.changed {
		if err != nil {
			s.state = snapshot
		}
		return err
	}

	if saveErr := s.repo.Save(ctx, s.state); saveErr != nil {
		s.state = snapshot
		s.log.Error("persist state failed", zap.String("operation", name), zap.Error(saveErr))
		if err == nil {
			s.notifications = s.notifications[:queued]
			s.notify(models.NotificationError, msgSaveFailed)
			return fmt.Errorf("%s: persist state: %w", name, saveErr)
		}
		return errors.Join(err, saveErr)
	}
	return err
}

func (s *Store) measure(name string, d time.Duration, err error) {
	s.metrics.ObserveOperation(name, d, err != nil)
	if d > SlowOperation {
		s.log.Warn("slow store operation", zap.String("operation", name), zap.Duration("duration", d))
	}
	if err == nil {
		return
	}
	fields := []zap.Field{zap.String("operation", name), zap.Error(err)}
	if u := s.state.CurrentUser; u != nil {
		fields = append(fields, zap.String("user_id", u.ID), zap.String("company_id", u.CompanyID))
	}
	if errors.Is(err, ErrUnexpected) {
		s.log.Error("store operation failed", fields...)
		return
	}
	s.log.Warn("store operation failed", fields...)
}

// PerformanceStats summarizes recent durations of the named operation.
func (s *Store) PerformanceStats(name string) (metrics.Stats, bool) {
	return s.metrics.Stats(name)
}

func (s *Store) now() time.Time {
	return s.clock.Now()
}

// fail emits one error notification and returns err.
func (s *Store) fail(err error, key string, args ...any) error {
	s.notify(models.NotificationError, key, args...)
	return err
}

// requireSession returns the signed-in user, forcing a logout when the
// session has expired or the account is gone.
func (s *Store) requireSession(o *op) (models.User, error) {
	st := &s.state
	if !st.IsAuthenticated || st.CurrentUser == nil {
		return models.User{}, s.fail(ErrNotAuthenticated, msgNotAuthenticated)
	}
	if st.SessionExpiry == nil || !s.now().Before(*st.SessionExpiry) {
		s.clearSession()
		o.touch()
		return models.User{}, s.fail(ErrSessionExpired, msgSessionExpired)
	}
	i := s.userIndex(st.CurrentUser.ID)
	if i < 0 || !st.Users[i].IsActive {
		s.clearSession()
		o.touch()
		return models.User{}, s.fail(ErrNotAuthenticated, msgNotAuthenticated)
	}
	return st.Users[i], nil
}

func (s *Store) requireAdmin(o *op) (models.User, error) {
	u, err := s.requireSession(o)
	if err != nil {
		return u, err
	}
	if u.Role != models.RoleAdmin {
		return u, s.fail(ErrForbidden, msgForbidden)
	}
	return u, nil
}

func (s *Store) userIndex(id string) int {
	for i := range s.state.Users {
		if s.state.Users[i].ID == id {
			return i
		}
	}
	return -1
}

// record appends an audit entry attributed to the signed-in user, or to the
// system when nobody is signed in. Audit failures never fail the operation.
func (s *Store) record(action, entityType, entityID string, before, after any) {
	e := audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Before:     before,
		After:      after,
		UserAgent:  s.userAgent,
	}
	if u := s.state.CurrentUser; u != nil && s.state.IsAuthenticated {
		e.UserID = u.ID
		e.CompanyID = u.CompanyID
	}
	s.writeAudit(e)
}

// recordSystem writes an entry with no acting user. companyID scopes it to
// the tenant whose data changed.
func (s *Store) recordSystem(companyID, action, entityType, entityID string, before, after any) {
	s.recordFor("", companyID, action, entityType, entityID, before, after)
}

// recordFor writes an entry attributed to userID in companyID.
func (s *Store) recordFor(userID, companyID, action, entityType, entityID string, before, after any) {
	s.writeAudit(audit.Entry{
		UserID:     userID,
		CompanyID:  companyID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Before:     before,
		After:      after,
		UserAgent:  s.userAgent,
	})
}

func (s *Store) writeAudit(e audit.Entry) {
	logs, err := s.audit.Write(s.state.AuditLogs, e)
	if err != nil {
		s.log.Error("audit write failed", zap.String("action", e.Action), zap.Error(err))
		return
	}
	s.state.AuditLogs = logs
}
