package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"stocksence/infrastructure/identity"
	"stocksence/infrastructure/security"
	"stocksence/models"
	"stocksence/validation"
)

const registrationSerialDigits = 12

var usernameCleaner = regexp.MustCompile(`[^a-z0-9_]+`)

func rateKey(username string) string {
	return "login_" + strings.ToLower(strings.TrimSpace(username))
}

// Register provisions a new tenant whose first user is its admin, attaches a
// consumed activation serial and signs the user in.
func (s *Store) Register(ctx context.Context, username, password, email string) (models.User, error) {
	var out models.User
	err := s.do(ctx, "register", func(o *op) error {
		username = strings.TrimSpace(username)
		email = strings.ToLower(strings.TrimSpace(email))

		in := validation.UserInput{Username: username, Password: password, Email: email, Role: models.RoleAdmin}
		if err := validation.ValidateUser(in).Err(); err != nil {
			return s.failValidation(err)
		}
		if s.findUserByUsername(username) >= 0 {
			return s.fail(ErrDuplicateUsername, msgUsernameExists)
		}
		if email != "" && s.findUserByEmail(email) >= 0 {
			return s.fail(ErrDuplicateEmail, msgEmailExists)
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		user := s.provisionTenant(o, username, hash, email)
		s.record("USER_REGISTERED", "user", user.ID, nil, auditUser(user))
		s.notify(models.NotificationSuccess, msgRegistered, user.CompanyID)
		out = user
		return nil
	})
	return out, err
}

// provisionTenant creates a company, its admin user and one consumed serial,
// then starts a session for that user.
func (s *Store) provisionTenant(o *op, username, passwordHash, email string) models.User {
	now := s.now()
	companyID := s.newCompanyID()

	user := models.User{
		ID:           s.ids.NewID(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
		CompanyID:    companyID,
		Email:        email,
		IsActive:     true,
		CreatedAt:    now,
	}
	usedAt := now
	serial := models.SerialNumber{
		ID:           s.ids.NewID(),
		SerialNumber: security.GenerateSerialNumber(registrationSerialDigits),
		IsUsed:       true,
		CompanyID:    companyID,
		UsedBy:       user.ID,
		UsedAt:       &usedAt,
		CreatedAt:    now,
	}

	o.touch()
	s.state.Users = append(s.state.Users, user)
	s.state.SerialNumbers = append(s.state.SerialNumbers, serial)
	return s.startSession(len(s.state.Users) - 1)
}

func (s *Store) newCompanyID() string {
	for {
		id := security.GenerateSecureCompanyID(s.now())
		taken := false
		for _, u := range s.state.Users {
			if u.CompanyID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

// Login authenticates username within companyID.
//
// An active lock is reported before the rate limiter is consulted so lock
// probes do not consume attempts. Wrong company ids never count as failed
// password attempts.
func (s *Store) Login(ctx context.Context, username, password, companyID string) (models.User, error) {
	var out models.User
	err := s.do(ctx, "login", func(o *op) error {
		s.cleanupOldDeletedSales(o)

		now := s.now()
		username = strings.TrimSpace(username)
		idx := s.findUserByUsername(username)

		if idx >= 0 && s.state.Users[idx].LockActive(now) {
			return s.fail(ErrAccountLocked, msgAccountLocked)
		}
		if !s.limiter.Check(rateKey(username), LoginMaxAttempts, LoginWindow) {
			s.log.Warn("RATE_LIMIT_EXCEEDED", zap.String("event", "login"))
			return s.fail(ErrRateLimited, msgRateLimited)
		}
		if idx < 0 || !s.state.Users[idx].IsActive {
			return s.fail(ErrInvalidCredentials, msgInvalidCredentials)
		}

		user := &s.state.Users[idx]
		if user.IsLocked {
			// The timed lock has passed.
			o.touch()
			user.IsLocked = false
			user.LockedUntil = nil
			user.LockReason = ""
			user.LoginAttempts = 0
		}

		ok, err := s.hasher.Verify(password, user.PasswordHash)
		if err != nil {
			s.log.Error("password hash unreadable", zap.String("user_id", user.ID), zap.Error(err))
			ok = false
		}
		if !ok {
			o.touch()
			user.LoginAttempts++
			if user.LoginAttempts >= LoginMaxAttempts {
				until := now.Add(LockDuration)
				user.IsLocked = true
				user.LockedUntil = &until
				user.LockReason = "too many failed login attempts"
				s.recordFor(user.ID, user.CompanyID, "ACCOUNT_LOCKED", "user", user.ID, nil, map[string]any{
					"attempts":    user.LoginAttempts,
					"lockedUntil": until,
				})
				return s.fail(ErrAccountLocked, msgAccountLocked)
			}
			return s.fail(ErrInvalidCredentials, msgInvalidCredentials)
		}

		if strings.TrimSpace(companyID) != user.CompanyID {
			return s.fail(ErrInvalidCompanyID, msgInvalidCompany)
		}

		o.touch()
		user.LoginAttempts = 0
		user.IsLocked = false
		user.LockedUntil = nil
		user.LockReason = ""
		out = s.startSession(idx)
		s.limiter.Reset(rateKey(username))
		s.record("LOGIN", "user", out.ID, nil, map[string]any{"companyId": out.CompanyID})
		s.notify(models.NotificationSuccess, msgLoginSuccess)
		return nil
	})
	return out, err
}

// LoginWithGoogle verifies an ID token credential and signs its owner in.
func (s *Store) LoginWithGoogle(ctx context.Context, credential string) (models.User, error) {
	if s.identity == nil {
		s.mu.Lock()
		err := s.fail(ErrFeatureUnavailable, msgGoogleUnavailable)
		s.mu.Unlock()
		return models.User{}, err
	}
	assertion, err := s.identity.Verify(ctx, credential)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if errors.Is(err, identity.ErrUnavailable) {
			return models.User{}, s.fail(ErrFeatureUnavailable, msgGoogleUnavailable)
		}
		s.log.Warn("google credential rejected", zap.Error(err))
		return models.User{}, s.fail(fmt.Errorf("%w: %v", ErrInvalidCredentials, err), msgGoogleFailed)
	}
	return s.LoginWithAssertion(ctx, assertion)
}

// LoginWithAssertion resolves a verified external identity: an account already
// linked to the identity, an unlinked account with the same email (which gets
// linked), or a brand-new tenant.
func (s *Store) LoginWithAssertion(ctx context.Context, a identity.Assertion) (models.User, error) {
	var out models.User
	err := s.do(ctx, "loginWithGoogle", func(o *op) error {
		s.cleanupOldDeletedSales(o)

		a.ID = strings.TrimSpace(a.ID)
		a.Email = strings.ToLower(strings.TrimSpace(a.Email))
		if a.ID == "" || a.Email == "" {
			return s.fail(ErrInvalidCredentials, msgGoogleFailed)
		}

		now := s.now()
		idx := s.findUserByGoogleID(a.ID)
		linked := false
		if idx < 0 {
			if i := s.findUserByEmail(a.Email); i >= 0 {
				if s.state.Users[i].GoogleID != "" {
					return s.fail(ErrDuplicateEmail, msgEmailExists)
				}
				idx = i
				linked = true
			}
		}

		if idx >= 0 {
			user := &s.state.Users[idx]
			if !user.IsActive {
				return s.fail(ErrInvalidCredentials, msgInvalidCredentials)
			}
			if user.LockActive(now) {
				return s.fail(ErrAccountLocked, msgAccountLocked)
			}
			o.touch()
			if linked {
				user.GoogleID = a.ID
				s.record("GOOGLE_ACCOUNT_LINKED", "user", user.ID, nil, map[string]any{"email": a.Email})
			}
			if a.Picture != "" {
				user.Picture = a.Picture
			}
			user.LoginAttempts = 0
			user.IsLocked = false
			user.LockedUntil = nil
			user.LockReason = ""
			out = s.startSession(idx)
			s.record("LOGIN_GOOGLE", "user", out.ID, nil, map[string]any{"companyId": out.CompanyID})
			s.notify(models.NotificationSuccess, msgGoogleSuccess)
			return nil
		}

		hash, err := s.hasher.Hash(security.GenerateSecureToken())
		if err != nil {
			return fmt.Errorf("hash placeholder password: %w", err)
		}
		user := s.provisionTenant(o, s.deriveUsername(a.Name, a.Email), hash, a.Email)
		i := s.userIndex(user.ID)
		s.state.Users[i].GoogleID = a.ID
		s.state.Users[i].Picture = a.Picture
		out = s.startSession(i)
		s.record("USER_REGISTERED_GOOGLE", "user", out.ID, nil, auditUser(out))
		s.notify(models.NotificationSuccess, msgGoogleWelcome, out.CompanyID)
		return nil
	})
	return out, err
}

// deriveUsername builds a valid, unused username from a display name.
func (s *Store) deriveUsername(name, email string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	if base == "" {
		base, _, _ = strings.Cut(email, "@")
		base = strings.ToLower(base)
	}
	base = strings.Trim(usernameCleaner.ReplaceAllString(strings.ReplaceAll(base, " ", "_"), ""), "_")
	if len(base) > 30 {
		base = base[:30]
	}
	if len(base) < 3 {
		base = "user" + base
	}
	for {
		candidate := base + "_" + security.GenerateSecureToken()[:6]
		if s.findUserByUsername(candidate) < 0 {
			return candidate
		}
	}
}

// Logout ends the current session.
func (s *Store) Logout(ctx context.Context) error {
	return s.do(ctx, "logout", func(o *op) error {
		if !s.state.IsAuthenticated || s.state.CurrentUser == nil {
			return s.fail(ErrNotAuthenticated, msgNotAuthenticated)
		}
		s.record("LOGOUT", "user", s.state.CurrentUser.ID, nil, nil)
		o.touch()
		s.clearSession()
		s.notify(models.NotificationSuccess, msgLoggedOut)
		return nil
	})
}

// ValidateSession reports whether a live session exists. An expired session
// is ended with a notification.
func (s *Store) ValidateSession(ctx context.Context) bool {
	valid := false
	_ = s.do(ctx, "validateSession", func(o *op) error {
		if !s.state.IsAuthenticated {
			return nil
		}
		if _, err := s.requireSession(o); err != nil {
			return nil
		}
		valid = true
		return nil
	})
	return valid
}

// RefreshSession slides the session expiry to SessionTTL from now.
func (s *Store) RefreshSession(ctx context.Context) (models.Session, error) {
	var out models.Session
	err := s.do(ctx, "refreshSession", func(o *op) error {
		if _, err := s.requireSession(o); err != nil {
			return err
		}
		o.touch()
		expiry := s.now().Add(SessionTTL)
		s.state.SessionExpiry = &expiry
		out = s.sessionLocked()
		return nil
	})
	return out, err
}

// CurrentSession returns the live session.
func (s *Store) CurrentSession(ctx context.Context) (models.Session, error) {
	var out models.Session
	err := s.do(ctx, "currentSession", func(o *op) error {
		if _, err := s.requireSession(o); err != nil {
			return err
		}
		out = s.sessionLocked()
		return nil
	})
	return out, err
}

// Authorize checks token against the live session.
func (s *Store) Authorize(ctx context.Context, token string) (models.Session, error) {
	var out models.Session
	err := s.do(ctx, "authorize", func(o *op) error {
		if _, err := s.requireSession(o); err != nil {
			return err
		}
		sess := s.sessionLocked()
		if token == "" || !security.ConstantTimeEqual(token, sess.Token) {
			return s.fail(ErrNotAuthenticated, msgNotAuthenticated)
		}
		out = sess
		return nil
	})
	return out, err
}

// CurrentUser returns the signed-in user.
func (s *Store) CurrentUser(ctx context.Context) (models.User, error) {
	var out models.User
	err := s.do(ctx, "currentUser", func(o *op) error {
		u, err := s.requireSession(o)
		out = u
		return err
	})
	return out, err
}

// Users lists the accounts of the caller's company. Admin only.
func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := s.do(ctx, "users", func(o *op) error {
		admin, err := s.requireAdmin(o)
		if err != nil {
			return err
		}
		out = make([]models.User, 0)
		for _, u := range s.state.Users {
			if u.CompanyID == admin.CompanyID {
				out = append(out, u)
			}
		}
		return nil
	})
	return out, err
}

// LockUser locks a user of the caller's company until unlocked.
func (s *Store) LockUser(ctx context.Context, userID, reason string) error {
	return s.do(ctx, "lockUser", func(o *op) error {
		admin, err := s.requireAdmin(o)
		if err != nil {
			return err
		}
		idx := s.userIndex(userID)
		if idx < 0 || s.state.Users[idx].CompanyID != admin.CompanyID {
			return s.fail(fmt.Errorf("user %s: %w", userID, ErrNotFound), msgUserNotFound)
		}
		if userID == admin.ID {
			err := &validation.Error{Messages: []string{msgCannotLockSelf}}
			return s.fail(err, msgCannotLockSelf)
		}
		user := &s.state.Users[idx]
		before := lockSnapshot(*user)
		o.touch()
		user.IsLocked = true
		user.LockedUntil = nil
		user.LockReason = validation.SanitizeString(reason)
		user.SessionToken = ""
		s.record("USER_LOCKED", "user", user.ID, before, lockSnapshot(*user))
		s.notify(models.NotificationSuccess, msgUserLocked)
		return nil
	})
}

// UnlockUser clears any lock and the failed-attempt counter.
func (s *Store) UnlockUser(ctx context.Context, userID string) error {
	return s.do(ctx, "unlockUser", func(o *op) error {
		admin, err := s.requireAdmin(o)
		if err != nil {
			return err
		}
		idx := s.userIndex(userID)
		if idx < 0 || s.state.Users[idx].CompanyID != admin.CompanyID {
			return s.fail(fmt.Errorf("user %s: %w", userID, ErrNotFound), msgUserNotFound)
		}
		user := &s.state.Users[idx]
		before := lockSnapshot(*user)
		o.touch()
		user.IsLocked = false
		user.LockedUntil = nil
		user.LockReason = ""
		user.LoginAttempts = 0
		s.limiter.Reset(rateKey(user.Username))
		s.record("USER_UNLOCKED", "user", user.ID, before, lockSnapshot(*user))
		s.notify(models.NotificationSuccess, msgUserUnlocked)
		return nil
	})
}

// SeedDemoTenant creates an admin account under the demo company. It is
// idempotent and never signs anyone in.
func (s *Store) SeedDemoTenant(ctx context.Context, username, password string) (models.User, error) {
	var out models.User
	err := s.do(ctx, "seedDemoTenant", func(o *op) error {
		username = strings.TrimSpace(username)
		if idx := s.findUserByUsername(username); idx >= 0 {
			if s.state.Users[idx].CompanyID != DemoCompanyID {
				return s.fail(ErrDuplicateUsername, msgUsernameExists)
			}
			out = s.state.Users[idx]
			return nil
		}
		in := validation.UserInput{Username: username, Password: password, Role: models.RoleAdmin}
		if err := validation.ValidateUser(in).Err(); err != nil {
			return s.failValidation(err)
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		now := s.now()
		out = models.User{
			ID:           s.ids.NewID(),
			Username:     username,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			CompanyID:    DemoCompanyID,
			IsActive:     true,
			CreatedAt:    now,
		}
		o.touch()
		s.state.Users = append(s.state.Users, out)
		s.recordSystem(DemoCompanyID, "DEMO_TENANT_SEEDED", "user", out.ID, nil, auditUser(out))
		return nil
	})
	return out, err
}

// startSession issues a fresh token for Users[idx] and makes it current.
func (s *Store) startSession(idx int) models.User {
	now := s.now()
	expiry := now.Add(SessionTTL)
	user := &s.state.Users[idx]
	user.SessionToken = security.GenerateSecureToken()
	lastLogin := now
	user.LastLoginAt = &lastLogin

	current := *user
	s.state.CurrentUser = &current
	s.state.IsAuthenticated = true
	s.state.SessionExpiry = &expiry
	s.state.CurrentCompanyID = user.CompanyID
	return *user
}

func (s *Store) clearSession() {
	if u := s.state.CurrentUser; u != nil {
		if i := s.userIndex(u.ID); i >= 0 {
			s.state.Users[i].SessionToken = ""
		}
	}
	s.state.CurrentUser = nil
	s.state.IsAuthenticated = false
	s.state.SessionExpiry = nil
	s.state.CurrentCompanyID = ""
}

func (s *Store) sessionLocked() models.Session {
	u := s.state.CurrentUser
	sess := models.Session{
		Token:     u.SessionToken,
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CompanyID: u.CompanyID,
	}
	if s.state.SessionExpiry != nil {
		sess.ExpiresAt = *s.state.SessionExpiry
	}
	return sess
}

func (s *Store) findUserByUsername(username string) int {
	for i := range s.state.Users {
		if strings.EqualFold(s.state.Users[i].Username, username) {
			return i
		}
	}
	return -1
}

func (s *Store) findUserByEmail(email string) int {
	if email == "" {
		return -1
	}
	for i := range s.state.Users {
		if strings.EqualFold(s.state.Users[i].Email, email) {
			return i
		}
	}
	return -1
}

func (s *Store) findUserByGoogleID(id string) int {
	for i := range s.state.Users {
		if s.state.Users[i].GoogleID != "" && s.state.Users[i].GoogleID == id {
			return i
		}
	}
	return -1
}

func auditUser(u models.User) map[string]any {
	return map[string]any{
		"username":  u.Username,
		"role":      u.Role,
		"companyId": u.CompanyID,
		"email":     u.Email,
	}
}

func lockSnapshot(u models.User) map[string]any {
	return map[string]any{
		"isLocked":      u.IsLocked,
		"lockedUntil":   u.LockedUntil,
		"lockReason":    u.LockReason,
		"loginAttempts": u.LoginAttempts,
	}
}
