package models

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User is an account bound to exactly one company.
type User struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	PasswordHash  string     `json:"passwordHash"`
	Role          string     `json:"role"`
	CompanyID     string     `json:"companyId"`
	Email         string     `json:"email,omitempty"`
	GoogleID      string     `json:"googleId,omitempty"`
	Picture       string     `json:"picture,omitempty"`
	IsActive      bool       `json:"isActive"`
	IsLocked      bool       `json:"isLocked"`
	LockedUntil   *time.Time `json:"lockedUntil,omitempty"`
	LockReason    string     `json:"lockReason,omitempty"`
	LoginAttempts int        `json:"loginAttempts"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	SessionToken  string     `json:"sessionToken,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// SerialNumber is a per-company activation code.
type SerialNumber struct {
	ID           string     `json:"id"`
	SerialNumber string     `json:"serialNumber"`
	IsUsed       bool       `json:"isUsed"`
	CompanyID    string     `json:"companyId"`
	UsedBy       string     `json:"usedBy,omitempty"`
	UsedAt       *time.Time `json:"usedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Product is a catalog item. SerialNumber is always system generated.
type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Quantity       int64     `json:"quantity"`
	Price          float64   `json:"price"`
	Category       string    `json:"category"`
	SerialNumber   string    `json:"serialNumber"`
	CompanyID      string    `json:"companyId"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	LastModifiedBy string    `json:"lastModifiedBy,omitempty"`
	IsActive       bool      `json:"isActive"`
}

// Sale records units of one product sold in one transaction.
type Sale struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"productId"`
	ProductName      string    `json:"productName"`
	Quantity         int64     `json:"quantity"`
	Price            float64   `json:"price"`
	TotalAmount      float64   `json:"totalAmount"`
	SaleDate         time.Time `json:"saleDate"`
	BarcodeScan      string    `json:"barcodeScan,omitempty"`
	SoldBy           string    `json:"soldBy"`
	CompanyID        string    `json:"companyId"`
	IsVerified       bool      `json:"isVerified"`
	VerificationCode string    `json:"verificationCode"`
}

// DeletedSale is a sale sitting in the trash.
type DeletedSale struct {
	Sale
	DeletedAt      time.Time `json:"deletedAt"`
	DeletedBy      string    `json:"deletedBy,omitempty"`
	DeletionReason string    `json:"deletionReason,omitempty"`
}

// AuditLog captures immutable change history for key operations.
type AuditLog struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	CompanyID  string          `json:"companyId,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	OldData    json.RawMessage `json:"oldData,omitempty"`
	NewData    json.RawMessage `json:"newData,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	UserAgent  string          `json:"userAgent"`
}

// Session is the authenticated context handed to transports.
type Session struct {
	Token     string
	UserID    string
	Username  string
	Role      string
	CompanyID string
	ExpiresAt time.Time
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Notification types.
const (
	NotificationSuccess = "success"
	NotificationError   = "error"
	NotificationWarning = "warning"
)

// Notification is a fire-and-forget message for the UI.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// State is the whitelisted subset of store state written to the durable slot.
type State struct {
	Products            []Product      `json:"products"`
	Sales               []Sale         `json:"sales"`
	DeletedSales        []DeletedSale  `json:"deletedSales"`
	Theme               string         `json:"theme"`
	Language            string         `json:"language"`
	CurrentCurrency     string         `json:"currentCurrency"`
	Users               []User         `json:"users"`
	SerialNumbers       []SerialNumber `json:"serialNumbers"`
	CurrentUser         *User          `json:"currentUser"`
	IsAuthenticated     bool           `json:"isAuthenticated"`
	AutoLoginWithGoogle bool           `json:"autoLoginWithGoogle"`
	CurrentCompanyID    string         `json:"currentCompanyId"`
	SessionExpiry       *time.Time     `json:"sessionExpiry"`
	AuditLogs           []AuditLog     `json:"auditLogs"`
}

// NewState returns the state of a fresh installation.
func NewState() State {
	return State{
		Products:        []Product{},
		Sales:           []Sale{},
		DeletedSales:    []DeletedSale{},
		Theme:           "light",
		Language:        "en",
		CurrentCurrency: "EGP",
		Users:           []User{},
		SerialNumbers:   []SerialNumber{},
		AuditLogs:       []AuditLog{},
	}
}

// Clone copies every slice so the result can be mutated independently.
func (s State) Clone() State {
	out := s
	out.Products = slices.Clone(s.Products)
	out.Sales = slices.Clone(s.Sales)
	out.DeletedSales = slices.Clone(s.DeletedSales)
	out.Users = slices.Clone(s.Users)
	out.SerialNumbers = slices.Clone(s.SerialNumbers)
	out.AuditLogs = slices.Clone(s.AuditLogs)
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		out.CurrentUser = &u
	}
	if s.SessionExpiry != nil {
		t := *s.SessionExpiry
		out.SessionExpiry = &t
	}
	return out
}

// StateSlot is one named durable copy of the serialized State.
type StateSlot struct {
	bun.BaseModel `bun:"table:state_slots,alias:ss"`

	Name      string    `bun:"name,pk"`
	Payload   string    `bun:"payload,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// LockActive reports whether the account is locked at now. A lock without an
// expiry is an administrative lock and never lapses on its own.
func (u User) LockActive(now time.Time) bool {
	if !u.IsLocked {
		return false
	}
	return u.LockedUntil == nil || now.Before(*u.LockedUntil)
}
