package audit

import (
	"encoding/json"

	"stocksence/infrastructure/clock"
	"stocksence/infrastructure/idgen"
	"stocksence/models"
)

// MaxEntries caps the retained audit history; the oldest entries are evicted first.
const MaxEntries = 1000

// SystemActor is recorded when no user is signed in.
const SystemActor = "system"

// Entry describes one state change to record.
type Entry struct {
	UserID     string
	CompanyID  string
	Action     string
	EntityType string
	EntityID   string
	Before     any
	After      any
	UserAgent  string
}

// Service appends audit records to the state-held log.
type Service struct {
	clock clock.Clock
	ids   idgen.Generator
}

func NewService(c clock.Clock, ids idgen.Generator) *Service {
	return &Service{clock: c, ids: ids}
}

// Write returns logs with e appended, trimmed to MaxEntries.
func (s *Service) Write(logs []models.AuditLog, e Entry) ([]models.AuditLog, error) {
	beforeJSON, err := marshal(e.Before)
	if err != nil {
		return logs, err
	}
	afterJSON, err := marshal(e.After)
	if err != nil {
		return logs, err
	}
	userID := e.UserID
	if userID == "" {
		userID = SystemActor
	}
	log := models.AuditLog{
		ID:         s.ids.NewID(),
		UserID:     userID,
		CompanyID:  e.CompanyID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		OldData:    beforeJSON,
		NewData:    afterJSON,
		Timestamp:  s.clock.Now(),
		UserAgent:  e.UserAgent,
	}
	logs = append(logs, log)
	if over := len(logs) - MaxEntries; over > 0 {
		logs = append(logs[:0:0], logs[over:]...)
	}
	return logs, nil
}

// ForCompany returns the entries written for companyID, newest first. Entries
// without a company are never shown to a tenant.
func ForCompany(logs []models.AuditLog, companyID string) []models.AuditLog {
	out := make([]models.AuditLog, 0)
	if companyID == "" {
		return out
	}
	for i := len(logs) - 1; i >= 0; i-- {
		l := logs[i]
		if l.CompanyID == companyID {
			out = append(out, l)
		}
	}
	return out
}

func marshal(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
