package adminusers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksence/frontend/shared/respond"
	"stocksence/infrastructure/argon"
	"stocksence/models"
	"stocksence/store"
)

func newAdminRouter(t *testing.T) (*store.Store, http.Handler) {
	t.Helper()
	st, err := store.New(context.Background(), store.NewMemoryRepository(), store.Config{
		Hasher: argon.NewHasher("pepper", argon.FastParams),
	})
	require.NoError(t, err)
	_, err = st.Register(context.Background(), "boss", "Secret1!", "")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/users", UsersQueryHandler(st))
	r.Post("/users/{id}/lock", LockUserCommandHandler(st))
	r.Get("/serials", SerialsQueryHandler(st))
	r.Post("/serials", AddSerialCommandHandler(st))
	r.Delete("/serials/{id}", RemoveSerialCommandHandler(st))
	r.Get("/audit", AuditQueryHandler(st))
	return st, r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUsersQueryHidesSecrets(t *testing.T) {
	_, h := newAdminRouter(t)

	rec := serve(h, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.NotContains(t, rec.Body.String(), "sessionToken")

	var rows []UserRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "boss", rows[0].Username)
	assert.Equal(t, models.RoleAdmin, rows[0].Role)
}

func TestLockSelfIsRejected(t *testing.T) {
	st, h := newAdminRouter(t)
	u, err := st.CurrentUser(context.Background())
	require.NoError(t, err)

	rec := serve(h, http.MethodPost, "/users/"+u.ID+"/lock", `{"reason":"test"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(h, http.MethodPost, "/users/nobody/lock", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSerialLifecycle(t *testing.T) {
	_, h := newAdminRouter(t)

	rec := serve(h, http.MethodPost, "/serials", `{"serialNumber":"123456"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var sn models.SerialNumber
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sn))

	rec = serve(h, http.MethodPost, "/serials", `{"serialNumber":"123456"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h, http.MethodPost, "/serials", `{"serialNumber":"12ab"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodPost, "/serials", `{"serial":"123456"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Messages)

	rec = serve(h, http.MethodDelete, "/serials/"+sn.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(h, http.MethodGet, "/serials", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var serials []models.SerialNumber
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &serials))
	require.Len(t, serials, 1, "only the registration serial remains")
	assert.True(t, serials[0].IsUsed)

	rec = serve(h, http.MethodGet, "/audit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []models.AuditLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	assert.NotEmpty(t, logs)
}
