package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casino-bot/internal/model"
	"casino-bot/internal/repository"
	"casino-bot/internal/service"
)

type fakeOps struct {
	pingErr  error
	gotAge   time.Duration
	gotLimit int
}

func (f *fakeOps) Ping(context.Context) error { return f.pingErr }

func (f *fakeOps) StaleSessions(_ context.Context, olderThan time.Duration, limit int) ([]service.StaleSession, error) {
	f.gotAge, f.gotLimit = olderThan, limit
	return []service.StaleSession{{OwnerID: 7, GameKind: model.KindMines, Stake: 100, Idle: "2h0m0s"}}, nil
}

func (f *fakeOps) Pools(context.Context) ([]*model.Pool, error) {
	return []*model.Pool{{Name: model.PoolJackpot, Amount: 900}}, nil
}

func (f *fakeOps) Audit(_ context.Context, ownerID int64, _ int) (*service.Audit, error) {
	if ownerID != 7 {
		return nil, fmt.Errorf("failed to get account: %w", repository.ErrAccountNotFound)
	}
	return &service.Audit{Account: &model.Account{OwnerID: 7, Balance: 1000}, LedgerSum: 1000, Consistent: true}, nil
}

func do(t *testing.T, h http.Handler, path string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestHealthz(t *testing.T) {
	ops := &fakeOps{}
	r := NewRouter(ops, "secret", io.Discard)

	rec, body := do(t, r, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])

	ops.pingErr = errors.New("down")
	rec, body = do(t, r, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, body["ok"])
}

func TestAdminKeyRequired(t *testing.T) {
	r := NewRouter(&fakeOps{}, "secret", io.Discard)

	rec, body := do(t, r, "/api/pools", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", body["error"])

	rec, _ = do(t, r, "/api/pools", map[string]string{"X-Admin-Key": "secret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, r, "/api/pools", map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, r, "/api/pools", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaleSessions(t *testing.T) {
	ops := &fakeOps{}
	r := NewRouter(ops, "", io.Discard)

	rec, body := do(t, r, "/api/sessions/stale?older_than=30m&limit=1000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30*time.Minute, ops.gotAge)
	assert.Equal(t, 500, ops.gotLimit)
	assert.Len(t, body["items"], 1)

	_, _ = do(t, r, "/api/sessions/stale", nil)
	assert.Equal(t, DefaultStaleAge, ops.gotAge)
	assert.Equal(t, 50, ops.gotLimit)

	rec, body = do(t, r, "/api/sessions/stale?older_than=soon", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid older_than", body["error"])
}

func TestLedgerAudit(t *testing.T) {
	r := NewRouter(&fakeOps{}, "", io.Discard)

	rec, body := do(t, r, "/api/ledger/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["consistent"])
	assert.EqualValues(t, 1000, body["ledger_sum"])

	rec, _ = do(t, r, "/api/ledger/8", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, r, "/api/ledger/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
