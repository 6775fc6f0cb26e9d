package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"doorquote/internal/catalog"
	"doorquote/internal/config"
	"doorquote/internal/pricing"
	"doorquote/internal/quote"
	"doorquote/internal/storage"
	"doorquote/internal/submit"
	"doorquote/internal/wizard"
)

type memorySessions struct {
	states map[string]wizard.State
}

func newMemorySessions() *memorySessions {
	return &memorySessions{states: make(map[string]wizard.State)}
}

func (m *memorySessions) Get(ctx context.Context, sessionID string) (wizard.State, error) {
	if state, ok := m.states[sessionID]; ok {
		return state, nil
	}
	return wizard.NewState(), nil
}

func (m *memorySessions) Save(ctx context.Context, sessionID string, state wizard.State) error {
	m.states[sessionID] = state
	return nil
}

func (m *memorySessions) Clear(ctx context.Context, sessionID string) error {
	delete(m.states, sessionID)
	return nil
}

type fakeSubmitter struct {
	result submit.Result
	err    error
}

func (f *fakeSubmitter) Submit(ctx context.Context, state wizard.State) (submit.Result, error) {
	return f.result, f.err
}

type fakeAdmin struct {
	quotes []storage.Quote
}

func (f *fakeAdmin) ListQuotes(ctx context.Context, limit int) ([]storage.Quote, error) {
	return f.quotes, nil
}

func (f *fakeAdmin) GetQuoteByID(ctx context.Context, quoteID int64) (*storage.Quote, error) {
	for i := range f.quotes {
		if f.quotes[i].ID == quoteID {
			return &f.quotes[i], nil
		}
	}
	return nil, errors.New("quote not found")
}

func (f *fakeAdmin) UpdateQuoteStatus(ctx context.Context, quoteID int64, status string) error {
	for i := range f.quotes {
		if f.quotes[i].ID == quoteID {
			f.quotes[i].Status = status
			return nil
		}
	}
	return errors.New("quote not found")
}

func (f *fakeAdmin) GetQuoteStatistics(ctx context.Context) (*storage.QuoteStatistics, error) {
	return &storage.QuoteStatistics{TotalQuotes: len(f.quotes)}, nil
}

func (f *fakeAdmin) ExportAllQuotesToExcel(ctx context.Context, filename string) (string, error) {
	return "", errors.New("not supported in tests")
}

type testEnv struct {
	router    http.Handler
	sessions  *memorySessions
	submitter *fakeSubmitter
	admin     *fakeAdmin
}

func newTestEnv() *testEnv {
	registry := catalog.Default()
	env := &testEnv{
		sessions:  newMemorySessions(),
		submitter: &fakeSubmitter{result: submit.Result{LeadID: "lead-81", QuoteID: "204"}},
		admin:     &fakeAdmin{},
	}
	srv := New(
		config.HTTPConfig{AdminToken: "sekret"},
		registry,
		wizard.NewReducer(registry),
		pricing.DefaultRates(),
		env.sessions,
		env.submitter,
		env.admin,
		nil,
		zap.NewNop(),
	)
	env.router = srv.Router()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) action(t *testing.T, sessionID, actionType string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return e.do(t, "POST", "/api/sessions/"+sessionID+"/actions", map[string]any{
		"type":    actionType,
		"payload": json.RawMessage(raw),
	}, nil)
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestListProducts(t *testing.T) {
	env := newTestEnv()
	rec := env.do(t, "GET", "/api/products", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []catalog.ProductDefinition `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Products)
	assert.Equal(t, "sliding", resp.Products[0].Slug)
}

func TestPanelOptions(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, "GET", "/api/products/sliding/panel-options?width=120", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Options []panelOption `json:"options"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Options, 2)
	assert.Equal(t, 3, resp.Options[0].Count)
	assert.Equal(t, 38.67, resp.Options[0].PerPanelWidth)
	assert.NotEmpty(t, resp.Options[0].Layouts)
	assert.Equal(t, 4, resp.Options[1].Count)

	rec = env.do(t, "GET", "/api/products/sliding/panel-options?width=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "GET", "/api/products/nope/panel-options?width=120", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Products without panel support return an empty list, not an error.
	rec = env.do(t, "GET", "/api/products/pivot/panel-options?width=60", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Options)
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv()
	rec := env.do(t, "POST", "/api/sessions", nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		SessionID string       `json:"session_id"`
		State     wizard.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, wizard.StepContact, resp.State.Step)

	_, ok := env.sessions.states[resp.SessionID]
	assert.True(t, ok, "fresh state must be persisted")
}

func TestGetSessionReturnsFreshState(t *testing.T) {
	env := newTestEnv()
	rec := env.do(t, "GET", "/api/sessions/abc", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeSession(t, rec)
	assert.Equal(t, wizard.StepContact, resp.State.Step)
	assert.Equal(t, -1, resp.State.EditingIndex)
	assert.Zero(t, resp.Totals.GrandTotal)
}

func TestApplyActionFlow(t *testing.T) {
	env := newTestEnv()

	for _, field := range [][2]string{
		{"name", "Dana Whitfield"},
		{"email", "dana@example.com"},
		{"phone", "4155550134"},
		{"zip", "94110"},
	} {
		rec := env.action(t, "abc", "set_contact_field", map[string]string{"field": field[0], "value": field[1]})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.action(t, "abc", "set_step", map[string]int{"step": 2})
	resp := decodeSession(t, rec)
	require.Equal(t, wizard.StepProductSelection, resp.State.Step)

	rec = env.action(t, "abc", "select_product", map[string]string{"slug": "sliding"})
	resp = decodeSession(t, rec)
	require.Len(t, resp.State.Items, 1)
	assert.Equal(t, wizard.StepConfigure, resp.State.Step)
	assert.Equal(t, 4000.0, resp.Totals.Subtotal)

	// Unknown action types are acknowledged without changing state.
	rec = env.do(t, "POST", "/api/sessions/abc/actions", map[string]any{"type": "launch_rocket"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeSession(t, rec)
	assert.Len(t, resp.State.Items, 1)

	rec = env.do(t, "POST", "/api/sessions/abc/actions", "not json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func submitReadyState() wizard.State {
	st := wizard.NewState()
	st.Contact = quote.ContactInfo{Name: "Dana", Email: "dana@example.com", Phone: "4155550134", Zip: "94110"}
	item := quote.NewItem("sliding")
	item.Width = 120
	item.Height = 96
	item.ExteriorFinish = "matte-black"
	item.GlassType = "clear"
	item.HardwareFinish = "matte-black"
	item.PanelCount = 3
	item.PanelLayout = "OXO"
	st.Items = []quote.Item{item}
	st.Step = wizard.StepSummary
	return st
}

func TestSubmitSession(t *testing.T) {
	env := newTestEnv()
	env.sessions.states["abc"] = submitReadyState()

	rec := env.do(t, "POST", "/api/sessions/abc/submit", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeSession(t, rec)
	assert.Equal(t, wizard.StepConfirmation, resp.State.Step)
	assert.Equal(t, "lead-81", resp.State.LeadID)
	assert.Equal(t, "204", resp.State.QuoteID)
	assert.False(t, resp.State.Submitting)
	assert.Empty(t, resp.State.Error)
}

func TestSubmitSessionConflicts(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, "POST", "/api/sessions/empty/submit", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty quote cannot submit")

	st := submitReadyState()
	st.Submitting = true
	env.sessions.states["busy"] = st
	rec = env.do(t, "POST", "/api/sessions/busy/submit", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitSessionFailureKeepsSessionUsable(t *testing.T) {
	env := newTestEnv()
	env.submitter.err = errors.New("db down")
	env.sessions.states["abc"] = submitReadyState()

	rec := env.do(t, "POST", "/api/sessions/abc/submit", nil, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	saved := env.sessions.states["abc"]
	assert.False(t, saved.Submitting, "flag must clear so the customer can retry")
	assert.NotEmpty(t, saved.Error)
	assert.Equal(t, wizard.StepSummary, saved.Step)
}

func TestClearSession(t *testing.T) {
	env := newTestEnv()
	env.sessions.states["abc"] = submitReadyState()

	rec := env.do(t, "DELETE", "/api/sessions/abc", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, ok := env.sessions.states["abc"]
	assert.False(t, ok)
}

func TestAdminAuth(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, "GET", "/api/admin/quotes", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, "GET", "/api/admin/quotes", nil, map[string]string{"X-Admin-Token": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, "GET", "/api/admin/quotes", nil, map[string]string{"X-Admin-Token": "sekret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminQuoteEndpoints(t *testing.T) {
	env := newTestEnv()
	env.admin.quotes = []storage.Quote{
		{ID: 1, Name: "Dana", Status: "new", GrandTotal: 6858},
		{ID: 2, Name: "Lee", Status: "contacted", GrandTotal: 5400},
	}
	auth := map[string]string{"X-Admin-Token": "sekret"}

	rec := env.do(t, "GET", "/api/admin/quotes/2", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var got storage.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Lee", got.Name)

	rec = env.do(t, "GET", "/api/admin/quotes/99", nil, auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, "PATCH", "/api/admin/quotes/1/status", map[string]string{"status": "won"}, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "won", env.admin.quotes[0].Status)

	rec = env.do(t, "PATCH", "/api/admin/quotes/1/status", map[string]string{"status": "vaporized"}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "GET", "/api/admin/stats", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats storage.QuoteStatistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalQuotes)
}

type fakeLimiter struct {
	exceeded bool
	err      error
}

func (f *fakeLimiter) CheckRateLimit(ctx context.Context, sessionID string, action string, limit int64, window time.Duration) (bool, error) {
	return f.exceeded, f.err
}

func TestRateLimiting(t *testing.T) {
	registry := catalog.Default()
	sessions := newMemorySessions()
	limiter := &fakeLimiter{exceeded: true}
	srv := New(
		config.HTTPConfig{},
		registry,
		wizard.NewReducer(registry),
		pricing.DefaultRates(),
		sessions,
		&fakeSubmitter{},
		&fakeAdmin{},
		limiter,
		zap.NewNop(),
	)
	env := &testEnv{router: srv.Router(), sessions: sessions}

	rec := env.action(t, "abc", "reset", struct{}{})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A broken counter lets traffic through rather than failing requests.
	limiter.exceeded = false
	limiter.err = errors.New("redis down")
	rec = env.action(t, "abc", "reset", struct{}{})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLimitValidation(t *testing.T) {
	env := newTestEnv()
	auth := map[string]string{"X-Admin-Token": "sekret"}

	for _, limit := range []string{"0", "-5", "1000", "abc"} {
		rec := env.do(t, "GET", fmt.Sprintf("/api/admin/quotes?limit=%s", limit), nil, auth)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit %s", limit)
	}
}
