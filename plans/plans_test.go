package plans_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/careplanhq/portal-client/apiclient"
	"github.com/careplanhq/portal-client/internal/utils"
	"github.com/careplanhq/portal-client/plans"
	"github.com/careplanhq/portal-client/session"
	"github.com/careplanhq/portal-client/session/storagefakes"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	baseURL string
}

func (c testConfig) GetAPIBaseURL() string         { return c.baseURL }
func (c testConfig) GetHTTPTimeout() time.Duration { return 5 * time.Second }

type plansFixture struct {
	service *plans.Service
	store   *session.Store
}

func setupPlans(t *testing.T, handler http.Handler) *plansFixture {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	// Seed the durable record so the store rehydrates authenticated without
	// kicking off a profile fetch against the test handler.
	storage := storagefakes.NewFakeStorage()
	storage.Seed(session.PersistedState{State: session.TokenRecord{Token: utils.Ptr("tok-1")}})
	store := session.NewStore(session.WithStorage(storage))
	api, err := apiclient.New(testConfig{baseURL: srv.URL}, store)
	require.NoError(t, err)
	store.SetProfileFetcher(api)

	service, err := plans.NewService(api)
	require.NoError(t, err)
	return &plansFixture{service: service, store: store}
}

func TestListDecodesPlans(t *testing.T) {
	planID := uuid.New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/plans", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"id":          planID.String(),
			"client_id":   7,
			"provider_id": 3,
			"title":       "Anxiety management",
			"goals":       []string{"weekly check-in"},
			"session_fee": "85.50",
			"status":      "active",
		}})
	})

	f := setupPlans(t, handler)

	got, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, planID, got[0].ID)
	require.Equal(t, plans.StatusActive, got[0].Status)
	require.True(t, got[0].SessionFee.Equal(decimal.RequireFromString("85.50")))
}

func TestCreateValidatesBeforeDispatch(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	f := setupPlans(t, handler)

	_, err := f.service.Create(context.Background(), plans.CreateRequest{Title: "x"})
	require.Error(t, err)
	require.False(t, called)

	_, err = f.service.Create(context.Background(), plans.CreateRequest{
		ClientID:   7,
		Title:      "CBT course",
		SessionFee: decimal.NewFromInt(-1),
	})
	require.Error(t, err)
	require.False(t, called)
}

func TestCreateRoundTrip(t *testing.T) {
	planID := uuid.New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req plans.CreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, int64(7), req.ClientID)

		_ = json.NewEncoder(w).Encode(plans.Plan{
			ID:         planID,
			ClientID:   req.ClientID,
			Title:      req.Title,
			SessionFee: req.SessionFee,
			Status:     plans.StatusDraft,
		})
	})

	f := setupPlans(t, handler)

	created, err := f.service.Create(context.Background(), plans.CreateRequest{
		ClientID:   7,
		Title:      "CBT course",
		SessionFee: decimal.RequireFromString("85.50"),
	})
	require.NoError(t, err)
	require.Equal(t, planID, created.ID)
	require.True(t, created.SessionFee.Equal(decimal.RequireFromString("85.50")))
}

func TestUnauthorizedListEvictsTheSession(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	f := setupPlans(t, handler)

	_, err := f.service.List(context.Background())
	require.Error(t, err)
	require.Equal(t, session.StateAnonymous, f.store.Snapshot().State())
}

func TestStatusFromString(t *testing.T) {
	require.Equal(t, plans.StatusActive, plans.StatusFromString("active"))
	require.Equal(t, plans.StatusDraft, plans.StatusFromString("anything-else"))
}
