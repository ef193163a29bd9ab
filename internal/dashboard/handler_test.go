package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artconnect/internal/interaction"
	"artconnect/internal/reply"
	"artconnect/internal/review"
	"artconnect/internal/scoring"
	"artconnect/internal/storage"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*gin.Engine, *Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec, err := storage.NewFileRecorder(filepath.Join(t.TempDir(), "actions_log.csv"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })

	metrics := NewMetrics()
	svc := review.New(scoring.New(), reply.NewSelector(), rec, nil,
		review.WithClock(func() time.Time { return now }),
		review.WithDecisionHook(metrics.ObserveDecision))
	svc.Load([]interaction.Interaction{
		{ID: "INS-0001", Platform: interaction.PlatformInstagram, Author: "@CollectorJane1", FollowerCount: 9000,
			Text: "What is the price for a commission?", Timestamp: now.Add(-time.Hour)},
		{ID: "INS-0002", Platform: interaction.PlatformInstagram, Author: "@ArtLover2", FollowerCount: 40,
			Text: "Nice!", Timestamp: now.Add(-30 * time.Hour)},
		{ID: "TWI-0001", Platform: interaction.PlatformTwitter, Author: "@CuratorMike3", FollowerCount: 12000,
			Text: "I'm a gallery curator, would love to talk.", Timestamp: now.Add(-72 * time.Hour)},
	})
	metrics.ObserveBatch(svc.Scored())

	return NewRouter(NewHandler(svc, metrics, scoring.HighValueThreshold, nil)), metrics
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListOpportunities(t *testing.T) {
	r, _ := setup(t)

	w := do(t, r, http.MethodGet, "/api/v1/opportunities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Opportunities []review.Opportunity `json:"opportunities"`
		Total         int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Total)
	assert.GreaterOrEqual(t, resp.Opportunities[0].OpportunityScore, resp.Opportunities[1].OpportunityScore)
	assert.NotEmpty(t, resp.Opportunities[0].SuggestedReply)

	w = do(t, r, http.MethodGet, "/api/v1/opportunities?platform=twitter", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "TWI-0001", resp.Opportunities[0].ID)

	w = do(t, r, http.MethodGet, "/api/v1/opportunities?high_value=true", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)

	w = do(t, r, http.MethodGet, "/api/v1/opportunities?min_score=999", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/opportunities?platform=tiktok", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOpportunity(t *testing.T) {
	r, _ := setup(t)
	w := do(t, r, http.MethodGet, "/api/v1/opportunities/INS-0001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reply_category":"commission"`)

	w = do(t, r, http.MethodGet, "/api/v1/opportunities/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateDecision(t *testing.T) {
	r, metrics := setup(t)

	w := do(t, r, http.MethodPost, "/api/v1/decisions", DecisionRequest{InteractionID: "INS-0001", Action: "approve"})
	require.Equal(t, http.StatusCreated, w.Code)
	var e storage.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Equal(t, storage.ActionApprove, e.Action)
	assert.Contains(t, e.FinalReplyText, "@CollectorJane1")

	w = do(t, r, http.MethodPost, "/api/v1/decisions", DecisionRequest{InteractionID: "INS-0002", Action: "EDIT", FinalReplyText: "Thank you!"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPost, "/api/v1/decisions", DecisionRequest{InteractionID: "TWI-0001", Action: "reject"})
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Decisions.WithLabelValues("APPROVE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Decisions.WithLabelValues("EDIT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Decisions.WithLabelValues("REJECT")))

	w = do(t, r, http.MethodGet, "/api/v1/decisions?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Decisions []storage.Entry `json:"decisions"`
		Total     int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "TWI-0001", list.Decisions[1].InteractionID)
}

func TestCreateDecision_Errors(t *testing.T) {
	r, metrics := setup(t)
	cases := []struct {
		name string
		body any
		code int
	}{
		{"bad action", DecisionRequest{InteractionID: "INS-0001", Action: "maybe"}, http.StatusBadRequest},
		{"edit without text", DecisionRequest{InteractionID: "INS-0001", Action: "edit"}, http.StatusBadRequest},
		{"unknown id", DecisionRequest{InteractionID: "NOPE", Action: "reject"}, http.StatusNotFound},
		{"missing fields", map[string]string{}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/decisions", tc.body)
			assert.Equal(t, tc.code, w.Code)
		})
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Decisions.WithLabelValues("REJECT")))
}

func TestAnalyticsAndHealth(t *testing.T) {
	r, _ := setup(t)
	do(t, r, http.MethodPost, "/api/v1/decisions", DecisionRequest{InteractionID: "INS-0001", Action: "approve"})

	w := do(t, r, http.MethodGet, "/api/v1/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"approval_rate":1`)
	assert.Contains(t, w.Body.String(), `"total_interactions":3`)

	w = do(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"interactions":3`)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := setup(t)
	w := do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "artconnect_opportunity_score_count 3"), body)
	assert.Contains(t, body, "artconnect_high_value_interactions 2")
	assert.Contains(t, body, `artconnect_decisions_total{action="APPROVE"} 0`)
}
