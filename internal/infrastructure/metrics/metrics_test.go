package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := true
			for _, l := range m.GetLabel() {
				if want, ok := labels[l.GetName()]; ok && want != l.GetValue() {
					matched = false
					break
				}
			}
			if matched {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("login", "ok", 120*time.Millisecond)
	c.RecordRequest("login", "ok", 80*time.Millisecond)
	c.RecordRequest("Eleves/-/notes", "provider_error", 40*time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, reg, "ecoledirecte_provider_requests_total", map[string]string{"endpoint": "login", "outcome": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "ecoledirecte_provider_requests_total", map[string]string{"endpoint": "Eleves/-/notes", "outcome": "provider_error"}))
}

func TestRecordLogin(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin("ok")
	c.RecordLogin("challenge_unresolved")
	c.RecordLogin("ok")

	assert.Equal(t, 2.0, counterValue(t, reg, "ecoledirecte_logins_total", map[string]string{"outcome": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "ecoledirecte_logins_total", map[string]string{"outcome": "challenge_unresolved"}))
}

func TestRecordChallengeCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordChallengePrompt()
	c.RecordChallengeRejection()
	c.RecordChallengeRejection()

	assert.Equal(t, 1.0, counterValue(t, reg, "ecoledirecte_challenge_prompts_total", nil))
	assert.Equal(t, 2.0, counterValue(t, reg, "ecoledirecte_challenge_rejections_total", nil))
}

func TestHandlerServesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("login", "ok", 50*time.Millisecond)
	c.RecordEmptyResponse("homework")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ecoledirecte_provider_requests_total")
	assert.Contains(t, string(body), "ecoledirecte_empty_responses_total")
}
