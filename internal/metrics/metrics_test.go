package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersRecord(t *testing.T) {
	t.Parallel()

	m := New()
	m.SessionDecision("renew")
	m.SessionDecision("renew")
	m.AuthRejected("SESSION_EXPIRED")
	m.ObserveAuthz("edit", "deny", "item_grant")
	m.AuditDropped()

	require.Equal(t, 2.0, testutil.ToFloat64(m.sessionDecisions.WithLabelValues("renew")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.authRejections.WithLabelValues("SESSION_EXPIRED")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.authzDecisions.WithLabelValues("edit", "deny", "item_grant")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.auditDropped))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	require.NotPanics(t, func() {
		m.SessionDecision("pass")
		m.AuthRejected("UNAUTHORIZED")
		m.ObserveAuthz("view", "allow", "admin_override")
		m.AuditDropped()
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	m.Instrument(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}

func TestInstrumentUsesRoutePattern(t *testing.T) {
	t.Parallel()

	m := New()
	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/collections/{collectionID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/collections/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	require.Equal(t, 3.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/collections/{collectionID}", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "caseguard_http_requests_total"))
}
