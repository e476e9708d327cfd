package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Login(LoginOK)
	m.Login(LoginInvalid)
	m.Login(LoginInvalid)
	m.GateDecision(GateRedirect)
	m.ObserveHTTP(http.MethodGet, "/api/staff", http.StatusOK, 3*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	require.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues(LoginOK)))
	require.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues(LoginInvalid)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.gateDecisions.WithLabelValues(GateRedirect)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/api/staff", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "unmatched", "404")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	require.NotPanics(t, func() {
		m.Login(LoginOK)
		m.GateDecision(GateAllow)
		m.ObserveHTTP(http.MethodPost, "/x", http.StatusCreated, time.Second)
	})
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = New(reg)

	require.Panics(t, func() { _ = New(reg) })
}
