package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/pegelboard/pkg/param"
	"github.com/vango-dev/pegelboard/pkg/router"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return New(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))
}

func TestRouterObserver(t *testing.T) {
	m := newTestMetrics(t)
	r := router.New("#rhein?dir=up", router.WithObserver(m))
	r.RegisterParam("dir", param.OneOf("asc", "asc", "desc"), false)
	r.Configure([]string{"#rhein", "#elbe"})
	r.SetParam("dir", "desc")
	require.NoError(t, r.Navigate("#elbe"))
	r.HandleHashChange("#elbe?dir=asc")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.navigations.WithLabelValues("#elbe")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paramChanges.WithLabelValues("dir")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paramChanges.WithLabelValues("*")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paramRejections.WithLabelValues("dir")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.historyWrites.WithLabelValues("push")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.historyWrites.WithLabelValues("replace")))
}

func TestSessionsAndSources(t *testing.T) {
	m := newTestMetrics(t)
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeSessions))

	m.SourceFetched("http", 10*time.Millisecond, nil)
	m.SourceFetched("http", 10*time.Millisecond, errors.New("down"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sourceFetches.WithLabelValues("http", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sourceFetches.WithLabelValues("http", "error")))
}

func TestMiddleware(t *testing.T) {
	m := newTestMetrics(t)
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/stations/{water}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/api/stations/rhein", "/api/stations/elbe"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/stations/{water}", "418")))
}
