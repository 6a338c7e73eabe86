package server

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/pegelboard/pkg/metrics"
	"github.com/vango-dev/pegelboard/pkg/stations"
)

const fixture = `[
  {"uuid":"u-bonn","number":"2710080","shortname":"BONN",
   "timeseries":[{"shortname":"W","unit":"cm","currentMeasurement":{"timestamp":"2026-10-19T14:00:00+02:00","value":312},
     "characteristicValues":[{"shortname":"HHW","unit":"cm","value":1352},{"shortname":"NNW","unit":"cm","value":67}]}]},
  {"uuid":"u-koeln","number":"2730010","shortname":"KÖLN",
   "timeseries":[{"shortname":"W","unit":"cm","currentMeasurement":{"timestamp":"2026-10-19T13:45:00+02:00","value":285},
     "characteristicValues":[]}]},
  {"uuid":"u-andernach","number":"2630000","shortname":"ANDERNACH",
   "timeseries":[{"shortname":"W","unit":"cm","currentMeasurement":{"timestamp":"2026-10-19T13:30:00+02:00","value":401},
     "characteristicValues":[]}]}
]`

// fixtureSource serves the fixture for every water and records requests.
type fixtureSource struct {
	mu     sync.Mutex
	all    []stations.Station
	err    error
	waters []string
}

func newFixtureSource(t *testing.T) *fixtureSource {
	t.Helper()
	all, err := stations.Decode([]byte(fixture))
	require.NoError(t, err)
	return &fixtureSource{all: all}
}

func (f *fixtureSource) Fetch(_ context.Context, water string, ids []string) ([]stations.Station, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waters = append(f.waters, water)
	if f.err != nil {
		return nil, f.err
	}
	if len(ids) == 0 {
		return f.all, nil
	}
	var out []stations.Station
	for _, st := range f.all {
		for _, id := range ids {
			if st.Matches(id) {
				out = append(out, st)
			}
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, src stations.Source) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	srv := New(Options{
		Source:   src,
		Paths:    []string{"#RHEIN", "#ELBE"},
		Amounts:  []int{25, 50},
		Metrics:  metrics.New(metrics.WithRegistry(reg)),
		Gatherer: reg,
	})
	return srv, reg
}
