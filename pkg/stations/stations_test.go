package stations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/pegelboard/internal/errors"
)

const rheinJSON = `[
  {"uuid":"u-bonn","number":"2710080","shortname":"BONN","longname":"BONN","water":{"shortname":"RHEIN","longname":"RHEIN"},
   "timeseries":[{"shortname":"W","unit":"cm","currentMeasurement":{"timestamp":"2026-10-19T14:00:00+02:00","value":312},
     "characteristicValues":[{"shortname":"HHW","unit":"cm","value":1352},{"shortname":"NNW","unit":"cm","value":67}]}]},
  {"uuid":"u-koeln","number":"2730010","shortname":"KÖLN","longname":"KÖLN","water":{"shortname":"RHEIN","longname":"RHEIN"},
   "timeseries":[{"shortname":"W","unit":"cm","currentMeasurement":{"timestamp":"2026-10-19T13:45:00+02:00","value":285.5},
     "characteristicValues":[{"shortname":"HHW","unit":"cm","value":1069}]}]},
  {"uuid":"u-andernach","number":"2630000","shortname":"andernach","longname":"ANDERNACH","water":{"shortname":"RHEIN","longname":"RHEIN"},
   "timeseries":[]}
]`

type staticSource struct {
	stations []Station
	err      error
	calls    atomic.Int32
	lastIDs  []string
}

func (s *staticSource) Fetch(_ context.Context, _ string, ids []string) ([]Station, error) {
	s.calls.Add(1)
	s.lastIDs = ids
	if s.err != nil {
		return nil, s.err
	}
	return filterIDs(s.stations, ids), nil
}

func mustDecode(t *testing.T) []Station {
	t.Helper()
	out, err := Decode([]byte(rheinJSON))
	require.NoError(t, err)
	return out
}

func TestToRow(t *testing.T) {
	all := mustDecode(t)
	require.Len(t, all, 3)

	bonn := all[0].ToRow()
	assert.Equal(t, "BONN", bonn.Name)
	assert.Equal(t, int64(1792411200000), bonn.Timestamp)
	assert.Equal(t, "312 cm", bonn.CurrentLevel)
	assert.Equal(t, "1352 cm", bonn.HighestLevel)
	assert.Equal(t, "67 cm", bonn.LowestLevel)
	assert.NotEmpty(t, bonn.Raw)

	koeln := all[1].ToRow()
	assert.Equal(t, "285.5 cm", koeln.CurrentLevel)
	assert.Empty(t, koeln.LowestLevel)

	andernach := all[2].ToRow()
	assert.Equal(t, "andernach", andernach.Name)
	assert.Zero(t, andernach.Timestamp)
	assert.Empty(t, andernach.CurrentLevel)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}

func TestStationMatches(t *testing.T) {
	st := mustDecode(t)[0]
	assert.True(t, st.Matches("u-bonn"))
	assert.True(t, st.Matches("2710080"))
	assert.True(t, st.Matches("bonn"))
	assert.False(t, st.Matches(""))
	assert.False(t, st.Matches("KÖLN"))
}

func rows() []Row {
	return []Row{
		{Name: "BONN", Timestamp: 3, CurrentLevel: "312 cm"},
		{Name: "köln", Timestamp: 1, CurrentLevel: "285 cm"},
		{Name: "Andernach", Timestamp: 2, CurrentLevel: ""},
	}
}

func names(rs []Row) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters []string
		want    []string
	}{
		{"no filters", nil, []string{"BONN", "köln", "Andernach"}},
		{"blank ignored", []string{"", "  "}, []string{"BONN", "köln", "Andernach"}},
		{"regexp some field", []string{"^B"}, []string{"BONN"}},
		{"regexp on number field", []string{"^2$"}, []string{"Andernach"}},
		{"negated regexp", []string{"!cm"}, []string{"Andernach"}},
		{"less than", []string{"currentLevel:<300"}, []string{"köln"}},
		{"greater than", []string{"currentLevel:>300"}, []string{"BONN"}},
		{"non numeric never compares", []string{"name:>0"}, []string{}},
		{"overflowing limit above every level", []string{"currentLevel:>99999999999999999999"}, []string{}},
		{"overflowing limit below bound keeps levels", []string{"currentLevel:<99999999999999999999"}, []string{"BONN", "köln"}},
		{"combined", []string{"cm", "currentLevel:>100", "!BONN"}, []string{"köln"}},
		{"invalid regexp matches nothing", []string{"(("}, []string{}},
		{"negated invalid regexp keeps all", []string{"!(("}, []string{"BONN", "köln", "Andernach"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(ApplyFilters(rows(), tt.filters)))
		})
	}
}

func TestApplyFiltersDoesNotModifyInput(t *testing.T) {
	in := rows()
	ApplyFilters(in, []string{"^B"})
	assert.Equal(t, []string{"BONN", "köln", "Andernach"}, names(in))
}

func TestSortByProp(t *testing.T) {
	tests := []struct {
		name string
		sort Sort
		want []string
	}{
		{"name asc ignores case", Sort{Prop: "name", Dir: Asc}, []string{"Andernach", "BONN", "köln"}},
		{"name desc", Sort{Prop: "name", Dir: Desc}, []string{"köln", "BONN", "Andernach"}},
		{"empty prop uses first column", Sort{Dir: Asc}, []string{"Andernach", "BONN", "köln"}},
		{"numeric timestamp", Sort{Prop: "timestamp", Dir: Asc}, []string{"köln", "Andernach", "BONN"}},
		{"numeric timestamp desc", Sort{Prop: "timestamp", Dir: Desc}, []string{"BONN", "Andernach", "köln"}},
		{"unknown prop keeps order", Sort{Prop: "nope", Dir: Asc}, []string{"BONN", "köln", "Andernach"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(SortByProp(rows(), tt.sort)))
		})
	}
}

func TestSortByPropIsStable(t *testing.T) {
	in := []Row{
		{Name: "b", HighestLevel: "x"},
		{Name: "a", HighestLevel: "x"},
		{Name: "c", HighestLevel: "w"},
	}
	got := SortByProp(in, Sort{Prop: "highestLevel", Dir: Asc})
	assert.Equal(t, []string{"c", "b", "a"}, names(got))
}

func TestSplitFilters(t *testing.T) {
	remote, local := SplitFilters([]string{"station:u-bonn", "<300", ">5", "name:x", "BONN", "station:2730010"})
	assert.Equal(t, []string{"u-bonn", "2730010"}, remote)
	assert.Equal(t, []string{"currentLevel:<300", "currentLevel:>5", "BONN"}, local)
}

func TestDataSource(t *testing.T) {
	src := &staticSource{stations: mustDecode(t)}
	ctx := context.Background()

	page, err := DataSource(src, "RHEIN")(ctx, Query{Amount: 2, Sort: Sort{Prop: "name", Dir: Asc}})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, 0, page.Offset)
	assert.Equal(t, 2, page.Amount)
	assert.Equal(t, []string{"andernach", "BONN"}, names(page.Rows))

	page, err = DataSource(src, "RHEIN")(ctx, Query{Offset: 2, Amount: 2, Sort: Sort{Prop: "name", Dir: Asc}})
	require.NoError(t, err)
	assert.Equal(t, []string{"KÖLN"}, names(page.Rows))

	page, err = DataSource(src, "RHEIN")(ctx, Query{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Equal(t, DefaultAmount, page.Amount)
	assert.Equal(t, 1, page.Pages)
}

func TestDataSourceFilters(t *testing.T) {
	src := &staticSource{stations: mustDecode(t)}

	page, err := DataSource(src, "RHEIN")(context.Background(), Query{Filters: []string{"<300"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"KÖLN"}, names(page.Rows))

	page, err = DataSource(src, "RHEIN")(context.Background(), Query{Filters: []string{"station:u-bonn"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"u-bonn"}, src.lastIDs)
	assert.Equal(t, []string{"BONN"}, names(page.Rows))
}

func TestDataSourceError(t *testing.T) {
	src := &staticSource{err: errors.New("P140")}
	_, err := DataSource(src, "RHEIN")(context.Background(), Query{})
	assert.Equal(t, "P140", errors.CodeOf(err))
}

type recordingObserver struct {
	sources []string
	errs    []error
}

func (o *recordingObserver) SourceFetched(source string, _ time.Duration, err error) {
	o.sources = append(o.sources, source)
	o.errs = append(o.errs, err)
}

func TestHTTPSource(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("ids")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(rheinJSON))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	src := NewHTTPSource(srv.URL+"/waters/{WATER}/stations.json?ids={IDS}", WithObserver(obs), WithHTTPClient(srv.Client()))

	out, err := src.Fetch(context.Background(), "RHEIN", []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, "/waters/RHEIN/stations.json", gotPath)
	assert.Equal(t, "a,b", gotQuery)
	assert.Equal(t, []string{"http"}, obs.sources)
	assert.NoError(t, obs.errs[0])
}

func TestHTTPSourceErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusBadGateway)
		}))
		defer srv.Close()

		obs := &recordingObserver{}
		_, err := NewHTTPSource(srv.URL, WithObserver(obs)).Fetch(context.Background(), "RHEIN", nil)
		assert.Equal(t, "P140", errors.CodeOf(err))
		assert.Error(t, obs.errs[0])
	})

	t.Run("malformed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		_, err := NewHTTPSource(srv.URL).Fetch(context.Background(), "RHEIN", nil)
		assert.Equal(t, "P141", errors.CodeOf(err))
	})
}

func TestCachedSource(t *testing.T) {
	src := &staticSource{stations: mustDecode(t)}
	cached := NewCachedSource(src, time.Minute)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := cached.Fetch(ctx, "RHEIN", nil)
	require.NoError(t, err)
	_, err = cached.Fetch(ctx, "RHEIN", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())

	_, err = cached.Fetch(ctx, "RHEIN", []string{"u-bonn"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, 2, cached.Len())

	now = now.Add(2 * time.Minute)
	_, err = cached.Fetch(ctx, "RHEIN", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), src.calls.Load())

	cached.Invalidate()
	assert.Equal(t, 0, cached.Len())
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	src := &staticSource{err: errors.New("P140")}
	cached := NewCachedSource(src, 0)

	_, err := cached.Fetch(context.Background(), "RHEIN", nil)
	assert.Error(t, err)
	_, err = cached.Fetch(context.Background(), "RHEIN", nil)
	assert.Error(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, 0, cached.Len())
}

func TestFindAndSelect(t *testing.T) {
	src := &staticSource{stations: mustDecode(t)}
	ctx := context.Background()

	st, err := Find(ctx, src, "RHEIN", "2730010")
	require.NoError(t, err)
	assert.Equal(t, "KÖLN", st.Shortname)

	_, err = Find(ctx, src, "RHEIN", "nowhere")
	assert.Equal(t, "P142", errors.CodeOf(err))

	all, err := Select(st, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	doc, ok := all[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u-koeln", doc["uuid"])

	units, err := Select(st, "$.timeseries[*].unit")
	require.NoError(t, err)
	assert.Equal(t, []any{"cm"}, units)

	_, err = Select(st, "$[[")
	assert.Equal(t, "P143", errors.CodeOf(err))
}
