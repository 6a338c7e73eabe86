package server

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/pegelboard/internal/errors"
	"github.com/vango-dev/pegelboard/pkg/stations"
	"github.com/vango-dev/pegelboard/pkg/widget"
)

// handleStations serves one page as JSON. The query parameters mirror the
// hash parameters: offset, amount, sort, dir and filter.
func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	water, ok := s.water(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	query := stations.Query{
		Sort: stations.Sort{Prop: q.Get(widget.ParamSort), Dir: q.Get(widget.ParamDir)},
	}
	if query.Sort.Dir == "" {
		query.Sort.Dir = stations.Asc
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.Newf(errors.CategoryProtocol, "invalid offset %q", v))
			return
		}
		query.Offset = n
	}
	query.Amount = s.opts.Amounts[0]
	if v := q.Get(widget.ParamAmount); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !slices.Contains(s.opts.Amounts, n) {
			writeError(w, http.StatusBadRequest, errors.Newf(errors.CategoryProtocol, "invalid amount %q", v))
			return
		}
		query.Amount = n
	}
	if v := q.Get(widget.ParamFilter); v != "" {
		query.Filters = strings.Split(v, " ")
	}

	page, err := stations.DataSource(s.opts.Source, water)(r.Context(), query)
	if err != nil {
		writeSourceError(w, err)
		return
	}
	for i := range page.Rows {
		page.Rows[i].Raw = nil
	}
	writeJSON(w, http.StatusOK, page)
}

// handleStationDetails serves the raw station document, or the values the
// JSONPath in ?path= selects from it.
func (s *Server) handleStationDetails(w http.ResponseWriter, r *http.Request) {
	water, ok := s.water(w, r)
	if !ok {
		return
	}
	st, err := stations.Find(r.Context(), s.opts.Source, water, chi.URLParam(r, "id"))
	if err != nil {
		writeSourceError(w, err)
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(st.Raw)
		return
	}
	matches, err := stations.Select(st, path)
	if err != nil {
		writeSourceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// water resolves the {water} URL parameter against the configured paths.
func (s *Server) water(w http.ResponseWriter, r *http.Request) (string, bool) {
	water := chi.URLParam(r, "water")
	if !slices.Contains(s.opts.Paths, "#"+water) {
		writeError(w, http.StatusNotFound, errors.Newf(errors.CategoryProtocol, "unknown water %q", water))
		return "", false
	}
	return water, true
}

func writeSourceError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch errors.CodeOf(err) {
	case "P142":
		status = http.StatusNotFound
	case "P143":
		status = http.StatusBadRequest
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorMessage(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
