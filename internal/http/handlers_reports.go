package http

import (
	"net/http"
	"strconv"

	"outlay/internal/core"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sort, err := parseSort(r, "date", core.SummarySortKeys)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	expenses, err := s.reports.Summary(r.Context(), userID(r), rng, sort)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (s *Server) handleDailyOverview(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	totals, err := s.reports.DailyOverview(r.Context(), userID(r), rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"expenses": totals})
}

func (s *Server) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseDimension(r.PathValue("kind"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rng, err := parseRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dimID, _ := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)

	totals, err := s.reports.MonthlyTrend(r.Context(), userID(r), kind, dimID, rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"expenses": totals})
}

func (s *Server) handleDimensionDetail(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseDimension(r.PathValue("kind"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rng, err := parseRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dimID, _ := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)

	expenses, err := s.reports.DimensionDetail(r.Context(), userID(r), kind, dimID, rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseDimension(r.PathValue("kind"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rng, err := parseRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sort, err := parseSort(r, "name", core.AggregateSortKeys)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	totals, err := s.reports.AggregateByDimension(r.Context(), userID(r), kind, rng, sort)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"expenses": totals})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	names, err := s.reports.DimensionLabels(r.Context(), userID(r), core.DimensionCategory)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": names})
}

func (s *Server) handleListStores(w http.ResponseWriter, r *http.Request) {
	names, err := s.reports.DimensionLabels(r.Context(), userID(r), core.DimensionStore)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stores": names})
}
