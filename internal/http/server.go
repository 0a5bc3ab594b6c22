// Package http exposes the expense and report operations over a JSON API.
// Authentication is an upstream concern: the server trusts the X-User-ID
// header set by the authenticating proxy and rejects requests without it.
package http

import (
	"net/http"

	"outlay/internal/log"
	"outlay/internal/services"
)

type Server struct {
	http.Server

	expenses *services.ExpenseService
	reports  *services.ReportService
	logger   *log.Logger
}

func NewServer(addr string, expenses *services.ExpenseService, reports *services.ReportService, logger *log.Logger) *Server {
	s := &Server{
		expenses: expenses,
		reports:  reports,
		logger:   logger.WithComponent(log.ComponentHTTP),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/expenses", s.requireUser(s.handleCreateExpense))
	mux.HandleFunc("POST /api/expenses/upload", s.requireUser(s.handleUploadExpenses))
	mux.HandleFunc("POST /api/expenses/delete", s.requireUser(s.handleDeleteExpenses))
	mux.HandleFunc("GET /api/expenses/{id}", s.requireUser(s.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.requireUser(s.handleUpdateExpense))

	mux.HandleFunc("GET /api/expenses/summary", s.requireUser(s.handleSummary))
	mux.HandleFunc("GET /api/expenses/summary/{kind}", s.requireUser(s.handleAggregate))
	mux.HandleFunc("GET /api/expenses/overview", s.requireUser(s.handleDailyOverview))
	mux.HandleFunc("GET /api/expenses/overview/{kind}/trends", s.requireUser(s.handleMonthlyTrend))
	mux.HandleFunc("GET /api/expenses/overview/{kind}/details", s.requireUser(s.handleDimensionDetail))
	mux.HandleFunc("GET /api/expenses/categories", s.requireUser(s.handleListCategories))
	mux.HandleFunc("GET /api/expenses/stores", s.requireUser(s.handleListStores))

	s.Addr = addr
	s.Handler = s.requestLogger(mux)

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
