package http

import (
	"net/http"
	"strconv"

	"outlay/internal/core"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in core.ExpenseInput
	if err := decodeBody(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	id, err := s.expenses.Create(r.Context(), userID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "message": "expense added ok"})
}

func (s *Server) handleUploadExpenses(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Expenses []core.ExpenseInput `json:"expenses"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	inserted, err := s.expenses.Ingest(r.Context(), userID(r), body.Expenses)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"inserted": inserted, "message": "upload complete"})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid expense id"))
		return
	}

	detail, err := s.expenses.Get(r.Context(), userID(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"expense": detail})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid expense id"))
		return
	}

	var patch core.ExpensePatch
	if err := decodeBody(r, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if err := s.expenses.Update(r.Context(), userID(r), id, patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, errorBody("expense updated ok"))
}

func (s *Server) handleDeleteExpenses(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []int64 `json:"ids"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if err := s.expenses.Delete(r.Context(), userID(r), body.IDs); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, errorBody("ok"))
}
