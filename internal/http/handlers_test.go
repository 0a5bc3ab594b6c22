package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outlay/internal/log"
	"outlay/internal/services"
	"outlay/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	expenses := services.NewExpenseService(repo, 5000, logger)
	reports := services.NewReportService(repo, logger)
	return NewServer(":0", expenses, reports, logger)
}

// do runs a request through the full handler chain as the given user.
// userID 0 omits the identity header.
func do(t *testing.T, srv *Server, method, target string, asUser int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if asUser > 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(asUser, 10))
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthz_NoAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireUser(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"non-numeric", "alice"},
		{"zero", "0"},
		{"negative", "-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/expenses/summary", nil)
			if tt.header != "" {
				req.Header.Set("X-User-ID", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// Create.
	rec := do(t, srv, http.MethodPost, "/api/expenses", 1, map[string]string{
		"amount": "12.50", "date": "2024-01-05", "store": "Costco", "category": "Groceries",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &created)
	require.NotZero(t, created.ID)

	// Read back.
	rec = do(t, srv, http.MethodGet, "/api/expenses/"+strconv.FormatInt(created.ID, 10), 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Expense struct {
			Amount   json.Number `json:"amount"`
			Date     string      `json:"date"`
			Store    string      `json:"store"`
			Category string      `json:"category"`
		} `json:"expense"`
	}
	decode(t, rec, &got)
	assert.Equal(t, "12.50", got.Expense.Amount.String())
	assert.Equal(t, "2024-01-05", got.Expense.Date)
	assert.Equal(t, "Costco", got.Expense.Store)
	assert.Equal(t, "Groceries", got.Expense.Category)

	// Update the category, then delete.
	rec = do(t, srv, http.MethodPut, "/api/expenses/"+strconv.FormatInt(created.ID, 10), 1, map[string]string{
		"category": "Food",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/expenses/delete", 1, map[string]any{
		"ids": []int64{created.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/expenses/"+strconv.FormatInt(created.ID, 10), 1, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetExpense_ForeignOwnerLooksMissing(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/expenses", 1, map[string]string{
		"amount": "5.00", "date": "2024-01-05",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &created)

	rec = do(t, srv, http.MethodGet, "/api/expenses/"+strconv.FormatInt(created.ID, 10), 2, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpload_ReportsInsertedCount(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/expenses/upload", 1, map[string]any{
		"expenses": []map[string]string{
			{"amount": "12.50", "store": "costco", "category": "Groceries", "date": "2024-01-05"},
			{"amount": "", "store": "Costco", "category": "groceries", "date": "2024-01-06"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Inserted int64 `json:"inserted"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, int64(2), resp.Inserted)

	// The case variants collapsed into single store and category rows.
	rec = do(t, srv, http.MethodGet, "/api/expenses/stores", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stores struct {
		Stores []string `json:"stores"`
	}
	decode(t, rec, &stores)
	assert.Equal(t, []string{"costco"}, stores.Stores)
}

func TestUpload_MalformedRecordRejectsBatch(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/expenses/upload", 1, map[string]any{
		"expenses": []map[string]string{
			{"amount": "12.50", "date": "2024-01-05"},
			{"amount": "not-a-number", "date": "2024-01-06"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/expenses/summary", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Expenses []json.RawMessage `json:"expenses"`
	}
	decode(t, rec, &resp)
	assert.Empty(t, resp.Expenses)
}

func TestSummary_RejectsUnknownSortKey(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/expenses/summary?sort=amount%3B+DROP+TABLE+expenses", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Message string `json:"message"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "invalid sort parameters", resp.Message)
}

func TestAggregate_UnknownKindRejected(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/expenses/summary/vendor", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrend_MissingDimensionID(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/expenses/overview/store/trends", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/expenses/overview/store/trends?id=abc", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummary_InvalidRangeRejected(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/expenses/summary?start=last-week", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetExpense_NonNumericID(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/expenses/abc", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
