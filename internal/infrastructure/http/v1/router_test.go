package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplyscope/internal/core/apperror"
	"supplyscope/internal/core/id"
	"supplyscope/internal/core/types"
	"supplyscope/internal/domain/batch"
	"supplyscope/internal/domain/procurement"
	"supplyscope/internal/infrastructure/metrics"
	"supplyscope/pkg/logger"
)

type stubService struct {
	orders      func(ctx context.Context, supplierID id.ID) ([]procurement.Order, error)
	performance func(ctx context.Context, supplierID id.ID) (*procurement.Performance, error)
	active      *procurement.ActiveOrdersResult
	top         *procurement.TopPerformersResult
}

func (s *stubService) ReconstructOrders(ctx context.Context, supplierID id.ID) ([]procurement.Order, error) {
	return s.orders(ctx, supplierID)
}

func (s *stubService) ScoreSupplier(ctx context.Context, supplierID id.ID) (*procurement.Performance, error) {
	return s.performance(ctx, supplierID)
}

func (s *stubService) GetActiveOrders(ctx context.Context) *procurement.ActiveOrdersResult {
	return s.active
}

func (s *stubService) GetTopPerformers(ctx context.Context) *procurement.TopPerformersResult {
	return s.top
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestRouter(svc *stubService, db stubPinger) http.Handler {
	return NewRouter(RouterConfig{
		Procurement: svc,
		DB:          db,
		Metrics:     metrics.New(metrics.Config{Namespace: "test"}),
		Logger:      logger.NewNop(),
	})
}

func do(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if rec.Header().Get("Content-Type") != "" && rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func sampleOrder(supplierID id.ID) procurement.Order {
	received := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := batch.Batch{
		ID:               id.New(),
		SupplierID:       supplierID,
		ProductID:        id.New(),
		QuantityReceived: 5,
		CostPrice:        types.ValidMoney(types.MustMoney("2.5")),
		Status:           batch.StatusActive,
		CreatedAt:        &created,
		DateReceived:     &received,
		Notes:            "Receipt: RCPT-7",
	}
	return procurement.BuildOrder(supplierID, "2024-01-05", []batch.Batch{b})
}

func TestGetSupplierOrders(t *testing.T) {
	sid := id.New()
	svc := &stubService{
		orders: func(ctx context.Context, supplierID id.ID) ([]procurement.Order, error) {
			assert.Equal(t, sid, supplierID)
			return []procurement.Order{sampleOrder(sid)}, nil
		},
	}

	rec, body := do(t, newTestRouter(svc, stubPinger{}), "/api/v1/suppliers/"+sid.String()+"/orders")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
	orders := body["orders"].([]any)
	order := orders[0].(map[string]any)
	assert.Equal(t, "2024-01-05", order["dateKey"])
	assert.Equal(t, "RCPT-7", order["receiptId"])
	assert.Equal(t, "Received", order["status"])
	assert.Equal(t, "12.50", order["totalCost"])
	assert.Equal(t, "2024-01-01T00:00:00Z", order["orderDate"])
}

func TestGetSupplierOrders_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "invalid id",
			path:     "/api/v1/suppliers/not-a-uuid/orders",
			wantCode: http.StatusBadRequest,
			wantBody: apperror.CodeValidation,
		},
		{
			name:     "unknown supplier",
			path:     "/api/v1/suppliers/" + id.New().String() + "/orders",
			err:      apperror.NewNotFound("supplier", "x"),
			wantCode: http.StatusNotFound,
			wantBody: apperror.CodeNotFound,
		},
		{
			name:     "corrupt batch",
			path:     "/api/v1/suppliers/" + id.New().String() + "/orders",
			err:      apperror.NewDataIntegrity("batch", "b1", "no dates"),
			wantCode: http.StatusUnprocessableEntity,
			wantBody: apperror.CodeDataIntegrity,
		},
		{
			name:     "driver error",
			path:     "/api/v1/suppliers/" + id.New().String() + "/orders",
			err:      errors.New("conn reset"),
			wantCode: http.StatusInternalServerError,
			wantBody: apperror.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				orders: func(ctx context.Context, supplierID id.ID) ([]procurement.Order, error) {
					return nil, tt.err
				},
			}

			rec, body := do(t, newTestRouter(svc, stubPinger{}), tt.path)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, body["code"])
			assert.NotContains(t, rec.Body.String(), "conn reset")
		})
	}
}

func TestGetSupplierPerformance_NotRatable(t *testing.T) {
	sid := id.New()
	svc := &stubService{
		performance: func(ctx context.Context, supplierID id.ID) (*procurement.Performance, error) {
			return &procurement.Performance{
				SupplierID:   sid,
				SupplierName: "Slow Co",
				TotalOrders:  1,
				TotalValue:   types.MustMoney("100"),
				TopProducts:  []procurement.ProductVolume{},
			}, nil
		},
	}

	rec, body := do(t, newTestRouter(svc, stubPinger{}), "/api/v1/suppliers/"+sid.String()+"/performance")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "rating")
	assert.Nil(t, body["rating"])
	assert.Equal(t, "N/A", body["ratingLabel"])
	assert.Equal(t, "100.00", body["totalValue"])
}

func TestGetActiveOrders_Unavailable(t *testing.T) {
	svc := &stubService{
		active: &procurement.ActiveOrdersResult{
			Orders:      []procurement.Order{},
			Unavailable: true,
			Error:       "list batches: timeout",
		},
	}

	rec, body := do(t, newTestRouter(svc, stubPinger{}), "/api/v1/reports/active-orders")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["unavailable"])
	assert.Equal(t, "list batches: timeout", body["error"])
	assert.Empty(t, body["items"])
}

func TestGetTopPerformers(t *testing.T) {
	rating := 4.2
	svc := &stubService{
		top: &procurement.TopPerformersResult{
			Performers: []procurement.RankedPerformance{
				{
					Performance: procurement.Performance{
						SupplierID:   id.New(),
						SupplierName: "Best",
						Factors:      procurement.Factors{Rating: &rating},
						TotalValue:   types.MustMoney("250000"),
					},
					CompositeScore: 3.52,
				},
			},
			Failures: []procurement.Failure{{SupplierID: id.New(), SupplierName: "Broken", Reason: "no dates"}},
		},
	}

	rec, body := do(t, newTestRouter(svc, stubPinger{}), "/api/v1/reports/top-performers")

	require.Equal(t, http.StatusOK, rec.Code)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, float64(1), first["rank"])
	assert.Equal(t, "Best", first["supplierName"])
	assert.Equal(t, 4.2, first["rating"])
	assert.Equal(t, "4.2", first["ratingLabel"])
	assert.Len(t, body["failures"], 1)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&stubService{}, stubPinger{})
	rec, _ := do(t, h, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, newTestRouter(&stubService{}, stubPinger{err: errors.New("down")}), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error", body["status"])
}

func TestPanicIsRecovered(t *testing.T) {
	svc := &stubService{
		orders: func(ctx context.Context, supplierID id.ID) ([]procurement.Order, error) {
			panic("boom")
		},
	}

	rec, body := do(t, newTestRouter(svc, stubPinger{}), "/api/v1/suppliers/"+id.New().String()+"/orders")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestTraceHeadersAndMetrics(t *testing.T) {
	svc := &stubService{active: &procurement.ActiveOrdersResult{Orders: []procurement.Order{}}}
	h := newTestRouter(svc, stubPinger{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/active-orders", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	rec, _ = do(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `path="/api/v1/reports/active-orders"`)
}
