// Package dto provides Data Transfer Objects for API responses.
package dto

import (
	"math"
	"time"

	"supplyscope/internal/core/types"
	"supplyscope/internal/domain/procurement"
)

// ErrorResponse is the body rendered by middleware.ErrorHandler.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// FailureResponse names a supplier a report had to skip.
type FailureResponse struct {
	SupplierID   string `json:"supplierId"`
	SupplierName string `json:"supplierName"`
	Reason       string `json:"reason"`
}

// ReportResponse wraps a cross-supplier report. A report whose source data
// could not be loaded has Unavailable set, an Error message and no items.
type ReportResponse[T any] struct {
	Items       []T               `json:"items"`
	Count       int               `json:"count"`
	Unavailable bool              `json:"unavailable"`
	Error       string            `json:"error,omitempty"`
	Failures    []FailureResponse `json:"failures,omitempty"`
}

func fromFailures(failures []procurement.Failure) []FailureResponse {
	if len(failures) == 0 {
		return nil
	}
	out := make([]FailureResponse, len(failures))
	for i, f := range failures {
		out[i] = FailureResponse{
			SupplierID:   f.SupplierID.String(),
			SupplierName: f.SupplierName,
			Reason:       f.Reason,
		}
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatMoney(m types.Money) string {
	return m.StringFixed(2)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
