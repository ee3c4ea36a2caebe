package dto

import (
	"github.com/carelinkvn/carelink-backend/internal/models"
	"github.com/carelinkvn/carelink-backend/internal/service"
)

// AuthResponse represents the outcome of registration, login or refresh.
type AuthResponse struct {
	User      *models.User       `json:"user"`
	TokenPair *service.TokenPair `json:"tokens"`
}

// Pagination represents pagination metadata.
type Pagination struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

// NewPagination computes the metadata for one result page.
func NewPagination(total, page, limit int) Pagination {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return Pagination{
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: page*limit < total,
	}
}

// PaginatedMatchingsResponse represents a matchings list page.
type PaginatedMatchingsResponse struct {
	Data       []models.Matching `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// PaginatedContractsResponse represents a contracts list page.
type PaginatedContractsResponse struct {
	Data       []models.Contract `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// PaginatedTransactionsResponse represents a transactions list page.
type PaginatedTransactionsResponse struct {
	Data       []models.Transaction `json:"data"`
	Pagination Pagination           `json:"pagination"`
}

// PaginatedDisputesResponse represents a disputes list page.
type PaginatedDisputesResponse struct {
	Data       []models.Dispute `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// ErrorResponse represents a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
