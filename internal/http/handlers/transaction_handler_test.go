package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTransactionHandler_Get_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TransactionHandler{svc: nil}
	r.GET("/transactions/:id", handler.Get)

	req, _ := http.NewRequest("GET", "/transactions/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransactionHandler_ListMine_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TransactionHandler{svc: nil}
	r.GET("/transactions/my", handler.ListMine)

	req, _ := http.NewRequest("GET", "/transactions/my", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransactionHandler_ProcessPayment_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TransactionHandler{svc: nil}
	r.POST("/transactions/:id/pay", handler.ProcessPayment)

	req, _ := http.NewRequest("POST", "/transactions/"+"00000000-0000-0000-0000-000000000001"+"/pay", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransactionHandler_Refund_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TransactionHandler{svc: nil}
	r.POST("/transactions/:id/refund", handler.Refund)

	req, _ := http.NewRequest("POST", "/transactions/00000000-0000-0000-0000-000000000001/refund", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTransactionHandler_Derive_InvalidContractID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TransactionHandler{svc: nil}
	r.POST("/transactions/from-contract/:contractId", handler.Derive)

	req, _ := http.NewRequest("POST", "/transactions/from-contract/bad-id", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
