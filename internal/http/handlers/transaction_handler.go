package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carelinkvn/carelink-backend/internal/dto"
	"github.com/carelinkvn/carelink-backend/internal/http/handlers/common"
	"github.com/carelinkvn/carelink-backend/internal/repository"
	"github.com/carelinkvn/carelink-backend/internal/service"
)

type TransactionHandler struct {
	svc *service.TransactionService
}

func NewTransactionHandler(s *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{svc: s}
}

// Get GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	tx, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// List GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	var filter repository.TransactionFilter
	filter.Status = c.Query("status")
	if v := c.Query("elderly_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			common.RespondBadRequest(c, "invalid elderly_id")
			return
		}
		filter.ElderlyID = &id
	}
	if v := c.Query("nurse_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			common.RespondBadRequest(c, "invalid nurse_id")
			return
		}
		filter.NurseID = &id
	}

	page, limit := common.GetPageQuery(c)
	txs, total, err := h.svc.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedTransactionsResponse{
		Data:       txs,
		Pagination: dto.NewPagination(total, page, limit),
	})
}

// ListMine GET /transactions/my
func (h *TransactionHandler) ListMine(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, limit := common.GetPageQuery(c)
	txs, total, err := h.svc.ListMine(c.Request.Context(), actor, c.Query("status"), page, limit)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedTransactionsResponse{
		Data:       txs,
		Pagination: dto.NewPagination(total, page, limit),
	})
}

// Derive POST /transactions/from-contract/:contractId
func (h *TransactionHandler) Derive(c *gin.Context) {
	contractID, err := common.ParseUUIDParam(c, "contractId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	tx, err := h.svc.DeriveForContract(c.Request.Context(), contractID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// UpdateStatus PATCH /transactions/:id/status
func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	tx, err := h.svc.AdminUpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// ProcessPayment POST /transactions/:id/pay
func (h *TransactionHandler) ProcessPayment(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	tx, err := h.svc.ProcessPayment(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// Refund POST /transactions/:id/refund
func (h *TransactionHandler) Refund(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.RespondBadRequest(c, err.Error())
		return
	}

	tx, err := h.svc.Refund(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}
