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

type DisputeHandler struct {
	svc *service.DisputeService
}

func NewDisputeHandler(s *service.DisputeService) *DisputeHandler {
	return &DisputeHandler{svc: s}
}

// Create POST /disputes
func (h *DisputeHandler) Create(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	txID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		common.RespondBadRequest(c, "invalid transaction_id")
		return
	}

	dispute, err := h.svc.Create(c.Request.Context(), actor, service.CreateDisputeInput{
		TransactionID: txID,
		Reason:        req.Reason,
		Evidences:     req.Evidences,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dispute)
}

// Get GET /disputes/:id
func (h *DisputeHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dispute, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}

// List GET /disputes
func (h *DisputeHandler) List(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	filter := repository.DisputeFilter{Status: c.Query("status")}
	page, limit := common.GetPageQuery(c)

	disputes, total, err := h.svc.List(c.Request.Context(), actor, filter, page, limit)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedDisputesResponse{
		Data:       disputes,
		Pagination: dto.NewPagination(total, page, limit),
	})
}

// UpdateStatus PATCH /disputes/:id/status
func (h *DisputeHandler) UpdateStatus(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateDisputeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dispute, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, req.Resolution)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dispute)
}
