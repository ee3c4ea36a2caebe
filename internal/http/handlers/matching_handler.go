package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carelinkvn/carelink-backend/internal/dto"
	"github.com/carelinkvn/carelink-backend/internal/http/handlers/common"
	"github.com/carelinkvn/carelink-backend/internal/repository"
	"github.com/carelinkvn/carelink-backend/internal/service"
)

type MatchingHandler struct {
	svc *service.MatchingService
}

func NewMatchingHandler(s *service.MatchingService) *MatchingHandler {
	return &MatchingHandler{svc: s}
}

// Create POST /matchings
func (h *MatchingHandler) Create(c *gin.Context) {
	actor, err := currentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateMatchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	nurseID, err := uuid.Parse(req.NurseID)
	if err != nil {
		common.RespondBadRequest(c, "invalid nurse_id")
		return
	}

	matching, err := h.svc.Create(c.Request.Context(), actor, service.CreateMatchingInput{
		NurseID:      nurseID,
		ServiceLevel: req.ServiceLevel,
		BookingTime:  req.BookingTime,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, matching)
}

// Get GET /matchings/:id
func (h *MatchingHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	matching, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, matching)
}

// List GET /matchings
func (h *MatchingHandler) List(c *gin.Context) {
	var filter repository.MatchingFilter
	if v := c.Query("is_matched"); v != "" {
		matched, err := strconv.ParseBool(v)
		if err != nil {
			common.RespondBadRequest(c, "is_matched must be a boolean")
			return
		}
		filter.IsMatched = &matched
	}
	filter.ServiceLevel = c.Query("service_level")

	page, limit := common.GetPageQuery(c)
	matchings, total, err := h.svc.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedMatchingsResponse{
		Data:       matchings,
		Pagination: dto.NewPagination(total, page, limit),
	})
}

// UpdateBookingTime PUT /matchings/:id/booking-time
func (h *MatchingHandler) UpdateBookingTime(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateBookingTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	matching, err := h.svc.UpdateBookingTime(c.Request.Context(), id, req.BookingTime)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, matching)
}

// RecordSignature POST /matchings/:id/signature
func (h *MatchingHandler) RecordSignature(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RecordSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	matching, err := h.svc.RecordSignature(c.Request.Context(), id, req.Role, req.Signature, req.ContractHash)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, matching)
}

// ReportViolation POST /matchings/:id/violation
func (h *MatchingHandler) ReportViolation(c *gin.Context) {
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

	var req dto.ReportViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	matching, err := h.svc.ReportViolation(c.Request.Context(), id, actor.UserID, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, matching)
}

// Complete POST /matchings/:id/complete
func (h *MatchingHandler) Complete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	matching, err := h.svc.Complete(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, matching)
}

// Reset POST /matchings/:id/reset
func (h *MatchingHandler) Reset(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	matching, err := h.svc.Reset(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, matching)
}

// Delete DELETE /matchings/:id
func (h *MatchingHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "matching deleted", nil)
}
