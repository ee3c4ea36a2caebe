package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carelinkvn/carelink-backend/internal/dto"
	"github.com/carelinkvn/carelink-backend/internal/http/handlers/common"
	"github.com/carelinkvn/carelink-backend/internal/service"
)

type ContractHandler struct {
	svc *service.ContractService
}

func NewContractHandler(s *service.ContractService) *ContractHandler {
	return &ContractHandler{svc: s}
}

// Get GET /contracts/:id
func (h *ContractHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// GetByMatching GET /matchings/:id/contract
func (h *ContractHandler) GetByMatching(c *gin.Context) {
	matchingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.svc.GetByMatching(c.Request.Context(), matchingID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// List GET /contracts
func (h *ContractHandler) List(c *gin.Context) {
	page, limit := common.GetPageQuery(c)
	contracts, total, err := h.svc.List(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedContractsResponse{
		Data:       contracts,
		Pagination: dto.NewPagination(total, page, limit),
	})
}

// Update PUT /contracts/:id
func (h *ContractHandler) Update(c *gin.Context) {
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

	var req dto.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.svc.Update(c.Request.Context(), actor, id, service.UpdateContractInput{
		Status:        req.Status,
		Terms:         req.Terms,
		EffectiveDate: req.EffectiveDate,
		ExpiryDate:    req.ExpiryDate,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// FillDetails PUT /contracts/:id/fill
func (h *ContractHandler) FillDetails(c *gin.Context) {
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

	var req dto.FillContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.svc.FillDetails(c.Request.Context(), actor, id, service.FillContractInput{
		PaymentDetails: req.PaymentDetails,
		Terms:          req.Terms,
		EffectiveDate:  req.EffectiveDate,
		ExpiryDate:     req.ExpiryDate,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// RequestSignatureCode POST /contracts/:id/sign/request
func (h *ContractHandler) RequestSignatureCode(c *gin.Context) {
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

	if err := h.svc.RequestSignatureCode(c.Request.Context(), actor, id); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "signing code sent", nil)
}

// ConfirmSignature POST /contracts/:id/sign/confirm
func (h *ContractHandler) ConfirmSignature(c *gin.Context) {
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

	var req dto.ConfirmSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.svc.ConfirmSignature(c.Request.Context(), actor, id, req.Code)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// Delete DELETE /contracts/:id
func (h *ContractHandler) Delete(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "contract deleted", nil)
}
