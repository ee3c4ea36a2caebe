package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/carelinkvn/carelink-backend/internal/http/handlers/common"
	"github.com/carelinkvn/carelink-backend/internal/service"
)

// currentActor builds the acting identity from the authenticated context.
func currentActor(c *gin.Context) (service.Actor, error) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		return service.Actor{}, err
	}
	role, err := common.CurrentUserRole(c)
	if err != nil {
		return service.Actor{}, err
	}
	return service.Actor{UserID: userID, Role: role}, nil
}
