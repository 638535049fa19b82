package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reflecta/reflecta-backend/internal/requestdata"
	"github.com/reflecta/reflecta-backend/internal/services"
)

type PrivacyHandler struct {
	userService services.UserService
}

func NewPrivacyHandler(userService services.UserService) *PrivacyHandler {
	return &PrivacyHandler{userService: userService}
}

func (ph *PrivacyHandler) GetSettings(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	settings, err := ph.userService.GetPrivacySettings(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, settings)
}

func (ph *PrivacyHandler) UpdateSettings(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		RiskMonitoringEnabled bool        `json:"risk_monitoring_enabled"`
		ShareLevel            string      `json:"share_level"`
		AssignedCounselorIDs  []uuid.UUID `json:"assigned_counselor_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	settings, err := ph.userService.UpdatePrivacySettings(c.Request.Context(), rd.UserID, req.RiskMonitoringEnabled, req.ShareLevel)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if req.AssignedCounselorIDs != nil {
		if err := ph.userService.AssignCounselors(c.Request.Context(), rd.UserID, req.AssignedCounselorIDs); err != nil {
			RespondServiceError(c, err)
			return
		}
	}
	RespondOK(c, settings)
}

func (ph *PrivacyHandler) ListCounselors(c *gin.Context) {
	counselors, err := ph.userService.ListCounselors(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"counselors": counselors})
}
