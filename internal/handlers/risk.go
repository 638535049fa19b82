package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reflecta/reflecta-backend/internal/requestdata"
	"github.com/reflecta/reflecta-backend/internal/services"
)

type RiskHandler struct {
	riskService services.RiskDetectionService
}

func NewRiskHandler(riskService services.RiskDetectionService) *RiskHandler {
	return &RiskHandler{riskService: riskService}
}

// AnalyzeEntry runs risk analysis on one of the caller's journal entries.
// The response tells the student only whether an alert was raised, never
// the analysis details.
func (rh *RiskHandler) AnalyzeEntry(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return
	}
	alert, err := rh.riskService.AnalyzeJournalEntry(c.Request.Context(), rd.UserID, entryID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if alert == nil {
		RespondOK(c, gin.H{"analyzed": true, "message": "no significant risk detected"})
		return
	}
	RespondOK(c, gin.H{"analyzed": true, "risk_level": alert.RiskLevel, "alert_id": alert.ID})
}

func (rh *RiskHandler) AnalyzeMoodPatterns(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	alert, err := rh.riskService.AnalyzeMoodPattern(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if alert == nil {
		RespondOK(c, gin.H{"analyzed": true, "message": "no significant risk detected"})
		return
	}
	RespondOK(c, gin.H{"analyzed": true, "risk_level": alert.RiskLevel, "alert_id": alert.ID})
}
