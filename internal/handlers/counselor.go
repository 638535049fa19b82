package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/reflecta/reflecta-backend/internal/repos"
	"github.com/reflecta/reflecta-backend/internal/requestdata"
	"github.com/reflecta/reflecta-backend/internal/services"
)

type CounselorHandler struct {
	alertService services.AlertService
}

func NewCounselorHandler(alertService services.AlertService) *CounselorHandler {
	return &CounselorHandler{alertService: alertService}
}

func (ch *CounselorHandler) ListAlerts(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	filter := repos.AlertFilter{
		Status:    c.Query("status"),
		RiskLevel: c.Query("risk_level"),
		Limit:     limit,
		Offset:    offset,
	}
	list, err := ch.alertService.List(c.Request.Context(), rd.UserID, filter)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, list)
}

func (ch *CounselorHandler) GetAlert(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	alertID, err := uuid.Parse(c.Param("alertId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}
	view, err := ch.alertService.Get(c.Request.Context(), rd.UserID, alertID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (ch *CounselorHandler) UpdateAlertStatus(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	alertID, err := uuid.Parse(c.Param("alertId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}
	var req struct {
		Status       string     `json:"status"`
		FollowUpDate *time.Time `json:"follow_up_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	view, err := ch.alertService.SetStatus(c.Request.Context(), rd.UserID, alertID, req.Status, req.FollowUpDate)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (ch *CounselorHandler) AddAlertNote(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	alertID, err := uuid.Parse(c.Param("alertId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}
	var req struct {
		Note   string `json:"note"`
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	view, err := ch.alertService.AppendNote(c.Request.Context(), rd.UserID, alertID, req.Note, req.Action)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (ch *CounselorHandler) GetStudentOverview(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	studentID, err := uuid.Parse(c.Param("studentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}
	overview, err := ch.alertService.GetStudentOverview(c.Request.Context(), rd.UserID, studentID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, overview)
}
