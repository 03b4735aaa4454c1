package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vigil-dev/vigil/db"
	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/repository"
	"github.com/vigil-dev/vigil/internal/services"
	"github.com/vigil-dev/vigil/internal/utils"
	"gorm.io/gorm"
)

type CreateMonitorRequest struct {
	Name             string `json:"name" binding:"required"`
	ExpectedDuration int    `json:"expected_duration" binding:"required,min=1"` // Seconds
	GraceDuration    int    `json:"grace_duration" binding:"min=0"`             // Seconds
}

type UpdateMonitorRequest struct {
	Name             string `json:"name" binding:"required"`
	ExpectedDuration int    `json:"expected_duration" binding:"required,min=1"`
	GraceDuration    int    `json:"grace_duration" binding:"min=0"`
}

type AssociateAlertConfigsRequest struct {
	AlertConfigIDs []uint `json:"alert_config_ids" binding:"required,min=1"`
}

type JobSummary struct {
	ID             string     `json:"id"`
	StartedAt      time.Time  `json:"started_at"`
	MaxEndTime     time.Time  `json:"max_end_time"`
	EndTime        *time.Time `json:"end_time"`
	Succeeded      *bool      `json:"succeeded"`
	Output         string     `json:"output,omitempty"`
	InProgress     bool       `json:"in_progress"`
	Late           bool       `json:"late"`
	Errored        bool       `json:"errored"`
	DurationSecs   *float64   `json:"duration_seconds"`
	LateAlertSent  bool       `json:"late_alert_sent"`
	ErrorAlertSent bool       `json:"error_alert_sent"`
}

type MonitorSummary struct {
	ID               uint         `json:"id"`
	Name             string       `json:"name"`
	ExpectedDuration int          `json:"expected_duration"`
	GraceDuration    int          `json:"grace_duration"`
	InProgress       int          `json:"jobs_in_progress"`
	LastJob          *JobSummary  `json:"last_job"`
	Jobs             []JobSummary `json:"jobs,omitempty"`
}

func newJobSummary(job *models.Job) JobSummary {
	summary := JobSummary{
		ID:             job.ID,
		StartedAt:      job.StartedAt,
		MaxEndTime:     job.MaxEndTime,
		EndTime:        job.EndTime,
		Succeeded:      job.Succeeded,
		Output:         job.Output,
		InProgress:     job.InProgress(),
		Late:           job.Late(),
		Errored:        job.Errored(),
		LateAlertSent:  job.LateAlertSent,
		ErrorAlertSent: job.ErrorAlertSent,
	}

	if d, ok := job.Duration(); ok {
		secs := d.Seconds()
		summary.DurationSecs = &secs
	}

	return summary
}

func newMonitorSummary(monitor *models.Monitor, includeJobs bool) MonitorSummary {
	summary := MonitorSummary{
		ID:               monitor.ID,
		Name:             monitor.Name,
		ExpectedDuration: monitor.ExpectedDuration,
		GraceDuration:    monitor.GraceDuration,
		InProgress:       len(monitor.JobsInProgress()),
	}

	if len(monitor.Jobs) > 0 {
		last := newJobSummary(&monitor.Jobs[0])
		summary.LastJob = &last
	}

	if includeJobs {
		for i := range monitor.Jobs {
			summary.Jobs = append(summary.Jobs, newJobSummary(&monitor.Jobs[i]))
		}
	}

	return summary
}

func CreateMonitor(ctx *gin.Context) {
	var req CreateMonitorRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspace, ok := findOwnedWorkspace(ctx, userID)
	if !ok {
		return
	}

	monitor := models.Monitor{
		WorkspaceID:      workspace.ID,
		Name:             req.Name,
		ExpectedDuration: req.ExpectedDuration,
		GraceDuration:    req.GraceDuration,
	}

	if err := db.DB.Create(&monitor).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create monitor"})
		return
	}

	summary := newMonitorSummary(&monitor, false)
	ctx.JSON(http.StatusCreated, summary)
}

func GetMonitors(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspace, ok := findOwnedWorkspace(ctx, userID)
	if !ok {
		return
	}

	monitors, err := repository.NewMonitorRepository(db.DB).All(ctx.Request.Context(), workspace.ID)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	response := make([]MonitorSummary, 0, len(monitors))

	for i := range monitors {
		response = append(response, newMonitorSummary(&monitors[i], false))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetMonitor(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspace, ok := findOwnedWorkspace(ctx, userID)
	if !ok {
		return
	}

	monitorID, err := utils.GetMonitorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	monitor, err := repository.NewMonitorRepository(db.DB).Get(ctx.Request.Context(), workspace.ID, monitorID)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newMonitorSummary(monitor, true))
}

func UpdateMonitor(ctx *gin.Context) {
	var req UpdateMonitorRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspace, ok := findOwnedWorkspace(ctx, userID)
	if !ok {
		return
	}

	monitorID, err := utils.GetMonitorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var monitor models.Monitor

	if err := db.DB.Where("id = ? AND workspace_id = ?", monitorID, workspace.ID).First(&monitor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Monitor not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve monitor"})
		}
		return
	}

	// Deadlines of jobs already started are frozen; the new durations only
	// apply to future jobs. Applied-monitor name snapshots are not refreshed.
	monitor.Name = req.Name
	monitor.ExpectedDuration = req.ExpectedDuration
	monitor.GraceDuration = req.GraceDuration

	if err := db.DB.Save(&monitor).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update monitor"})
		return
	}

	summary := newMonitorSummary(&monitor, false)
	ctx.JSON(http.StatusOK, summary)
}

func DeleteMonitor(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspace, ok := findOwnedWorkspace(ctx, userID)
	if !ok {
		return
	}

	monitorID, err := utils.GetMonitorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	repo := repository.NewMonitorRepository(db.DB)

	monitor, err := repo.Get(ctx.Request.Context(), workspace.ID, monitorID)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	if err := repo.Delete(ctx.Request.Context(), monitor); err != nil {
		respondDomainError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// AssociateAlertConfigs applies the named alert configs to the monitor in one
// call. The call is all-or-nothing: any duplicate association or missing id
// fails the whole request before anything is saved.
func AssociateAlertConfigs(ctx *gin.Context) {
	var req AssociateAlertConfigsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspace, ok := findOwnedWorkspace(ctx, userID)
	if !ok {
		return
	}

	monitorID, err := utils.GetMonitorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := services.NewAssociationService(
		repository.NewMonitorRepository(db.DB),
		repository.NewAlertConfigRepository(db.DB),
	)

	if err := service.AssociateAlerts(ctx.Request.Context(), workspace.ID, monitorID, req.AlertConfigIDs); err != nil {
		respondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Alert configs associated"})
}

func DisassociateAlertConfig(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspace, ok := findOwnedWorkspace(ctx, userID)
	if !ok {
		return
	}

	monitorID, err := utils.GetMonitorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alertConfigID, err := utils.GetAlertConfigID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	service := services.NewAssociationService(
		repository.NewMonitorRepository(db.DB),
		repository.NewAlertConfigRepository(db.DB),
	)

	if err := service.DisassociateAlert(ctx.Request.Context(), workspace.ID, monitorID, alertConfigID); err != nil {
		respondDomainError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
