package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigil-dev/vigil/db"
	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/notifier"
	"github.com/vigil-dev/vigil/internal/repository"
	"github.com/vigil-dev/vigil/internal/utils"
	"gorm.io/datatypes"
)

type AlertConfigRequest struct {
	Name            string          `json:"name" binding:"required"`
	Active          bool            `json:"active"`
	OnLate          bool            `json:"on_late"`
	OnError         bool            `json:"on_error"`
	ChannelType     string          `json:"channel_type" binding:"required"`
	ChannelSettings json.RawMessage `json:"channel_settings" binding:"required"`
}

type AppliedMonitorResponse struct {
	MonitorID   uint   `json:"monitor_id"`
	MonitorName string `json:"monitor_name"` // Name at association time
}

type AlertConfigResponse struct {
	ID              uint                     `json:"id"`
	Name            string                   `json:"name"`
	Active          bool                     `json:"active"`
	OnLate          bool                     `json:"on_late"`
	OnError         bool                     `json:"on_error"`
	ChannelType     string                   `json:"channel_type"`
	ChannelSettings json.RawMessage          `json:"channel_settings"`
	AppliedMonitors []AppliedMonitorResponse `json:"applied_monitors"`
}

func newAlertConfigResponse(config *models.AlertConfig) AlertConfigResponse {
	response := AlertConfigResponse{
		ID:              config.ID,
		Name:            config.Name,
		Active:          config.Active,
		OnLate:          config.OnLate,
		OnError:         config.OnError,
		ChannelType:     config.ChannelType,
		ChannelSettings: json.RawMessage(config.ChannelSettings),
		AppliedMonitors: make([]AppliedMonitorResponse, 0, len(config.AppliedMonitors)),
	}

	for _, applied := range config.AppliedMonitors {
		response.AppliedMonitors = append(response.AppliedMonitors, AppliedMonitorResponse{
			MonitorID:   applied.MonitorID,
			MonitorName: applied.MonitorName,
		})
	}

	return response
}

func CreateAlertConfig(ctx *gin.Context) {
	var req AlertConfigRequest

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

	if err := models.ValidateChannelSettings(req.ChannelType, req.ChannelSettings); err != nil {
		respondDomainError(ctx, err)
		return
	}

	config := models.AlertConfig{
		WorkspaceID:     workspace.ID,
		Name:            req.Name,
		Active:          req.Active,
		OnLate:          req.OnLate,
		OnError:         req.OnError,
		ChannelType:     req.ChannelType,
		ChannelSettings: datatypes.JSON(req.ChannelSettings),
	}

	if err := db.DB.Create(&config).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create alert config"})
		return
	}

	ctx.JSON(http.StatusCreated, newAlertConfigResponse(&config))
}

func ListAlertConfigs(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspace, ok := findOwnedWorkspace(ctx, userID)
	if !ok {
		return
	}

	configs, err := repository.NewAlertConfigRepository(db.DB).All(ctx.Request.Context(), workspace.ID)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	response := make([]AlertConfigResponse, 0, len(configs))

	for i := range configs {
		response = append(response, newAlertConfigResponse(&configs[i]))
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateAlertConfig(ctx *gin.Context) {
	var req AlertConfigRequest

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

	alertConfigID, err := utils.GetAlertConfigID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	repo := repository.NewAlertConfigRepository(db.DB)

	config, err := repo.Get(ctx.Request.Context(), workspace.ID, alertConfigID)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	if err := config.EditDetails(req.Name, req.Active, req.OnLate, req.OnError, req.ChannelType, req.ChannelSettings); err != nil {
		respondDomainError(ctx, err)
		return
	}

	if err := repo.Save(ctx.Request.Context(), config); err != nil {
		respondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newAlertConfigResponse(config))
}

func DeleteAlertConfig(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspace, ok := findOwnedWorkspace(ctx, userID)
	if !ok {
		return
	}

	alertConfigID, err := utils.GetAlertConfigID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	repo := repository.NewAlertConfigRepository(db.DB)

	config, err := repo.Get(ctx.Request.Context(), workspace.ID, alertConfigID)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	if err := repo.Delete(ctx.Request.Context(), config); err != nil {
		respondDomainError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// TestAlertConfig sends a test message through the config's channel so the
// user can verify the webhook before relying on it.
func TestAlertConfig(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspace, ok := findOwnedWorkspace(ctx, currentUser.ID)
	if !ok {
		return
	}

	alertConfigID, err := utils.GetAlertConfigID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config, err := repository.NewAlertConfigRepository(db.DB).Get(ctx.Request.Context(), workspace.ID, alertConfigID)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	sender, err := notifier.NewChannelFactory().GetNotifier(config)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	if err := sender.TestNotification(ctx.Request.Context(), config, currentUser.Name); err != nil {
		respondDomainError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Test notification sent"})
}
