package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigil-dev/vigil/internal/models"
)

// respondDomainError maps structured domain errors onto HTTP statuses:
// not-found kinds to 404, invariant violations to 400, everything opaque
// (repository, notify) to 500.
func respondDomainError(ctx *gin.Context, err error) {
	var (
		monitorNotFound *models.MonitorNotFoundError
		jobNotFound     *models.JobNotFoundError
		configNotFound  *models.AlertConfigNotFoundError
		alreadyFinished *models.JobAlreadyFinishedError
		invalidConfig   *models.InvalidAlertConfigError
		configError     *models.AlertConfigurationError
	)

	switch {
	case errors.As(err, &monitorNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": monitorNotFound.Error()})
	case errors.As(err, &jobNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": jobNotFound.Error()})
	case errors.As(err, &configNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":       configNotFound.Error(),
			"missing_ids": configNotFound.MissingIDs,
		})
	case errors.As(err, &alreadyFinished):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": alreadyFinished.Error()})
	case errors.As(err, &invalidConfig):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": invalidConfig.Error()})
	case errors.As(err, &configError):
		failures := make([]gin.H, len(configError.Failures))
		for i, f := range configError.Failures {
			failures[i] = gin.H{"alert_config_id": f.AlertConfigID, "message": f.Message}
		}
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":    configError.Error(),
			"failures": failures,
		})
	default:
		log.Printf("Internal error: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
