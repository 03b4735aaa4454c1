package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetWorkspaceID(ctx *gin.Context) (uint, error) {
	return parseUintParam(ctx, "workspace_id", "Workspace")
}

func GetMonitorID(ctx *gin.Context) (uint, error) {
	return parseUintParam(ctx, "monitor_id", "Monitor")
}

func GetAlertConfigID(ctx *gin.Context) (uint, error) {
	return parseUintParam(ctx, "alert_config_id", "Alert config")
}

func GetJobID(ctx *gin.Context) (string, error) {
	jobID := ctx.Param("job_id")

	if jobID == "" {
		return "", errors.New("Job ID not found")
	}

	return jobID, nil
}

func parseUintParam(ctx *gin.Context, name, label string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New(label + " ID not found")
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + label + " ID")
	}

	return uint(id), nil
}
