package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigil-dev/vigil/db"
	"github.com/vigil-dev/vigil/internal/repository"
	"github.com/vigil-dev/vigil/internal/utils"
)

type FinishJobRequest struct {
	Succeeded *bool  `json:"succeeded" binding:"required"`
	Output    string `json:"output"`
}

// StartJob reports that a monitored job began. The caller authenticates with
// the workspace API key; the returned job id is passed back on finish.
func StartJob(ctx *gin.Context) {
	workspace, err := utils.GetCurrentWorkspace(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Workspace not authenticated"})
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

	job := monitor.StartJob()

	if err := repo.Save(ctx.Request.Context(), monitor); err != nil {
		respondDomainError(ctx, err)
		return
	}

	BroadcastRefresh(fmt.Sprint(workspace.ID))

	ctx.JSON(http.StatusCreated, gin.H{
		"job_id":       job.ID,
		"started_at":   job.StartedAt,
		"max_end_time": job.MaxEndTime,
	})
}

// FinishJob reports the terminal outcome of a previously started job.
func FinishJob(ctx *gin.Context) {
	var req FinishJobRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workspace, err := utils.GetCurrentWorkspace(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Workspace not authenticated"})
		return
	}

	monitorID, err := utils.GetMonitorID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID, err := utils.GetJobID(ctx)

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

	job, err := monitor.FinishJob(jobID, *req.Succeeded, req.Output)

	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	if err := repo.Save(ctx.Request.Context(), monitor); err != nil {
		respondDomainError(ctx, err)
		return
	}

	BroadcastRefresh(fmt.Sprint(workspace.ID))

	ctx.JSON(http.StatusOK, newJobSummary(job))
}
