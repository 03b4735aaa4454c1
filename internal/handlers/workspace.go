package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vigil-dev/vigil/db"
	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/utils"
	"gorm.io/gorm"
)

type CreateWorkspaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateWorkspaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type WorkspaceResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     uint   `json:"owner_id"`
	APIKey      string `json:"api_key"`
}

func CreateWorkspace(ctx *gin.Context) {
	var body CreateWorkspaceRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspace := models.Workspace{
		Name:        body.Name,
		Description: body.Description,
		OwnerID:     userID,
		APIKey:      uuid.NewString(),
	}

	if err := db.DB.Create(&workspace).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
		return
	}

	ctx.JSON(http.StatusCreated, WorkspaceResponse{
		ID:          workspace.ID,
		Name:        workspace.Name,
		Description: workspace.Description,
		OwnerID:     workspace.OwnerID,
		APIKey:      workspace.APIKey,
	})
}

func ListWorkspaces(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var workspaces []models.Workspace

	if err := db.DB.Where("owner_id = ?", userID).Find(&workspaces).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workspaces"})
		return
	}

	var response []WorkspaceResponse

	for _, workspace := range workspaces {
		response = append(response, WorkspaceResponse{
			ID:          workspace.ID,
			Name:        workspace.Name,
			Description: workspace.Description,
			OwnerID:     workspace.OwnerID,
			APIKey:      workspace.APIKey,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func UpdateWorkspace(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateWorkspaceRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	workspace, ok := findOwnedWorkspace(ctx, userID)
	if !ok {
		return
	}

	workspace.Name = body.Name
	workspace.Description = body.Description

	if err := db.DB.Save(&workspace).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update workspace"})
		return
	}

	ctx.JSON(http.StatusOK, WorkspaceResponse{
		ID:          workspace.ID,
		Name:        workspace.Name,
		Description: workspace.Description,
		OwnerID:     workspace.OwnerID,
		APIKey:      workspace.APIKey,
	})
}

func DeleteWorkspace(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	workspace, ok := findOwnedWorkspace(ctx, userID)
	if !ok {
		return
	}

	if err := db.DB.Delete(&workspace).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete workspace"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// findOwnedWorkspace loads the workspace named in the route if the user owns
// it, writing the error response itself otherwise.
func findOwnedWorkspace(ctx *gin.Context, userID uint) (models.Workspace, bool) {
	var workspace models.Workspace

	workspaceID, err := utils.GetWorkspaceID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return workspace, false
	}

	if err := db.DB.Where("id = ? AND owner_id = ?", workspaceID, userID).First(&workspace).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve workspace"})
		}
		return workspace, false
	}

	return workspace, true
}
