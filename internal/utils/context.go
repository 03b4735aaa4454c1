package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/vigil-dev/vigil/internal/middleware"
	"github.com/vigil-dev/vigil/internal/models"
	"github.com/vigil-dev/vigil/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, fmt.Errorf("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, fmt.Errorf("Invalid user type in context")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

// GetCurrentWorkspace returns the workspace resolved by the API-key
// middleware.
func GetCurrentWorkspace(ctx *gin.Context) (models.Workspace, error) {
	workspace, exists := ctx.Get(types.ContextWorkspaceKey)

	if !exists {
		return models.Workspace{}, fmt.Errorf("Workspace not authenticated")
	}

	authenticatedWorkspace, ok := workspace.(models.Workspace)

	if !ok {
		return models.Workspace{}, fmt.Errorf("Invalid workspace type in context")
	}

	return authenticatedWorkspace, nil
}
