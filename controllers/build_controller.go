package controllers

import (
	"net/http"

	apperrors "pcstore/errors"
	"pcstore/middleware"
	"pcstore/models"
	"pcstore/services"

	"github.com/gin-gonic/gin"
)

type BuildController struct {
	buildService *services.BuildService
}

func NewBuildController(buildService *services.BuildService) *BuildController {
	return &BuildController{buildService: buildService}
}

// CreateBuild saves a new build for the authenticated user
func (bc *BuildController) CreateBuild(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	build, err := bc.buildService.CreateBuild(c.Request.Context(), userID, req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, build)
}

// UpdateBuild replaces the part selection of a build
func (bc *BuildController) UpdateBuild(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	build, err := bc.buildService.UpdateBuild(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, build)
}

// GetBuilds lists the user's builds
func (bc *BuildController) GetBuilds(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(c)
	builds, total, err := bc.buildService.ListBuilds(c.Request.Context(), userID, page, limit)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(builds, total, page, limit))
}

// GetBuildByID returns one of the user's builds
func (bc *BuildController) GetBuildByID(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	build, err := bc.buildService.GetBuild(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, build)
}

// DeleteBuild removes one of the user's builds
func (bc *BuildController) DeleteBuild(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := bc.buildService.DeleteBuild(c.Request.Context(), userID, c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Build deleted"})
}

// CheckCompatibility runs the rule set over the build
func (bc *BuildController) CheckCompatibility(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := bc.buildService.CheckCompatibility(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
