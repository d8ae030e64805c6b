package controllers

import (
	"net/http"

	apperrors "pcstore/errors"
	"pcstore/models"
	repositories "pcstore/repository"
	"pcstore/services"

	"github.com/gin-gonic/gin"
)

type ComponentController struct {
	componentService *services.ComponentService
}

func NewComponentController(componentService *services.ComponentService) *ComponentController {
	return &ComponentController{componentService: componentService}
}

// GetComponents lists the catalog. Non-admin routes mount this with
// the active-only filter forced.
func (cc *ComponentController) GetComponents(activeOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := parsePaginationParams(c)
		filter := repositories.ComponentFilter{
			Kind:       models.ComponentKind(c.Query("kind")),
			Search:     c.Query("search"),
			ActiveOnly: activeOnly,
		}

		components, total, err := cc.componentService.ListComponents(c.Request.Context(), filter, page, limit)
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, paginated(components, total, page, limit))
	}
}

// GetComponentByID returns one component with stock and price
func (cc *ComponentController) GetComponentByID(c *gin.Context) {
	component, err := cc.componentService.GetComponent(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, component)
}

// CreateComponent adds a catalog component
func (cc *ComponentController) CreateComponent(c *gin.Context) {
	var req models.ComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	component, err := cc.componentService.CreateComponent(c.Request.Context(), req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, component)
}

// UpdateComponent updates a catalog component
func (cc *ComponentController) UpdateComponent(c *gin.Context) {
	var req models.ComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	component, err := cc.componentService.UpdateComponent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, component)
}

// DeleteComponent removes a component not referenced by any build
func (cc *ComponentController) DeleteComponent(c *gin.Context) {
	if err := cc.componentService.DeleteComponent(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Component deleted"})
}

// SetActive shows or hides a component
func (cc *ComponentController) SetActive(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if err := cc.componentService.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Component updated"})
}

// UploadImage stores a product image
func (cc *ComponentController) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	component, err := cc.componentService.UploadImage(c.Request.Context(), c.Param("id"), contentType, file)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, component)
}

// AdjustStock applies a stock delta
func (cc *ComponentController) AdjustStock(c *gin.Context) {
	var req models.StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	inventory, err := cc.componentService.AdjustStock(c.Request.Context(), c.Param("id"), req.Delta)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventory)
}

// SetPrice updates the ledger price
func (cc *ComponentController) SetPrice(c *gin.Context) {
	var req models.PriceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if err := cc.componentService.SetPrice(c.Request.Context(), c.Param("id"), req.Price); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Price updated"})
}
