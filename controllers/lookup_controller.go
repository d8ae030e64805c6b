package controllers

import (
	"net/http"

	apperrors "pcstore/errors"
	"pcstore/models"
	"pcstore/services"

	"github.com/gin-gonic/gin"
)

type LookupController struct {
	lookupService *services.LookupService
}

func NewLookupController(lookupService *services.LookupService) *LookupController {
	return &LookupController{lookupService: lookupService}
}

func (lc *LookupController) GetSockets(c *gin.Context) {
	sockets, err := lc.lookupService.ListSockets(c.Request.Context())
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sockets)
}

func (lc *LookupController) CreateSocket(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Brand string `json:"brand"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	socket, err := lc.lookupService.CreateSocket(c.Request.Context(), req.Name, req.Brand)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, socket)
}

func (lc *LookupController) DeleteSocket(c *gin.Context) {
	if err := lc.lookupService.DeleteSocket(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Socket deleted"})
}

func (lc *LookupController) GetRamTypes(c *gin.Context) {
	ramTypes, err := lc.lookupService.ListRamTypes(c.Request.Context())
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ramTypes)
}

func (lc *LookupController) CreateRamType(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	ramType, err := lc.lookupService.CreateRamType(c.Request.Context(), req.Name)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ramType)
}

func (lc *LookupController) DeleteRamType(c *gin.Context) {
	if err := lc.lookupService.DeleteRamType(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "RAM type deleted"})
}

func (lc *LookupController) GetFormFactors(c *gin.Context) {
	kind := models.FormFactorKind(c.Query("kind"))
	formFactors, err := lc.lookupService.ListFormFactors(c.Request.Context(), kind)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, formFactors)
}

func (lc *LookupController) CreateFormFactor(c *gin.Context) {
	var req struct {
		Name string                `json:"name" binding:"required"`
		Kind models.FormFactorKind `json:"kind" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	formFactor, err := lc.lookupService.CreateFormFactor(c.Request.Context(), req.Name, req.Kind)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, formFactor)
}

func (lc *LookupController) DeleteFormFactor(c *gin.Context) {
	if err := lc.lookupService.DeleteFormFactor(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Form factor deleted"})
}

func (lc *LookupController) GetStorageInterfaces(c *gin.Context) {
	interfaces, err := lc.lookupService.ListStorageInterfaces(c.Request.Context())
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, interfaces)
}

func (lc *LookupController) CreateStorageInterface(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	iface, err := lc.lookupService.CreateStorageInterface(c.Request.Context(), req.Name)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, iface)
}

func (lc *LookupController) DeleteStorageInterface(c *gin.Context) {
	if err := lc.lookupService.DeleteStorageInterface(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Storage interface deleted"})
}
