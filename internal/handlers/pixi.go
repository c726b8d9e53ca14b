// Package handlers implements the HTTP handlers of the jupyter-pixi API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pandeptwidyaop/pixi-server/internal/models"
	"github.com/pandeptwidyaop/pixi-server/internal/pixi"
	"github.com/pandeptwidyaop/pixi-server/internal/services"
)

// MissingPackageOrFeature is the error body for an incomplete add-package request.
const MissingPackageOrFeature = "Missing package or feature"

// PixiHandler handles HTTP requests for pixi project operations.
type PixiHandler struct {
	packageService *services.PackageService
	manifestPath   string
}

// NewPixiHandler creates a new PixiHandler instance.
func NewPixiHandler(packageService *services.PackageService, manifestPath string) *PixiHandler {
	return &PixiHandler{
		packageService: packageService,
		manifestPath:   manifestPath,
	}
}

// AddPackage adds a package to a feature of the project.
// POST <base>/jupyter-pixi/add-package
// Body: {"package": "<name>", "feature": "<feature>"}
func (h *PixiHandler) AddPackage(c *gin.Context) {
	var req models.AddPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": MissingPackageOrFeature})
		return
	}

	// A client hanging up must not kill an install that is half done.
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.packageService.AddPackage(ctx, req.Package, req.Feature)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if !result.Success {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": result.Error})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "output": result.Output})
}

// Project describes the pixi manifest: features, environments and tasks.
// GET <base>/jupyter-pixi/project
func (h *PixiHandler) Project(c *gin.Context) {
	info, err := pixi.ReadProject(h.manifestPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}

// ListInstalls lists recorded add-package runs, newest first.
// GET <base>/jupyter-pixi/installs?limit=50&offset=0
func (h *PixiHandler) ListInstalls(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	installs, err := h.packageService.ListInstalls(limit, offset)
	if err != nil {
		if errors.Is(err, services.ErrHistoryDisabled) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, installs)
}

// GetInstall retrieves a recorded add-package run by ID.
// GET <base>/jupyter-pixi/installs/:id
func (h *PixiHandler) GetInstall(c *gin.Context) {
	id := c.Param("id")

	install, err := h.packageService.GetInstallByID(id)
	if err != nil {
		if errors.Is(err, services.ErrInstallNotFound) || errors.Is(err, services.ErrHistoryDisabled) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, install)
}
