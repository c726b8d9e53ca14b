// Package router wires middleware and handlers into a gin engine.
package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pandeptwidyaop/pixi-server/internal/config"
	"github.com/pandeptwidyaop/pixi-server/internal/handlers"
	"github.com/pandeptwidyaop/pixi-server/internal/middleware"
	"github.com/pandeptwidyaop/pixi-server/internal/services"
)

// Namespace is the path segment every route lives under, below the base URL.
const Namespace = "jupyter-pixi"

func New(cfg *config.Config, authService *services.AuthService, packageService *services.PackageService, manifestPath string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	pixiHandler := handlers.NewPixiHandler(packageService, manifestPath)
	versionHandler := handlers.NewVersionHandler()

	api := r.Group(JoinPath(cfg.Server.BaseURL, Namespace))
	api.Use(middleware.TokenRequired(authService))
	{
		api.POST("/add-package", pixiHandler.AddPackage)
		api.GET("/project", pixiHandler.Project)
		api.GET("/installs", pixiHandler.ListInstalls)
		api.GET("/installs/:id", pixiHandler.GetInstall)
		api.GET("/version", versionHandler.Get)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}

// JoinPath joins URL path pieces with single slashes, keeping a leading
// slash from the first piece and a trailing slash from the last.
func JoinPath(pieces ...string) string {
	if len(pieces) == 0 {
		return ""
	}

	initial := strings.HasPrefix(pieces[0], "/")
	final := strings.HasSuffix(pieces[len(pieces)-1], "/")

	parts := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if s := strings.Trim(p, "/"); s != "" {
			parts = append(parts, s)
		}
	}

	result := strings.Join(parts, "/")
	if initial {
		result = "/" + result
	}
	if final {
		result += "/"
	}
	if result == "//" {
		result = "/"
	}
	return result
}
