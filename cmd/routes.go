package main

import (
	"elafcatalog/internal/handlers"
	"elafcatalog/internal/logging"
	"elafcatalog/internal/middleware"

	_ "elafcatalog/docs"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

const bodyLimit = "16M"

type routeHandlers struct {
	categories *handlers.CategoryHandlers
	brands     *handlers.BrandHandlers
	health     *handlers.HealthHandlers
}

func newEcho(logger *zap.Logger, keys *middleware.KeySource, h routeHandlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.BodyLimit(bodyLimit))

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	e.GET("/health", h.health.LivenessCheck)
	e.GET("/health/ready", h.health.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := versionMiddleware.VersionRoute(e, "v1")
	v1.POST("/categories/tree/preview", h.categories.PreviewTree)
	v1.POST("/brands/clean", h.brands.CleanBrands)

	protected := v1.Group("", middleware.JWTMiddleware(keys))
	protected.PUT("/categories", h.categories.ImportCategories)
	protected.GET("/categories/tree", h.categories.GetTree)
	protected.POST("/categories/tree/snapshots", h.categories.PublishSnapshot)

	return e
}
