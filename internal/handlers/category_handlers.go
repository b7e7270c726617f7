package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"elafcatalog/internal/categorytree"
	"elafcatalog/internal/common"
	"elafcatalog/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CategoryHandlers handles category tree HTTP requests
type CategoryHandlers struct {
	service services.CategoryTreeService
	logger  *zap.Logger
}

// NewCategoryHandlers creates a new category handlers instance
func NewCategoryHandlers(service services.CategoryTreeService, logger *zap.Logger) *CategoryHandlers {
	return &CategoryHandlers{
		service: service,
		logger:  logger.Named("category-handlers"),
	}
}

// PreviewTree builds a forest from the posted flat records without storing them.
//
//	@Summary	Build a category tree
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Param		records	body		[]models.FlatRecord	true	"Flat category records"
//	@Success	200		{array}		models.Node
//	@Failure	400		{object}	common.ErrorResponse
//	@Router		/v1/categories/tree/preview [post]
func (h *CategoryHandlers) PreviewTree(c echo.Context) error {
	records, err := categorytree.DecodeRecords(c.Request().Body)
	if err != nil {
		return common.SendClientError(c, "Invalid request body: expected a JSON array of category records")
	}

	report, err := h.service.Preview(records)
	if err != nil {
		return h.sendError(c, err, "Failed to build category tree")
	}

	data, err := categorytree.MarshalForest(report.Forest)
	if err != nil {
		return h.sendError(c, err, "Failed to encode category tree")
	}
	return c.JSONBlob(http.StatusOK, data)
}

// ImportCategories replaces the caller's stored category records.
//
//	@Summary	Import category records
//	@Tags		categories
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		records	body		[]models.FlatRecord	true	"Flat category records"
//	@Success	200		{object}	models.ImportSummary
//	@Failure	400		{object}	common.ErrorResponse
//	@Failure	401		{object}	common.ErrorResponse
//	@Router		/v1/categories [put]
func (h *CategoryHandlers) ImportCategories(c echo.Context) error {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
	}

	records, err := categorytree.DecodeRecords(c.Request().Body)
	if err != nil {
		return common.SendClientError(c, "Invalid request body: expected a JSON array of category records")
	}

	summary, err := h.service.Import(c.Request().Context(), tenantID, records)
	if err != nil {
		return h.sendError(c, err, "Failed to import categories")
	}
	return c.JSON(http.StatusOK, summary)
}

// GetTree returns the caller's category forest.
//
//	@Summary	Get the category tree
//	@Tags		categories
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		models.Node
//	@Failure	404	{object}	common.ErrorResponse
//	@Router		/v1/categories/tree [get]
func (h *CategoryHandlers) GetTree(c echo.Context) error {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
	}

	data, err := h.service.Tree(c.Request().Context(), tenantID)
	if err != nil {
		return h.sendError(c, err, "Failed to load category tree")
	}
	return c.JSONBlob(http.StatusOK, data)
}

// PublishSnapshot uploads the caller's current forest to object storage.
//
//	@Summary	Publish a category tree snapshot
//	@Tags		categories
//	@Produce	json
//	@Security	BearerAuth
//	@Success	201	{object}	models.TreeSnapshot
//	@Failure	404	{object}	common.ErrorResponse
//	@Router		/v1/categories/tree/snapshots [post]
func (h *CategoryHandlers) PublishSnapshot(c echo.Context) error {
	tenantID, ok := common.TenantID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
	}

	snapshot, err := h.service.Publish(c.Request().Context(), tenantID)
	if err != nil {
		return h.sendError(c, err, "Failed to publish category tree")
	}
	return c.JSON(http.StatusCreated, snapshot)
}

func (h *CategoryHandlers) sendError(c echo.Context, err error, message string) error {
	var recErr *categorytree.RecordError
	switch {
	case errors.As(err, &recErr):
		details := map[string]string{
			"index":  strconv.Itoa(recErr.Index),
			"reason": recErr.Err.Error(),
		}
		if recErr.ID != "" {
			details["id"] = recErr.ID
		}
		return common.SendValidationDetails(c, details)
	case errors.Is(err, services.ErrCatalogEmpty):
		return common.SendNotFoundError(c, "Category tree")
	default:
		h.logger.Error(message, zap.String("path", c.Path()), zap.Error(err))
		return common.SendServerError(c, message)
	}
}
