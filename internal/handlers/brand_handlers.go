package handlers

import (
	"net/http"

	"elafcatalog/internal/brands"
	"elafcatalog/internal/common"

	"github.com/labstack/echo/v4"
)

// BrandHandlers handles brand export requests
type BrandHandlers struct{}

func NewBrandHandlers() *BrandHandlers {
	return &BrandHandlers{}
}

// CleanBrands keeps only the id and name of every posted brand.
//
//	@Summary	Reduce brands to id and name
//	@Tags		brands
//	@Accept		json
//	@Produce	json
//	@Param		brands	body		[]object	true	"Brand records"
//	@Success	200		{array}		models.Brand
//	@Failure	400		{object}	common.ErrorResponse
//	@Router		/v1/brands/clean [post]
func (h *BrandHandlers) CleanBrands(c echo.Context) error {
	raw, err := brands.Decode(c.Request().Body)
	if err != nil {
		return common.SendClientError(c, "Invalid request body: expected a JSON array of brand objects")
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c.Response().WriteHeader(http.StatusOK)
	return brands.Encode(c.Response(), brands.Clean(raw))
}
