package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/product-catalog/internal/api/schema"
	"github.com/99minutos/product-catalog/internal/core/ports"
)

// ProductHandler handles HTTP requests for product operations.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// Create handles POST /v1/products.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      schema.CreateProductRequest  true  "Product"
// @Success      201   {object}  schema.RawProductResponse
// @Failure      400   {object}  schema.ErrorResponse
// @Failure      401   {object}  schema.ErrorResponse
// @Failure      422   {object}  schema.ErrorResponse
// @Router       /v1/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req schema.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	product, err := h.service.Create(c.Request().Context(), req.ToInput(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, schema.ToRawProductResponse(product))
}

// List handles GET /v1/products.
//
// Admins see soft-deleted products too.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"  default(1)
// @Param        limit  query     int  false  "Page size"       default(10)
// @Success      200    {object}  schema.ProductPageResponse
// @Failure      422    {object}  schema.ErrorResponse
// @Router       /v1/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	req := schema.NewPaginationRequest()
	if err := echo.QueryParamsBinder(c).
		Int("page", &req.Page).
		Int("limit", &req.Limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page and limit must be integers")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	page, err := h.service.FindAll(c.Request().Context(), req.ToInput(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schema.ToProductPageResponse(page))
}

// Get handles GET /v1/products/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  schema.ProductResponse
// @Failure      404  {object}  schema.ErrorResponse
// @Failure      502  {object}  schema.ErrorResponse
// @Router       /v1/products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	view, err := h.service.FindOne(c.Request().Context(), id, caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schema.ToProductResponse(view))
}

// Update handles PATCH /v1/products/:id.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                          true  "Product id"
// @Param        body  body      schema.UpdateProductRequest  true  "Fields to change"
// @Success      200   {object}  schema.ProductResponse
// @Failure      404   {object}  schema.ErrorResponse
// @Failure      422   {object}  schema.ErrorResponse
// @Router       /v1/products/{id} [patch]
func (h *ProductHandler) Update(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req schema.UpdateProductRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	view, err := h.service.Update(c.Request().Context(), req.ToInput(id), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schema.ToProductResponse(view))
}

// Remove handles DELETE /v1/products/:id. The product is soft-deleted.
//
// @Summary      Soft-delete a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  schema.ProductResponse
// @Failure      404  {object}  schema.ErrorResponse
// @Router       /v1/products/{id} [delete]
func (h *ProductHandler) Remove(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	view, err := h.service.Remove(c.Request().Context(), id, caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schema.ToProductResponse(view))
}

// Restore handles POST /v1/products/:id/restore.
//
// @Summary      Restore a soft-deleted product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  schema.ProductResponse
// @Failure      404  {object}  schema.ErrorResponse
// @Router       /v1/products/{id}/restore [post]
func (h *ProductHandler) Restore(c echo.Context) error {
	caller, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	view, err := h.service.Restore(c.Request().Context(), id, caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, schema.ToProductResponse(view))
}
