package handler

import (
	"net/http"

	"storefront/internal/apierror"
	"storefront/internal/dto"
	"storefront/internal/infra"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20 // 5 MiB

type ProductsHandler struct {
	svc     service.ProductService
	catalog service.CatalogService
	storage infra.Storage
}

func NewProductsHandler(svc service.ProductService, catalog service.CatalogService, storage infra.Storage) *ProductsHandler {
	return &ProductsHandler{svc: svc, catalog: catalog, storage: storage}
}

func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.catalog.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, apierror.OK(resp))
}

func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.catalog.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, apierror.OK(resp))
}

func (h *ProductsHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(resp))
}

func (h *ProductsHandler) List(c *gin.Context) {
	filter := dto.ProductFilter{
		Name:       c.Query("name"),
		CategoryID: c.Query("category_id"),
		Deleted:    c.Query("deleted"),
		Page:       intQuery(c, "page", 1),
		Limit:      intQuery(c, "limit", 50),
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(resp))
}

// PublicList is the unauthenticated browse endpoint: live products only,
// the deleted filter is not honored here.
func (h *ProductsHandler) PublicList(c *gin.Context) {
	filter := dto.ProductFilter{
		Name:       c.Query("name"),
		CategoryID: c.Query("category_id"),
		Page:       intQuery(c, "page", 1),
		Limit:      intQuery(c, "limit", 50),
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(resp))
}

func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	h.catalog.Invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *ProductsHandler) Restore(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Restore(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	h.catalog.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, apierror.OK(resp))
}

func (h *ProductsHandler) AdjustStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdjustStock(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.catalog.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, apierror.OK(resp))
}

// UploadImage accepts a multipart "image" part, stores it, and points the
// product at the resulting URL.
func (h *ProductsHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Missing image file"))
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, apierror.New("Image exceeds 5 MiB"))
		return
	}
	url, err := h.storage.Upload(file)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Image upload failed"))
		return
	}
	resp, err := h.svc.SetImage(c.Request.Context(), actorFrom(c), id, url)
	if err != nil {
		writeError(c, err)
		return
	}
	h.catalog.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, apierror.OK(resp))
}

func (h *ProductsHandler) History(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rows, total, err := h.svc.History(c.Request.Context(), id, intQuery(c, "page", 1), intQuery(c, "limit", 50))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(gin.H{"data": rows, "total": total}))
}
