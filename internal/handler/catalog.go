package handler

import (
	"net/http"

	"storefront/internal/apierror"
	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the unauthenticated storefront read path.
type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) Catalog(c *gin.Context) {
	resp, err := h.svc.Catalog(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apierror.OK(resp))
}
