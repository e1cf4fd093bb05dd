package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/service"
	"go.uber.org/zap"
)

// ShowProductManager 渲染产品页编辑器与产品记录列表
func (a *API) ShowProductManager(c *gin.Context) {
	section, _ := content.LookupSection(content.SectionProduct)
	data := editorPageData(a.editorFor(c, section))

	products, err := a.products.List(c.Request.Context())
	if err != nil {
		a.log.Warn("list products failed", zap.Error(err))
		data["productsError"] = "Error fetching products"
	}
	data["products"] = products
	a.renderHTML(c, http.StatusOK, "admin_products.html", a.adminPage(c, content.SectionProduct, "Products Manager", data))
}

// ListProducts returns every product record.
func (a *API) ListProducts(c *gin.Context) {
	products, err := a.products.List(c.Request.Context())
	if err != nil {
		a.log.Warn("list products failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Error fetching products")
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// CreateProduct 新增一条产品记录，缺失字段按模板补齐
func (a *API) CreateProduct(c *gin.Context) {
	var record map[string]any
	if !bindJSON(c, &record, "Invalid product payload") {
		return
	}
	product, err := a.products.Create(c.Request.Context(), record)
	if err != nil {
		if errors.Is(err, service.ErrProductInvalid) {
			respondError(c, http.StatusBadRequest, "Product title is required")
			return
		}
		a.log.Error("create product failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Error adding product")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product, "message": "Product added successfully!"})
}

// DeleteProduct removes a product record; unknown ids are reported as 404.
func (a *API) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := a.products.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product no longer exists. Refresh the list and try again.")
			return
		}
		a.log.Error("delete product failed", zap.String("id", id), zap.Error(err))
		respondError(c, http.StatusBadGateway, "Error deleting product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully!"})
}
