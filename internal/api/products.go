package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/catalog"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/gin-gonic/gin"
)

// GetPublicProducts handles GET /api/public/products.
// Query: pipe/hpkw (spec finder), q (search), category, grouped=true.
func (h *Handler) GetPublicProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var spec catalog.SpecQuery
	if err := c.ShouldBindQuery(&spec); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	var (
		products []models.Product
		err      error
	)
	switch {
	case c.Query("pipe") != "" || c.Query("hpkw") != "":
		products, err = h.catalog.FindBySpec(ctx, spec)
	case c.Query("q") != "":
		products, err = h.catalog.Search(ctx, c.Query("q"))
	case c.Query("category") != "":
		view, err := h.catalog.FilterByCategory(ctx, c.Query("category"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
		return
	default:
		products, err = h.catalog.ListPublicProducts(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if c.Query("grouped") == "true" {
		c.JSON(http.StatusOK, catalog.GroupByCategory(products))
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetSpecOptions handles GET /api/public/spec-options.
func (h *Handler) GetSpecOptions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	opts, err := h.catalog.SpecOptions(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

// CreateProduct handles POST /api/products (multipart or JSON).
func (h *Handler) CreateProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	in, uploaded, err := h.productInput(ctx, c)
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := h.catalog.Create(ctx, in)
	if err != nil {
		h.discardImage(ctx, uploaded)
		respondError(c, err)
		return
	}
	slog.Info("product created", "id", p.ID, "name", p.Name, "by", actor(c))
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

// UpdateProduct handles PUT /api/products/:id. Omitted fields keep their values.
func (h *Handler) UpdateProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, err := models.ParseNumericID(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid product ID")
		return
	}
	prev, err := h.catalog.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	in, uploaded, err := h.productInput(ctx, c)
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := h.catalog.Update(ctx, id, in)
	if err != nil {
		h.discardImage(ctx, uploaded)
		respondError(c, err)
		return
	}
	if prev.Image != p.Image {
		h.discardImage(ctx, prev.Image)
	}
	slog.Info("product updated", "id", p.ID, "by", actor(c))
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

// DeleteProduct handles DELETE /api/products/:id.
func (h *Handler) DeleteProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	id, err := models.ParseNumericID(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid product ID")
		return
	}
	p, err := h.catalog.Delete(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.discardImage(ctx, p.Image)
	slog.Info("product deleted", "id", p.ID, "name", p.Name, "by", actor(c))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// productFields are the multipart text fields that map onto ProductInput.
var productFields = []string{"name", "series", "category", "hp", "price", "stock", "image"}

// productInput reads a product payload from a multipart form or a JSON body.
// An uploaded "image" (or "imageFile") file is optimized, stored, and its
// URL replaces any image text field. The stored URL is also returned so a
// failed mutation can discard it.
func (h *Handler) productInput(ctx context.Context, c *gin.Context) (models.ProductInput, string, error) {
	var in models.ProductInput
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, "", fmt.Errorf("invalid product payload: %w", apperr.ErrValidation)
		}
		return in, "", nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return in, "", fmt.Errorf("invalid multipart form: %w", apperr.ErrValidation)
	}
	values := map[string]*string{}
	for _, f := range productFields {
		if v, ok := form.Value[f]; ok && len(v) > 0 {
			s := v[0]
			values[f] = &s
		}
	}
	in.Name, in.Series, in.Category = values["name"], values["series"], values["category"]
	in.HP, in.Price, in.Stock, in.Image = values["hp"], values["price"], values["stock"], values["image"]

	if raw := form.Value["table_data"]; len(raw) > 0 && strings.TrimSpace(raw[0]) != "" {
		var td models.TableData
		if err := json.Unmarshal([]byte(raw[0]), &td); err != nil {
			return in, "", fmt.Errorf("invalid table_data: %w", apperr.ErrValidation)
		}
		in.TableData = &td
	}

	fh := firstFile(form, "image", "imageFile")
	if fh == nil {
		return in, "", nil
	}
	url, err := h.storeImage(ctx, fh)
	if err != nil {
		return in, "", err
	}
	in.Image = &url
	return in, url, nil
}

func (h *Handler) storeImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	url, err := h.images.Store(ctx, f)
	if err != nil {
		return "", err
	}
	slog.Info("image stored", "filename", fh.Filename, "size", fh.Size, "url", url)
	return url, nil
}

// discardImage removes a stored image once no product refers to it.
// Failures are logged; the media audit sweeps anything left behind.
func (h *Handler) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	inUse, err := h.catalog.ImageInUse(ctx, url)
	if err != nil || inUse {
		return
	}
	if err := h.images.Remove(ctx, url); err != nil {
		slog.Warn("failed to remove image", "url", url, "error", err)
		return
	}
	slog.Info("image removed", "url", url)
}

func firstFile(form *multipart.Form, names ...string) *multipart.FileHeader {
	for _, n := range names {
		if files := form.File[n]; len(files) > 0 {
			return files[0]
		}
	}
	return nil
}

func actor(c *gin.Context) string {
	if p := principalFrom(c); p != nil {
		return p.Username
	}
	return ""
}
