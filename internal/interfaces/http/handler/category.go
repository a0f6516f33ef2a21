package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/catalog"
)

// CategoryLister reads categories with their listing counts
type CategoryLister interface {
	Categories(ctx context.Context) ([]catalog.CategoryWithCount, error)
}

// CategoryResponse is a category with the number of untraded products in it
type CategoryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name" example:"Electronics"`
	Type         string    `json:"type" example:"physical"`
	ProductCount int64     `json:"product_count" example:"3"`
}

// CategoryHandler serves the category list
type CategoryHandler struct {
	BaseHandler
	categories CategoryLister
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories CategoryLister) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List godoc
// @ID           listCategories
// @Summary      List categories
// @Description  All categories with the count of untraded products in each
// @Tags         categories
// @Produce      json
// @Success      200 {object} APIResponse[[]CategoryResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	rows, err := h.categories.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]CategoryResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, CategoryResponse{
			ID:           row.ID,
			Name:         row.Name,
			Type:         string(row.Type),
			ProductCount: row.ProductCount,
		})
	}
	h.Success(c, out)
}
