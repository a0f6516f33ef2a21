package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/application/listing"
	"github.com/tradepost/backend/internal/domain/catalog"
)

// ProductPager pages through listings
type ProductPager interface {
	Page(ctx context.Context, filter listing.Filter, n int) (*listing.Page, error)
	Category(ctx context.Context, id uuid.UUID) (*catalog.Category, error)
}

// ProductListQuery selects the listing to page through. Exactly one of
// category_id and owner must be set.
type ProductListQuery struct {
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Owner      string `form:"owner" binding:"omitempty,max=64"`
	Page       int    `form:"page" binding:"omitempty"`
}

// ProductResponse represents a listed product
type ProductResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title" example:"iPhone 13"`
	WantedTrades string    `json:"wanted_trades" example:"MacBook"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty" example:"Electronics"`
	UserID       uuid.UUID `json:"user_id"`
	ListedAt     time.Time `json:"listed_at"`
	// Text is the product rendered the way chat listings show it
	Text string `json:"text"`
}

// ProductPageResponse wraps one listing page
type ProductPageResponse struct {
	Items     []ProductResponse `json:"items"`
	HasPrev   bool              `json:"has_prev"`
	HasNext   bool              `json:"has_next"`
	NoResults bool              `json:"no_results"`
}

// ProductHandler serves product listings
type ProductHandler struct {
	BaseHandler
	listings ProductPager
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(listings ProductPager) *ProductHandler {
	return &ProductHandler{listings: listings}
}

// List godoc
// @ID           listProducts
// @Summary      Page through untraded products
// @Description  Lists untraded products of a category or of an owner, five per page. A page past the end is empty but keeps the totals.
// @Tags         products
// @Produce      json
// @Param        category_id query string false "Category ID" format(uuid)
// @Param        owner query string false "Owner external id"
// @Param        page query int false "Page number, 1-indexed" default(1)
// @Success      200 {object} APIResponse[ProductPageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var q ProductListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}
	if _, ok := c.GetQuery("page"); !ok {
		q.Page = 1
	}

	ctx := c.Request.Context()
	var filter listing.Filter
	switch {
	case q.CategoryID != "" && q.Owner != "":
		h.BadRequest(c, "Use either category_id or owner, not both")
		return
	case q.CategoryID != "":
		id := uuid.MustParse(q.CategoryID)
		if _, err := h.listings.Category(ctx, id); err != nil {
			h.HandleError(c, err)
			return
		}
		filter = listing.ByCategory(id)
	case q.Owner != "":
		filter = listing.ByOwner(q.Owner)
	default:
		h.BadRequest(c, "category_id or owner is required")
		return
	}

	page, err := h.listings.Page(ctx, filter, q.Page)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toProductPageResponse(page), page.Total, page.Number, listing.PageSize)
}

func toProductPageResponse(page *listing.Page) ProductPageResponse {
	items := make([]ProductResponse, 0, len(page.Items))
	for i := range page.Items {
		p := &page.Items[i]
		item := ProductResponse{
			ID:           p.ID,
			Title:        p.Title,
			WantedTrades: p.WantedTrades,
			CategoryID:   p.CategoryID,
			UserID:       p.UserID,
			ListedAt:     p.CreatedAt,
			Text:         listing.FormatProduct(p),
		}
		if p.Category != nil {
			item.CategoryName = p.Category.Name
		}
		items = append(items, item)
	}
	return ProductPageResponse{
		Items:     items,
		HasPrev:   page.HasPrev,
		HasNext:   page.HasNext,
		NoResults: page.NoResults,
	}
}
