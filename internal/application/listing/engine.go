// Package listing pages through untraded products for chat and HTTP listings.
package listing

import (
	"context"

	"github.com/google/uuid"
	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/shared"
	"golang.org/x/sync/errgroup"
)

// PageSize is the number of products shown per page
const PageSize = 5

// Filter selects which products a listing walks over. Build one with
// ByCategory or ByOwner.
type Filter struct {
	categoryID uuid.UUID
	owner      string
}

// ByCategory lists untraded products in a category
func ByCategory(id uuid.UUID) Filter {
	return Filter{categoryID: id}
}

// ByOwner lists untraded products owned by the sender with externalID
func ByOwner(externalID string) Filter {
	return Filter{owner: externalID}
}

func (f Filter) validate() error {
	switch {
	case f.categoryID != uuid.Nil && f.owner != "":
		return shared.NewValidationError(shared.CodeInvalidInput, "Listing filter must select a category or an owner, not both")
	case f.categoryID == uuid.Nil && f.owner == "":
		return shared.NewValidationError(shared.CodeInvalidInput, "Listing filter must select a category or an owner")
	}
	return nil
}

func (f Filter) toProductFilter() catalog.ProductFilter {
	if f.categoryID != uuid.Nil {
		id := f.categoryID
		return catalog.ProductFilter{CategoryID: &id}
	}
	return catalog.ProductFilter{OwnerExternalID: f.owner}
}

// Page is one window of a listing together with its navigation metadata
type Page struct {
	Items      []catalog.Product
	Number     int
	Total      int64
	TotalPages int
	HasPrev    bool
	HasNext    bool
	// NoResults is set when the filter matches nothing at all
	NoResults bool
}

// Engine computes listing pages
type Engine struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
}

// NewEngine creates a new listing Engine
func NewEngine(products catalog.ProductRepository, categories catalog.CategoryRepository) *Engine {
	return &Engine{products: products, categories: categories}
}

// Page returns page n (1-indexed) of the listing. A page past the end has no
// items but carries the same totals. The window and the count are read
// concurrently.
func (e *Engine) Page(ctx context.Context, filter Filter, n int) (*Page, error) {
	if n < 1 {
		return nil, shared.NewValidationError(shared.CodeInvalidPage, "Page number must be at least 1")
	}
	if err := filter.validate(); err != nil {
		return nil, err
	}
	pf := filter.toProductFilter()
	req := shared.PageRequest{Number: n, Size: PageSize}

	var (
		items []catalog.Product
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = e.products.FindPage(gctx, pf, req.Offset(), req.Size)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = e.products.Count(gctx, pf)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return newPage(items, n, total), nil
}

func newPage(items []catalog.Product, n int, total int64) *Page {
	totalPages := shared.TotalPages(total, PageSize)
	if items == nil {
		items = []catalog.Product{}
	}
	return &Page{
		Items:      items,
		Number:     n,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    n > 1,
		HasNext:    n < totalPages,
		NoResults:  total == 0,
	}
}

// Categories returns every category with its count of untraded products
func (e *Engine) Categories(ctx context.Context) ([]catalog.CategoryWithCount, error) {
	return e.categories.FindAllWithProductCounts(ctx)
}

// Category looks up a single category, for page headings
func (e *Engine) Category(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return e.categories.FindByID(ctx, id)
}
