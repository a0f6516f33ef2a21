package listing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/shared"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindPage(ctx context.Context, filter catalog.ProductFilter, offset, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter catalog.ProductFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAllWithProductCounts(ctx context.Context) ([]catalog.CategoryWithCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.CategoryWithCount), args.Error(1)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func makeProducts(n int) []catalog.Product {
	items := make([]catalog.Product, n)
	for i := range items {
		items[i] = catalog.Product{Title: fmt.Sprintf("item %d", i+1), WantedTrades: "anything"}
	}
	return items
}

func TestEngine_Page(t *testing.T) {
	ctx := context.Background()
	categoryID := uuid.New()
	byCategory := catalog.ProductFilter{CategoryID: &categoryID}

	t.Run("seven items split into five and two", func(t *testing.T) {
		products := new(MockProductRepository)
		engine := NewEngine(products, new(MockCategoryRepository))
		products.On("FindPage", mock.Anything, byCategory, 0, PageSize).Return(makeProducts(5), nil)
		products.On("FindPage", mock.Anything, byCategory, 5, PageSize).Return(makeProducts(2), nil)
		products.On("Count", mock.Anything, byCategory).Return(int64(7), nil)

		first, err := engine.Page(ctx, ByCategory(categoryID), 1)
		require.NoError(t, err)
		assert.Len(t, first.Items, 5)
		assert.Equal(t, 2, first.TotalPages)
		assert.False(t, first.HasPrev)
		assert.True(t, first.HasNext)
		assert.False(t, first.NoResults)

		second, err := engine.Page(ctx, ByCategory(categoryID), 2)
		require.NoError(t, err)
		assert.Len(t, second.Items, 2)
		assert.True(t, second.HasPrev)
		assert.False(t, second.HasNext)
		products.AssertExpectations(t)
	})

	t.Run("page past the end is empty with metadata", func(t *testing.T) {
		products := new(MockProductRepository)
		engine := NewEngine(products, new(MockCategoryRepository))
		products.On("FindPage", mock.Anything, byCategory, 45, PageSize).Return([]catalog.Product{}, nil)
		products.On("Count", mock.Anything, byCategory).Return(int64(7), nil)

		page, err := engine.Page(ctx, ByCategory(categoryID), 10)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, int64(7), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.True(t, page.HasPrev)
		assert.False(t, page.HasNext)
		assert.False(t, page.NoResults)
	})

	t.Run("no matches signals no results", func(t *testing.T) {
		products := new(MockProductRepository)
		engine := NewEngine(products, new(MockCategoryRepository))
		byOwner := catalog.ProductFilter{OwnerExternalID: "12345"}
		products.On("FindPage", mock.Anything, byOwner, 0, PageSize).Return(nil, nil)
		products.On("Count", mock.Anything, byOwner).Return(int64(0), nil)

		page, err := engine.Page(ctx, ByOwner("12345"), 1)
		require.NoError(t, err)
		assert.True(t, page.NoResults)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.Equal(t, 0, page.TotalPages)
		assert.False(t, page.HasNext)
	})

	t.Run("page below one is rejected", func(t *testing.T) {
		products := new(MockProductRepository)
		engine := NewEngine(products, new(MockCategoryRepository))

		for _, n := range []int{0, -1} {
			_, err := engine.Page(ctx, ByCategory(categoryID), n)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, shared.CodeInvalidPage, de.Code)
		}
		products.AssertNotCalled(t, "Count", mock.Anything, mock.Anything)
	})

	t.Run("empty filter is rejected", func(t *testing.T) {
		engine := NewEngine(new(MockProductRepository), new(MockCategoryRepository))
		_, err := engine.Page(ctx, Filter{}, 1)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("count failure fails the page", func(t *testing.T) {
		products := new(MockProductRepository)
		engine := NewEngine(products, new(MockCategoryRepository))
		products.On("FindPage", mock.Anything, byCategory, 0, PageSize).Return(makeProducts(5), nil)
		products.On("Count", mock.Anything, byCategory).
			Return(int64(0), shared.WrapStorage("count products", errors.New("connection reset by peer")))

		_, err := engine.Page(ctx, ByCategory(categoryID), 1)
		assert.ErrorIs(t, err, shared.ErrStorage)
	})
}

func TestEngine_Categories(t *testing.T) {
	categories := new(MockCategoryRepository)
	engine := NewEngine(new(MockProductRepository), categories)
	rows := []catalog.CategoryWithCount{
		{Category: catalog.Category{ID: uuid.New(), Name: "Books"}, ProductCount: 3},
		{Category: catalog.Category{ID: uuid.New(), Name: "Electronics"}, ProductCount: 0},
	}
	categories.On("FindAllWithProductCounts", mock.Anything).Return(rows, nil)

	got, err := engine.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestPage_Navigation(t *testing.T) {
	tests := []struct {
		name   string
		page   Page
		tokens []string
	}{
		{"single page", Page{Number: 1, TotalPages: 1}, nil},
		{"first of two", Page{Number: 1, TotalPages: 2, HasNext: true}, []string{"page_products:2"}},
		{"middle", Page{Number: 2, TotalPages: 3, HasPrev: true, HasNext: true}, []string{"page_products:1", "page_products:3"}},
		{"last", Page{Number: 3, TotalPages: 3, HasPrev: true}, []string{"page_products:2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokens []string
			for _, l := range tt.page.Navigation("page_products") {
				tokens = append(tokens, l.Token)
			}
			assert.Equal(t, tt.tokens, tokens)
		})
	}
}

func TestFormatProduct(t *testing.T) {
	listed := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)

	t.Run("all fields in order", func(t *testing.T) {
		p := &catalog.Product{
			Title:        "iPhone 13",
			WantedTrades: "MacBook",
			Category:     &catalog.Category{Name: "Electronics"},
		}
		p.CreatedAt = listed

		assert.Equal(t,
			"🏷 Title: iPhone 13\n📁 Category: Electronics\n💭 Wanted: MacBook\n📅 Listed: 2024-03-09",
			FormatProduct(p))
	})

	t.Run("missing fields are dropped", func(t *testing.T) {
		p := &catalog.Product{Title: "Guitar", WantedTrades: "Amp"}
		assert.Equal(t, "🏷 Title: Guitar\n💭 Wanted: Amp", FormatProduct(p))
	})
}
