package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	identityapp "github.com/tradepost/backend/internal/application/identity"
	"github.com/tradepost/backend/internal/application/listing"
	"github.com/tradepost/backend/internal/domain/catalog"
	"github.com/tradepost/backend/internal/domain/trade"
	"github.com/tradepost/backend/internal/interfaces/chat"
)

type MockUserCreator struct {
	mock.Mock
}

func (m *MockUserCreator) Create(ctx context.Context, req identityapp.CreateUserRequest) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.UserResponse), args.Error(1)
}

type MockCategoryLister struct {
	mock.Mock
}

func (m *MockCategoryLister) Categories(ctx context.Context) ([]catalog.CategoryWithCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.CategoryWithCount), args.Error(1)
}

type MockProductPager struct {
	mock.Mock
}

func (m *MockProductPager) Page(ctx context.Context, filter listing.Filter, n int) (*listing.Page, error) {
	args := m.Called(ctx, filter, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Page), args.Error(1)
}

func (m *MockProductPager) Category(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

type MockTradeSettler struct {
	mock.Mock
}

func (m *MockTradeSettler) Settle(ctx context.Context, productIDs []uuid.UUID) (*trade.Trade, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Trade), args.Error(1)
}

type MockChatDispatcher struct {
	mock.Mock
}

func (m *MockChatDispatcher) Dispatch(ctx context.Context, in chat.Inbound) chat.Reply {
	args := m.Called(ctx, in)
	return args.Get(0).(chat.Reply)
}
