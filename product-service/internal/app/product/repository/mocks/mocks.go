package mocks

import (
	"context"

	"ecommerce/product-service/internal/app/product/entity"
	"ecommerce/product-service/internal/app/product/repository"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockProductRepository мок для ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySlug(ctx context.Context, slug string) (*entity.ProductView, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProductView), args.Error(1)
}

func (m *MockProductRepository) UpdateBySlug(ctx context.Context, slug string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	args := m.Called(ctx, slug, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) DeleteBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, opts repository.ListOptions) ([]entity.ProductView, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductView), args.Error(1)
}

func (m *MockProductRepository) EstimatedCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) PushRating(ctx context.Context, id primitive.ObjectID, rating entity.Rating) (*entity.Product, error) {
	args := m.Called(ctx, id, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) SetRatingStar(ctx context.Context, id primitive.ObjectID, existing entity.Rating, star int) (*entity.UpdateResult, error) {
	args := m.Called(ctx, id, existing, star)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UpdateResult), args.Error(1)
}

func (m *MockProductRepository) FindRelated(ctx context.Context, product *entity.Product, limit int64) ([]entity.ProductView, error) {
	args := m.Called(ctx, product, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductView), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, text string) ([]entity.ProductView, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductView), args.Error(1)
}

func (m *MockProductRepository) FindByPriceRange(ctx context.Context, low, high float64) ([]entity.ProductView, error) {
	args := m.Called(ctx, low, high)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductView), args.Error(1)
}

func (m *MockProductRepository) FindByAttribute(ctx context.Context, attr repository.Attribute, value interface{}) ([]entity.ProductView, error) {
	args := m.Called(ctx, attr, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductView), args.Error(1)
}

func (m *MockProductRepository) IDsByRatingBucket(ctx context.Context, stars int, limit int64) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, stars, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.ProductView, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductView), args.Error(1)
}

// MockUserRepository мок для UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockTotalCache мок для кеша количества товаров
type MockTotalCache struct {
	mock.Mock
}

func (m *MockTotalCache) GetTotal(ctx context.Context) (int64, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockTotalCache) SetTotal(ctx context.Context, total int64) error {
	args := m.Called(ctx, total)
	return args.Error(0)
}

func (m *MockTotalCache) InvalidateTotal(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTotalCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockMessagePublisher мок для Kafka producer
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
