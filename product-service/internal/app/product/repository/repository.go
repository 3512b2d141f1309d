package repository

import (
	"context"
	"errors"

	"ecommerce/product-service/internal/app/product/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateSlug   = errors.New("product with this slug already exists")
)

// ListOptions - параметры постраничной выборки. Пустой SortField - без сортировки,
// Limit <= 0 - без ограничения.
type ListOptions struct {
	SortField string
	SortOrder int
	Skip      int64
	Limit     int64
}

// ProductRepository определяет работу с товарами в MongoDB
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	GetBySlug(ctx context.Context, slug string) (*entity.ProductView, error)
	UpdateBySlug(ctx context.Context, slug string, req *entity.UpdateProductRequest) (*entity.Product, error)
	DeleteBySlug(ctx context.Context, slug string) (*entity.Product, error)
	List(ctx context.Context, opts ListOptions) ([]entity.ProductView, error)
	EstimatedCount(ctx context.Context) (int64, error)
	PushRating(ctx context.Context, id primitive.ObjectID, rating entity.Rating) (*entity.Product, error)
	SetRatingStar(ctx context.Context, id primitive.ObjectID, existing entity.Rating, star int) (*entity.UpdateResult, error)
	FindRelated(ctx context.Context, product *entity.Product, limit int64) ([]entity.ProductView, error)

	ProductSearcher
}

// ProductSearcher - возможности хранилища для фасетного поиска.
// Ссылки в результатах раскрыты до {_id, name}.
type ProductSearcher interface {
	Search(ctx context.Context, text string) ([]entity.ProductView, error)
	FindByPriceRange(ctx context.Context, low, high float64) ([]entity.ProductView, error)
	FindByAttribute(ctx context.Context, attr Attribute, value interface{}) ([]entity.ProductView, error)
	IDsByRatingBucket(ctx context.Context, stars int, limit int64) ([]primitive.ObjectID, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.ProductView, error)
}

// Attribute - поле товара, по которому возможен точный фильтр
type Attribute string

const (
	AttrCategory Attribute = "category"
	AttrSub      Attribute = "subs"
	AttrShipping Attribute = "shipping"
	AttrBrand    Attribute = "brand"
	AttrColor    Attribute = "color"
)

// UserRepository - только чтение пользователей, которыми владеет другой сервис
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
