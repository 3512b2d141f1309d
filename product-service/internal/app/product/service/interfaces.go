package service

import (
	"context"

	"ecommerce/product-service/internal/app/product/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateProductRequest, postedBy *primitive.ObjectID) (*entity.Product, error)
	Read(ctx context.Context, slug string) (*entity.ProductView, error)
	Update(ctx context.Context, slug string, req *entity.UpdateProductRequest) (*entity.Product, error)
	Remove(ctx context.Context, slug string) (*entity.Product, error)
	ListAll(ctx context.Context, limit int64) ([]entity.ProductView, error)
	List(ctx context.Context, req *entity.ListProductsRequest) ([]entity.ProductView, error)
	Count(ctx context.Context) (int64, error)
	RefreshTotal(ctx context.Context) (int64, error)
	Rate(ctx context.Context, productID primitive.ObjectID, email string, star int) (*RatingResult, error)
	ListRelated(ctx context.Context, productID primitive.ObjectID) ([]entity.ProductView, error)
}

type FilterServiceInterface interface {
	Dispatch(ctx context.Context, criterion *entity.FilterCriterion) ([]entity.ProductView, error)
}

var (
	_ ProductServiceInterface = (*ProductService)(nil)
	_ FilterServiceInterface  = (*FilterService)(nil)
)
