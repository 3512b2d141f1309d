package service

import (
	"context"
	"errors"
	"testing"

	"ecommerce/product-service/internal/app/product/entity"
	"ecommerce/product-service/internal/app/product/repository"
	"ecommerce/product-service/internal/app/product/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilterService_Dispatch_NoCriteria(t *testing.T) {
	searcher := new(mocks.MockProductRepository)
	service := NewFilterService(searcher)

	products, err := service.Dispatch(context.Background(), nil)

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	searcher.AssertExpectations(t)
}

func TestFilterService_Dispatch_RunsCriterion(t *testing.T) {
	ctx := context.Background()
	searcher := new(mocks.MockProductRepository)
	service := NewFilterService(searcher)
	found := []entity.ProductView{{ID: primitive.NewObjectID(), Title: "Red Shoe"}}

	searcher.On("Search", ctx, "shoe").Return(found, nil)

	products, err := service.Dispatch(ctx, &entity.FilterCriterion{Kind: entity.FilterQuery, Text: "shoe"})

	require.NoError(t, err)
	assert.Equal(t, found, products)
	searcher.AssertNotCalled(t, "FindByAttribute", mock.Anything, mock.Anything, mock.Anything)
	searcher.AssertExpectations(t)
}

func TestFilterService_Dispatch_Error(t *testing.T) {
	ctx := context.Background()
	searcher := new(mocks.MockProductRepository)
	service := NewFilterService(searcher)

	searcher.On("FindByPriceRange", ctx, 10.0, 20.0).Return(nil, errors.New("db error"))

	products, err := service.Dispatch(ctx, &entity.FilterCriterion{Kind: entity.FilterPrice, MinPrice: 10, MaxPrice: 20})

	assert.Nil(t, products)
	assert.ErrorContains(t, err, "failed to search by price")
}

func TestFilterService_Run(t *testing.T) {
	ref := primitive.NewObjectID()

	tests := []struct {
		name      string
		criterion entity.FilterCriterion
		method    string
		args      []interface{}
	}{
		{"query", entity.FilterCriterion{Kind: entity.FilterQuery, Text: "shoe"}, "Search", []interface{}{"shoe"}},
		{"price", entity.FilterCriterion{Kind: entity.FilterPrice, MinPrice: 0, MaxPrice: 100}, "FindByPriceRange", []interface{}{0.0, 100.0}},
		{"category", entity.FilterCriterion{Kind: entity.FilterCategory, Ref: ref}, "FindByAttribute", []interface{}{repository.AttrCategory, ref}},
		{"sub", entity.FilterCriterion{Kind: entity.FilterSub, Ref: ref}, "FindByAttribute", []interface{}{repository.AttrSub, ref}},
		{"shipping", entity.FilterCriterion{Kind: entity.FilterShipping, Shipping: true}, "FindByAttribute", []interface{}{repository.AttrShipping, true}},
		{"brand", entity.FilterCriterion{Kind: entity.FilterBrand, Text: "Acme"}, "FindByAttribute", []interface{}{repository.AttrBrand, "Acme"}},
		{"color", entity.FilterCriterion{Kind: entity.FilterColor, Text: "Red"}, "FindByAttribute", []interface{}{repository.AttrColor, "Red"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			searcher := new(mocks.MockProductRepository)
			service := NewFilterService(searcher)

			searcher.On(tt.method, append([]interface{}{ctx}, tt.args...)...).Return([]entity.ProductView{}, nil)

			_, err := service.Run(ctx, tt.criterion)

			require.NoError(t, err)
			searcher.AssertExpectations(t)
		})
	}
}

func TestFilterService_Run_Stars(t *testing.T) {
	ctx := context.Background()
	searcher := new(mocks.MockProductRepository)
	service := NewFilterService(searcher)
	ids := []primitive.ObjectID{primitive.NewObjectID()}
	found := []entity.ProductView{{ID: ids[0]}}

	searcher.On("IDsByRatingBucket", ctx, 4, int64(entity.StarsResultLimit)).Return(ids, nil)
	searcher.On("FindByIDs", ctx, ids).Return(found, nil)

	products, err := service.Run(ctx, entity.FilterCriterion{Kind: entity.FilterStars, Stars: 4})

	require.NoError(t, err)
	assert.Equal(t, found, products)
	searcher.AssertExpectations(t)
}

func TestFilterService_Run_StarsBucketError(t *testing.T) {
	ctx := context.Background()
	searcher := new(mocks.MockProductRepository)
	service := NewFilterService(searcher)

	searcher.On("IDsByRatingBucket", ctx, 2, int64(entity.StarsResultLimit)).Return(nil, errors.New("db error"))

	_, err := service.Run(ctx, entity.FilterCriterion{Kind: entity.FilterStars, Stars: 2})

	assert.Error(t, err)
	searcher.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
}

func TestFilterService_Run_UnknownKind(t *testing.T) {
	service := NewFilterService(new(mocks.MockProductRepository))

	_, err := service.Run(context.Background(), entity.FilterCriterion{Kind: "weight"})

	assert.Error(t, err)
}
