package service

import (
	"context"
	"fmt"

	"ecommerce/pkg/metrics"
	"ecommerce/product-service/internal/app/product/entity"
	"ecommerce/product-service/internal/app/product/repository"
)

// criterionNone - метка метрики для запроса без критериев
const criterionNone = "none"

// FilterService выполняет фасетный поиск.
// Каждый критерий - отдельный запрос к MongoDB; критерии не объединяются.
type FilterService struct {
	searcher repository.ProductSearcher
}

func NewFilterService(searcher repository.ProductSearcher) *FilterService {
	return &FilterService{searcher: searcher}
}

// Dispatch выполняет выбранный критерий; выбор делает SearchFiltersRequest.Criterion.
// criterion == nil (в запросе нет ни одного критерия) - пустой список без обращения к MongoDB.
// Ошибка хранилища оборачивается с указанием вида критерия.
func (s *FilterService) Dispatch(ctx context.Context, criterion *entity.FilterCriterion) ([]entity.ProductView, error) {
	if criterion == nil {
		metrics.CatalogFilterSearches.WithLabelValues(criterionNone).Inc()
		return []entity.ProductView{}, nil
	}

	metrics.CatalogFilterSearches.WithLabelValues(string(criterion.Kind)).Inc()

	products, err := s.Run(ctx, *criterion)
	if err != nil {
		return nil, fmt.Errorf("failed to search by %s: %w", criterion.Kind, err)
	}

	return products, nil
}

// Run выполняет один критерий
func (s *FilterService) Run(ctx context.Context, c entity.FilterCriterion) ([]entity.ProductView, error) {
	switch c.Kind {
	case entity.FilterQuery:
		return s.searcher.Search(ctx, c.Text)
	case entity.FilterPrice:
		return s.searcher.FindByPriceRange(ctx, c.MinPrice, c.MaxPrice)
	case entity.FilterCategory:
		return s.searcher.FindByAttribute(ctx, repository.AttrCategory, c.Ref)
	case entity.FilterStars:
		return s.byStars(ctx, c.Stars)
	case entity.FilterSub:
		return s.searcher.FindByAttribute(ctx, repository.AttrSub, c.Ref)
	case entity.FilterShipping:
		return s.searcher.FindByAttribute(ctx, repository.AttrShipping, c.Shipping)
	case entity.FilterBrand:
		return s.searcher.FindByAttribute(ctx, repository.AttrBrand, c.Text)
	case entity.FilterColor:
		return s.searcher.FindByAttribute(ctx, repository.AttrColor, c.Text)
	default:
		return nil, fmt.Errorf("unknown filter criterion %q", c.Kind)
	}
}

// byStars: сначала id товаров с floor(avg) == stars, затем сами товары
func (s *FilterService) byStars(ctx context.Context, stars int) ([]entity.ProductView, error) {
	ids, err := s.searcher.IDsByRatingBucket(ctx, stars, entity.StarsResultLimit)
	if err != nil {
		return nil, err
	}
	return s.searcher.FindByIDs(ctx, ids)
}
