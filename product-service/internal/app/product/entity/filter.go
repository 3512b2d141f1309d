package entity

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FilterKind - вид критерия фасетного поиска
type FilterKind string

const (
	FilterQuery    FilterKind = "query"
	FilterPrice    FilterKind = "price"
	FilterCategory FilterKind = "category"
	FilterStars    FilterKind = "stars"
	FilterSub      FilterKind = "sub"
	FilterShipping FilterKind = "shipping"
	FilterBrand    FilterKind = "brand"
	FilterColor    FilterKind = "color"
)

// StarsResultLimit - максимум товаров в выдаче по рейтингу
const StarsResultLimit = 21

// SearchFiltersRequest - тело POST /search/filters.
// Поля не валидируются целиком: проверяется только выигравший критерий.
type SearchFiltersRequest struct {
	Query    string    `json:"query"`
	Price    []float64 `json:"price"`
	Category string    `json:"category"`
	Stars    int       `json:"stars"`
	Sub      string    `json:"sub"`
	Shipping bool      `json:"shipping"`
	Brand    string    `json:"brand"`
	Color    string    `json:"color"`
}

// FilterCriterion - ровно один из восьми критериев; заполнены только поля своего вида
type FilterCriterion struct {
	Kind     FilterKind
	Text     string             // query, brand, color
	MinPrice float64            // price
	MaxPrice float64            // price
	Ref      primitive.ObjectID // category, sub
	Stars    int                // stars
	Shipping bool               // shipping
}

// Criterion возвращает первый переданный критерий в порядке
// query, price, category, stars, sub, shipping, brand, color.
// Остальные поля не читаются, поэтому их некорректные значения не приводят к ошибке.
// Без критериев возвращает nil.
//
// stars не ограничен диапазоном 1-5: значение вне его просто ничего не находит.
func (r *SearchFiltersRequest) Criterion() (*FilterCriterion, error) {
	switch {
	case r.Query != "":
		return &FilterCriterion{Kind: FilterQuery, Text: r.Query}, nil
	case r.Price != nil:
		if len(r.Price) != 2 {
			return nil, fmt.Errorf("price must be a [min, max] pair")
		}
		return &FilterCriterion{Kind: FilterPrice, MinPrice: r.Price[0], MaxPrice: r.Price[1]}, nil
	case r.Category != "":
		id, err := primitive.ObjectIDFromHex(r.Category)
		if err != nil {
			return nil, fmt.Errorf("invalid category id: %w", err)
		}
		return &FilterCriterion{Kind: FilterCategory, Ref: id}, nil
	case r.Stars != 0:
		return &FilterCriterion{Kind: FilterStars, Stars: r.Stars}, nil
	case r.Sub != "":
		id, err := primitive.ObjectIDFromHex(r.Sub)
		if err != nil {
			return nil, fmt.Errorf("invalid sub id: %w", err)
		}
		return &FilterCriterion{Kind: FilterSub, Ref: id}, nil
	case r.Shipping:
		return &FilterCriterion{Kind: FilterShipping, Shipping: true}, nil
	case r.Brand != "":
		return &FilterCriterion{Kind: FilterBrand, Text: r.Brand}, nil
	case r.Color != "":
		return &FilterCriterion{Kind: FilterColor, Text: r.Color}, nil
	default:
		return nil, nil
	}
}
