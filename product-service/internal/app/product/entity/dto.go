package entity

import (
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateProductRequest - тело POST /product
type CreateProductRequest struct {
	Title       string               `json:"title" validate:"required"`
	Description string               `json:"description"`
	Price       float64              `json:"price"`
	Category    *primitive.ObjectID  `json:"category"`
	Subs        []primitive.ObjectID `json:"subs"`
	Quantity    int                  `json:"quantity"`
	Sold        int                  `json:"sold"`
	Images      []Image              `json:"images"`
	Shipping    bool                 `json:"shipping"`
	Color       string               `json:"color"`
	Brand       string               `json:"brand"`
}

// UpdateProductRequest - тело PUT /product/:slug.
// nil означает, что поле не передано и не меняется.
type UpdateProductRequest struct {
	Title       *string               `json:"title"`
	Slug        *string               `json:"-"`
	Description *string               `json:"description"`
	Price       *float64              `json:"price"`
	Category    *primitive.ObjectID   `json:"category"`
	Subs        *[]primitive.ObjectID `json:"subs"`
	Quantity    *int                  `json:"quantity"`
	Sold        *int                  `json:"sold"`
	Images      *[]Image              `json:"images"`
	Shipping    *bool                 `json:"shipping"`
	Color       *string               `json:"color"`
	Brand       *string               `json:"brand"`
}

// ListProductsRequest - тело POST /products.
// Order принимает как строки (asc/desc), так и числа (1/-1).
type ListProductsRequest struct {
	Sort  string      `json:"sort"`
	Order interface{} `json:"order"`
	Page  int         `json:"page"`
}

// SortDirection переводит order в направление сортировки MongoDB
func (r *ListProductsRequest) SortDirection() int {
	switch v := r.Order.(type) {
	case string:
		switch strings.ToLower(v) {
		case "desc", "descending", "-1":
			return -1
		}
	case float64:
		if v < 0 {
			return -1
		}
	}
	return 1
}

type StarRequest struct {
	Star int `json:"star"`
}

// UpdateResult - подтверждение updateOne, отдаётся клиенту как есть
type UpdateResult struct {
	Acknowledged  bool        `json:"acknowledged"`
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId"`
}

type ErrorResponse struct {
	Err string `json:"err"`
}

// ParseCount разбирает :count как parseInt в JS: берутся ведущие цифры
// ("12abc" -> 12). ok=false означает отсутствие ограничения.
func ParseCount(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
