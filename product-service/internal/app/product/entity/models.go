package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product - документ коллекции products в том виде, в котором он хранится.
// Ссылки (category, subs, postedBy) хранятся как ObjectID.
type Product struct {
	ID          primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Title       string               `json:"title" bson:"title"`
	Slug        string               `json:"slug" bson:"slug"`
	Description string               `json:"description" bson:"description"`
	Price       float64              `json:"price" bson:"price"`
	Category    *primitive.ObjectID  `json:"category" bson:"category,omitempty"`
	Subs        []primitive.ObjectID `json:"subs" bson:"subs"`
	Quantity    int                  `json:"quantity" bson:"quantity"`
	Sold        int                  `json:"sold" bson:"sold"`
	Images      []Image              `json:"images" bson:"images"`
	Shipping    bool                 `json:"shipping" bson:"shipping"`
	Color       string               `json:"color" bson:"color"`
	Brand       string               `json:"brand" bson:"brand"`
	Ratings     []Rating             `json:"ratings" bson:"ratings"`
	PostedBy    *primitive.ObjectID  `json:"postedBy,omitempty" bson:"postedBy,omitempty"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Rating - оценка пользователя; не более одной на пользователя в рамках товара
type Rating struct {
	Star     int                `json:"star" bson:"star"`
	PostedBy primitive.ObjectID `json:"postedBy" bson:"postedBy"`
}

type Image struct {
	PublicID string `json:"public_id" bson:"public_id"`
	URL      string `json:"url" bson:"url"`
}

// ProductView - товар с раскрытыми ссылками на категорию и подкатегории.
// Автор раскрывается не во всех выборках, см. UserRef.
// В фасетном поиске ссылки раскрываются только до {_id, name}.
type ProductView struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	Title       string             `json:"title" bson:"title"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description" bson:"description"`
	Price       float64            `json:"price" bson:"price"`
	Category    *Category          `json:"category" bson:"category,omitempty"`
	Subs        []Sub              `json:"subs" bson:"subs"`
	Quantity    int                `json:"quantity" bson:"quantity"`
	Sold        int                `json:"sold" bson:"sold"`
	Images      []Image            `json:"images" bson:"images"`
	Shipping    bool               `json:"shipping" bson:"shipping"`
	Color       string             `json:"color" bson:"color"`
	Brand       string             `json:"brand" bson:"brand"`
	Ratings     []Rating           `json:"ratings" bson:"ratings"`
	PostedBy    *UserRef           `json:"postedBy,omitempty" bson:"postedBy,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type Category struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Name      string             `json:"name" bson:"name"`
	Slug      string             `json:"slug,omitempty" bson:"slug,omitempty"`
	CreatedAt *time.Time         `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt *time.Time         `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

type Sub struct {
	ID        primitive.ObjectID  `json:"_id" bson:"_id"`
	Name      string              `json:"name" bson:"name"`
	Slug      string              `json:"slug,omitempty" bson:"slug,omitempty"`
	Parent    *primitive.ObjectID `json:"parent,omitempty" bson:"parent,omitempty"`
	CreatedAt *time.Time          `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt *time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// User - пользователь из коллекции users; сервис только читает его
type User struct {
	ID    primitive.ObjectID `json:"_id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email,omitempty" bson:"email,omitempty"`
	Role  string             `json:"role,omitempty" bson:"role,omitempty"`
}

// RatingOf возвращает оценку пользователя, если она уже есть
func (p *Product) RatingOf(userID primitive.ObjectID) (Rating, bool) {
	for _, r := range p.Ratings {
		if r.PostedBy.Hex() == userID.Hex() {
			return r, true
		}
	}
	return Rating{}, false
}

// ProductEvent - событие изменения товара для Kafka
type ProductEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED, PRODUCT_RATED
	ProductID string    `json:"product_id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title,omitempty"`
	Price     float64   `json:"price,omitempty"`
	Star      int       `json:"star,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventProductCreated = "PRODUCT_CREATED"
	EventProductUpdated = "PRODUCT_UPDATED"
	EventProductDeleted = "PRODUCT_DELETED"
	EventProductRated   = "PRODUCT_RATED"
)
