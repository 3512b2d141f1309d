package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecommerce/pkg/metrics"
	"ecommerce/product-service/internal/app/product/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const metricsService = "product-service"

type productRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewProductRepository создает репозиторий товаров поверх коллекции products
func NewProductRepository(db *mongo.Database) ProductRepository {
	return &productRepository{
		collection: db.Collection(productsCollection),
		now:        time.Now,
	}
}

// EnsureIndexes создает индексы коллекции products:
// уникальный slug, текстовый индекс для поиска и индекс по категории
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique_idx").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("title_description_text_idx"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_idx"),
		},
	}

	if _, err := db.Collection(productsCollection).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	return nil
}

// Create сохраняет новый товар; ID и временные метки назначаются здесь
func (r *productRepository) Create(ctx context.Context, product *entity.Product) (err error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpInsert, productsCollection)
	defer func() { timer.Done(err) }()

	now := r.now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Subs == nil {
		product.Subs = []primitive.ObjectID{}
	}
	if product.Images == nil {
		product.Images = []entity.Image{}
	}
	if product.Ratings == nil {
		product.Ratings = []entity.Rating{}
	}

	if _, err = r.collection.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateSlug, product.Slug)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID получает товар без раскрытия ссылок
func (r *productRepository) GetByID(ctx context.Context, id primitive.ObjectID) (_ *entity.Product, err error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpFind, productsCollection)
	defer func() { timer.Done(ignoreNotFound(err)) }()

	var product entity.Product
	if err = r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// GetBySlug получает товар с раскрытыми category и subs
func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*entity.ProductView, error) {
	pipeline := concat(
		mongo.Pipeline{match(bson.M{"slug": slug}), {{Key: "$limit", Value: 1}}},
		populateStages(),
	)

	products, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}

	return &products[0], nil
}

// UpdateBySlug применяет переданные поля и возвращает обновленный документ
func (r *productRepository) UpdateBySlug(ctx context.Context, slug string, req *entity.UpdateProductRequest) (_ *entity.Product, err error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, productsCollection)
	defer func() { timer.Done(ignoreNotFound(err)) }()

	update := bson.M{"$set": updateFields(req, r.now().UTC())}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product entity.Product
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"slug": slug}, update, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSlug, deref(req.Slug))
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &product, nil
}

// DeleteBySlug удаляет товар и возвращает удаленный документ
func (r *productRepository) DeleteBySlug(ctx context.Context, slug string) (_ *entity.Product, err error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpDelete, productsCollection)
	defer func() { timer.Done(ignoreNotFound(err)) }()

	var product entity.Product
	if err = r.collection.FindOneAndDelete(ctx, bson.M{"slug": slug}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return &product, nil
}

// List возвращает страницу товаров с раскрытыми category и subs.
// Поле сортировки не проверяется: ошибку вернет сам MongoDB.
func (r *productRepository) List(ctx context.Context, opts ListOptions) ([]entity.ProductView, error) {
	var pipeline mongo.Pipeline
	if opts.SortField != "" {
		order := 1
		if opts.SortOrder < 0 {
			order = -1
		}
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: opts.SortField, Value: order}}}})
	}
	if opts.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: opts.Skip}})
	}
	if opts.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: opts.Limit}})
	}

	return r.aggregate(ctx, concat(pipeline, populateStages()))
}

// EstimatedCount - быстрый подсчет по метаданным коллекции
func (r *productRepository) EstimatedCount(ctx context.Context) (_ int64, err error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpCount, productsCollection)
	defer func() { timer.Done(err) }()

	total, err := r.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// PushRating добавляет оценку и возвращает обновленный товар
func (r *productRepository) PushRating(ctx context.Context, id primitive.ObjectID, rating entity.Rating) (_ *entity.Product, err error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, productsCollection)
	defer func() { timer.Done(ignoreNotFound(err)) }()

	update := bson.M{
		"$push": bson.M{"ratings": rating},
		"$set":  bson.M{"updatedAt": r.now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product entity.Product
	if err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to add rating: %w", err)
	}

	return &product, nil
}

// SetRatingStar меняет star у существующей оценки. Элемент ищется по полному
// совпадению {star, postedBy}, поэтому параллельное изменение той же оценки
// даст matchedCount = 0.
func (r *productRepository) SetRatingStar(ctx context.Context, id primitive.ObjectID, existing entity.Rating, star int) (_ *entity.UpdateResult, err error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpUpdate, productsCollection)
	defer func() { timer.Done(err) }()

	filter := bson.M{
		"_id": id,
		"ratings": bson.M{"$elemMatch": bson.M{
			"star":     existing.Star,
			"postedBy": existing.PostedBy,
		}},
	}
	update := bson.M{"$set": bson.M{
		"ratings.$.star": star,
		"updatedAt":      r.now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update rating: %w", err)
	}

	// v1 драйвер возвращает mongo.ErrUnacknowledgedWrite для w:0, значит без ошибки запись подтверждена
	return &entity.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
		UpsertedCount: result.UpsertedCount,
		UpsertedID:    result.UpsertedID,
	}, nil
}

// FindRelated возвращает товары той же категории, исключая сам товар
func (r *productRepository) FindRelated(ctx context.Context, product *entity.Product, limit int64) ([]entity.ProductView, error) {
	filter := bson.M{
		"_id":      bson.M{"$ne": product.ID},
		"category": product.Category,
	}
	pipeline := concat(
		mongo.Pipeline{match(filter), {{Key: "$limit", Value: limit}}},
		populateWithAuthorStages(),
	)

	return r.aggregate(ctx, pipeline)
}

// Search - полнотекстовый поиск по текстовому индексу title/description
func (r *productRepository) Search(ctx context.Context, text string) ([]entity.ProductView, error) {
	pipeline := concat(
		mongo.Pipeline{match(bson.M{"$text": bson.M{"$search": text}})},
		refStages(),
	)
	return r.aggregate(ctx, pipeline)
}

// FindByPriceRange - price в [low, high] включительно
func (r *productRepository) FindByPriceRange(ctx context.Context, low, high float64) ([]entity.ProductView, error) {
	filter := bson.M{"price": bson.M{"$gte": low, "$lte": high}}
	return r.aggregate(ctx, concat(mongo.Pipeline{match(filter)}, refStages()))
}

// FindByAttribute - точное совпадение поля (для subs - членство в массиве)
func (r *productRepository) FindByAttribute(ctx context.Context, attr Attribute, value interface{}) ([]entity.ProductView, error) {
	filter := bson.M{string(attr): value}
	return r.aggregate(ctx, concat(mongo.Pipeline{match(filter)}, refStages()))
}

// IDsByRatingBucket возвращает id товаров, у которых floor(avg(ratings.star)) == stars.
// Товары без оценок имеют среднее null и не попадают в выборку.
func (r *productRepository) IDsByRatingBucket(ctx context.Context, stars int, limit int64) (_ []primitive.ObjectID, err error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpAggregate, productsCollection)
	defer func() { timer.Done(err) }()

	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "floorAverage", Value: bson.D{{Key: "$floor", Value: bson.D{{Key: "$avg", Value: "$ratings.star"}}}}},
		}}},
		match(bson.M{"floorAverage": stars}),
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode rating aggregates: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(buckets))
	for _, b := range buckets {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

// FindByIDs повторно выбирает товары по id с раскрытием ссылок до {_id, name}
func (r *productRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.ProductView, error) {
	if len(ids) == 0 {
		return []entity.ProductView{}, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}}
	return r.aggregate(ctx, concat(mongo.Pipeline{match(filter)}, refStages()))
}

func (r *productRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) (_ []entity.ProductView, err error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpAggregate, productsCollection)
	defer func() { timer.Done(err) }()

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []entity.ProductView{}
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// updateFields собирает $set только из переданных полей; updatedAt меняется всегда
func updateFields(req *entity.UpdateProductRequest, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}

	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Slug != nil {
		set["slug"] = *req.Slug
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Subs != nil {
		set["subs"] = *req.Subs
	}
	if req.Quantity != nil {
		set["quantity"] = *req.Quantity
	}
	if req.Sold != nil {
		set["sold"] = *req.Sold
	}
	if req.Images != nil {
		set["images"] = *req.Images
	}
	if req.Shipping != nil {
		set["shipping"] = *req.Shipping
	}
	if req.Color != nil {
		set["color"] = *req.Color
	}
	if req.Brand != nil {
		set["brand"] = *req.Brand
	}

	return set
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrProductNotFound) {
		return nil
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
