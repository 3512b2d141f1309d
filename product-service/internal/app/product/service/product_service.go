package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ecommerce/pkg/logger"
	"ecommerce/pkg/metrics"
	"ecommerce/product-service/internal/app/product/entity"
	"ecommerce/product-service/internal/app/product/infrastructure"
	"ecommerce/product-service/internal/app/product/repository"
	"ecommerce/product-service/internal/app/product/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateSlug   = errors.New("product with this slug already exists")
)

const (
	// PageSize - размер страницы POST /products
	PageSize = 3
	// RelatedLimit - максимум похожих товаров
	RelatedLimit = 3
)

// RatingResult - результат productStar. Заполнено ровно одно поле:
// Product при добавлении новой оценки, Update при изменении существующей.
type RatingResult struct {
	Product *entity.Product
	Update  *entity.UpdateResult
}

// ProductService обрабатывает бизнес-логику каталога.
// Координирует MongoDB, кеш количества товаров в Redis и события в Kafka.
type ProductService struct {
	productRepo   repository.ProductRepository
	userRepo      repository.UserRepository
	totalCache    infrastructure.TotalCache
	kafkaProducer infrastructure.MessagePublisher
}

// NewProductService создает сервис с внедрением зависимостей
// productRepo - товары в MongoDB, userRepo - поиск автора оценки по email
// totalCache - кеш количества товаров, kafkaProducer - публикация событий product_events
func NewProductService(
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	totalCache infrastructure.TotalCache,
	kafkaProducer infrastructure.MessagePublisher,
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		userRepo:      userRepo,
		totalCache:    totalCache,
		kafkaProducer: kafkaProducer,
	}
}

// Create сохраняет товар; slug вычисляется из title.
// postedBy может быть nil, если в токене нет корректного user_id.
// Возвращает ErrDuplicateSlug, если товар с таким slug уже есть.
// После записи сбрасывает кеш количества и публикует PRODUCT_CREATED.
func (s *ProductService) Create(ctx context.Context, req *entity.CreateProductRequest, postedBy *primitive.ObjectID) (*entity.Product, error) {
	product := &entity.Product{
		Title:       req.Title,
		Slug:        util.Slugify(req.Title),
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Subs:        req.Subs,
		Quantity:    req.Quantity,
		Sold:        req.Sold,
		Images:      req.Images,
		Shipping:    req.Shipping,
		Color:       req.Color,
		Brand:       req.Brand,
		PostedBy:    postedBy,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSlug, product.Slug)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.CatalogProductsCreated.Inc()
	s.invalidateTotal(ctx)
	s.publish(ctx, newProductEvent(entity.EventProductCreated, product))

	return product, nil
}

// Read возвращает товар по slug с раскрытыми category и subs
// Возвращает ErrProductNotFound, если товара нет
func (s *ProductService) Read(ctx context.Context, slug string) (*entity.ProductView, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// Update применяет переданные поля к товару с исходным slug.
// Если передан title, slug пересчитывается.
// slug - исходный slug товара, req - только изменяемые поля (nil поля не трогаются)
// Возвращает документ после обновления и публикует PRODUCT_UPDATED.
func (s *ProductService) Update(ctx context.Context, slug string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	if req.Title != nil {
		newSlug := util.Slugify(*req.Title)
		req.Slug = &newSlug
	}

	product, err := s.productRepo.UpdateBySlug(ctx, slug, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrDuplicateSlug):
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSlug, *req.Slug)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.publish(ctx, newProductEvent(entity.EventProductUpdated, product))

	return product, nil
}

// Remove удаляет товар по slug и возвращает удаленный документ
// Возвращает ErrProductNotFound, если удалять нечего
// Публикует PRODUCT_DELETED и сбрасывает кеш количества
func (s *ProductService) Remove(ctx context.Context, slug string) (*entity.Product, error) {
	product, err := s.productRepo.DeleteBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	metrics.CatalogProductsDeleted.Inc()
	s.invalidateTotal(ctx)
	s.publish(ctx, newProductEvent(entity.EventProductDeleted, product))

	return product, nil
}

// ListAll - новые товары первыми; limit <= 0 означает без ограничения
func (s *ProductService) ListAll(ctx context.Context, limit int64) ([]entity.ProductView, error) {
	products, err := s.productRepo.List(ctx, repository.ListOptions{
		SortField: "createdAt",
		SortOrder: -1,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// List - постраничная выдача по PageSize. Поле и направление сортировки
// передаются в MongoDB без проверки.
func (s *ProductService) List(ctx context.Context, req *entity.ListProductsRequest) ([]entity.ProductView, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	products, err := s.productRepo.List(ctx, repository.ListOptions{
		SortField: req.Sort,
		SortOrder: req.SortDirection(),
		Skip:      int64((page - 1) * PageSize),
		Limit:     PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// Count возвращает количество товаров: сначала из кеша Redis, затем из MongoDB
// Ошибка Redis не прерывает запрос: значение берется из MongoDB и заново кладется в кеш
func (s *ProductService) Count(ctx context.Context) (int64, error) {
	total, ok, err := s.totalCache.GetTotal(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read products total from cache")
	}
	if ok {
		return total, nil
	}

	return s.RefreshTotal(ctx)
}

// RefreshTotal пересчитывает количество товаров и сохраняет его в кеш
// Вызывается по расписанию cron, также обновляет gauge каталога
func (s *ProductService) RefreshTotal(ctx context.Context) (int64, error) {
	total, err := s.productRepo.EstimatedCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	metrics.CatalogProductsTotal.Set(float64(total))
	if err := s.totalCache.SetTotal(ctx, total); err != nil {
		logger.Warn().Err(err).Msg("failed to cache products total")
	}

	return total, nil
}

// Rate ставит оценку товару от имени пользователя с указанным email.
// Новая оценка добавляется в ratings, существующая меняется на месте.
// Проверка и запись не атомарны: параллельные запросы одного пользователя
// могут добавить две оценки.
// productID - товар, email - из JWT, star - значение без проверки диапазона
// Возвращает ErrProductNotFound или ErrUserNotFound, если товар или пользователь не найдены
func (s *ProductService) Rate(ctx context.Context, productID primitive.ObjectID, email string, star int) (*RatingResult, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	result := &RatingResult{}
	mode := "append"

	if existing, ok := product.RatingOf(user.ID); ok {
		mode = "update"
		result.Update, err = s.productRepo.SetRatingStar(ctx, product.ID, existing, star)
		if err != nil {
			return nil, fmt.Errorf("failed to update rating: %w", err)
		}
	} else {
		result.Product, err = s.productRepo.PushRating(ctx, product.ID, entity.Rating{Star: star, PostedBy: user.ID})
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to add rating: %w", err)
		}
	}

	metrics.CatalogRatings.WithLabelValues(mode).Observe(float64(star))

	event := newProductEvent(entity.EventProductRated, product)
	event.Star = star
	event.UserID = user.ID.Hex()
	s.publish(ctx, event)

	return result, nil
}

// ListRelated возвращает до RelatedLimit товаров той же категории
// Сам товар исключается; category, subs и postedBy раскрываются
// Возвращает ErrProductNotFound, если исходного товара нет
func (s *ProductService) ListRelated(ctx context.Context, productID primitive.ObjectID) ([]entity.ProductView, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	related, err := s.productRepo.FindRelated(ctx, product, RelatedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get related products: %w", err)
	}

	return related, nil
}

func (s *ProductService) invalidateTotal(ctx context.Context) {
	if err := s.totalCache.InvalidateTotal(ctx); err != nil {
		// Товар уже сохранен, кеш истечет по TTL
		logger.Warn().Err(err).Msg("failed to invalidate products total cache")
	}
}

// publish отправляет событие в Kafka; ошибки только логируются
func (s *ProductService) publish(ctx context.Context, event entity.ProductEvent) {
	if err := s.publishProductEvent(ctx, event); err != nil {
		logger.Error().
			Err(err).
			Str("event_type", event.EventType).
			Str("product_id", event.ProductID).
			Msg("failed to publish product event")
	}
}

// publishProductEvent сериализует событие; ключ - ID товара для партиционирования
func (s *ProductService) publishProductEvent(ctx context.Context, event entity.ProductEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.ProductID, eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}

func newProductEvent(eventType string, product *entity.Product) entity.ProductEvent {
	return entity.ProductEvent{
		EventType: eventType,
		ProductID: product.ID.Hex(),
		Slug:      product.Slug,
		Title:     product.Title,
		Price:     product.Price,
		Timestamp: time.Now(),
	}
}
