package handler

import (
	"errors"
	"io"
	"net/http"

	"ecommerce/pkg/logger"
	"ecommerce/product-service/internal/app/product/entity"
	"ecommerce/product-service/internal/app/product/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// deleteFailedMessage - тело ответа при ошибке удаления (text/plain)
const deleteFailedMessage = "Product delete failed"

// ProductHandler обрабатывает HTTP запросы каталога товаров.
// Ошибки записи отдаются как 400 {"err": ...}; отсутствующий товар - 200 null.
type ProductHandler struct {
	productService service.ProductServiceInterface
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
	}
}

// Create обрабатывает POST /product (только admin)
// Тело - CreateProductRequest, slug вычисляется из title на стороне сервиса
// Автор товара берется из user_id токена
// 200 - созданный документ, 400 {"err"} - ошибка валидации или записи (включая дубль slug)
func (h *ProductHandler) Create(c *gin.Context) {
	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondErr(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	product, err := h.productService.Create(c.Request.Context(), &req, currentUserID(c))
	if err != nil {
		logger.Warn().Err(err).Str("title", req.Title).Msg("product create failed")
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, product)
}

// Read обрабатывает GET /product/:slug
// 200 - товар с раскрытыми category и subs, 200 null - товара нет
// 500 {"err"} - ошибка MongoDB
func (h *ProductHandler) Read(c *gin.Context) {
	slug := c.Param("slug")

	product, err := h.productService.Read(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		h.internalError(c, err, "failed to read product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// Update обрабатывает PUT /product/:slug (только admin)
// :slug - исходный slug; переданный title меняет slug товара
// 200 - обновленный документ, 400 {"err"} - любая ошибка, в том числе товар не найден
func (h *ProductHandler) Update(c *gin.Context) {
	var req entity.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.productService.Update(c.Request.Context(), c.Param("slug"), &req)
	if err != nil {
		logger.Warn().Err(err).Str("slug", c.Param("slug")).Msg("product update failed")
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, product)
}

// Remove обрабатывает DELETE /product/:slug (только admin)
// 200 - удаленный документ или null, если товара не было
// 400 text/plain "Product delete failed" - ошибка MongoDB
func (h *ProductHandler) Remove(c *gin.Context) {
	product, err := h.productService.Remove(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		logger.Error().Err(err).Str("slug", c.Param("slug")).Msg("product delete failed")
		c.String(http.StatusBadRequest, deleteFailedMessage)
		return
	}

	c.JSON(http.StatusOK, product)
}

// ListAll обрабатывает GET /products/:count.
// Нечисловой count не отклоняется и означает выборку без ограничения.
func (h *ProductHandler) ListAll(c *gin.Context) {
	limit, _ := entity.ParseCount(c.Param("count"))

	products, err := h.productService.ListAll(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, err, "failed to list products")
		return
	}

	c.JSON(http.StatusOK, products)
}

// List обрабатывает POST /products. Ошибка хранилища (например, некорректное
// поле сортировки) логируется, клиент получает пустую страницу.
func (h *ProductHandler) List(c *gin.Context) {
	var req entity.ListProductsRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.productService.List(c.Request.Context(), &req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("sort", req.Sort).
			Int("page", req.Page).
			Msg("failed to list products page")
		c.JSON(http.StatusOK, []entity.ProductView{})
		return
	}

	c.JSON(http.StatusOK, products)
}

// Count обрабатывает GET /products/total
// Возвращает число без обертки; 500 {"err"} если не удалось посчитать
func (h *ProductHandler) Count(c *gin.Context) {
	total, err := h.productService.Count(c.Request.Context())
	if err != nil {
		h.internalError(c, err, "failed to count products")
		return
	}

	c.JSON(http.StatusOK, total)
}

// Star обрабатывает PUT /product/star/:productId.
// Новая оценка - ответ с документом товара, изменение существующей - ответ updateOne.
func (h *ProductHandler) Star(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, "invalid product id")
		return
	}

	var req entity.StarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	email := c.GetString("email")
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.productService.Rate(c.Request.Context(), productID, email, req.Star)
	if err != nil {
		logger.Warn().Err(err).Str("product_id", productID.Hex()).Msg("product rating failed")
		respondErr(c, http.StatusBadRequest, err.Error())
		return
	}

	if result.Product != nil {
		c.JSON(http.StatusOK, result.Product)
		return
	}
	c.JSON(http.StatusOK, result.Update)
}

// ListRelated обрабатывает GET /product/related/:productId
// 400 - некорректный ObjectID, 200 [] - товара нет, 500 - ошибка MongoDB
func (h *ProductHandler) ListRelated(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		respondErr(c, http.StatusBadRequest, "invalid product id")
		return
	}

	related, err := h.productService.ListRelated(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusOK, []entity.ProductView{})
			return
		}
		h.internalError(c, err, "failed to list related products")
		return
	}

	c.JSON(http.StatusOK, related)
}

func (h *ProductHandler) internalError(c *gin.Context, err error, msg string) {
	logger.Error().
		Err(err).
		Str("path", c.FullPath()).
		Str("request_id", c.GetString("request_id")).
		Msg(msg)
	respondErr(c, http.StatusInternalServerError, err.Error())
}

func respondErr(c *gin.Context, status int, msg string) {
	c.JSON(status, entity.ErrorResponse{Err: msg})
}

// bindOptionalJSON - пустое тело равносильно {}
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// currentUserID - ObjectID автора из токена; nil, если user_id не ObjectID
func currentUserID(c *gin.Context) *primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(c.GetString("user_id"))
	if err != nil {
		return nil
	}
	return &id
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
