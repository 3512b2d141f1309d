//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"ecommerce/product-service/internal/app/product/entity"
	"ecommerce/product-service/internal/app/product/handler"
	"ecommerce/product-service/internal/app/product/infrastructure/cache"
	"ecommerce/product-service/internal/app/product/repository"
	"ecommerce/product-service/internal/app/product/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const jwtSecret = "integration-secret"

type MockKafkaProducer struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockKafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKafkaProducer) Close() error { return nil }

type ProductsIntegrationTestSuite struct {
	suite.Suite
	client        *mongo.Client
	db            *mongo.Database
	miniRedis     *miniredis.Miniredis
	router        *gin.Engine
	kafkaProducer *MockKafkaProducer
	category      primitive.ObjectID
	otherCategory primitive.ObjectID
	users         map[string]primitive.ObjectID
}

func TestProductsIntegrationSuite(t *testing.T) {
	suite.Run(t, new(ProductsIntegrationTestSuite))
}

func (s *ProductsIntegrationTestSuite) SetupSuite() {
	mongoURI := getEnv("TEST_MONGODB_URI", "mongodb://localhost:27017")
	dbName := getEnv("TEST_MONGODB_DATABASE", "products_test_db")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	s.client, err = mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	s.Require().NoError(err)
	s.Require().NoError(s.client.Ping(ctx, nil))

	s.db = s.client.Database(dbName)

	s.miniRedis, err = miniredis.Run()
	s.Require().NoError(err)
	redisClient := redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()})

	productRepo := repository.NewProductRepository(s.db)
	userRepo := repository.NewUserRepository(s.db)
	s.kafkaProducer = &MockKafkaProducer{}

	productService := service.NewProductService(productRepo, userRepo, cache.NewRedisCache(redisClient, time.Minute), s.kafkaProducer)
	filterService := service.NewFilterService(productRepo)

	gin.SetMode(gin.TestMode)
	s.router = handler.SetupRoutes(
		handler.NewProductHandler(productService),
		handler.NewFilterHandler(filterService),
		handler.NewAuthMiddleware(jwtSecret),
	)
}

func (s *ProductsIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	for _, name := range []string{"products", "categories", "subs", "users"} {
		s.Require().NoError(s.db.Collection(name).Drop(ctx))
	}
	s.Require().NoError(repository.EnsureIndexes(ctx, s.db))
	s.miniRedis.FlushAll()

	s.kafkaProducer.Messages = nil
	s.kafkaProducer.ExpectedCalls = nil
	s.kafkaProducer.Calls = nil
	s.kafkaProducer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	s.category = s.insert("categories", bson.M{"name": "Shoes", "slug": "shoes"})
	s.otherCategory = s.insert("categories", bson.M{"name": "Hats", "slug": "hats"})

	s.users = map[string]primitive.ObjectID{
		"admin@example.com": s.insert("users", bson.M{"name": "Admin", "email": "admin@example.com", "role": "admin"}),
		"ann@example.com":   s.insert("users", bson.M{"name": "Ann", "email": "ann@example.com", "role": "subscriber"}),
		"bob@example.com":   s.insert("users", bson.M{"name": "Bob", "email": "bob@example.com", "role": "subscriber"}),
	}
}

func (s *ProductsIntegrationTestSuite) TearDownSuite() {
	if s.miniRedis != nil {
		s.miniRedis.Close()
	}
	if s.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.db.Drop(ctx)
		s.client.Disconnect(ctx)
	}
}

func (s *ProductsIntegrationTestSuite) TestCreateReadDelete() {
	admin := s.token("admin@example.com", "admin")

	w := s.do(http.MethodPost, "/product", gin.H{"title": "Red Shoe", "price": 49.9, "category": s.category.Hex()}, admin)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var created entity.Product
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	s.Equal("red-shoe", created.Slug)
	s.Require().NotNil(created.PostedBy)
	s.Equal(s.users["admin@example.com"], *created.PostedBy)

	w = s.do(http.MethodGet, "/product/red-shoe", nil, "")
	s.Equal(http.StatusOK, w.Code)
	var view entity.ProductView
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &view))
	s.Require().NotNil(view.Category)
	s.Equal("Shoes", view.Category.Name)

	w = s.do(http.MethodPost, "/product", gin.H{"title": "Red Shoe"}, admin)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), `"err"`)

	w = s.do(http.MethodDelete, "/product/red-shoe", nil, admin)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/product/red-shoe", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("null", w.Body.String())

	s.Len(s.kafkaProducer.Messages, 2)
}

func (s *ProductsIntegrationTestSuite) TestUpdateRecomputesSlug() {
	admin := s.token("admin@example.com", "admin")
	s.createProduct("Red Shoe", s.category, 10)

	w := s.do(http.MethodPut, "/product/red-shoe", gin.H{"title": "Blue Shoe", "price": 12.5}, admin)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated entity.Product
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	s.Equal("blue-shoe", updated.Slug)
	s.Equal(12.5, updated.Price)

	w = s.do(http.MethodPut, "/product/red-shoe", gin.H{"price": 1}, admin)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ProductsIntegrationTestSuite) TestListPagination() {
	for _, title := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		s.createProduct(title, s.category, 1)
	}

	var page []entity.ProductView
	w := s.do(http.MethodPost, "/products", gin.H{"sort": "title", "order": "asc", "page": 3}, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	s.Require().Len(page, 1)
	s.Equal("G", page[0].Title)

	w = s.do(http.MethodPost, "/products", gin.H{"sort": "title", "order": "desc"}, "")
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	s.Require().Len(page, 3)
	s.Equal("G", page[0].Title)

	w = s.do(http.MethodGet, "/products/2", nil, "")
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	s.Len(page, 2)

	w = s.do(http.MethodGet, "/products/all", nil, "")
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
	s.Len(page, 7)

	w = s.do(http.MethodGet, "/products/total", nil, "")
	s.Equal("7", w.Body.String())
}

func (s *ProductsIntegrationTestSuite) TestProductStar() {
	id := s.createProduct("Red Shoe", s.category, 10)
	ann := s.token("ann@example.com", "subscriber")
	bob := s.token("bob@example.com", "subscriber")

	w := s.do(http.MethodPut, "/product/star/"+id.Hex(), gin.H{"star": 3}, ann)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"slug":"red-shoe"`)

	w = s.do(http.MethodPut, "/product/star/"+id.Hex(), gin.H{"star": 5}, ann)
	s.Require().Equal(http.StatusOK, w.Code)
	var ack entity.UpdateResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &ack))
	s.True(ack.Acknowledged)
	s.Equal(int64(1), ack.MatchedCount)

	w = s.do(http.MethodPut, "/product/star/"+id.Hex(), gin.H{"star": 1}, bob)
	s.Require().Equal(http.StatusOK, w.Code)

	var stored entity.Product
	s.Require().NoError(s.db.Collection("products").FindOne(context.Background(), bson.M{"_id": id}).Decode(&stored))
	s.Require().Len(stored.Ratings, 2)
	annRating, ok := stored.RatingOf(s.users["ann@example.com"])
	s.True(ok)
	s.Equal(5, annRating.Star)
}

func (s *ProductsIntegrationTestSuite) TestListRelated() {
	id := s.createProduct("Red Shoe", s.category, 10)
	for _, title := range []string{"Blue Shoe", "Green Shoe", "Black Shoe", "White Shoe"} {
		s.createProduct(title, s.category, 10)
	}
	s.createProduct("Red Hat", s.otherCategory, 10)

	w := s.do(http.MethodGet, "/product/related/"+id.Hex(), nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	var related []entity.ProductView
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &related))
	s.Len(related, 3)
	for _, p := range related {
		s.NotEqual(id, p.ID)
		s.Require().NotNil(p.Category)
		s.Equal(s.category, p.Category.ID)
		s.Require().NotNil(p.PostedBy)
		s.Require().NotNil(p.PostedBy.User)
		s.Equal("Admin", p.PostedBy.User.Name)
	}
}

func (s *ProductsIntegrationTestSuite) TestSearchFilters() {
	rated := s.createProduct("Red Shoe", s.category, 10)
	s.createProduct("Leather Boot", s.category, 80)
	s.createProduct("Blue Hat", s.otherCategory, 25)

	_, err := s.db.Collection("products").UpdateByID(context.Background(), rated, bson.M{"$set": bson.M{
		"ratings": bson.A{
			bson.M{"star": 4, "postedBy": s.users["ann@example.com"]},
			bson.M{"star": 5, "postedBy": s.users["bob@example.com"]},
		},
	}})
	s.Require().NoError(err)

	tests := []struct {
		name  string
		body  gin.H
		count int
	}{
		{"text query", gin.H{"query": "boot"}, 1},
		{"price range", gin.H{"price": []float64{20, 100}}, 2},
		{"category", gin.H{"category": s.otherCategory.Hex()}, 1},
		{"stars floor matches", gin.H{"stars": 4}, 1},
		{"stars above floor", gin.H{"stars": 5}, 0},
		{"stars outside 1-5", gin.H{"stars": 9}, 0},
		{"invalid lower criterion ignored", gin.H{"query": "boot", "category": "not-an-id"}, 1},
		{"first criterion wins", gin.H{"query": "hat", "price": []float64{0, 1000}}, 1},
		{"no criteria", gin.H{}, 0},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/search/filters", tt.body, "")
			s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

			var found []entity.ProductView
			s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &found))
			s.Len(found, tt.count)
		})
	}
}

func (s *ProductsIntegrationTestSuite) createProduct(title string, category primitive.ObjectID, price float64) primitive.ObjectID {
	w := s.do(http.MethodPost, "/product", gin.H{
		"title":    title,
		"price":    price,
		"category": category.Hex(),
	}, s.token("admin@example.com", "admin"))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var created entity.Product
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	return created.ID
}

func (s *ProductsIntegrationTestSuite) insert(collection string, doc bson.M) primitive.ObjectID {
	id := primitive.NewObjectID()
	doc["_id"] = id
	_, err := s.db.Collection(collection).InsertOne(context.Background(), doc)
	s.Require().NoError(err)
	return id
}

func (s *ProductsIntegrationTestSuite) token(email, role string) string {
	claims := handler.JWTClaims{
		UserID:   s.users[email].Hex(),
		Email:    email,
		RoleName: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	s.Require().NoError(err)
	return token
}

func (s *ProductsIntegrationTestSuite) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
