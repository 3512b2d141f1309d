package repository

import (
	"context"
	"errors"
	"fmt"

	"ecommerce/pkg/metrics"
	"ecommerce/product-service/internal/app/product/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	collection *mongo.Collection
}

// NewUserRepository - чтение коллекции users для определения автора оценки
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{collection: db.Collection(usersCollection)}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	timer := metrics.NewDbTimer(metricsService, metrics.DbOpFind, usersCollection)
	defer func() { timer.Done(err) }()

	var user entity.User
	if err = r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}
