package infrastructure

import "context"

// MessagePublisher интерфейс для отправки событий о товарах (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// TotalCache кеширует общее количество товаров.
// ok=false означает промах кеша.
type TotalCache interface {
	GetTotal(ctx context.Context) (total int64, ok bool, err error)
	SetTotal(ctx context.Context, total int64) error
	InvalidateTotal(ctx context.Context) error
	Close() error
}
