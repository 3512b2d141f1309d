package messaging

import (
	"context"
	"time"

	"ecommerce/pkg/logger"
	"ecommerce/pkg/metrics"
	"ecommerce/product-service/internal/app/product/infrastructure"

	"github.com/sony/gobreaker/v2"
)

// consecutiveFailuresToTrip - после стольких ошибок подряд публикация отключается на timeout
const consecutiveFailuresToTrip = 5

// BreakerPublisher защищает HTTP запросы от недоступной Kafka:
// открытый breaker сразу возвращает gobreaker.ErrOpenState.
type BreakerPublisher struct {
	next    infrastructure.MessagePublisher
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerPublisher(next infrastructure.MessagePublisher, topic string, timeout time.Duration) *BreakerPublisher {
	settings := gobreaker.Settings{
		Name:        "kafka:" + topic,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailuresToTrip
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log := logger.WithFields(map[string]interface{}{"breaker": name, "topic": topic})
			log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("kafka circuit breaker state change")
			metrics.KafkaBreakerState.WithLabelValues(metricsService, topic).Set(stateToFloat(to))
		},
	}

	metrics.KafkaBreakerState.WithLabelValues(metricsService, topic).Set(0)

	return &BreakerPublisher{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (p *BreakerPublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.PublishMessage(ctx, key, value)
	})
	return err
}

func (p *BreakerPublisher) State() gobreaker.State {
	return p.breaker.State()
}

func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
