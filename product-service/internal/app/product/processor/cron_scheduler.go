package processor

import (
	"context"

	"ecommerce/pkg/logger"

	"github.com/robfig/cron/v3"
)

// TotalRefresher пересчитывает количество товаров и кладет его в кеш
type TotalRefresher interface {
	RefreshTotal(ctx context.Context) (int64, error)
}

// CronScheduler периодически прогревает кеш количества товаров
type CronScheduler struct {
	cron      *cron.Cron
	refresher TotalRefresher
}

func NewCronScheduler(refresher TotalRefresher) *CronScheduler {
	c := cron.New(cron.WithLogger(cronLogger{}))

	return &CronScheduler{
		cron:      c,
		refresher: refresher,
	}
}

// Start регистрирует задачу по расписанию и сразу выполняет первый прогрев.
// Ошибка первого прогрева не останавливает планировщик.
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.refresh(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.refresh(ctx)

	return nil
}

func (s *CronScheduler) refresh(ctx context.Context) {
	total, err := s.refresher.RefreshTotal(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to refresh products total")
		return
	}
	logger.Debug().Int64("total", total).Msg("products total refreshed")
}

// Stop ждет завершения выполняющихся задач
func (s *CronScheduler) Stop() {
	logger.Info().Msg("stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger направляет служебные сообщения cron в zerolog с component=cron
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log := logger.With().Str("component", "cron").Logger()
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log := logger.With().Str("component", "cron").Logger()
	log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
