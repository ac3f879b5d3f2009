package services

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService runs the nightly housekeeping jobs: purging expired quotes and
// rolling confirmed bookings past their travel date to completed. The
// time-critical work (hold expiry) lives in ExpiryService, not here.
type CronService struct {
	cron     *cron.Cron
	quotes   *QuoteService
	bookings *BookingService
	logger   *logrus.Logger
}

// NewCronService creates a new CronService
func NewCronService(quotes *QuoteService, bookings *BookingService, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:     cron.New(),
		quotes:   quotes,
		bookings: bookings,
		logger:   logger,
	}
}

// Start registers and launches the scheduled jobs.
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc("15 3 * * *", s.purgeExpiredQuotes); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("45 3 * * *", s.completePastBookings); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) purgeExpiredQuotes() {
	purged, err := s.quotes.PurgeExpired()
	if err != nil {
		s.logger.WithError(err).Error("Failed to purge expired quotes")
		return
	}
	s.logger.WithField("purged", purged).Info("Expired quotes purged")
}

func (s *CronService) completePastBookings() {
	completed, err := s.bookings.CompletePast()
	if err != nil {
		s.logger.WithError(err).Error("Failed to complete past bookings")
		return
	}
	s.logger.WithField("completed", completed).Info("Past bookings completed")
}
