package services

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ExpiryService periodically sweeps stale booking holds. It is a safety net
// behind the lazy expiry done on reads: a hold that nobody touches again
// still gets its inventory back within roughly one sweep interval.
type ExpiryService struct {
	bookings  *BookingService
	interval  time.Duration
	batchSize int
	logger    *logrus.Logger

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewExpiryService creates a new ExpiryService
func NewExpiryService(bookings *BookingService, interval time.Duration, batchSize int, logger *logrus.Logger) *ExpiryService {
	return &ExpiryService{
		bookings:  bookings,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Start launches the background sweep loop. Calling Start on a running
// service is a no-op.
func (s *ExpiryService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.run(s.stopCh, s.doneCh)

	s.logger.WithFields(logrus.Fields{
		"interval":   s.interval,
		"batch_size": s.batchSize,
	}).Info("Expiry sweeper started")
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (s *ExpiryService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
	s.logger.Info("Expiry sweeper stopped")
}

func (s *ExpiryService) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce()
		case <-stopCh:
			return
		}
	}
}

// RunOnce performs a single sweep. Exposed for the shutdown path and tests.
func (s *ExpiryService) RunOnce() {
	expired, err := s.bookings.SweepExpired(s.batchSize)
	if err != nil {
		s.logger.WithError(err).Error("Expiry sweep failed")
		return
	}
	if expired > 0 {
		s.logger.WithField("expired", expired).Info("Expiry sweep released stale holds")
	}
}
