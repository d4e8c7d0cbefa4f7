package service

import (
	"context"
	"sync"
	"time"

	"widget-dashboard-backend/internal/logger"

	"github.com/google/uuid"
)

// RefreshScheduler keeps widget data warm by periodically re-fetching each
// registered widget on its configured interval. One instance exists per
// process; StopAll must run on shutdown so no timer outlives its owner.
type RefreshScheduler struct {
	service WidgetServiceInterface

	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
	wg      sync.WaitGroup
}

// NewRefreshScheduler creates a scheduler over the given widget service
func NewRefreshScheduler(service WidgetServiceInterface) *RefreshScheduler {
	return &RefreshScheduler{
		service: service,
		cancels: make(map[uuid.UUID]context.CancelFunc),
	}
}

// Start begins periodic refresh for a widget. Restarting an already
// scheduled widget replaces its previous schedule (interval changes take
// effect this way).
func (s *RefreshScheduler) Start(id uuid.UUID, interval time.Duration) {
	if interval <= 0 {
		return
	}

	s.mu.Lock()
	if cancel, ok := s.cancels[id]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancels[id] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx, id, interval)
}

// Stop cancels the schedule for one widget
func (s *RefreshScheduler) Stop(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
}

// StopAll cancels every schedule and waits for the refresh goroutines to exit
func (s *RefreshScheduler) StopAll() {
	s.mu.Lock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Active returns the number of scheduled widgets
func (s *RefreshScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancels)
}

func (s *RefreshScheduler) run(ctx context.Context, id uuid.UUID, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.service.FetchForWidget(ctx, id, true); err != nil {
				logger.New().WithField("widget_id", id).WithError(err).Warn("Scheduled refresh failed")
			}
		}
	}
}
