// Package scheduler drives the periodic outbound-call and notification
// jobs. It runs as a delivery alongside the HTTP server and stops when
// the application context is cancelled.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"concierge/config"
	"concierge/internal/delivery"
	"concierge/internal/domain/entity"
	"concierge/internal/domain/repository"
	"concierge/internal/usecase"
)

// Scheduler owns the scan and notify loops.
type Scheduler struct {
	flows         usecase.FlowUsecase
	notifications usecase.NotificationUsecase
	customerRepo  repository.CustomerRepository
	cfg           config.SchedulerConfig
	logger        *slog.Logger
	stop          chan struct{}
	done          chan struct{}
}

// New creates a scheduler delivery.
func New(
	lc fx.Lifecycle,
	flows usecase.FlowUsecase,
	notifications usecase.NotificationUsecase,
	customerRepo repository.CustomerRepository,
	cfg *config.Config,
	logger *slog.Logger,
) delivery.Delivery {
	scheduler := &Scheduler{
		flows:         flows,
		notifications: notifications,
		customerRepo:  customerRepo,
		cfg:           cfg.Scheduler,
		logger:        logger,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}

	lc.Append(fx.Hook{
		OnStop: scheduler.drain,
	})

	return scheduler
}

// Serve runs both loops until ctx is cancelled or drain is invoked, and
// waits for in-flight ticks to finish before returning.
func (s *Scheduler) Serve(ctx context.Context) error {
	defer close(s.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.Info("Scheduler started",
		slog.Duration("scan_interval", s.cfg.ScanInterval),
		slog.Duration("notify_interval", s.cfg.NotifyInterval),
	)

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()
		s.runLoop(ctx, s.cfg.ScanInterval, s.scanTick)
	}()
	go func() {
		defer wg.Done()
		s.runLoop(ctx, s.cfg.NotifyInterval, s.notifyTick)
	}()

	wg.Wait()
	s.logger.Info("Scheduler stopped")

	return nil
}

// drain stops both loops and blocks until the in-flight tick has
// finished, so shutdown never abandons a call placement mid-tick.
func (s *Scheduler) drain(ctx context.Context) error {
	s.logger.Info("Shutting down scheduler")
	close(s.stop)

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "scheduler drain interrupted")
	}
}

// runLoop fires tick immediately and then on every interval.
func (s *Scheduler) runLoop(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// scanTick gathers every customer due for a call and dials them with
// bounded concurrency. A customer appearing in more than one candidate
// set is dialed at most once per tick.
func (s *Scheduler) scanTick(ctx context.Context) {
	candidates := s.collectCandidates(ctx)
	if len(candidates) == 0 {
		return
	}

	s.logger.Info("Scan tick found call candidates", slog.Int("count", len(candidates)))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.ScanWorkers)

	for _, customer := range candidates {
		group.Go(func() error {
			callID, err := s.flows.TriggerFlow(groupCtx, customer.CustomerID, "")
			if err != nil {
				s.logger.Warn("Scheduled call failed",
					slog.String("customer_id", customer.CustomerID),
					slog.String("error", err.Error()),
				)

				return nil
			}

			s.logger.Info("Scheduled call placed",
				slog.String("customer_id", customer.CustomerID),
				slog.Int64("call_id", callID),
			)

			return nil
		})
	}

	_ = group.Wait()
}

func (s *Scheduler) collectCandidates(ctx context.Context) []*entity.Customer {
	now := time.Now()
	seen := make(map[string]struct{})

	var candidates []*entity.Customer

	add := func(customers []*entity.Customer) {
		for _, customer := range customers {
			if _, ok := seen[customer.CustomerID]; ok {
				continue
			}

			seen[customer.CustomerID] = struct{}{}
			candidates = append(candidates, customer)
		}
	}

	newCustomers, err := s.customerRepo.FindByStatus(ctx, entity.StatusNew)
	if err != nil {
		s.logger.Error("Failed to load new customers", slog.String("error", err.Error()))
	} else {
		add(newCustomers)
	}

	dueArrivals, err := s.customerRepo.FindDueArrivalChecks(ctx, now)
	if err != nil {
		s.logger.Error("Failed to load due arrival checks", slog.String("error", err.Error()))
	} else {
		// The query and this clock can disagree near the arrival boundary,
		// so re-check each row before dialing.
		overdue := dueArrivals[:0:0]
		for _, customer := range dueArrivals {
			if !customer.ArrivalOverdue(now) {
				continue
			}

			overdue = append(overdue, customer)
		}
		add(overdue)
	}

	noShows, err := s.customerRepo.FindByStatus(ctx, entity.StatusNoShow)
	if err != nil {
		s.logger.Error("Failed to load no-show customers", slog.String("error", err.Error()))
	} else {
		recallable := noShows[:0:0]
		for _, customer := range noShows {
			if customer.CalledWithin(s.cfg.RecallCooldown, now) {
				continue
			}

			recallable = append(recallable, customer)
		}
		add(recallable)
	}

	return candidates
}

func (s *Scheduler) notifyTick(ctx context.Context) {
	if err := s.notifications.ProcessCompletedCalls(ctx); err != nil {
		s.logger.Error("Notification tick failed", slog.String("error", err.Error()))
	}
}
