package impl

import (
	"context"
	"errors"
	"log/slog"

	"concierge/config"
	"concierge/internal/domain/entity"
	"concierge/internal/domain/repository"
	"concierge/internal/domain/service"
	"concierge/internal/infra/cache"
	"concierge/internal/usecase"
)

type notificationService struct {
	phoneCalls   usecase.PhoneCallUsecase
	extractor    usecase.OutcomeExtractor
	customerRepo repository.CustomerRepository
	emails       service.EmailSender
	handled      *cache.HandledCalls
	limit        int
	logger       *slog.Logger
}

// NewNotificationService creates the completed-call notification usecase.
func NewNotificationService(
	phoneCalls usecase.PhoneCallUsecase,
	extractor usecase.OutcomeExtractor,
	customerRepo repository.CustomerRepository,
	emails service.EmailSender,
	handled *cache.HandledCalls,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.NotificationUsecase {
	return &notificationService{
		phoneCalls:   phoneCalls,
		extractor:    extractor,
		customerRepo: customerRepo,
		emails:       emails,
		handled:      handled,
		limit:        cfg.Scheduler.CompletedCallsLimit,
		logger:       logger,
	}
}

// ProcessCompletedCalls scans recent calls and emails a confirmation for
// each newly completed call that produced an actionable reservation.
// Per-call failures are logged and skipped; a single bad call never stops
// the batch.
func (s *notificationService) ProcessCompletedCalls(ctx context.Context) error {
	calls, err := s.phoneCalls.ListCalls(ctx, service.ListCallsParams{Page: 1, Limit: s.limit})
	if err != nil {
		return err
	}

	for _, call := range calls {
		if !call.Completed() {
			continue
		}
		if s.handled.Contains(call.ID) {
			continue
		}

		s.processCall(ctx, call.ID)
	}

	s.logger.Debug("Notification batch finished",
		slog.Int("scanned", len(calls)),
		slog.Int("handled_total", s.handled.Len()),
	)

	return nil
}

func (s *notificationService) processCall(ctx context.Context, callID int64) {
	detail, err := s.phoneCalls.CallDetail(ctx, callID)
	if err != nil {
		// Transient: leave the call unmarked so the next tick retries it.
		s.logger.Warn("Failed to fetch completed call detail",
			slog.Int64("call_id", callID),
			slog.String("error", err.Error()),
		)

		return
	}

	details, found, err := s.extractor.Extract(ctx, detail.Raw)
	if err != nil {
		s.logger.Warn("Failed to extract reservation from call",
			slog.Int64("call_id", callID),
			slog.String("error", err.Error()),
		)

		return
	}
	if !found {
		// Definitive negative: the call was not about a reservation.
		s.handled.Mark(callID)

		return
	}

	customer := s.resolveCustomer(ctx, detail)
	if customer == nil || customer.Email == "" {
		s.logger.Info("Completed reservation call has no notifiable customer",
			slog.Int64("call_id", callID),
		)
		s.handled.Mark(callID)

		return
	}

	email := &service.ReservationEmail{
		To:             customer.Email,
		CustomerName:   customer.Name,
		Date:           details.Date,
		Time:           details.Time,
		NumberOfPeople: details.NumberOfPeople,
	}
	if err := s.emails.SendReservationEmail(ctx, email); err != nil {
		s.logger.Error("Failed to send reservation email",
			slog.Int64("call_id", callID),
			slog.String("to", customer.Email),
			slog.String("error", err.Error()),
		)

		return
	}

	s.handled.Mark(callID)
	s.logger.Info("Reservation confirmation sent",
		slog.Int64("call_id", callID),
		slog.String("to", customer.Email),
	)
}

func (s *notificationService) resolveCustomer(ctx context.Context, detail *entity.CallDetail) *entity.Customer {
	// Call payloads nest the dialed number at varying depths, same as the
	// extraction path.
	mobile := searchNestedString(detail.Raw, "phone_number")
	if mobile == "" {
		mobile = searchNestedString(detail.Raw, "to_number")
	}
	if mobile == "" {
		return nil
	}

	customer, err := s.customerRepo.FindByMobile(ctx, entity.NormalizeMobile(mobile))
	if err != nil {
		if !errors.Is(err, repository.ErrCustomerNotFound) {
			s.logger.Warn("Failed to look up customer by mobile",
				slog.String("error", err.Error()),
			)
		}

		return nil
	}

	return customer
}
