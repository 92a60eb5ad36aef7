package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"concierge/config"
	"concierge/internal/domain/entity"
	domainerrors "concierge/internal/domain/errors"
	"concierge/internal/domain/repository"
	"concierge/internal/domain/service"
	"concierge/internal/usecase"
)

type flowService struct {
	customerRepo repository.CustomerRepository
	provider     service.CallProvider
	phoneCalls   usecase.PhoneCallUsecase
	extractor    usecase.OutcomeExtractor
	waitCfg      config.CompletionWaitConfig
	restaurant   string
	logger       *slog.Logger
}

// NewFlowService creates a new flow engine instance.
func NewFlowService(
	customerRepo repository.CustomerRepository,
	provider service.CallProvider,
	phoneCalls usecase.PhoneCallUsecase,
	extractor usecase.OutcomeExtractor,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.FlowUsecase {
	return &flowService{
		customerRepo: customerRepo,
		provider:     provider,
		phoneCalls:   phoneCalls,
		extractor:    extractor,
		waitCfg:      cfg.CompletionWait,
		restaurant:   cfg.Restaurant.Name,
		logger:       logger,
	}
}

// DecideFlow is a pure function of status and arrival confirmation.
func (s *flowService) DecideFlow(customer *entity.Customer) (entity.FlowKind, bool) {
	switch customer.Status {
	case entity.StatusNew:
		return entity.FlowOrderBooking, true
	case entity.StatusOrderConfirmed, entity.StatusCalled:
		if customer.ArrivalConfirmed {
			return "", false
		}

		return entity.FlowArrivalConfirmation, true
	case entity.StatusNoShow:
		return entity.FlowMissedCustomerRecovery, true
	default:
		return "", false
	}
}

// TriggerFlow places the call for the given flow.
func (s *flowService) TriggerFlow(ctx context.Context, customerID string, flow entity.FlowKind) (int64, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return 0, domainerrors.ErrCustomerNotFound
		}

		return 0, fmt.Errorf("failed to find customer: %w", err)
	}

	decided, eligible := s.DecideFlow(customer)
	if !eligible {
		return 0, domainerrors.ErrInvalidFlowState.WithDetails(
			fmt.Sprintf("no call flow applies to status %q", customer.Status))
	}
	if flow == "" {
		flow = decided
	}
	if flow != decided {
		return 0, domainerrors.ErrInvalidFlowState.WithDetails(
			fmt.Sprintf("flow %q does not match customer status %q", flow, customer.Status))
	}

	if customer.Mobile == "" {
		return 0, domainerrors.ErrMissingMobile
	}

	req := s.buildCallRequest(customer, flow)

	callID, err := s.provider.MakeCall(ctx, req, customer.AdminToken)
	if err != nil {
		return 0, domainerrors.ErrCallProviderFailed.WrapMessage(err.Error())
	}

	// Every successful placement stamps the last call time, and a first
	// booking call moves the customer out of the new pool so the next
	// scan tick does not redial them.
	now := time.Now()
	customer.LastCallTime = &now
	if flow == entity.FlowOrderBooking && customer.Status == entity.StatusNew {
		customer.Status = entity.StatusCalled
	}
	customer.UpdatedAt = now

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		// The call is already in flight; losing the stamp only means the
		// customer stays eligible for the next tick.
		s.logger.Warn("Failed to stamp last call time",
			slog.String("customer_id", customer.CustomerID),
			slog.String("error", err.Error()),
		)
	}

	go s.trackOutcome(callID, customer.CustomerID, flow, customer.AdminToken)

	return callID, nil
}

// trackOutcome waits for the placed call to reach its terminal state and
// applies its result out-of-band. Runs detached from the request context;
// the webhook path may deliver the same result first, which is safe
// because ApplyOutcome tolerates redundant application.
func (s *flowService) trackOutcome(callID int64, customerID string, flow entity.FlowKind, credential string) {
	ctx := context.Background()

	completed, detail := s.phoneCalls.AwaitCompletion(ctx, callID, credential, s.waitCfg.Timeout, s.waitCfg.PollInterval)
	if !completed {
		s.logger.Warn("Call did not complete within wait budget",
			slog.Int64("call_id", callID),
			slog.String("customer_id", customerID),
		)

		return
	}

	result := searchNestedMap(detail.Raw, "result")
	if result == nil {
		s.logger.Debug("Completed call carried no result payload",
			slog.Int64("call_id", callID),
		)

		return
	}

	if err := s.ApplyOutcome(ctx, customerID, flow, result); err != nil {
		s.logger.Error("Failed to apply call outcome",
			slog.Int64("call_id", callID),
			slog.String("customer_id", customerID),
			slog.String("error", err.Error()),
		)
	}
}

// ApplyOutcome maps a flow result onto the customer record.
func (s *flowService) ApplyOutcome(ctx context.Context, customerID string, flow entity.FlowKind, result map[string]any) error {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return domainerrors.ErrCustomerNotFound
		}

		return fmt.Errorf("failed to find customer: %w", err)
	}

	previous := customer.Status
	changed := false

	switch flow {
	case entity.FlowOrderBooking:
		changed = applyOrderBooking(customer, result)
	case entity.FlowArrivalConfirmation:
		changed = applyArrivalConfirmation(customer, result)
	case entity.FlowMissedCustomerRecovery:
		changed = applyMissedCustomerRecovery(customer, result)
	default:
		// Unknown flow: absence of information must not corrupt state.
		return nil
	}

	if !changed {
		return nil
	}

	// A stale or replayed result must not move the customer backwards
	// through the lifecycle.
	if !previous.CanTransitionTo(customer.Status) {
		s.logger.Warn("Discarded call result with illegal status transition",
			slog.String("customer_id", customer.CustomerID),
			slog.String("from", string(previous)),
			slog.String("to", string(customer.Status)),
		)

		return nil
	}

	customer.UpdatedAt = time.Now()
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	return nil
}

func applyOrderBooking(customer *entity.Customer, result map[string]any) bool {
	customer.Status = entity.StatusOrderConfirmed
	if details := stringField(result, "order_details"); details != "" {
		customer.OrderDetails = details
	}
	if arrival := stringField(result, "expected_arrival_time"); arrival != "" {
		if parsed := parseArrivalTime(arrival, time.Now()); parsed != nil {
			customer.ExpectedArrivalTime = parsed
		}
	}

	return true
}

func applyArrivalConfirmation(customer *entity.Customer, result map[string]any) bool {
	switch strings.ToLower(stringField(result, "arrival_status")) {
	case "arrived":
		customer.Status = entity.StatusArrived
		customer.ArrivalConfirmed = true

		return true
	case "on the way":
		return false
	case "not coming", "cancel":
		customer.Status = entity.StatusNoShow

		return true
	default:
		return false
	}
}

func applyMissedCustomerRecovery(customer *entity.Customer, result map[string]any) bool {
	switch strings.ToLower(stringField(result, "action")) {
	case "reschedule":
		customer.Status = entity.StatusOrderConfirmed
		if arrival := stringField(result, "new_arrival_time"); arrival != "" {
			if parsed := parseArrivalTime(arrival, time.Now()); parsed != nil {
				customer.ExpectedArrivalTime = parsed
				customer.ArrivalConfirmed = false
			}
		}

		return true
	case "takeaway":
		customer.Status = entity.StatusResolved
		if order := stringField(result, "takeaway_order"); order != "" {
			customer.OrderDetails = order
		}

		return true
	case "cancel":
		customer.Status = entity.StatusResolved

		return true
	default:
		return false
	}
}

// buildCallRequest assembles the flow script and capture fields.
func (s *flowService) buildCallRequest(customer *entity.Customer, flow entity.FlowKind) *service.CallRequest {
	name := customer.Name
	if name == "" {
		name = "there"
	}

	req := &service.CallRequest{
		PhoneNumber: customer.Mobile,
		CustomerID:  customer.CustomerID,
		CallFlow:    flow,
		Context: map[string]string{
			"name":            customer.Name,
			"restaurant_name": s.restaurant,
			"flow_type":       string(flow),
		},
	}

	switch flow {
	case entity.FlowOrderBooking:
		req.Prompt = fmt.Sprintf(
			"Hello %s, this is calling from %s. "+
				"We noticed your interest in dining with us today. "+
				"I just want to confirm your order and any special requirements. "+
				"Are you planning to dine in or take away? "+
				"Do you have any special food preferences? "+
				"What time will you be arriving?",
			name, s.restaurant)
		req.CaptureFields = []string{"order_details", "expected_arrival_time"}
	case entity.FlowArrivalConfirmation:
		req.Prompt = fmt.Sprintf(
			"Hi %s, this is %s. "+
				"Just checking if you've reached the restaurant or are on the way?",
			name, s.restaurant)
		req.CaptureFields = []string{"arrival_status"}
	case entity.FlowMissedCustomerRecovery:
		req.Prompt = fmt.Sprintf(
			"Hi %s, this is %s. "+
				"We noticed you couldn't make it earlier, no worries at all. "+
				"Would you like to reschedule your visit, place a takeaway order, or cancel for today?",
			name, s.restaurant)
		req.CaptureFields = []string{"action", "new_arrival_time", "takeaway_order"}
	}

	return req
}

// stringField reads a string value from a loosely-typed result map.
func stringField(result map[string]any, key string) string {
	value, ok := result[key]
	if !ok {
		return ""
	}

	str, ok := value.(string)
	if !ok {
		return ""
	}

	return strings.TrimSpace(str)
}

// arrivalTimeLayouts are tried in order when parsing an arrival time the
// voice agent captured.
var arrivalTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"15:04",
	"3:04 PM",
}

// parseArrivalTime parses a captured arrival time. Time-only values are
// anchored to today's date.
func parseArrivalTime(value string, now time.Time) *time.Time {
	for _, layout := range arrivalTimeLayouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}

		if parsed.Year() == 0 {
			parsed = time.Date(now.Year(), now.Month(), now.Day(),
				parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
		}

		return &parsed
	}

	return nil
}
