package service

import (
	"context"
	"fmt"

	"compliance-service/internal/domain"
	"compliance-service/internal/flow"
	"compliance-service/internal/metrics"
	"compliance-service/internal/risk"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// riskMetricsScanLimit bounds the event set fed into aggregate risk scoring.
const riskMetricsScanLimit = 10000

type EventRepository interface {
	Create(ctx context.Context, event *domain.UnifiedEvent) error
	GetByID(ctx context.Context, eventID string) (*domain.UnifiedEvent, error)
	Update(ctx context.Context, eventID string, req domain.UpdateEventRequest) (*domain.UnifiedEvent, error)
	Delete(ctx context.Context, eventID string) error
	List(ctx context.Context, filter domain.EventFilter, page domain.Pagination) ([]domain.UnifiedEvent, error)
	Count(ctx context.Context, filter domain.EventFilter) (int, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.UnifiedEvent, error)
	ListByLinkedEventID(ctx context.Context, eventID string) ([]domain.UnifiedEvent, error)
}

// EventDetail is a single event together with its composite risk score,
// served on the detail view.
type EventDetail struct {
	domain.UnifiedEvent
	RiskScore int `json:"risk_score"`
}

type EventService struct {
	eventRepo EventRepository
	tracer    *flow.Tracer
	audit     *AuditService
}

func NewEventService(eventRepo EventRepository, tracer *flow.Tracer, audit *AuditService) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		tracer:    tracer,
		audit:     audit,
	}
}

func validateCreateEventRequest(req domain.CreateEventRequest) error {
	if req.ClientID == "" {
		return domain.ErrClientIDRequired
	}
	if req.Currency == "" {
		return domain.ErrCurrencyRequired
	}
	if err := domain.ValidateEventType(req.EventType); err != nil {
		return err
	}
	if err := domain.ValidateAssetClass(req.AssetClass); err != nil {
		return err
	}
	if err := domain.ValidateComplianceStatus(req.ComplianceStatus); err != nil {
		return err
	}
	if err := domain.ValidateLegalStructure(req.LegalStructure); err != nil {
		return err
	}
	if err := domain.ValidateJurisdictionType(req.JurisdictionType); err != nil {
		return err
	}
	if err := domain.ValidateVerificationStatus(req.VerificationStatus); err != nil {
		return err
	}
	if req.CashFlowNature != nil {
		if err := domain.ValidateCashFlowNature(*req.CashFlowNature); err != nil {
			return err
		}
	}
	return nil
}

func (s *EventService) CreateEvent(ctx context.Context, req domain.CreateEventRequest) (*domain.UnifiedEvent, error) {
	if err := validateCreateEventRequest(req); err != nil {
		return nil, err
	}

	eventID := req.EventID
	if eventID == "" {
		eventID = "evt_" + uuid.NewString()
	}

	event := &domain.UnifiedEvent{
		EventID:            eventID,
		ClientID:           req.ClientID,
		EventType:          req.EventType,
		AssetClass:         req.AssetClass,
		TransactionTime:    req.TransactionTime,
		PostingDate:        req.PostingDate,
		SettleDate:         req.SettleDate,
		AssetName:          req.AssetName,
		InstitutionName:    req.InstitutionName,
		AccountID:          req.AccountID,
		Quantity:           req.Quantity,
		Price:              req.Price,
		GrossAmount:        req.GrossAmount,
		NetAmount:          req.NetAmount,
		Currency:           req.Currency,
		FunctionalAmount:   req.FunctionalAmount,
		CounterpartyName:   req.CounterpartyName,
		LinkedEventID:      req.LinkedEventID,
		FundFlowPath:       req.FundFlowPath,
		ComplianceStatus:   req.ComplianceStatus,
		LegalStructure:     req.LegalStructure,
		SourceCountry:      req.SourceCountry,
		JurisdictionType:   req.JurisdictionType,
		VerificationStatus: req.VerificationStatus,
		CashFlowNature:     req.CashFlowNature,
		PurposeCategory:    req.PurposeCategory,
		ProjectTags:        req.ProjectTags,
		Remark:             req.Remark,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		log.WithError(err).WithField("client_id", req.ClientID).Error("Failed to create event")
		return nil, err
	}

	metrics.EventsCreated.Inc()
	s.audit.RecordEventCreated(ctx, event)

	log.WithFields(log.Fields{
		"event_id":  event.EventID,
		"client_id": event.ClientID,
	}).Info("Event successfully created")

	return event, nil
}

// GetEvent returns the event together with its risk score.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*EventDetail, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidEventID
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	metrics.RiskAssessments.Inc()

	return &EventDetail{
		UnifiedEvent: *event,
		RiskScore:    risk.Assess(*event),
	}, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, eventID string, req domain.UpdateEventRequest) (*domain.UnifiedEvent, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidEventID
	}

	if req.EventType != nil {
		if err := domain.ValidateEventType(*req.EventType); err != nil {
			return nil, err
		}
	}
	if req.AssetClass != nil {
		if err := domain.ValidateAssetClass(*req.AssetClass); err != nil {
			return nil, err
		}
	}
	if req.ComplianceStatus != nil {
		if err := domain.ValidateComplianceStatus(*req.ComplianceStatus); err != nil {
			return nil, err
		}
	}
	if req.LegalStructure != nil {
		if err := domain.ValidateLegalStructure(*req.LegalStructure); err != nil {
			return nil, err
		}
	}
	if req.JurisdictionType != nil {
		if err := domain.ValidateJurisdictionType(*req.JurisdictionType); err != nil {
			return nil, err
		}
	}
	if req.VerificationStatus != nil {
		if err := domain.ValidateVerificationStatus(*req.VerificationStatus); err != nil {
			return nil, err
		}
	}
	if req.CashFlowNature != nil {
		if err := domain.ValidateCashFlowNature(*req.CashFlowNature); err != nil {
			return nil, err
		}
	}

	event, err := s.eventRepo.Update(ctx, eventID, req)
	if err != nil {
		log.WithError(err).WithField("event_id", eventID).Error("Failed to update event")
		return nil, err
	}

	s.audit.RecordEventUpdated(ctx, event)

	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return domain.ErrInvalidEventID
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		log.WithError(err).WithField("event_id", eventID).Error("Failed to delete event")
		return err
	}

	metrics.EventsDeleted.Inc()
	s.audit.RecordEventDeleted(ctx, eventID)

	return nil
}

// QueryEvents runs a filtered, sorted, paginated event query and returns one
// page plus the pre-pagination total.
func (s *EventService) QueryEvents(ctx context.Context, filter domain.EventFilter, page domain.Pagination) (*domain.EventPage, error) {
	page.Normalize()

	events, err := s.eventRepo.List(ctx, filter, page)
	if err != nil {
		log.WithError(err).Error("Failed to query events")
		return nil, err
	}
	if events == nil {
		events = []domain.UnifiedEvent{}
	}

	total, err := s.eventRepo.Count(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to count events")
		return nil, err
	}

	metrics.EventQueries.Inc()

	totalPages := total / page.Limit
	if total%page.Limit != 0 {
		totalPages++
	}

	return &domain.EventPage{
		Events:     events,
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *EventService) ListClientEvents(ctx context.Context, clientID string) ([]domain.UnifiedEvent, error) {
	if clientID == "" {
		return nil, domain.ErrClientIDRequired
	}
	return s.eventRepo.ListByClient(ctx, clientID)
}

// RiskMetrics computes the aggregate risk summary, optionally scoped to a
// single client.
func (s *EventService) RiskMetrics(ctx context.Context, clientID *string) (risk.Metrics, error) {
	filter := domain.EventFilter{ClientID: clientID}

	events, err := s.eventRepo.List(ctx, filter, domain.Pagination{
		Page:      1,
		Limit:     riskMetricsScanLimit,
		SortBy:    domain.DefaultSortBy,
		SortOrder: domain.SortOrderDesc,
	})
	if err != nil {
		log.WithError(err).Error("Failed to load events for risk metrics")
		return risk.Metrics{}, fmt.Errorf("failed to load events for risk metrics: %w", err)
	}

	return risk.Calculate(events), nil
}

// TraceFundFlow reconstructs the ordered lineage of an event.
func (s *EventService) TraceFundFlow(ctx context.Context, eventID string) ([]domain.UnifiedEvent, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidEventID
	}

	path, err := s.tracer.Trace(ctx, eventID)
	if err != nil {
		return nil, err
	}

	metrics.FlowTraces.Inc()
	metrics.FlowTraceLength.Observe(float64(len(path)))

	return path, nil
}
