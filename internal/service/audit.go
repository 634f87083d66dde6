package service

import (
	"context"
	"time"

	"compliance-service/internal/domain"
	"compliance-service/internal/metrics"

	log "github.com/sirupsen/logrus"
)

type AuditPublisher interface {
	Publish(ctx context.Context, event domain.AuditEvent) error
}

// AuditService records compliance-relevant mutations to the audit bus. A nil
// service or publisher is a no-op, so wiring stays simple when no broker is
// configured. Publish failures are logged and counted, never surfaced to the
// caller: the mutation already succeeded.
type AuditService struct {
	publisher AuditPublisher
}

func NewAuditService(publisher AuditPublisher) *AuditService {
	return &AuditService{publisher: publisher}
}

func (s *AuditService) record(ctx context.Context, eventType, entityID string, payload map[string]interface{}) {
	if s == nil || s.publisher == nil {
		return
	}

	event := domain.AuditEvent{
		Service:    "compliance-service",
		EventType:  eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.AuditPublishFailures.Inc()
		log.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"entity_id":  entityID,
		}).Error("Failed to publish audit event")
	}
}

func (s *AuditService) RecordEventCreated(ctx context.Context, event *domain.UnifiedEvent) {
	if event == nil {
		return
	}

	payload := map[string]interface{}{
		"client_id":         event.ClientID,
		"event_type":        event.EventType,
		"asset_class":       event.AssetClass,
		"currency":          event.Currency,
		"functional_amount": event.FunctionalAmount,
		"compliance_status": event.ComplianceStatus,
	}
	if event.LinkedEventID != nil {
		payload["linked_event_id"] = *event.LinkedEventID
	}

	s.record(ctx, "event_created", event.EventID, payload)
}

func (s *AuditService) RecordEventUpdated(ctx context.Context, event *domain.UnifiedEvent) {
	if event == nil {
		return
	}

	s.record(ctx, "event_updated", event.EventID, map[string]interface{}{
		"client_id":         event.ClientID,
		"compliance_status": event.ComplianceStatus,
	})
}

func (s *AuditService) RecordEventDeleted(ctx context.Context, eventID string) {
	s.record(ctx, "event_deleted", eventID, nil)
}

func (s *AuditService) RecordClientCreated(ctx context.Context, client *domain.Client) {
	if client == nil {
		return
	}

	s.record(ctx, "client_created", client.ID, map[string]interface{}{
		"client_code": client.ClientCode,
		"risk_level":  client.RiskLevel,
	})
}

func (s *AuditService) RecordClientUpdated(ctx context.Context, client *domain.Client) {
	if client == nil {
		return
	}

	s.record(ctx, "client_updated", client.ID, map[string]interface{}{
		"client_code": client.ClientCode,
		"risk_level":  client.RiskLevel,
	})
}

func (s *AuditService) RecordClientDeleted(ctx context.Context, clientID string) {
	s.record(ctx, "client_deleted", clientID, nil)
}
