package service

import (
	"context"

	"compliance-service/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	GetByCode(ctx context.Context, code string) (*domain.Client, error)
	List(ctx context.Context, advisorID *string) ([]domain.ClientSummary, error)
	Update(ctx context.Context, id string, req domain.UpdateClientRequest) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
	CountBioEvents(ctx context.Context, clientID string) (int, error)
	CountLegalEntities(ctx context.Context, clientID string) (int, error)
}

type ClientService struct {
	clientRepo ClientRepository
	eventRepo  EventRepository
	audit      *AuditService
}

func NewClientService(clientRepo ClientRepository, eventRepo EventRepository, audit *AuditService) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		eventRepo:  eventRepo,
		audit:      audit,
	}
}

func (s *ClientService) CreateClient(ctx context.Context, req domain.CreateClientRequest) (*domain.Client, error) {
	if err := domain.ValidateClientCode(req.ClientCode); err != nil {
		return nil, err
	}
	if err := domain.ValidateClientName(req.FullName); err != nil {
		return nil, err
	}

	riskLevel := req.RiskLevel
	if riskLevel == "" {
		riskLevel = domain.RiskLevelMedium
	}
	if err := domain.ValidateRiskLevel(riskLevel); err != nil {
		return nil, err
	}

	existing, err := s.clientRepo.GetByCode(ctx, req.ClientCode)
	if err != nil && err != domain.ErrClientNotFound {
		log.WithError(err).WithField("client_code", req.ClientCode).Error("Failed to check client existence")
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrClientCodeExists
	}

	client := &domain.Client{
		ID:           uuid.NewString(),
		ClientCode:   req.ClientCode,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Nationality:  req.Nationality,
		TaxResidency: req.TaxResidency,
		RiskLevel:    riskLevel,
		AdvisorID:    req.AdvisorID,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		log.WithError(err).WithField("client_code", req.ClientCode).Error("Failed to create client")
		return nil, err
	}

	s.audit.RecordClientCreated(ctx, client)

	return client, nil
}

func (s *ClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	if id == "" {
		return nil, domain.ErrClientNotFound
	}
	return s.clientRepo.GetByID(ctx, id)
}

func (s *ClientService) ListClients(ctx context.Context, advisorID *string) ([]domain.ClientSummary, error) {
	clients, err := s.clientRepo.List(ctx, advisorID)
	if err != nil {
		log.WithError(err).Error("Failed to list clients")
		return nil, err
	}
	return clients, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, id string, req domain.UpdateClientRequest) (*domain.Client, error) {
	if id == "" {
		return nil, domain.ErrClientNotFound
	}

	if req.FullName != nil {
		if err := domain.ValidateClientName(*req.FullName); err != nil {
			return nil, err
		}
	}
	if req.RiskLevel != nil {
		if err := domain.ValidateRiskLevel(*req.RiskLevel); err != nil {
			return nil, err
		}
	}

	client, err := s.clientRepo.Update(ctx, id, req)
	if err != nil {
		log.WithError(err).WithField("client_id", id).Error("Failed to update client")
		return nil, err
	}

	s.audit.RecordClientUpdated(ctx, client)

	return client, nil
}

func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrClientNotFound
	}

	if err := s.clientRepo.Delete(ctx, id); err != nil {
		log.WithError(err).WithField("client_id", id).Error("Failed to delete client")
		return err
	}

	s.audit.RecordClientDeleted(ctx, id)

	return nil
}

// Stats computes the per-client rollup: signed asset totals plus sums bucketed
// by asset class and by source country, and counts of adjacent record kinds.
func (s *ClientService) Stats(ctx context.Context, clientID string) (*domain.ClientStats, error) {
	if _, err := s.clientRepo.GetByID(ctx, clientID); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ListByClient(ctx, clientID)
	if err != nil {
		log.WithError(err).WithField("client_id", clientID).Error("Failed to load client events for stats")
		return nil, err
	}

	bioEvents, err := s.clientRepo.CountBioEvents(ctx, clientID)
	if err != nil {
		return nil, err
	}

	entities, err := s.clientRepo.CountLegalEntities(ctx, clientID)
	if err != nil {
		return nil, err
	}

	stats := &domain.ClientStats{
		TotalAssets:          decimal.Zero,
		TotalEvents:          len(events),
		BioEventCount:        bioEvents,
		EntityCount:          entities,
		AssetsByClass:        map[domain.AssetClass]decimal.Decimal{},
		AssetsByJurisdiction: map[string]decimal.Decimal{},
	}

	for _, e := range events {
		stats.TotalAssets = stats.TotalAssets.Add(e.FunctionalAmount)
		stats.AssetsByClass[e.AssetClass] = stats.AssetsByClass[e.AssetClass].Add(e.FunctionalAmount)
		stats.AssetsByJurisdiction[e.SourceCountry] = stats.AssetsByJurisdiction[e.SourceCountry].Add(e.FunctionalAmount)
	}

	return stats, nil
}
