package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-service/internal/domain"
	"compliance-service/internal/flow"
)

// fakeEventRepo implements EventRepository over a slice, applying the filter
// and pagination the way the SQL layer would.
type fakeEventRepo struct {
	events []domain.UnifiedEvent
}

func (r *fakeEventRepo) matches(e domain.UnifiedEvent, f domain.EventFilter) bool {
	if f.ClientID != nil && e.ClientID != *f.ClientID {
		return false
	}
	if f.EventType != nil && e.EventType != *f.EventType {
		return false
	}
	if f.AssetClass != nil && e.AssetClass != *f.AssetClass {
		return false
	}
	if f.ComplianceStatus != nil && e.ComplianceStatus != *f.ComplianceStatus {
		return false
	}
	if f.MinAmount != nil && e.FunctionalAmount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && e.FunctionalAmount.GreaterThan(*f.MaxAmount) {
		return false
	}
	return true
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.UnifiedEvent) error {
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, eventID string) (*domain.UnifiedEvent, error) {
	for _, e := range r.events {
		if e.EventID == eventID {
			return &e, nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (r *fakeEventRepo) Update(_ context.Context, eventID string, req domain.UpdateEventRequest) (*domain.UnifiedEvent, error) {
	for i, e := range r.events {
		if e.EventID == eventID {
			if req.ComplianceStatus != nil {
				e.ComplianceStatus = *req.ComplianceStatus
			}
			if req.Remark != nil {
				e.Remark = req.Remark
			}
			r.events[i] = e
			return &e, nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (r *fakeEventRepo) Delete(_ context.Context, eventID string) error {
	for i, e := range r.events {
		if e.EventID == eventID {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return nil
		}
	}
	return domain.ErrEventNotFound
}

func (r *fakeEventRepo) List(_ context.Context, filter domain.EventFilter, page domain.Pagination) ([]domain.UnifiedEvent, error) {
	var matched []domain.UnifiedEvent
	for _, e := range r.events {
		if r.matches(e, filter) {
			matched = append(matched, e)
		}
	}

	offset := page.Offset()
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + page.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *fakeEventRepo) Count(_ context.Context, filter domain.EventFilter) (int, error) {
	count := 0
	for _, e := range r.events {
		if r.matches(e, filter) {
			count++
		}
	}
	return count, nil
}

func (r *fakeEventRepo) ListByClient(_ context.Context, clientID string) ([]domain.UnifiedEvent, error) {
	var out []domain.UnifiedEvent
	for _, e := range r.events {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) ListByLinkedEventID(_ context.Context, eventID string) ([]domain.UnifiedEvent, error) {
	var out []domain.UnifiedEvent
	for _, e := range r.events {
		if e.LinkedEventID != nil && *e.LinkedEventID == eventID {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestEventService(repo *fakeEventRepo) *EventService {
	return NewEventService(repo, flow.NewTracer(repo, 0), nil)
}

func testEvent(id, clientID string, assetClass domain.AssetClass) domain.UnifiedEvent {
	return domain.UnifiedEvent{
		EventID:            id,
		ClientID:           clientID,
		EventType:          domain.EventTradeBuy,
		AssetClass:         assetClass,
		Currency:           "CNY",
		FunctionalAmount:   decimal.NewFromInt(1000),
		ComplianceStatus:   domain.ComplianceCompliant,
		LegalStructure:     domain.StructureIndividual,
		JurisdictionType:   domain.JurisdictionOnshore,
		VerificationStatus: domain.VerificationVerified,
	}
}

func TestQueryEventsFilterAndPagination(t *testing.T) {
	repo := &fakeEventRepo{}
	for i := 0; i < 3; i++ {
		repo.events = append(repo.events, testEvent("evt_crypto_"+string(rune('a'+i)), "client_1", domain.AssetCrypto))
	}
	for i := 0; i < 5; i++ {
		repo.events = append(repo.events, testEvent("evt_sec_"+string(rune('a'+i)), "client_1", domain.AssetSecurity))
	}

	svc := newTestEventService(repo)

	crypto := domain.AssetCrypto
	result, err := svc.QueryEvents(context.Background(),
		domain.EventFilter{AssetClass: &crypto},
		domain.Pagination{Page: 1, Limit: 10},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.TotalPages)
	assert.Len(t, result.Events, 3)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 10, result.Limit)
}

func TestQueryEventsDefaults(t *testing.T) {
	repo := &fakeEventRepo{}
	repo.events = append(repo.events, testEvent("evt_1", "client_1", domain.AssetCash))

	svc := newTestEventService(repo)

	result, err := svc.QueryEvents(context.Background(), domain.EventFilter{}, domain.Pagination{})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultPage, result.Page)
	assert.Equal(t, domain.DefaultLimit, result.Limit)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.TotalPages)
}

func TestQueryEventsEmptyPageIsArray(t *testing.T) {
	svc := newTestEventService(&fakeEventRepo{})

	result, err := svc.QueryEvents(context.Background(), domain.EventFilter{}, domain.Pagination{})
	require.NoError(t, err)
	require.NotNil(t, result.Events)
	assert.Len(t, result.Events, 0)

	body, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"events":[]`)
}

func TestQueryEventsTotalPagesRoundsUp(t *testing.T) {
	repo := &fakeEventRepo{}
	for i := 0; i < 7; i++ {
		repo.events = append(repo.events, testEvent("evt_"+string(rune('a'+i)), "client_1", domain.AssetCash))
	}

	svc := newTestEventService(repo)

	result, err := svc.QueryEvents(context.Background(), domain.EventFilter{}, domain.Pagination{Page: 2, Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, 7, result.Total)
	assert.Equal(t, 3, result.TotalPages)
	assert.Len(t, result.Events, 3)
}

func TestCreateEventGeneratesID(t *testing.T) {
	repo := &fakeEventRepo{}
	svc := newTestEventService(repo)

	req := domain.CreateEventRequest{
		ClientID:           "client_1",
		EventType:          domain.EventTradeBuy,
		AssetClass:         domain.AssetSecurity,
		Currency:           "CNY",
		ComplianceStatus:   domain.ComplianceCompliant,
		LegalStructure:     domain.StructureIndividual,
		JurisdictionType:   domain.JurisdictionOnshore,
		VerificationStatus: domain.VerificationVerified,
	}

	event, err := svc.CreateEvent(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, event.EventID, "evt_")
	assert.Equal(t, "client_1", event.ClientID)
}

func TestCreateEventValidation(t *testing.T) {
	svc := newTestEventService(&fakeEventRepo{})

	tests := []struct {
		name   string
		mutate func(*domain.CreateEventRequest)
		want   error
	}{
		{
			name:   "missing client",
			mutate: func(r *domain.CreateEventRequest) { r.ClientID = "" },
			want:   domain.ErrClientIDRequired,
		},
		{
			name:   "missing currency",
			mutate: func(r *domain.CreateEventRequest) { r.Currency = "" },
			want:   domain.ErrCurrencyRequired,
		},
		{
			name:   "bad event type",
			mutate: func(r *domain.CreateEventRequest) { r.EventType = "NOT_A_THING" },
			want:   domain.ErrInvalidEventType,
		},
		{
			name:   "bad asset class",
			mutate: func(r *domain.CreateEventRequest) { r.AssetClass = "POKEMON" },
			want:   domain.ErrInvalidAssetClass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.CreateEventRequest{
				ClientID:           "client_1",
				EventType:          domain.EventTradeBuy,
				AssetClass:         domain.AssetSecurity,
				Currency:           "CNY",
				ComplianceStatus:   domain.ComplianceCompliant,
				LegalStructure:     domain.StructureIndividual,
				JurisdictionType:   domain.JurisdictionOnshore,
				VerificationStatus: domain.VerificationVerified,
			}
			tt.mutate(&req)

			_, err := svc.CreateEvent(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetEventIncludesRiskScore(t *testing.T) {
	repo := &fakeEventRepo{}
	e := testEvent("evt_hot", "client_1", domain.AssetCrypto)
	e.ComplianceStatus = domain.ComplianceUnderReview
	e.JurisdictionType = domain.JurisdictionLongArm
	repo.events = append(repo.events, e)

	svc := newTestEventService(repo)

	detail, err := svc.GetEvent(context.Background(), "evt_hot")
	require.NoError(t, err)
	assert.Equal(t, 70, detail.RiskScore) // 50 crypto + 20 long arm
}

func TestRiskMetricsScopedByClient(t *testing.T) {
	repo := &fakeEventRepo{}

	big := testEvent("evt_big", "client_1", domain.AssetSecurity)
	big.FunctionalAmount = decimal.NewFromInt(9_000_000)
	repo.events = append(repo.events, big)

	otherBig := testEvent("evt_other", "client_2", domain.AssetSecurity)
	otherBig.FunctionalAmount = decimal.NewFromInt(9_000_000)
	repo.events = append(repo.events, otherBig)

	svc := newTestEventService(repo)

	all, err := svc.RiskMetrics(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, all.LargeTransactionCount)

	clientID := "client_1"
	scoped, err := svc.RiskMetrics(context.Background(), &clientID)
	require.NoError(t, err)
	assert.Equal(t, 1, scoped.LargeTransactionCount)
	assert.Equal(t, 10, scoped.TotalRiskScore)
}

func TestTraceFundFlowThroughService(t *testing.T) {
	repo := &fakeEventRepo{}

	a := testEvent("evt_A", "client_1", domain.AssetCash)
	b := testEvent("evt_B", "client_1", domain.AssetCash)
	parentA := "evt_A"
	b.LinkedEventID = &parentA
	c := testEvent("evt_C", "client_1", domain.AssetCash)
	parentB := "evt_B"
	c.LinkedEventID = &parentB
	repo.events = append(repo.events, a, b, c)

	svc := newTestEventService(repo)

	path, err := svc.TraceFundFlow(context.Background(), "evt_B")
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, "evt_A", path[0].EventID)
	assert.Equal(t, "evt_B", path[1].EventID)
	assert.Equal(t, "evt_C", path[2].EventID)

	_, err = svc.TraceFundFlow(context.Background(), "evt_missing")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestDeleteEventNotFound(t *testing.T) {
	svc := newTestEventService(&fakeEventRepo{})
	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), "evt_missing"), domain.ErrEventNotFound)
}
