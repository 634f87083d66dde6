package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-service/internal/domain"
	"compliance-service/internal/risk"
	"compliance-service/internal/service"
)

// stubEventService returns canned results for handler tests.
type stubEventService struct {
	trace   []domain.UnifiedEvent
	metrics risk.Metrics
	err     error
}

func (s *stubEventService) CreateEvent(context.Context, domain.CreateEventRequest) (*domain.UnifiedEvent, error) {
	return nil, s.err
}

func (s *stubEventService) GetEvent(context.Context, string) (*service.EventDetail, error) {
	return nil, s.err
}

func (s *stubEventService) UpdateEvent(context.Context, string, domain.UpdateEventRequest) (*domain.UnifiedEvent, error) {
	return nil, s.err
}

func (s *stubEventService) DeleteEvent(context.Context, string) error {
	return s.err
}

func (s *stubEventService) QueryEvents(context.Context, domain.EventFilter, domain.Pagination) (*domain.EventPage, error) {
	return &domain.EventPage{}, s.err
}

func (s *stubEventService) ListClientEvents(context.Context, string) ([]domain.UnifiedEvent, error) {
	return nil, s.err
}

func (s *stubEventService) RiskMetrics(context.Context, *string) (risk.Metrics, error) {
	return s.metrics, s.err
}

func (s *stubEventService) TraceFundFlow(context.Context, string) ([]domain.UnifiedEvent, error) {
	return s.trace, s.err
}

func TestGetFundFlowPathNotFound(t *testing.T) {
	srv := NewEventServer(&stubEventService{err: domain.ErrEventNotFound})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/events/evt_missing/flow-path", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("evt_missing")

	require.NoError(t, srv.GetFundFlowPath(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetFundFlowPathOrderedBody(t *testing.T) {
	srv := NewEventServer(&stubEventService{trace: []domain.UnifiedEvent{
		{EventID: "evt_A"}, {EventID: "evt_B"}, {EventID: "evt_C"},
	}})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/events/evt_B/flow-path", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("evt_B")

	require.NoError(t, srv.GetFundFlowPath(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 3)
	assert.Equal(t, "evt_A", body[0]["event_id"])
	assert.Equal(t, "evt_C", body[2]["event_id"])
}

func TestGetRiskMetricsBody(t *testing.T) {
	srv := NewEventServer(&stubEventService{metrics: risk.Metrics{
		LargeTransactionCount: 2,
		BrokenFlowCount:       1,
		TotalRiskScore:        50,
	}})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/events/risk-metrics?client_id=client_1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, srv.GetRiskMetrics(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["large_transaction_count"])
	assert.EqualValues(t, 50, body["total_risk_score"])
}

func TestGetEventsRejectsUnknownEnum(t *testing.T) {
	srv := NewEventServer(&stubEventService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/events?asset_class=POKEMON", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, srv.GetEvents(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
