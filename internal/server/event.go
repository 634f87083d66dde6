package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"compliance-service/internal/domain"
	"compliance-service/internal/risk"
	"compliance-service/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type EventService interface {
	CreateEvent(ctx context.Context, req domain.CreateEventRequest) (*domain.UnifiedEvent, error)
	GetEvent(ctx context.Context, eventID string) (*service.EventDetail, error)
	UpdateEvent(ctx context.Context, eventID string, req domain.UpdateEventRequest) (*domain.UnifiedEvent, error)
	DeleteEvent(ctx context.Context, eventID string) error
	QueryEvents(ctx context.Context, filter domain.EventFilter, page domain.Pagination) (*domain.EventPage, error)
	ListClientEvents(ctx context.Context, clientID string) ([]domain.UnifiedEvent, error)
	RiskMetrics(ctx context.Context, clientID *string) (risk.Metrics, error)
	TraceFundFlow(ctx context.Context, eventID string) ([]domain.UnifiedEvent, error)
}

type eventServer struct {
	eventService EventService
}

func NewEventServer(eventService EventService) *eventServer {
	return &eventServer{eventService: eventService}
}

func handleEventError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		return http.StatusNotFound, "event not found"
	case errors.Is(err, domain.ErrInvalidEventType),
		errors.Is(err, domain.ErrInvalidAssetClass),
		errors.Is(err, domain.ErrInvalidLegalStructure),
		errors.Is(err, domain.ErrInvalidJurisdiction),
		errors.Is(err, domain.ErrInvalidVerification),
		errors.Is(err, domain.ErrInvalidCompliance),
		errors.Is(err, domain.ErrInvalidCashFlowNature),
		errors.Is(err, domain.ErrClientIDRequired),
		errors.Is(err, domain.ErrCurrencyRequired),
		errors.Is(err, domain.ErrInvalidEventID):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (s *eventServer) CreateEvent(c echo.Context) error {
	var req domain.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	event, err := s.eventService.CreateEvent(c.Request().Context(), req)
	if err != nil {
		log.WithError(err).Error("Failed to create event")
		statusCode, errorMsg := handleEventError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.JSON(http.StatusCreated, event)
}

// parseEventFilter reads the optional filter criteria off the query string,
// rejecting unknown enum values at the boundary.
func parseEventFilter(c echo.Context) (domain.EventFilter, error) {
	var filter domain.EventFilter

	if v := c.QueryParam("client_id"); v != "" {
		filter.ClientID = &v
	}
	if v := c.QueryParam("event_type"); v != "" {
		t := domain.EventType(v)
		if err := domain.ValidateEventType(t); err != nil {
			return filter, err
		}
		filter.EventType = &t
	}
	if v := c.QueryParam("asset_class"); v != "" {
		a := domain.AssetClass(v)
		if err := domain.ValidateAssetClass(a); err != nil {
			return filter, err
		}
		filter.AssetClass = &a
	}
	if v := c.QueryParam("compliance_status"); v != "" {
		cs := domain.ComplianceStatus(v)
		if err := domain.ValidateComplianceStatus(cs); err != nil {
			return filter, err
		}
		filter.ComplianceStatus = &cs
	}
	if v := c.QueryParam("legal_structure"); v != "" {
		ls := domain.LegalStructure(v)
		if err := domain.ValidateLegalStructure(ls); err != nil {
			return filter, err
		}
		filter.LegalStructure = &ls
	}
	if v := c.QueryParam("jurisdiction_type"); v != "" {
		jt := domain.JurisdictionType(v)
		if err := domain.ValidateJurisdictionType(jt); err != nil {
			return filter, err
		}
		filter.JurisdictionType = &jt
	}
	if v := c.QueryParam("verification_status"); v != "" {
		vs := domain.VerificationStatus(v)
		if err := domain.ValidateVerificationStatus(vs); err != nil {
			return filter, err
		}
		filter.VerificationStatus = &vs
	}
	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("invalid start_date")
		}
		filter.StartDate = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("invalid end_date")
		}
		filter.EndDate = &t
	}
	if v := c.QueryParam("min_amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("invalid min_amount")
		}
		filter.MinAmount = &d
	}
	if v := c.QueryParam("max_amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("invalid max_amount")
		}
		filter.MaxAmount = &d
	}

	return filter, nil
}

func parsePagination(c echo.Context) domain.Pagination {
	page := domain.Pagination{
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}

	if v := c.QueryParam("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			page.Page = p
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			page.Limit = l
		}
	}

	return page
}

func (s *eventServer) GetEvents(c echo.Context) error {
	filter, err := parseEventFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := s.eventService.QueryEvents(c.Request().Context(), filter, parsePagination(c))
	if err != nil {
		log.WithError(err).Error("Failed to query events")
		statusCode, errorMsg := handleEventError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *eventServer) GetEvent(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "event ID is required",
		})
	}

	detail, err := s.eventService.GetEvent(c.Request().Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrEventNotFound) {
			log.WithError(err).WithField("event_id", id).Error("Failed to get event")
		}
		statusCode, errorMsg := handleEventError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.JSON(http.StatusOK, detail)
}

func (s *eventServer) UpdateEvent(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "event ID is required",
		})
	}

	var req domain.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	event, err := s.eventService.UpdateEvent(c.Request().Context(), id, req)
	if err != nil {
		log.WithError(err).WithField("event_id", id).Error("Failed to update event")
		statusCode, errorMsg := handleEventError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.JSON(http.StatusOK, event)
}

func (s *eventServer) DeleteEvent(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "event ID is required",
		})
	}

	if err := s.eventService.DeleteEvent(c.Request().Context(), id); err != nil {
		log.WithError(err).WithField("event_id", id).Error("Failed to delete event")
		statusCode, errorMsg := handleEventError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *eventServer) GetFundFlowPath(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "event ID is required",
		})
	}

	path, err := s.eventService.TraceFundFlow(c.Request().Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrEventNotFound) {
			log.WithError(err).WithField("event_id", id).Error("Failed to trace fund flow")
		}
		statusCode, errorMsg := handleEventError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.JSON(http.StatusOK, path)
}

func (s *eventServer) GetRiskMetrics(c echo.Context) error {
	var clientID *string
	if v := c.QueryParam("client_id"); v != "" {
		clientID = &v
	}

	m, err := s.eventService.RiskMetrics(c.Request().Context(), clientID)
	if err != nil {
		log.WithError(err).Error("Failed to compute risk metrics")
		statusCode, errorMsg := handleEventError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.JSON(http.StatusOK, m)
}

func (s *eventServer) GetClientEvents(c echo.Context) error {
	clientID := c.Param("clientId")
	if clientID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "client ID is required",
		})
	}

	events, err := s.eventService.ListClientEvents(c.Request().Context(), clientID)
	if err != nil {
		log.WithError(err).WithField("client_id", clientID).Error("Failed to list client events")
		statusCode, errorMsg := handleEventError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.JSON(http.StatusOK, events)
}
