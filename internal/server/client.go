package server

import (
	"context"
	"errors"
	"net/http"

	"compliance-service/internal/domain"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

type ClientService interface {
	CreateClient(ctx context.Context, req domain.CreateClientRequest) (*domain.Client, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	ListClients(ctx context.Context, advisorID *string) ([]domain.ClientSummary, error)
	UpdateClient(ctx context.Context, id string, req domain.UpdateClientRequest) (*domain.Client, error)
	DeleteClient(ctx context.Context, id string) error
	Stats(ctx context.Context, clientID string) (*domain.ClientStats, error)
}

type clientServer struct {
	clientService ClientService
}

func NewClientServer(clientService ClientService) *clientServer {
	return &clientServer{clientService: clientService}
}

func handleClientError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound, "client not found"
	case errors.Is(err, domain.ErrClientCodeExists):
		return http.StatusConflict, "client with this code already exists"
	case errors.Is(err, domain.ErrInvalidClientCode),
		errors.Is(err, domain.ErrInvalidClientName),
		errors.Is(err, domain.ErrInvalidRiskLevel):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (s *clientServer) CreateClient(c echo.Context) error {
	var req domain.CreateClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	client, err := s.clientService.CreateClient(c.Request().Context(), req)
	if err != nil {
		log.WithError(err).Error("Failed to create client")
		statusCode, errorMsg := handleClientError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.JSON(http.StatusCreated, client)
}

func (s *clientServer) GetClient(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "client ID is required",
		})
	}

	client, err := s.clientService.GetClient(c.Request().Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrClientNotFound) {
			log.WithError(err).WithField("client_id", id).Error("Failed to get client")
		}
		statusCode, errorMsg := handleClientError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.JSON(http.StatusOK, client)
}

func (s *clientServer) ListClients(c echo.Context) error {
	var advisorID *string
	if v := c.QueryParam("advisor_id"); v != "" {
		advisorID = &v
	}

	clients, err := s.clientService.ListClients(c.Request().Context(), advisorID)
	if err != nil {
		log.WithError(err).Error("Failed to list clients")
		statusCode, errorMsg := handleClientError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.JSON(http.StatusOK, clients)
}

func (s *clientServer) UpdateClient(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "client ID is required",
		})
	}

	var req domain.UpdateClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	client, err := s.clientService.UpdateClient(c.Request().Context(), id, req)
	if err != nil {
		log.WithError(err).WithField("client_id", id).Error("Failed to update client")
		statusCode, errorMsg := handleClientError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.JSON(http.StatusOK, client)
}

func (s *clientServer) DeleteClient(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "client ID is required",
		})
	}

	if err := s.clientService.DeleteClient(c.Request().Context(), id); err != nil {
		log.WithError(err).WithField("client_id", id).Error("Failed to delete client")
		statusCode, errorMsg := handleClientError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *clientServer) GetClientStats(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "client ID is required",
		})
	}

	stats, err := s.clientService.Stats(c.Request().Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrClientNotFound) {
			log.WithError(err).WithField("client_id", id).Error("Failed to compute client stats")
		}
		statusCode, errorMsg := handleClientError(err)
		return c.JSON(statusCode, map[string]string{"error": errorMsg})
	}

	return c.JSON(http.StatusOK, stats)
}
