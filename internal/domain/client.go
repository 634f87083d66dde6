package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Client errors
var (
	ErrClientNotFound     = errors.New("client not found")
	ErrClientCodeExists   = errors.New("client code already exists")
	ErrInvalidClientCode  = errors.New("invalid client code")
	ErrInvalidClientName  = errors.New("invalid client name")
	ErrInvalidRiskLevel   = errors.New("invalid risk level")
)

// Client risk level constants
const (
	RiskLevelLow    = "LOW"
	RiskLevelMedium = "MEDIUM"
	RiskLevelHigh   = "HIGH"
)

const (
	maxClientCodeLength = 50
	maxClientNameLength = 200
)

type Client struct {
	ID           string    `json:"id"`
	ClientCode   string    `json:"client_code"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Nationality  []string  `json:"nationality"`
	TaxResidency []string  `json:"tax_residency"`
	RiskLevel    string    `json:"risk_level"`
	AdvisorID    *string   `json:"advisor_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ClientCounts carries the child-record totals attached to each client in
// list responses.
type ClientCounts struct {
	UnifiedEvents     int `json:"unified_events"`
	BioIdentityEvents int `json:"bio_identity_events"`
	LegalEntities     int `json:"legal_entities"`
}

type ClientSummary struct {
	Client
	Counts ClientCounts `json:"counts"`
}

type CreateClientRequest struct {
	ClientCode   string   `json:"client_code"`
	FullName     string   `json:"full_name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Nationality  []string `json:"nationality"`
	TaxResidency []string `json:"tax_residency"`
	RiskLevel    string   `json:"risk_level"`
	AdvisorID    *string  `json:"advisor_id,omitempty"`
}

type UpdateClientRequest struct {
	FullName     *string  `json:"full_name,omitempty"`
	Email        *string  `json:"email,omitempty"`
	Phone        *string  `json:"phone,omitempty"`
	Nationality  []string `json:"nationality,omitempty"`
	TaxResidency []string `json:"tax_residency,omitempty"`
	RiskLevel    *string  `json:"risk_level,omitempty"`
	AdvisorID    *string  `json:"advisor_id,omitempty"`
}

// ClientStats is the per-client rollup: signed totals over all of the client's
// events plus sums bucketed by asset class and by source country.
type ClientStats struct {
	TotalAssets          decimal.Decimal            `json:"total_assets"`
	TotalEvents          int                        `json:"total_events"`
	BioEventCount        int                        `json:"bio_event_count"`
	EntityCount          int                        `json:"entity_count"`
	AssetsByClass        map[AssetClass]decimal.Decimal `json:"assets_by_class"`
	AssetsByJurisdiction map[string]decimal.Decimal     `json:"assets_by_jurisdiction"`
}

func ValidateClientCode(code string) error {
	if code == "" || len(code) > maxClientCodeLength {
		return ErrInvalidClientCode
	}
	return nil
}

func ValidateClientName(name string) error {
	if name == "" || len(name) > maxClientNameLength {
		return ErrInvalidClientName
	}
	return nil
}

func ValidateRiskLevel(level string) error {
	switch level {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return nil
	}
	return ErrInvalidRiskLevel
}
