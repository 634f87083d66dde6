package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventFilter is the bag of optional criteria for event queries. All set
// fields are AND-combined; a nil field places no constraint. Date and amount
// ranges are inclusive on both ends.
type EventFilter struct {
	ClientID           *string             `query:"client_id"`
	EventType          *EventType          `query:"event_type"`
	AssetClass         *AssetClass         `query:"asset_class"`
	ComplianceStatus   *ComplianceStatus   `query:"compliance_status"`
	LegalStructure     *LegalStructure     `query:"legal_structure"`
	JurisdictionType   *JurisdictionType   `query:"jurisdiction_type"`
	VerificationStatus *VerificationStatus `query:"verification_status"`
	StartDate          *time.Time          `query:"start_date"`
	EndDate            *time.Time          `query:"end_date"`
	MinAmount          *decimal.Decimal    `query:"min_amount"`
	MaxAmount          *decimal.Decimal    `query:"max_amount"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxListLimit = 1000

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"

	DefaultSortBy = "transactionTime"
)

type Pagination struct {
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
	SortBy    string `query:"sort_by"`
	SortOrder string `query:"sort_order"`
}

// Normalize fills defaults and clamps out-of-range values in place.
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxListLimit {
		p.Limit = MaxListLimit
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	if p.SortOrder != SortOrderAsc && p.SortOrder != SortOrderDesc {
		p.SortOrder = SortOrderDesc
	}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// EventPage is one page of query results together with the pre-pagination
// total count.
type EventPage struct {
	Events     []UnifiedEvent `json:"events"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}
