package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Event errors
var (
	ErrEventNotFound           = errors.New("event not found")
	ErrInvalidEventType        = errors.New("invalid event type")
	ErrInvalidAssetClass       = errors.New("invalid asset class")
	ErrInvalidLegalStructure   = errors.New("invalid legal structure")
	ErrInvalidJurisdiction     = errors.New("invalid jurisdiction type")
	ErrInvalidVerification     = errors.New("invalid verification status")
	ErrInvalidCompliance       = errors.New("invalid compliance status")
	ErrInvalidCashFlowNature   = errors.New("invalid cash flow nature")
	ErrClientIDRequired        = errors.New("client ID is required")
	ErrCurrencyRequired        = errors.New("currency is required")
	ErrInvalidEventID          = errors.New("invalid event ID")
)

type EventType string

const (
	EventTransferIn        EventType = "TRANSFER_IN"
	EventTransferOut       EventType = "TRANSFER_OUT"
	EventIncome            EventType = "INCOME"
	EventFee               EventType = "FEE"
	EventAdjustment        EventType = "ADJUSTMENT"
	EventBankDeposit       EventType = "BANK_DEPOSIT"
	EventBankWithdrawal    EventType = "BANK_WITHDRAWAL"
	EventInterestCredit    EventType = "INTEREST_CREDIT"
	EventQuickPayment      EventType = "QUICK_PAYMENT"
	EventTradeBuy          EventType = "TRADE_BUY"
	EventTradeSell         EventType = "TRADE_SELL"
	EventDividend          EventType = "DIVIDEND"
	EventCryptoBuy         EventType = "CRYPTO_BUY"
	EventCryptoSell        EventType = "CRYPTO_SELL"
	EventCryptoTransfer    EventType = "CRYPTO_TRANSFER"
	EventStakingReward     EventType = "STAKING_REWARD"
	EventTrustSubscribe    EventType = "TRUST_SUBSCRIBE"
	EventTrustDistribution EventType = "TRUST_DISTRIBUTION"
	EventTrustRedemption   EventType = "TRUST_REDEMPTION"
	EventAssetAcquisition  EventType = "ASSET_ACQUISITION"
	EventAssetDisposal     EventType = "ASSET_DISPOSAL"
	EventDonation          EventType = "DONATION"
)

// ValidEventTypes returns the list of accepted transaction kinds.
func ValidEventTypes() []EventType {
	return []EventType{
		EventTransferIn, EventTransferOut, EventIncome, EventFee, EventAdjustment,
		EventBankDeposit, EventBankWithdrawal, EventInterestCredit, EventQuickPayment,
		EventTradeBuy, EventTradeSell, EventDividend,
		EventCryptoBuy, EventCryptoSell, EventCryptoTransfer, EventStakingReward,
		EventTrustSubscribe, EventTrustDistribution, EventTrustRedemption,
		EventAssetAcquisition, EventAssetDisposal, EventDonation,
	}
}

func ValidateEventType(t EventType) error {
	for _, v := range ValidEventTypes() {
		if t == v {
			return nil
		}
	}
	return ErrInvalidEventType
}

type AssetClass string

const (
	AssetCash        AssetClass = "CASH"
	AssetSecurity    AssetClass = "SECURITY"
	AssetCrypto      AssetClass = "CRYPTO"
	AssetTrust       AssetClass = "TRUST"
	AssetRealEstate  AssetClass = "REAL_ESTATE"
	AssetInsurance   AssetClass = "INSURANCE"
	AssetGold        AssetClass = "GOLD"
	AssetArt         AssetClass = "ART"
	AssetAlternative AssetClass = "ALTERNATIVE"
)

func ValidateAssetClass(a AssetClass) error {
	switch a {
	case AssetCash, AssetSecurity, AssetCrypto, AssetTrust, AssetRealEstate,
		AssetInsurance, AssetGold, AssetArt, AssetAlternative:
		return nil
	}
	return ErrInvalidAssetClass
}

type LegalStructure string

const (
	StructureIndividual LegalStructure = "INDIVIDUAL"
	StructureCorporate  LegalStructure = "CORPORATE"
	StructureTrust      LegalStructure = "TRUST"
)

func ValidateLegalStructure(s LegalStructure) error {
	switch s {
	case StructureIndividual, StructureCorporate, StructureTrust:
		return nil
	}
	return ErrInvalidLegalStructure
}

type JurisdictionType string

const (
	JurisdictionOnshore  JurisdictionType = "ONSHORE"
	JurisdictionOffshore JurisdictionType = "OFFSHORE"
	JurisdictionLongArm  JurisdictionType = "LONG_ARM"
)

func ValidateJurisdictionType(j JurisdictionType) error {
	switch j {
	case JurisdictionOnshore, JurisdictionOffshore, JurisdictionLongArm:
		return nil
	}
	return ErrInvalidJurisdiction
}

type VerificationStatus string

const (
	VerificationVerified   VerificationStatus = "VERIFIED"
	VerificationUnverified VerificationStatus = "UNVERIFIED"
	VerificationRiskFlag   VerificationStatus = "RISK_FLAG"
)

func ValidateVerificationStatus(v VerificationStatus) error {
	switch v {
	case VerificationVerified, VerificationUnverified, VerificationRiskFlag:
		return nil
	}
	return ErrInvalidVerification
}

type ComplianceStatus string

const (
	ComplianceCompliant    ComplianceStatus = "COMPLIANT"
	ComplianceUnderReview  ComplianceStatus = "UNDER_REVIEW"
	ComplianceNonCompliant ComplianceStatus = "NON_COMPLIANT"
)

func ValidateComplianceStatus(c ComplianceStatus) error {
	switch c {
	case ComplianceCompliant, ComplianceUnderReview, ComplianceNonCompliant:
		return nil
	}
	return ErrInvalidCompliance
}

type CashFlowNature string

const (
	CashFlowPassiveIn       CashFlowNature = "PASSIVE_IN"
	CashFlowMaintenanceOut  CashFlowNature = "MAINTENANCE_OUT"
	CashFlowFree            CashFlowNature = "FREE_CASH_FLOW"
	CashFlowCapitalMovement CashFlowNature = "CAPITAL_MOVEMENT"
)

func ValidateCashFlowNature(n CashFlowNature) error {
	switch n {
	case CashFlowPassiveIn, CashFlowMaintenanceOut, CashFlowFree, CashFlowCapitalMovement:
		return nil
	}
	return ErrInvalidCashFlowNature
}

// UnifiedEvent is the atomic financial fact record. All monetary fields are
// carried as decimals; functional_amount is the value converted to the single
// reporting currency and is what every aggregation and risk threshold operates on.
type UnifiedEvent struct {
	EventID            string             `json:"event_id"`
	ClientID           string             `json:"client_id"`
	EventType          EventType          `json:"event_type"`
	AssetClass         AssetClass         `json:"asset_class"`
	TransactionTime    time.Time          `json:"transaction_time"`
	PostingDate        time.Time          `json:"posting_date"`
	SettleDate         *time.Time         `json:"settle_date,omitempty"`
	AssetName          string             `json:"asset_name"`
	InstitutionName    string             `json:"institution_name"`
	AccountID          string             `json:"account_id"`
	Quantity           decimal.Decimal    `json:"quantity"`
	Price              decimal.Decimal    `json:"price"`
	GrossAmount        decimal.Decimal    `json:"gross_amount"`
	NetAmount          decimal.Decimal    `json:"net_amount"`
	Currency           string             `json:"currency"`
	FunctionalAmount   decimal.Decimal    `json:"functional_amount"`
	CounterpartyName   *string            `json:"counterparty_name,omitempty"`
	LinkedEventID      *string            `json:"linked_event_id,omitempty"`
	FundFlowPath       []string           `json:"fund_flow_path,omitempty"`
	ComplianceStatus   ComplianceStatus   `json:"compliance_status"`
	LegalStructure     LegalStructure     `json:"legal_structure"`
	SourceCountry      string             `json:"source_country"`
	JurisdictionType   JurisdictionType   `json:"jurisdiction_type"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	CashFlowNature     *CashFlowNature    `json:"cash_flow_nature,omitempty"`
	PurposeCategory    *string            `json:"purpose_category,omitempty"`
	ProjectTags        []string           `json:"project_tags,omitempty"`
	Remark             *string            `json:"remark,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type CreateEventRequest struct {
	EventID            string             `json:"event_id"`
	ClientID           string             `json:"client_id"`
	EventType          EventType          `json:"event_type"`
	AssetClass         AssetClass         `json:"asset_class"`
	TransactionTime    time.Time          `json:"transaction_time"`
	PostingDate        time.Time          `json:"posting_date"`
	SettleDate         *time.Time         `json:"settle_date,omitempty"`
	AssetName          string             `json:"asset_name"`
	InstitutionName    string             `json:"institution_name"`
	AccountID          string             `json:"account_id"`
	Quantity           decimal.Decimal    `json:"quantity"`
	Price              decimal.Decimal    `json:"price"`
	GrossAmount        decimal.Decimal    `json:"gross_amount"`
	NetAmount          decimal.Decimal    `json:"net_amount"`
	Currency           string             `json:"currency"`
	FunctionalAmount   decimal.Decimal    `json:"functional_amount"`
	CounterpartyName   *string            `json:"counterparty_name,omitempty"`
	LinkedEventID      *string            `json:"linked_event_id,omitempty"`
	FundFlowPath       []string           `json:"fund_flow_path,omitempty"`
	ComplianceStatus   ComplianceStatus   `json:"compliance_status"`
	LegalStructure     LegalStructure     `json:"legal_structure"`
	SourceCountry      string             `json:"source_country"`
	JurisdictionType   JurisdictionType   `json:"jurisdiction_type"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	CashFlowNature     *CashFlowNature    `json:"cash_flow_nature,omitempty"`
	PurposeCategory    *string            `json:"purpose_category,omitempty"`
	ProjectTags        []string           `json:"project_tags,omitempty"`
	Remark             *string            `json:"remark,omitempty"`
}

type UpdateEventRequest struct {
	EventType          *EventType          `json:"event_type,omitempty"`
	AssetClass         *AssetClass         `json:"asset_class,omitempty"`
	TransactionTime    *time.Time          `json:"transaction_time,omitempty"`
	PostingDate        *time.Time          `json:"posting_date,omitempty"`
	SettleDate         *time.Time          `json:"settle_date,omitempty"`
	AssetName          *string             `json:"asset_name,omitempty"`
	InstitutionName    *string             `json:"institution_name,omitempty"`
	AccountID          *string             `json:"account_id,omitempty"`
	Quantity           *decimal.Decimal    `json:"quantity,omitempty"`
	Price              *decimal.Decimal    `json:"price,omitempty"`
	GrossAmount        *decimal.Decimal    `json:"gross_amount,omitempty"`
	NetAmount          *decimal.Decimal    `json:"net_amount,omitempty"`
	Currency           *string             `json:"currency,omitempty"`
	FunctionalAmount   *decimal.Decimal    `json:"functional_amount,omitempty"`
	CounterpartyName   *string             `json:"counterparty_name,omitempty"`
	LinkedEventID      *string             `json:"linked_event_id,omitempty"`
	FundFlowPath       []string            `json:"fund_flow_path,omitempty"`
	ComplianceStatus   *ComplianceStatus   `json:"compliance_status,omitempty"`
	LegalStructure     *LegalStructure     `json:"legal_structure,omitempty"`
	SourceCountry      *string             `json:"source_country,omitempty"`
	JurisdictionType   *JurisdictionType   `json:"jurisdiction_type,omitempty"`
	VerificationStatus *VerificationStatus `json:"verification_status,omitempty"`
	CashFlowNature     *CashFlowNature     `json:"cash_flow_nature,omitempty"`
	PurposeCategory    *string             `json:"purpose_category,omitempty"`
	ProjectTags        []string            `json:"project_tags,omitempty"`
	Remark             *string             `json:"remark,omitempty"`
}
