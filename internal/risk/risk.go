// Package risk computes deterministic risk scores over unified events. All
// functions are pure: same events in, same numbers out, no store access.
package risk

import (
	"github.com/shopspring/decimal"

	"compliance-service/internal/domain"
)

// Flag weights. The aggregate metrics deliberately re-apply the same
// predicates instead of summing Assess results: the aggregate view counts
// broken flows, which have no per-event score, and ignores the
// verification/jurisdiction flags that only matter on the detail view.
const (
	LargeTransactionScore = 10
	CrossBorderScore      = 15
	SuspiciousCryptoScore = 50
	BrokenFlowScore       = 30

	RiskFlagScore        = 25
	UnverifiedScore      = 10
	LongArmScore         = 20
)

// ReportingCurrency is the functional currency everything is normalized to.
// A non-reporting currency on an outbound movement is the cross-border signal.
const ReportingCurrency = "CNY"

var largeTransactionThreshold = decimal.NewFromInt(500_000)

// Metrics is the aggregate risk summary over a set of events.
type Metrics struct {
	LargeTransactionCount int `json:"large_transaction_count"`
	CrossBorderCount      int `json:"cross_border_count"`
	SuspiciousCryptoCount int `json:"suspicious_crypto_count"`
	BrokenFlowCount       int `json:"broken_flow_count"`
	TotalRiskScore        int `json:"total_risk_score"`
}

func isLargeTransaction(e domain.UnifiedEvent) bool {
	return e.FunctionalAmount.Abs().GreaterThan(largeTransactionThreshold)
}

func isCrossBorder(e domain.UnifiedEvent) bool {
	return e.Currency != ReportingCurrency &&
		(e.EventType == domain.EventTransferOut || e.EventType == domain.EventBankWithdrawal)
}

func isSuspiciousCrypto(e domain.UnifiedEvent) bool {
	return e.AssetClass == domain.AssetCrypto && e.ComplianceStatus != domain.ComplianceCompliant
}

// isBrokenFlow reports whether an event declares a funding parent but has no
// materialized lineage path. A stale or never-computed path is a data-quality
// signal, not a tracing input.
func isBrokenFlow(e domain.UnifiedEvent) bool {
	return e.LinkedEventID != nil && *e.LinkedEventID != "" && len(e.FundFlowPath) == 0
}

// Assess returns the composite risk score for a single event. Flags are
// independent and additive, except that RISK_FLAG and UNVERIFIED are mutually
// exclusive readings of the same field.
func Assess(e domain.UnifiedEvent) int {
	score := 0

	if isLargeTransaction(e) {
		score += LargeTransactionScore
	}

	if isCrossBorder(e) {
		score += CrossBorderScore
	}

	if isSuspiciousCrypto(e) {
		score += SuspiciousCryptoScore
	}

	switch e.VerificationStatus {
	case domain.VerificationRiskFlag:
		score += RiskFlagScore
	case domain.VerificationUnverified:
		score += UnverifiedScore
	}

	if e.JurisdictionType == domain.JurisdictionLongArm {
		score += LongArmScore
	}

	return score
}

// Calculate aggregates flag counts and the weighted total over a collection.
// An empty collection yields all zeros.
func Calculate(events []domain.UnifiedEvent) Metrics {
	var m Metrics

	for _, e := range events {
		if isLargeTransaction(e) {
			m.LargeTransactionCount++
		}
		if isCrossBorder(e) {
			m.CrossBorderCount++
		}
		if isSuspiciousCrypto(e) {
			m.SuspiciousCryptoCount++
		}
		if isBrokenFlow(e) {
			m.BrokenFlowCount++
		}
	}

	m.TotalRiskScore = m.LargeTransactionCount*LargeTransactionScore +
		m.CrossBorderCount*CrossBorderScore +
		m.SuspiciousCryptoCount*SuspiciousCryptoScore +
		m.BrokenFlowCount*BrokenFlowScore

	return m
}
