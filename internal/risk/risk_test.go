package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"compliance-service/internal/domain"
)

// baselineEvent triggers no risk flags.
func baselineEvent() domain.UnifiedEvent {
	return domain.UnifiedEvent{
		EventID:            "evt_base",
		ClientID:           "client_1",
		EventType:          domain.EventTradeBuy,
		AssetClass:         domain.AssetSecurity,
		Currency:           "CNY",
		FunctionalAmount:   decimal.NewFromInt(100_000),
		ComplianceStatus:   domain.ComplianceCompliant,
		LegalStructure:     domain.StructureIndividual,
		JurisdictionType:   domain.JurisdictionOnshore,
		VerificationStatus: domain.VerificationVerified,
	}
}

func TestAssessBaselineIsZero(t *testing.T) {
	assert.Equal(t, 0, Assess(baselineEvent()))
}

func TestAssessSingleFlags(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.UnifiedEvent)
		want   int
	}{
		{
			name: "large transaction",
			mutate: func(e *domain.UnifiedEvent) {
				e.FunctionalAmount = decimal.NewFromInt(500_001)
			},
			want: LargeTransactionScore,
		},
		{
			name: "large negative transaction",
			mutate: func(e *domain.UnifiedEvent) {
				e.FunctionalAmount = decimal.NewFromInt(-600_000)
			},
			want: LargeTransactionScore,
		},
		{
			name: "exactly at threshold is not large",
			mutate: func(e *domain.UnifiedEvent) {
				e.FunctionalAmount = decimal.NewFromInt(500_000)
			},
			want: 0,
		},
		{
			name: "cross border transfer out",
			mutate: func(e *domain.UnifiedEvent) {
				e.Currency = "USD"
				e.EventType = domain.EventTransferOut
			},
			want: CrossBorderScore,
		},
		{
			name: "cross border bank withdrawal",
			mutate: func(e *domain.UnifiedEvent) {
				e.Currency = "HKD"
				e.EventType = domain.EventBankWithdrawal
			},
			want: CrossBorderScore,
		},
		{
			name: "foreign currency without outbound kind is not cross border",
			mutate: func(e *domain.UnifiedEvent) {
				e.Currency = "USD"
				e.EventType = domain.EventTradeBuy
			},
			want: 0,
		},
		{
			name: "reporting currency transfer out is not cross border",
			mutate: func(e *domain.UnifiedEvent) {
				e.EventType = domain.EventTransferOut
			},
			want: 0,
		},
		{
			name: "suspicious crypto under review",
			mutate: func(e *domain.UnifiedEvent) {
				e.AssetClass = domain.AssetCrypto
				e.ComplianceStatus = domain.ComplianceUnderReview
			},
			want: SuspiciousCryptoScore,
		},
		{
			name: "compliant crypto is clean",
			mutate: func(e *domain.UnifiedEvent) {
				e.AssetClass = domain.AssetCrypto
			},
			want: 0,
		},
		{
			name: "risk flag",
			mutate: func(e *domain.UnifiedEvent) {
				e.VerificationStatus = domain.VerificationRiskFlag
			},
			want: RiskFlagScore,
		},
		{
			name: "unverified",
			mutate: func(e *domain.UnifiedEvent) {
				e.VerificationStatus = domain.VerificationUnverified
			},
			want: UnverifiedScore,
		},
		{
			name: "long arm jurisdiction",
			mutate: func(e *domain.UnifiedEvent) {
				e.JurisdictionType = domain.JurisdictionLongArm
			},
			want: LongArmScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := baselineEvent()
			tt.mutate(&e)
			assert.Equal(t, tt.want, Assess(e))
		})
	}
}

func TestAssessLargeOffshoreSecuritySale(t *testing.T) {
	e := baselineEvent()
	e.EventType = domain.EventTradeSell
	e.AssetClass = domain.AssetSecurity
	e.Currency = "HKD"
	e.FunctionalAmount = decimal.NewFromInt(3_500_000)
	e.JurisdictionType = domain.JurisdictionOffshore
	e.VerificationStatus = domain.VerificationVerified

	// Large-transaction flag only: HKD on a sell is not cross-border.
	assert.Equal(t, 10, Assess(e))
}

func TestAssessFlaggedLongArmTransferOut(t *testing.T) {
	e := baselineEvent()
	e.EventType = domain.EventTransferOut
	e.Currency = "USD"
	e.FunctionalAmount = decimal.NewFromFloat(-507_500)
	e.JurisdictionType = domain.JurisdictionLongArm
	e.VerificationStatus = domain.VerificationRiskFlag

	// 10 (large) + 15 (cross-border) + 25 (risk flag) + 20 (long arm)
	assert.Equal(t, 70, Assess(e))
}

func TestAssessFlagsAreAdditive(t *testing.T) {
	e := baselineEvent()
	e.FunctionalAmount = decimal.NewFromInt(1_000_000)
	e.Currency = "USD"
	e.EventType = domain.EventBankWithdrawal
	e.AssetClass = domain.AssetCrypto
	e.ComplianceStatus = domain.ComplianceNonCompliant
	e.VerificationStatus = domain.VerificationRiskFlag
	e.JurisdictionType = domain.JurisdictionLongArm

	want := LargeTransactionScore + CrossBorderScore + SuspiciousCryptoScore +
		RiskFlagScore + LongArmScore
	assert.Equal(t, want, Assess(e))
}

func TestAssessIsDeterministic(t *testing.T) {
	e := baselineEvent()
	e.FunctionalAmount = decimal.NewFromInt(900_000)
	assert.Equal(t, Assess(e), Assess(e))
}

func TestCalculateEmptySet(t *testing.T) {
	assert.Equal(t, Metrics{}, Calculate(nil))
	assert.Equal(t, Metrics{}, Calculate([]domain.UnifiedEvent{}))
}

func TestCalculateCountsAndTotal(t *testing.T) {
	parent := "evt_parent"

	large := baselineEvent()
	large.FunctionalAmount = decimal.NewFromInt(2_000_000)

	crossBorder := baselineEvent()
	crossBorder.Currency = "USD"
	crossBorder.EventType = domain.EventTransferOut

	crypto := baselineEvent()
	crypto.AssetClass = domain.AssetCrypto
	crypto.ComplianceStatus = domain.ComplianceUnderReview

	broken := baselineEvent()
	broken.LinkedEventID = &parent
	broken.FundFlowPath = nil

	intact := baselineEvent()
	intact.LinkedEventID = &parent
	intact.FundFlowPath = []string{parent, "evt_self"}

	m := Calculate([]domain.UnifiedEvent{large, crossBorder, crypto, broken, intact})

	assert.Equal(t, 1, m.LargeTransactionCount)
	assert.Equal(t, 1, m.CrossBorderCount)
	assert.Equal(t, 1, m.SuspiciousCryptoCount)
	assert.Equal(t, 1, m.BrokenFlowCount)
	assert.Equal(t, 10+15+50+30, m.TotalRiskScore)
}

func TestCalculateIgnoresDetailOnlyFlags(t *testing.T) {
	// Verification and jurisdiction flags feed the per-event score only.
	e := baselineEvent()
	e.VerificationStatus = domain.VerificationRiskFlag
	e.JurisdictionType = domain.JurisdictionLongArm

	m := Calculate([]domain.UnifiedEvent{e})
	assert.Equal(t, 0, m.TotalRiskScore)
}

func TestCalculateOneEventCanCountInMultipleBuckets(t *testing.T) {
	parent := "evt_parent"

	e := baselineEvent()
	e.FunctionalAmount = decimal.NewFromInt(-750_000)
	e.Currency = "USD"
	e.EventType = domain.EventTransferOut
	e.LinkedEventID = &parent

	m := Calculate([]domain.UnifiedEvent{e})
	assert.Equal(t, 1, m.LargeTransactionCount)
	assert.Equal(t, 1, m.CrossBorderCount)
	assert.Equal(t, 1, m.BrokenFlowCount)
	assert.Equal(t, 10+15+30, m.TotalRiskScore)
}
