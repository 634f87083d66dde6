package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"compliance-service/internal/domain"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

const eventColumns = `event_id, client_id, event_type, asset_class,
	transaction_time, posting_date, settle_date,
	asset_name, institution_name, account_id,
	quantity, price, gross_amount, net_amount, currency, functional_amount,
	counterparty_name, linked_event_id, fund_flow_path,
	compliance_status, legal_structure, source_country, jurisdiction_type,
	verification_status, cash_flow_nature, purpose_category, project_tags,
	remark, created_at, updated_at`

// sortColumns whitelists API sort keys against real columns. Anything else
// falls back to transaction_time.
var sortColumns = map[string]string{
	"transactionTime":  "transaction_time",
	"postingDate":      "posting_date",
	"functionalAmount": "functional_amount",
	"grossAmount":      "gross_amount",
	"eventType":        "event_type",
	"assetClass":       "asset_class",
	"createdAt":        "created_at",
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) *postgresEventRepository {
	return &postgresEventRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.UnifiedEvent, error) {
	var e domain.UnifiedEvent
	var settleDate sql.NullTime
	var counterparty, linkedEventID, cashFlowNature, purposeCategory, remark sql.NullString
	var fundFlowPath, projectTags pq.StringArray

	err := row.Scan(
		&e.EventID,
		&e.ClientID,
		&e.EventType,
		&e.AssetClass,
		&e.TransactionTime,
		&e.PostingDate,
		&settleDate,
		&e.AssetName,
		&e.InstitutionName,
		&e.AccountID,
		&e.Quantity,
		&e.Price,
		&e.GrossAmount,
		&e.NetAmount,
		&e.Currency,
		&e.FunctionalAmount,
		&counterparty,
		&linkedEventID,
		&fundFlowPath,
		&e.ComplianceStatus,
		&e.LegalStructure,
		&e.SourceCountry,
		&e.JurisdictionType,
		&e.VerificationStatus,
		&cashFlowNature,
		&purposeCategory,
		&projectTags,
		&remark,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if settleDate.Valid {
		e.SettleDate = &settleDate.Time
	}
	if counterparty.Valid {
		e.CounterpartyName = &counterparty.String
	}
	if linkedEventID.Valid {
		e.LinkedEventID = &linkedEventID.String
	}
	if cashFlowNature.Valid {
		nature := domain.CashFlowNature(cashFlowNature.String)
		e.CashFlowNature = &nature
	}
	if purposeCategory.Valid {
		e.PurposeCategory = &purposeCategory.String
	}
	if remark.Valid {
		e.Remark = &remark.String
	}
	e.FundFlowPath = []string(fundFlowPath)
	e.ProjectTags = []string(projectTags)

	return &e, nil
}

// buildFilter renders the AND-combined WHERE tail for an event filter.
// The returned clause starts with " AND ..." or is empty.
func buildFilter(f domain.EventFilter, args []interface{}) (string, []interface{}) {
	var clause strings.Builder

	add := func(column, op string, value interface{}) {
		clause.WriteString(fmt.Sprintf(" AND %s %s $%d", column, op, len(args)+1))
		args = append(args, value)
	}

	if f.ClientID != nil {
		add("client_id", "=", *f.ClientID)
	}
	if f.EventType != nil {
		add("event_type", "=", string(*f.EventType))
	}
	if f.AssetClass != nil {
		add("asset_class", "=", string(*f.AssetClass))
	}
	if f.ComplianceStatus != nil {
		add("compliance_status", "=", string(*f.ComplianceStatus))
	}
	if f.LegalStructure != nil {
		add("legal_structure", "=", string(*f.LegalStructure))
	}
	if f.JurisdictionType != nil {
		add("jurisdiction_type", "=", string(*f.JurisdictionType))
	}
	if f.VerificationStatus != nil {
		add("verification_status", "=", string(*f.VerificationStatus))
	}
	if f.StartDate != nil {
		add("transaction_time", ">=", *f.StartDate)
	}
	if f.EndDate != nil {
		add("transaction_time", "<=", *f.EndDate)
	}
	if f.MinAmount != nil {
		add("functional_amount", ">=", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		add("functional_amount", "<=", *f.MaxAmount)
	}

	return clause.String(), args
}

func (r *postgresEventRepository) List(ctx context.Context, filter domain.EventFilter, page domain.Pagination) ([]domain.UnifiedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var query strings.Builder
	query.WriteString("SELECT " + eventColumns + " FROM unified_events WHERE 1=1")

	clause, args := buildFilter(filter, nil)
	query.WriteString(clause)

	column, ok := sortColumns[page.SortBy]
	if !ok {
		column = "transaction_time"
	}
	direction := "DESC"
	if page.SortOrder == domain.SortOrderAsc {
		direction = "ASC"
	}
	query.WriteString(fmt.Sprintf(" ORDER BY %s %s, event_id ASC", column, direction))
	query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))
	args = append(args, page.Limit, page.Offset())

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		log.WithError(err).Error("Failed to list events")
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func (r *postgresEventRepository) Count(ctx context.Context, filter domain.EventFilter) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	clause, args := buildFilter(filter, nil)
	query := "SELECT COUNT(*) FROM unified_events WHERE 1=1" + clause

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		log.WithError(err).Error("Failed to count events")
		return 0, fmt.Errorf("failed to count events: %w", err)
	}

	return total, nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, eventID string) (*domain.UnifiedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := "SELECT " + eventColumns + " FROM unified_events WHERE event_id = $1"

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, eventID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		log.WithError(err).WithField("event_id", eventID).Error("Failed to get event by ID")
		return nil, fmt.Errorf("failed to get event by ID: %w", err)
	}

	return event, nil
}

func (r *postgresEventRepository) ListByClient(ctx context.Context, clientID string) ([]domain.UnifiedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := "SELECT " + eventColumns + ` FROM unified_events
	          WHERE client_id = $1
	          ORDER BY transaction_time DESC, event_id ASC`

	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		log.WithError(err).WithField("client_id", clientID).Error("Failed to list events by client")
		return nil, fmt.Errorf("failed to list events by client: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListByLinkedEventID returns the events funded by eventID. Ordering is fixed
// so that forward traces over an unchanged store are deterministic.
func (r *postgresEventRepository) ListByLinkedEventID(ctx context.Context, eventID string) ([]domain.UnifiedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := "SELECT " + eventColumns + ` FROM unified_events
	          WHERE linked_event_id = $1
	          ORDER BY transaction_time ASC, event_id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		log.WithError(err).WithField("linked_event_id", eventID).Error("Failed to list linked events")
		return nil, fmt.Errorf("failed to list linked events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]domain.UnifiedEvent, error) {
	// Non-nil so an empty page serializes as a JSON array, not null.
	events := []domain.UnifiedEvent{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan event row")
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func (r *postgresEventRepository) Create(ctx context.Context, event *domain.UnifiedEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	log.WithFields(log.Fields{
		"event_id":   event.EventID,
		"client_id":  event.ClientID,
		"event_type": event.EventType,
	}).Info("Creating new event in database")

	query := `
		INSERT INTO unified_events (
			event_id, client_id, event_type, asset_class,
			transaction_time, posting_date, settle_date,
			asset_name, institution_name, account_id,
			quantity, price, gross_amount, net_amount, currency, functional_amount,
			counterparty_name, linked_event_id, fund_flow_path,
			compliance_status, legal_structure, source_country, jurisdiction_type,
			verification_status, cash_flow_nature, purpose_category, project_tags,
			remark
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		          $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		event.EventID,
		event.ClientID,
		string(event.EventType),
		string(event.AssetClass),
		event.TransactionTime,
		event.PostingDate,
		nullableTime(event.SettleDate),
		event.AssetName,
		event.InstitutionName,
		event.AccountID,
		event.Quantity,
		event.Price,
		event.GrossAmount,
		event.NetAmount,
		event.Currency,
		event.FunctionalAmount,
		nullableString(event.CounterpartyName),
		nullableString(event.LinkedEventID),
		pq.Array(event.FundFlowPath),
		string(event.ComplianceStatus),
		string(event.LegalStructure),
		event.SourceCountry,
		string(event.JurisdictionType),
		string(event.VerificationStatus),
		nullableNature(event.CashFlowNature),
		nullableString(event.PurposeCategory),
		pq.Array(event.ProjectTags),
		nullableString(event.Remark),
	).Scan(&event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		log.WithError(err).WithField("event_id", event.EventID).Error("Failed to create event")
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *postgresEventRepository) Update(ctx context.Context, eventID string, req domain.UpdateEventRequest) (*domain.UnifiedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var setParts []string
	var args []interface{}

	set := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if req.EventType != nil {
		set("event_type", string(*req.EventType))
	}
	if req.AssetClass != nil {
		set("asset_class", string(*req.AssetClass))
	}
	if req.TransactionTime != nil {
		set("transaction_time", *req.TransactionTime)
	}
	if req.PostingDate != nil {
		set("posting_date", *req.PostingDate)
	}
	if req.SettleDate != nil {
		set("settle_date", *req.SettleDate)
	}
	if req.AssetName != nil {
		set("asset_name", *req.AssetName)
	}
	if req.InstitutionName != nil {
		set("institution_name", *req.InstitutionName)
	}
	if req.AccountID != nil {
		set("account_id", *req.AccountID)
	}
	if req.Quantity != nil {
		set("quantity", *req.Quantity)
	}
	if req.Price != nil {
		set("price", *req.Price)
	}
	if req.GrossAmount != nil {
		set("gross_amount", *req.GrossAmount)
	}
	if req.NetAmount != nil {
		set("net_amount", *req.NetAmount)
	}
	if req.Currency != nil {
		set("currency", *req.Currency)
	}
	if req.FunctionalAmount != nil {
		set("functional_amount", *req.FunctionalAmount)
	}
	if req.CounterpartyName != nil {
		set("counterparty_name", *req.CounterpartyName)
	}
	if req.LinkedEventID != nil {
		set("linked_event_id", *req.LinkedEventID)
	}
	if req.FundFlowPath != nil {
		set("fund_flow_path", pq.Array(req.FundFlowPath))
	}
	if req.ComplianceStatus != nil {
		set("compliance_status", string(*req.ComplianceStatus))
	}
	if req.LegalStructure != nil {
		set("legal_structure", string(*req.LegalStructure))
	}
	if req.SourceCountry != nil {
		set("source_country", *req.SourceCountry)
	}
	if req.JurisdictionType != nil {
		set("jurisdiction_type", string(*req.JurisdictionType))
	}
	if req.VerificationStatus != nil {
		set("verification_status", string(*req.VerificationStatus))
	}
	if req.CashFlowNature != nil {
		set("cash_flow_nature", string(*req.CashFlowNature))
	}
	if req.PurposeCategory != nil {
		set("purpose_category", *req.PurposeCategory)
	}
	if req.ProjectTags != nil {
		set("project_tags", pq.Array(req.ProjectTags))
	}
	if req.Remark != nil {
		set("remark", *req.Remark)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, eventID)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, eventID)

	query := fmt.Sprintf(`UPDATE unified_events
	                      SET %s
	                      WHERE event_id = $%d
	                      RETURNING `+eventColumns,
		strings.Join(setParts, ", "), len(args))

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, domain.ErrEventNotFound
	}
	if err != nil {
		log.WithError(err).WithField("event_id", eventID).Error("Failed to update event")
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

func (r *postgresEventRepository) Delete(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	log.WithField("event_id", eventID).Info("Deleting event")

	result, err := r.db.ExecContext(ctx, `DELETE FROM unified_events WHERE event_id = $1`, eventID)
	if err != nil {
		log.WithError(err).WithField("event_id", eventID).Error("Failed to delete event")
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not determine rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullableNature(n *domain.CashFlowNature) interface{} {
	if n == nil {
		return nil
	}
	return string(*n)
}
