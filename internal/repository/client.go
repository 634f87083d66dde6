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

const clientColumns = `id, client_code, full_name, email, phone,
	nationality, tax_residency, risk_level, advisor_id, created_at, updated_at`

type postgresClientRepository struct {
	db *sql.DB
}

func NewPostgresClientRepository(db *sql.DB) *postgresClientRepository {
	return &postgresClientRepository{db: db}
}

func scanClient(row rowScanner) (*domain.Client, error) {
	var c domain.Client
	var email, phone sql.NullString
	var advisorID sql.NullString
	var nationality, taxResidency pq.StringArray

	err := row.Scan(
		&c.ID,
		&c.ClientCode,
		&c.FullName,
		&email,
		&phone,
		&nationality,
		&taxResidency,
		&c.RiskLevel,
		&advisorID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if email.Valid {
		c.Email = email.String
	}
	if phone.Valid {
		c.Phone = phone.String
	}
	if advisorID.Valid {
		c.AdvisorID = &advisorID.String
	}
	c.Nationality = []string(nationality)
	c.TaxResidency = []string(taxResidency)

	return &c, nil
}

func (r *postgresClientRepository) Create(ctx context.Context, client *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	log.WithFields(log.Fields{
		"client_id":   client.ID,
		"client_code": client.ClientCode,
	}).Info("Creating new client in database")

	query := `
		INSERT INTO clients (id, client_code, full_name, email, phone,
			nationality, tax_residency, risk_level, advisor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		client.ID,
		client.ClientCode,
		client.FullName,
		client.Email,
		client.Phone,
		pq.Array(client.Nationality),
		pq.Array(client.TaxResidency),
		client.RiskLevel,
		nullableString(client.AdvisorID),
	).Scan(&client.CreatedAt, &client.UpdatedAt)

	if err != nil {
		log.WithError(err).WithField("client_code", client.ClientCode).Error("Failed to create client")
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

func (r *postgresClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := "SELECT " + clientColumns + " FROM clients WHERE id = $1"

	client, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		log.WithError(err).WithField("client_id", id).Error("Failed to get client by ID")
		return nil, fmt.Errorf("failed to get client by ID: %w", err)
	}

	return client, nil
}

func (r *postgresClientRepository) GetByCode(ctx context.Context, code string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := "SELECT " + clientColumns + " FROM clients WHERE client_code = $1"

	client, err := scanClient(r.db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		log.WithError(err).WithField("client_code", code).Error("Failed to get client by code")
		return nil, fmt.Errorf("failed to get client by code: %w", err)
	}

	return client, nil
}

// List returns clients with their child-record counts resolved inline, so the
// listing does not fan out into per-client count queries.
func (r *postgresClientRepository) List(ctx context.Context, advisorID *string) ([]domain.ClientSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var query strings.Builder
	args := []interface{}{}

	query.WriteString("SELECT " + clientColumns + `,
		(SELECT COUNT(*) FROM unified_events WHERE client_id = clients.id),
		(SELECT COUNT(*) FROM bio_identity_events WHERE client_id = clients.id),
		(SELECT COUNT(*) FROM legal_entities WHERE client_id = clients.id)
		FROM clients WHERE 1=1`)
	if advisorID != nil {
		query.WriteString(" AND advisor_id = $1")
		args = append(args, *advisorID)
	}
	query.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		log.WithError(err).Error("Failed to list clients")
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := []domain.ClientSummary{}
	for rows.Next() {
		var s domain.ClientSummary
		var email, phone sql.NullString
		var advisor sql.NullString
		var nationality, taxResidency pq.StringArray

		err := rows.Scan(
			&s.ID,
			&s.ClientCode,
			&s.FullName,
			&email,
			&phone,
			&nationality,
			&taxResidency,
			&s.RiskLevel,
			&advisor,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.Counts.UnifiedEvents,
			&s.Counts.BioIdentityEvents,
			&s.Counts.LegalEntities,
		)
		if err != nil {
			log.WithError(err).Error("Failed to scan client row")
			return nil, fmt.Errorf("failed to scan client row: %w", err)
		}

		if email.Valid {
			s.Email = email.String
		}
		if phone.Valid {
			s.Phone = phone.String
		}
		if advisor.Valid {
			s.AdvisorID = &advisor.String
		}
		s.Nationality = []string(nationality)
		s.TaxResidency = []string(taxResidency)

		clients = append(clients, s)
	}

	return clients, rows.Err()
}

func (r *postgresClientRepository) Update(ctx context.Context, id string, req domain.UpdateClientRequest) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var setParts []string
	var args []interface{}

	set := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if req.FullName != nil {
		set("full_name", *req.FullName)
	}
	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.Phone != nil {
		set("phone", *req.Phone)
	}
	if req.Nationality != nil {
		set("nationality", pq.Array(req.Nationality))
	}
	if req.TaxResidency != nil {
		set("tax_residency", pq.Array(req.TaxResidency))
	}
	if req.RiskLevel != nil {
		set("risk_level", *req.RiskLevel)
	}
	if req.AdvisorID != nil {
		set("advisor_id", *req.AdvisorID)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE clients
	                      SET %s
	                      WHERE id = $%d
	                      RETURNING `+clientColumns,
		strings.Join(setParts, ", "), len(args))

	client, err := scanClient(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		log.WithError(err).WithField("client_id", id).Error("Failed to update client")
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return client, nil
}

func (r *postgresClientRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	log.WithField("client_id", id).Info("Deleting client")

	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		log.WithError(err).WithField("client_id", id).Error("Failed to delete client")
		return fmt.Errorf("failed to delete client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not determine rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrClientNotFound
	}

	return nil
}

func (r *postgresClientRepository) CountBioEvents(ctx context.Context, clientID string) (int, error) {
	return r.countByClient(ctx, "bio_identity_events", clientID)
}

func (r *postgresClientRepository) CountLegalEntities(ctx context.Context, clientID string) (int, error) {
	return r.countByClient(ctx, "legal_entities", clientID)
}

func (r *postgresClientRepository) countByClient(ctx context.Context, table, clientID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE client_id = $1", table)
	if err := r.db.QueryRowContext(ctx, query, clientID).Scan(&count); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"client_id": clientID,
			"table":     table,
		}).Error("Failed to count client records")
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	return count, nil
}
