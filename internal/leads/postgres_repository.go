package leads

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Insert writes a new row. Absent optional fields persist as NULL.
func (r *PostgresRepository) Insert(ctx context.Context, lead *Lead) error {
	query := `
		INSERT INTO leads (
			id, created_at, name, phone, email, postcode,
			address_label, address_id, address_raw,
			service, other_service, notes,
			source_path, referrer, identity_hash, user_agent, challenge_verified
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	if _, err := r.pool.Exec(ctx, query,
		lead.ID,
		lead.CreatedAt,
		lead.Name,
		lead.Phone,
		lead.Email,
		lead.Postcode,
		lead.AddressLabel,
		nullable(lead.AddressID),
		nullableRaw(lead.AddressRaw),
		lead.Service,
		nullable(lead.OtherService),
		nullable(lead.Notes),
		lead.SourcePath,
		nullable(lead.Referrer),
		nullable(lead.IdentityHash),
		nullable(lead.UserAgent),
		lead.ChallengeVerified,
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

// List returns all leads, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Lead, error) {
	query := `
		SELECT id, created_at, name, phone, email, postcode,
			address_label, address_id, address_raw,
			service, other_service, notes,
			source_path, referrer, identity_hash, user_agent, challenge_verified
		FROM leads
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		var lead Lead
		var addressID, addressRaw, otherService, notes, referrer, identityHash, userAgent *string
		if err := rows.Scan(
			&lead.ID,
			&lead.CreatedAt,
			&lead.Name,
			&lead.Phone,
			&lead.Email,
			&lead.Postcode,
			&lead.AddressLabel,
			&addressID,
			&addressRaw,
			&lead.Service,
			&otherService,
			&notes,
			&lead.SourcePath,
			&referrer,
			&identityHash,
			&userAgent,
			&lead.ChallengeVerified,
		); err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		lead.AddressID = deref(addressID)
		if addressRaw != nil {
			lead.AddressRaw = []byte(*addressRaw)
		}
		lead.OtherService = deref(otherService)
		lead.Notes = deref(notes)
		lead.Referrer = deref(referrer)
		lead.IdentityHash = deref(identityHash)
		lead.UserAgent = deref(userAgent)
		out = append(out, &lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: row iteration failed: %w", err)
	}
	return out, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableRaw(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
