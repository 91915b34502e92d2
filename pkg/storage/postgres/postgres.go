// Package postgres provides a PostgreSQL implementation of transport.SampleStore.
// It uses pgx/v5 for connection pooling and stores enum fields as checked
// text columns.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkranz/labtrack/pkg/api"
	"github.com/mkranz/labtrack/pkg/debug"
	"github.com/mkranz/labtrack/pkg/storage"
	"github.com/mkranz/labtrack/pkg/transport"
)

// Store is a PostgreSQL-backed SampleStore.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements transport.SampleStore at compile time.
var _ transport.SampleStore = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Insert persists a new sample.
func (s *Store) Insert(ctx context.Context, sample *api.Sample) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO samples (sample_id, sample_type, subject_id, collection_date, status, storage_location)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		sample.SampleID, string(sample.SampleType), sample.SubjectID,
		sample.CollectionDate.Time, string(sample.Status), sample.StorageLocation,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting sample: %w", err)
	}
	return nil
}

// Get retrieves a sample by ID.
func (s *Store) Get(ctx context.Context, id string) (*api.Sample, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT sample_id, sample_type, subject_id, collection_date, status, storage_location
		FROM samples
		WHERE sample_id = $1
	`, id)

	sample, err := scanSample(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying sample: %w", err)
	}
	return sample, nil
}

// List returns all samples matching the filter, in insertion order.
func (s *Store) List(ctx context.Context, filter transport.Filter) ([]*api.Sample, error) {
	query := `
		SELECT sample_id, sample_type, subject_id, collection_date, status, storage_location
		FROM samples
	`
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.SampleType != "" {
		args = append(args, string(filter.SampleType))
		conds = append(conds, fmt.Sprintf("sample_type = $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY position"

	debug.Log("storage", "listing samples",
		"filter_status", string(filter.Status),
		"filter_sample_type", string(filter.SampleType),
	)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing samples: %w", err)
	}
	defer rows.Close()

	var result []*api.Sample
	for rows.Next() {
		sample, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
		result = append(result, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing samples: %w", err)
	}
	return result, nil
}

// Update replaces the stored record for sample.SampleID.
func (s *Store) Update(ctx context.Context, sample *api.Sample) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE samples
		SET sample_type = $2, subject_id = $3, collection_date = $4, status = $5, storage_location = $6
		WHERE sample_id = $1
	`,
		sample.SampleID, string(sample.SampleType), sample.SubjectID,
		sample.CollectionDate.Time, string(sample.Status), sample.StorageLocation,
	)
	if err != nil {
		return fmt.Errorf("updating sample: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes a sample permanently.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM samples WHERE sample_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting sample: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// scanSample reads one sample row.
func scanSample(row pgx.Row) (*api.Sample, error) {
	var (
		sample         api.Sample
		typ, status    string
		collectionDate time.Time
	)
	err := row.Scan(&sample.SampleID, &typ, &sample.SubjectID, &collectionDate, &status, &sample.StorageLocation)
	if err != nil {
		return nil, err
	}
	sample.SampleType = api.SampleType(typ)
	sample.Status = api.SampleStatus(status)
	sample.CollectionDate = api.Date{Time: collectionDate}
	return &sample, nil
}

// isDuplicateKey reports whether the error is a unique constraint violation.
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
