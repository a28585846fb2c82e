package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"analyticsadmin/internal/analytics"
	"analyticsadmin/internal/errs"
)

// Open connects to the DuckDB database at path, creating its directory.
// An empty path opens an in-memory database.
func Open(path string) (*sql.DB, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to DuckDB: %w", err)
	}
	return db, nil
}

// Repository stores driver configs in the analytics table
type Repository struct {
	db    *sql.DB
	codec *Codec
}

func NewRepository(ctx context.Context, db *sql.DB, codec *Codec) (*Repository, error) {
	r := &Repository{db: db, codec: codec}
	if err := r.initializeTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize analytics table: %w", err)
	}
	return r, nil
}

func (r *Repository) initializeTables(ctx context.Context) error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS analytics_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS analytics (
			id BIGINT PRIMARY KEY DEFAULT nextval('analytics_id_seq'),
			driver VARCHAR(255) NOT NULL,
			options TEXT NOT NULL
		)`,
	}
	for _, query := range queries {
		if _, err := r.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetAll(ctx context.Context) ([]*analytics.DriverConfig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, driver, options FROM analytics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics configs: %w", err)
	}
	defer rows.Close()

	var configs []*analytics.DriverConfig
	for rows.Next() {
		config, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}
	return configs, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (*analytics.DriverConfig, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, driver, options FROM analytics WHERE id = ?`, id)
	config, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: analytics config %d", errs.ErrNotFound, id)
	}
	return config, err
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scan(row scanner) (*analytics.DriverConfig, error) {
	var config analytics.DriverConfig
	var options string
	if err := row.Scan(&config.ID, &config.DriverName, &options); err != nil {
		return nil, err
	}
	decoded, err := r.codec.Decode(options, config.DriverName)
	if err != nil {
		return nil, fmt.Errorf("failed to decode options of config %d: %w", config.ID, err)
	}
	config.Options = decoded
	return &config, nil
}

func (r *Repository) Create(ctx context.Context, config *analytics.DriverConfig) error {
	options, err := r.codec.Encode(config.Options)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO analytics (driver, options)
		VALUES (?, ?)
		RETURNING id
	`, config.DriverName, options).Scan(&config.ID)
	if err != nil {
		return fmt.Errorf("failed to insert analytics config: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, config *analytics.DriverConfig) error {
	options, err := r.codec.Encode(config.Options)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE analytics
		SET driver = ?, options = ?
		WHERE id = ?
	`, config.DriverName, options, config.ID)
	if err != nil {
		return fmt.Errorf("failed to update analytics config %d: %w", config.ID, err)
	}
	return expectRow(result, config.ID)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM analytics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analytics config %d: %w", id, err)
	}
	return expectRow(result, id)
}

// InsertRaw stores an options column as is. It exists for importing rows from older installs.
func (r *Repository) InsertRaw(ctx context.Context, driver, options string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `INSERT INTO analytics (driver, options) VALUES (?, ?) RETURNING id`, driver, options).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analytics config: %w", err)
	}
	return id, nil
}

func expectRow(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: analytics config %d", errs.ErrNotFound, id)
	}
	return nil
}
