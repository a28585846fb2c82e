package analytics

import "context"

// DriverConfig is one configured analytics provider
type DriverConfig struct {
	ID         int64   `json:"id"`
	DriverName string  `json:"driver"`
	Options    Options `json:"options"`
}

// Repository persists driver configs in insertion order
type Repository interface {
	GetAll(ctx context.Context) ([]*DriverConfig, error)
	// Get returns errs.ErrNotFound for unknown ids
	Get(ctx context.Context, id int64) (*DriverConfig, error)
	// Create assigns the config ID
	Create(ctx context.Context, config *DriverConfig) error
	Update(ctx context.Context, config *DriverConfig) error
	Delete(ctx context.Context, id int64) error
}
