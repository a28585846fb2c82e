package analytics

import (
	"context"
	"fmt"
	"strings"

	"analyticsadmin/internal/dashboard"
	"analyticsadmin/internal/logging"
)

// ConfigService manages configured drivers
type ConfigService struct {
	registry   *Registry
	repository Repository
}

func NewConfigService(registry *Registry, repository Repository) *ConfigService {
	return &ConfigService{registry: registry, repository: repository}
}

func (s *ConfigService) List(ctx context.Context) ([]*DriverConfig, error) {
	return s.repository.GetAll(ctx)
}

func (s *ConfigService) Get(ctx context.Context, id int64) (*DriverConfig, error) {
	return s.repository.Get(ctx, id)
}

// Create decodes values with the named driver and persists the new config
func (s *ConfigService) Create(ctx context.Context, driverName string, values map[string]any) (*DriverConfig, error) {
	driver, err := s.registry.Load(driverName)
	if err != nil {
		return nil, err
	}
	options, err := driver.DecodeOptions(values)
	if err != nil {
		return nil, err
	}

	config := &DriverConfig{DriverName: driverName, Options: options}
	if err := s.repository.Create(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to save %s config: %w", driverName, err)
	}
	logging.Infof("Created %s analytics config %d", driverName, config.ID)
	return config, nil
}

// Edit re-decodes the options of config id. Switching driver replaces the
// options entirely; otherwise values missing from the submission keep their
// current setting.
func (s *ConfigService) Edit(ctx context.Context, id int64, driverName string, values map[string]any) (*DriverConfig, error) {
	config, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	driver, err := s.registry.Load(driverName)
	if err != nil {
		return nil, err
	}

	merged := values
	if driverName == config.DriverName && config.Options != nil {
		merged = config.Options.Values()
		for k, v := range values {
			merged[k] = v
		}
	}

	options, err := driver.DecodeOptions(merged)
	if err != nil {
		return nil, err
	}

	config.DriverName = driverName
	config.Options = options
	if err := s.repository.Update(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to update config %d: %w", id, err)
	}
	logging.Infof("Updated analytics config %d (%s)", id, driverName)
	return config, nil
}

func (s *ConfigService) Remove(ctx context.Context, id int64) error {
	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}
	logging.Infof("Removed analytics config %d", id)
	return nil
}

// Validate checks the stored credentials of config id against the provider
func (s *ConfigService) Validate(ctx context.Context, id int64) (bool, error) {
	config, err := s.repository.Get(ctx, id)
	if err != nil {
		return false, err
	}
	driver, err := s.registry.Load(config.DriverName)
	if err != nil {
		return false, err
	}
	return driver.Validate(ctx, config.Options), nil
}

// RegisterWidgets lets every configured driver add its tables, charts and widgets to module
func (s *ConfigService) RegisterWidgets(ctx context.Context, module *dashboard.Module) error {
	configs, err := s.repository.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, config := range configs {
		driver, err := s.registry.Load(config.DriverName)
		if err != nil {
			return err
		}
		source, err := driver.ReportSource(ctx, config.Options)
		if err != nil {
			return fmt.Errorf("failed to build %s report source: %w", config.DriverName, err)
		}
		if err := source.RegisterWidgets(ctx, module); err != nil {
			return fmt.Errorf("failed to register %s widgets: %w", config.DriverName, err)
		}
	}
	return nil
}

// EmbedCodeService renders the tracking snippets of all configured drivers
type EmbedCodeService struct {
	registry   *Registry
	repository Repository
}

func NewEmbedCodeService(registry *Registry, repository Repository) *EmbedCodeService {
	return &EmbedCodeService{registry: registry, repository: repository}
}

// Generate concatenates the snippets in persisted order; any failure aborts the output
func (s *EmbedCodeService) Generate(ctx context.Context) (string, error) {
	configs, err := s.repository.GetAll(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, config := range configs {
		driver, err := s.registry.Load(config.DriverName)
		if err != nil {
			return "", err
		}
		snippet, err := driver.EmbedSnippet(config.Options)
		if err != nil {
			return "", fmt.Errorf("failed to render %s embed code: %w", config.DriverName, err)
		}
		b.WriteString(snippet)
	}
	return b.String(), nil
}
