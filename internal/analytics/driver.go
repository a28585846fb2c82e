package analytics

import (
	"context"

	"analyticsadmin/internal/dashboard"
)

// Options is the driver specific configuration stored with a DriverConfig
type Options interface {
	DriverName() string
	// Class identifies the concrete options type in persisted JSON
	Class() string
	// Values returns the form values the options were decoded from
	Values() map[string]any
}

// Driver integrates one analytics provider
type Driver interface {
	Name() string
	Label() string
	// InstallationInstructions is an HTML fragment shown above the options form
	InstallationInstructions() string
	OptionsForm() FormSchema
	OptionsClass() string
	// DecodeOptions validates submitted form values
	DecodeOptions(values map[string]any) (Options, error)
	// UnmarshalOptions restores options persisted as JSON
	UnmarshalOptions(data []byte) (Options, error)
	// Validate performs one minimal remote read and reports whether it succeeded
	Validate(ctx context.Context, options Options) bool
	ReportSource(ctx context.Context, options Options) (ReportSource, error)
	EmbedSnippet(options Options) (string, error)
}

// ReportSource registers a provider's tables, charts and widgets
type ReportSource interface {
	RegisterWidgets(ctx context.Context, module *dashboard.Module) error
}
