package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "analyticsadmin",
		Short: "Admin tool for analytics provider configs, reports and dashboard widgets",
		Long: `analyticsadmin manages analytics provider configurations, loads their reports
through the report cache, renders dashboard widgets and serves the admin API.

Examples:
  analyticsadmin drivers list
  analyticsadmin configs add --driver google --key-file key.json --set view_id=123456 --set tracking_code=UA-1-1
  analyticsadmin reports load google-analytics-sessions --limit 10
  analyticsadmin widgets show google-analytics-browsers-breakdown
  analyticsadmin serve --addr :8080`,
		Version: version,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage global configuration",
		Long:  "Show and update ~/.analyticsadmin/config.yaml",
	}

	driversCmd = &cobra.Command{
		Use:   "drivers",
		Short: "List analytics drivers",
	}

	configsCmd = &cobra.Command{
		Use:   "configs",
		Short: "Manage analytics provider configs",
		Long:  "Add, edit, remove, list and validate configured analytics providers",
	}

	reportsCmd = &cobra.Command{
		Use:   "reports",
		Short: "Load report tables",
		Long:  "List, load and count the report tables registered by the configured providers",
	}

	widgetsCmd = &cobra.Command{
		Use:   "widgets",
		Short: "List and render dashboard widgets",
	}

	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Manage the report cache",
	}
)

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	// Config subcommands
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run:   configShowCmd,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set a configuration value",
		Long: `Set a configuration value. Keys: database_path, default_lookback_days, cache.backend,
cache.path, cache.redis_url, cache.report_ttl, logging.file_dir, logging.debug,
server.addr, metrics.enabled`,
		Args: cobra.ExactArgs(2),
		Run:  configSetCmd,
	})

	// Drivers subcommands
	driversCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered drivers and their option forms",
		Run:   driversListCmd,
	})

	// Configs subcommands
	configsAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a provider config",
		Run:   configsAddCmd,
	}
	addValueFlags(configsAddCmd)
	configsAddCmd.Flags().String("driver", "", "Driver name (required)")
	configsAddCmd.MarkFlagRequired("driver")

	configsEditCmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a provider config",
		Long:  "Edit a provider config. Values not given keep their current setting unless --driver switches driver.",
		Args:  cobra.ExactArgs(1),
		Run:   configsEditCmd,
	}
	addValueFlags(configsEditCmd)
	configsEditCmd.Flags().String("driver", "", "Switch to another driver")

	configsCmd.AddCommand(configsAddCmd, configsEditCmd,
		&cobra.Command{
			Use:   "remove [id]",
			Short: "Remove a provider config",
			Args:  cobra.ExactArgs(1),
			Run:   configsRemoveCmd,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List provider configs",
			Run:   configsListCmd,
		},
		&cobra.Command{
			Use:   "validate [id]",
			Short: "Check a provider config against the remote API",
			Args:  cobra.ExactArgs(1),
			Run:   configsValidateCmd,
		},
	)

	// Embed
	rootCmd.AddCommand(&cobra.Command{
		Use:   "embed",
		Short: "Print the tracking snippets of all configured providers",
		Run:   embedCmd,
	})

	// Reports subcommands
	reportsLoadCmd := &cobra.Command{
		Use:   "load [table]",
		Short: "Load rows of a report table",
		Args:  cobra.ExactArgs(1),
		Run:   reportsLoadCmd,
	}
	reportsLoadCmd.Flags().Int("skip", 0, "Rows to skip")
	reportsLoadCmd.Flags().Int("limit", 50, "Maximum rows to load (0 for all)")
	reportsLoadCmd.Flags().StringArray("where", nil, "Condition as field<op>value, e.g. date>=2024-01-01 (repeatable)")
	reportsLoadCmd.Flags().String("order", "", "Order by field; prefix with - for descending")
	reportsLoadCmd.Flags().String("format", "table", "Output format (table, csv, tsv, json)")
	reportsLoadCmd.Flags().String("output", "", "Write to file instead of stdout")

	reportsCountCmd := &cobra.Command{
		Use:   "count [table]",
		Short: "Count rows of a report table",
		Args:  cobra.ExactArgs(1),
		Run:   reportsCountCmd,
	}
	reportsCountCmd.Flags().StringArray("where", nil, "Condition as field<op>value (repeatable)")

	reportsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List report tables",
		Run:   reportsListCmd,
	}, reportsLoadCmd, reportsCountCmd)

	// Widgets subcommands
	widgetsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List widgets",
		Run:   widgetsListCmd,
	}, &cobra.Command{
		Use:   "show [name]",
		Short: "Render a widget as JSON",
		Args:  cobra.ExactArgs(1),
		Run:   widgetsShowCmd,
	})

	// Cache subcommands
	cacheCleanupSubCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired cache entries",
		Run:   cacheCleanupCmd,
	}
	cacheClearSubCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached reports and tokens",
		Run:   cacheClearCmd,
	}
	cacheClearSubCmd.Flags().Bool("yes", false, "Do not ask for confirmation")
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Run:   cacheStatsCmd,
	}, cacheCleanupSubCmd, cacheClearSubCmd)

	// Serve
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin API",
		Run:   serveCmd,
	}
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")

	rootCmd.AddCommand(configCmd, driversCmd, configsCmd, reportsCmd, widgetsCmd, cacheCmd, serveCmd)
}

func addValueFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("set", nil, "Option value as key=value (repeatable)")
	cmd.Flags().String("values-file", "", "JSON file with option values")
	cmd.Flags().String("key-file", "", "Service account key file (*.json or *.pem)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
