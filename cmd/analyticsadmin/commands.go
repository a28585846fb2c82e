package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"analyticsadmin/internal/analytics"
	"analyticsadmin/internal/config"
	"analyticsadmin/internal/results"
	"analyticsadmin/internal/server"
)

const commandTimeout = 2 * time.Minute

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

func configShowCmd(cmd *cobra.Command, args []string) {
	appConfig, err := config.LoadConfig()
	exitOnError("Failed to load config", err)
	configPath, err := config.GetConfigPath()
	exitOnError("Failed to resolve config path", err)

	data, err := yaml.Marshal(appConfig)
	exitOnError("Failed to render config", err)

	fmt.Println("📋 Current configuration:")
	fmt.Printf("📁 Config Location: %s\n", configPath)
	fmt.Println()
	fmt.Print(string(data))
}

func configSetCmd(cmd *cobra.Command, args []string) {
	exitOnError("Failed to set "+args[0], config.Set(args[0], args[1]))
	color.Green.Printf("✅ %s updated\n", args[0])
}

func driversListCmd(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	drivers, err := a.registry.Drivers()
	exitOnError("Failed to load drivers", err)

	for _, name := range a.registry.Names() {
		driver := drivers[name]
		fmt.Printf("🔌 %s (%s)\n", driver.Label(), name)
		for _, section := range driver.OptionsForm().Sections {
			fmt.Printf("   %s\n", section.Title)
			for _, field := range section.Fields {
				required := ""
				if field.Required {
					required = " *"
				}
				fmt.Printf("     - %s [%s]%s: %s\n", field.Name, field.Kind, required, field.Label)
			}
		}
	}
}

// optionValues merges --values-file, --key-file and --set flags, later sources winning
func optionValues(cmd *cobra.Command) (map[string]any, error) {
	values := map[string]any{}

	if path, _ := cmd.Flags().GetString("values-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read values file: %w", err)
		}
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to parse values file: %w", err)
		}
	}

	if path, _ := cmd.Flags().GetString("key-file"); path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		values["service_account_key"] = map[string]any{
			"__is_proxy":         true,
			"__file_path":        abs,
			"__file_client_name": filepath.Base(path),
		}
	}

	sets, _ := cmd.Flags().GetStringArray("set")
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", kv)
		}
		values[key] = value
	}
	return values, nil
}

func configsAddCmd(cmd *cobra.Command, args []string) {
	driverName, _ := cmd.Flags().GetString("driver")
	values, err := optionValues(cmd)
	exitOnError("Invalid options", err)

	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	created, err := a.configs.Create(ctx, driverName, values)
	exitOnError("Failed to add config", err)
	color.Green.Printf("✅ Added %s config %d\n", created.DriverName, created.ID)
}

func configsEditCmd(cmd *cobra.Command, args []string) {
	id := parseID(args[0])
	values, err := optionValues(cmd)
	exitOnError("Invalid options", err)

	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	driverName, _ := cmd.Flags().GetString("driver")
	if driverName == "" {
		current, err := a.configs.Get(ctx, id)
		exitOnError("Failed to load config", err)
		driverName = current.DriverName
	}

	updated, err := a.configs.Edit(ctx, id, driverName, values)
	exitOnError("Failed to edit config", err)
	color.Green.Printf("✅ Updated %s config %d\n", updated.DriverName, updated.ID)
}

func configsRemoveCmd(cmd *cobra.Command, args []string) {
	id := parseID(args[0])
	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	exitOnError("Failed to remove config", a.configs.Remove(ctx, id))
	color.Green.Printf("✅ Removed config %d\n", id)
}

func configsListCmd(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	configs, err := a.configs.List(ctx)
	exitOnError("Failed to list configs", err)
	if len(configs) == 0 {
		fmt.Println("❌ No analytics configs found")
		fmt.Println("💡 Add one with: analyticsadmin configs add --driver <name> --set key=value")
		return
	}

	for _, c := range configs {
		fmt.Printf("📊 [%d] %s\n", c.ID, c.DriverName)
		values := c.Options.Values()
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := values[k]
			if strings.Contains(k, "private_key") && fmt.Sprint(v) != "" {
				v = "[HIDDEN]"
			}
			fmt.Printf("   %s: %v\n", k, displayOption(v))
		}
	}
}

func displayOption(v any) any {
	if f, ok := v.(*analytics.File); ok {
		return f.ClientName + " (" + f.Path + ")"
	}
	return v
}

func configsValidateCmd(cmd *cobra.Command, args []string) {
	id := parseID(args[0])
	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	fmt.Printf("🔍 Validating config %d...\n", id)
	valid, err := a.configs.Validate(ctx, id)
	exitOnError("Failed to validate config", err)
	if !valid {
		fmt.Println(color.Red.Sprint("❌ Credentials were rejected or the view is not accessible"))
		os.Exit(1)
	}
	color.Green.Println("✅ Config is valid")
}

func embedCmd(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	code, err := a.embed.Generate(ctx)
	exitOnError("Failed to generate embed code", err)
	fmt.Println(code)
}

func reportsListCmd(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	module, err := a.module(ctx)
	exitOnError("Failed to load reports", err)
	manager := results.NewManager(module)

	fmt.Println("📋 Report tables:")
	for _, name := range manager.Tables() {
		count, err := manager.Count(ctx, name, nil)
		exitOnError("Failed to count "+name, err)
		fmt.Printf("   %s (%d rows)\n", name, count)
	}
}

func reportsLoadCmd(cmd *cobra.Command, args []string) {
	where, _ := cmd.Flags().GetStringArray("where")
	order, _ := cmd.Flags().GetString("order")
	skip, _ := cmd.Flags().GetInt("skip")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	query, err := buildQuery(where, order, skip, limit)
	exitOnError("Invalid query", err)

	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	module, err := a.module(ctx)
	exitOnError("Failed to load reports", err)
	manager := results.NewManager(module)

	result, err := manager.Fetch(ctx, args[0], query)
	exitOnError("Failed to load "+args[0], err)

	if format == "table" {
		for _, line := range results.FormatResultTable(result, results.DefaultDisplayOptions()) {
			fmt.Println(line)
		}
		return
	}

	options := results.ExportOptions{Format: results.ExportFormat(format), OutputPath: output, Prettify: true}
	if output == "" {
		exitOnError("Failed to write "+format, results.Write(os.Stdout, result, options))
		return
	}
	exitOnError("Failed to export "+format, manager.Export(result, options))
	color.Green.Printf("✅ Exported %d rows to %s\n", len(result.Rows), output)
}

func reportsCountCmd(cmd *cobra.Command, args []string) {
	where, _ := cmd.Flags().GetStringArray("where")
	query, err := buildQuery(where, "", 0, 0)
	exitOnError("Invalid query", err)

	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	module, err := a.module(ctx)
	exitOnError("Failed to load reports", err)

	count, err := results.NewManager(module).Count(ctx, args[0], query)
	exitOnError("Failed to count "+args[0], err)
	fmt.Println(count)
}

func widgetsListCmd(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	module, err := a.module(ctx)
	exitOnError("Failed to load widgets", err)

	widgets := module.Widgets()
	if len(widgets) == 0 {
		fmt.Println("❌ No widgets registered, add an analytics config first")
		return
	}
	for _, widget := range widgets {
		chart, _ := module.Chart(widget.Chart)
		fmt.Printf("📈 %s: %s (%s chart over %s)\n", widget.Name, widget.Label, chart.Kind, chart.Table)
	}
}

func widgetsShowCmd(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	module, err := a.module(ctx)
	exitOnError("Failed to load widgets", err)

	data, err := module.RenderWidget(ctx, args[0])
	exitOnError("Failed to render "+args[0], err)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	exitOnError("Failed to write widget", encoder.Encode(data))
}

func cacheStatsCmd(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	fmt.Println("💾 Cache Statistics:")
	if a.duckdb == nil {
		fmt.Printf("🗄  Backend: %s (statistics are kept by the DuckDB backend only)\n", a.config.Cache.Backend)
		return
	}

	stats, err := a.duckdb.Stats(ctx)
	exitOnError("Failed to get cache stats", err)

	fmt.Printf("🗄  Backend: %s (%s)\n", a.config.Cache.Backend, a.config.Cache.Path)
	fmt.Printf("✅ Cache Hits: %d\n", stats.TotalHits)
	fmt.Printf("❌ Cache Misses: %d\n", stats.TotalMisses)
	fmt.Printf("📊 Hit Rate: %.1f%%\n", stats.HitRate)
	fmt.Printf("📁 Cache Entries: %d\n", stats.EntriesCount)
	fmt.Printf("📅 Created: %s\n", stats.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("🔄 Last Updated: %s\n", stats.UpdatedAt.Format("2006-01-02 15:04:05"))
	if stats.LastCleanup != nil {
		fmt.Printf("🧹 Last Cleanup: %s\n", stats.LastCleanup.Format("2006-01-02 15:04:05"))
	}
}

func cacheCleanupCmd(cmd *cobra.Command, args []string) {
	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	if a.duckdb == nil {
		fmt.Println("💡 Redis expires entries on its own, nothing to clean up")
		return
	}

	fmt.Println("🧹 Cleaning up cache...")
	deleted, err := a.duckdb.CleanupExpiredEntries(ctx)
	exitOnError("Cleanup failed", err)
	color.Green.Printf("✅ Cleaned up %d expired cache entries\n", deleted)
}

func cacheClearCmd(cmd *cobra.Command, args []string) {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		fmt.Print("⚠️  Are you sure you want to clear ALL cache entries? This cannot be undone. (y/N): ")
		confirm, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(confirm)) != "y" {
			fmt.Println("❌ Cache clear cancelled")
			return
		}
	}

	ctx, cancel := commandContext()
	defer cancel()
	a := mustApp(ctx, cmd)
	defer a.Close()

	exitOnError("Failed to clear cache", a.store.Clear(ctx))
	color.Green.Println("✅ Cache cleared")
}

func serveCmd(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := mustApp(ctx, cmd)
	defer a.Close()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = a.config.Server.Addr
	}
	if err := server.Serve(ctx, addr, a.services()); err != nil {
		a.Close()
		exitOnError("Server failed", err)
	}
}

func parseID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		exitOnError("Invalid config id", fmt.Errorf("%q is not an integer", raw))
	}
	return id
}
