package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/charterdesk/charterdesk/internal/backend"
	"github.com/charterdesk/charterdesk/internal/config"
	"github.com/charterdesk/charterdesk/internal/ui"
)

var checkBackend bool

// configCmd groups the config file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the stored configuration",
	Long: `Show or change the configuration file.

The file lives in the charterdesk directory under the OS config directory
(for example ~/.config/charterdesk/config.yaml). Set CHARTERDESK_CONFIG_DIR
to use another directory.`,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetBackendCmd)
	configCmd.AddCommand(configSetGuestCmd)

	configSetBackendCmd.Flags().BoolVar(&checkBackend, "check", false, "Ping the backend before saving")
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// configJSON is the --format json output of config show
type configJSON struct {
	Path     string           `json:"path"`
	Registry *config.Registry `json:"registry"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if outputFormat == formatJSON {
		return p.PrintJSON(configJSON{Path: path, Registry: reg})
	}

	current := reg.BackendURL()
	if current == "" {
		current = "(not set)"
	}
	details := []ui.Param{
		{Key: "File", Value: path},
		{Key: "Backend", Value: current},
		{Key: "Timeout", Value: reg.Backend.Timeout.String()},
		{Key: "Retries", Value: strconv.Itoa(reg.Backend.MaxRetries)},
		{Key: "Default type", Value: reg.Preferences.DefaultYachtType},
		{Key: "Refresh", Value: orNone(reg.Preferences.RefreshSchedule)},
		{Key: "Live feed", Value: strconv.FormatBool(reg.Preferences.LiveFeed)},
		{Key: "Auto-discover", Value: fmt.Sprintf("%v (%s)", reg.Preferences.AutoDiscover, reg.DiscoverTimeout())},
		{Key: "Guest", Value: orNone(guestLine(reg.Guest))},
		{Key: "Recent searches", Value: strconv.Itoa(len(reg.RecentSearches))},
	}
	p.PrintHeader("Configuration", "charterdesk config show")
	p.PrintSuccess("Configuration loaded", details...)

	if len(reg.KnownBackends) > 0 {
		rows := make([][]string, 0, len(reg.KnownBackends))
		for url, kb := range reg.KnownBackends {
			rows = append(rows, []string{kb.Instance, url, kb.LastSeen.Format(time.RFC3339)})
		}
		p.PrintTable([]string{"Known service", "URL", "Last seen"}, rows)
	}
	return nil
}

func guestLine(g *config.GuestProfile) string {
	if g == nil || (g.Name == "" && g.Email == "") {
		return ""
	}
	return fmt.Sprintf("%s <%s>", g.Name, g.Email)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

var configSetBackendCmd = &cobra.Command{
	Use:   "set-backend <url>",
	Short: "Set the reservation backend URL",
	Example: `  # Use a local backend
  charterdesk config set-backend http://localhost:8080

  # Verify the backend answers before saving
  charterdesk config set-backend https://charters.example.com --check`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetBackend,
}

func runConfigSetBackend(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := reg.SetBackendURL(args[0]); err != nil {
		return err
	}

	if checkBackend {
		client := backend.NewClient(reg.BackendURL())
		client.SetRetry(0, backend.DefaultRetryDelay)
		if err := client.Ping(cmd.Context()); err != nil {
			p.PrintError("Backend check failed", err, backend.TroubleshootingHints(err))
			return err
		}
	}

	if err := reg.Save(); err != nil {
		return err
	}
	p.PrintSuccess("Backend saved", ui.Param{Key: "URL", Value: reg.BackendURL()})
	return nil
}

var configSetGuestCmd = &cobra.Command{
	Use:     "set-guest <name> <email>",
	Short:   "Set the guest profile used to prefill reservations",
	Example: `  charterdesk config set-guest "Ada Lovelace" ada@example.com`,
	Args:    cobra.ExactArgs(2),
	RunE:    runConfigSetGuest,
}

func runConfigSetGuest(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	reg.SetGuest(args[0], args[1])
	if err := reg.Save(); err != nil {
		return err
	}
	p.PrintSuccess("Guest profile saved",
		ui.Param{Key: "Name", Value: reg.Guest.Name},
		ui.Param{Key: "Email", Value: reg.Guest.Email},
	)
	return nil
}
