package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charterdesk/charterdesk/internal/backend"
	"github.com/charterdesk/charterdesk/internal/config"
	"github.com/charterdesk/charterdesk/internal/container"
	"github.com/charterdesk/charterdesk/internal/discovery"
	"github.com/charterdesk/charterdesk/internal/logging"
	"github.com/charterdesk/charterdesk/internal/panel"
	"github.com/charterdesk/charterdesk/internal/tui"
	"github.com/charterdesk/charterdesk/internal/ui"
	"github.com/charterdesk/charterdesk/internal/yacht"
)

// BackendEnvVar overrides the backend URL from the config file.
const BackendEnvVar = "CHARTERDESK_BACKEND"

const tuiLogFile = "charterdesk.log"

// Output formats accepted by --format
const (
	formatTable = "table"
	formatJSON  = "json"
)

var errNoBackend = errors.New("no reservation backend configured")

// Command flags
var (
	backendURL   string
	logLevel     string
	outputFormat string

	searchDate  string
	searchType  string
	searchParty int

	guestName  string
	guestEmail string
	assumeYes  bool

	discoverTimeout int
	discoverSave    bool
)

func init() {
	// Common flags (persistent on root)
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Reservation backend URL (overrides config and "+BackendEnvVar+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatTable, "Output format (table, json)")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(reserveCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configCmd)
}

// setup validates the common flags and starts logging on stderr.
func setup(cmd *cobra.Command, args []string) error {
	switch outputFormat {
	case formatTable, formatJSON:
	default:
		return fmt.Errorf("invalid --format %q (use table or json)", outputFormat)
	}
	return logging.Initialize(logLevel)
}

// findBackend browses the local network for a backend; replaced in tests.
var findBackend = func(ctx context.Context, timeout time.Duration) (*discovery.Endpoint, error) {
	scanner := discovery.NewScanner()
	scanner.Timeout = timeout
	return scanner.First(ctx)
}

// resolveBackend picks the backend URL from the flag, the environment, the
// config file or mDNS discovery, in that order. A discovered backend is
// remembered in the registry.
func resolveBackend(ctx context.Context, reg *config.Registry, p *ui.Printer) (string, error) {
	if backendURL != "" {
		return normalizeURL(backendURL, "--backend")
	}
	if env := os.Getenv(BackendEnvVar); env != "" {
		return normalizeURL(env, BackendEnvVar)
	}
	if u := reg.BackendURL(); u != "" {
		return u, nil
	}
	if reg.Preferences == nil || !reg.Preferences.AutoDiscover {
		return "", fmt.Errorf("%w: use --backend or 'charterdesk config set-backend <url>'", errNoBackend)
	}

	timeout := reg.DiscoverTimeout()
	p.PrintPleaseWait("Looking for a reservation service on the local network", "up to "+timeout.String())
	ep, err := findBackend(ctx, timeout)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errNoBackend, err)
	}

	url := ep.BaseURL()
	p.Println(ui.SuccessMarker + " Found " + ep.String())
	p.Newline()

	reg.RememberBackend(url, ep.Instance, time.Now())
	if err := reg.Save(); err != nil {
		logging.Warn("Failed to save discovered backend", zap.Error(err))
	}
	return url, nil
}

func normalizeURL(raw, source string) (string, error) {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if err := config.ValidateBackendURL(u); err != nil {
		return "", fmt.Errorf("%s: %w", source, err)
	}
	return u, nil
}

// services loads the registry, resolves the backend and wires everything up.
func services(cmd *cobra.Command, p *ui.Printer) (*container.Container, error) {
	reg, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	url, err := resolveBackend(cmd.Context(), reg, p)
	if err != nil {
		return nil, err
	}
	logging.Debug("Using backend", zap.String("url", url))
	return container.New(reg, url)
}

// rememberSearch records c in the search history.
func rememberSearch(reg *config.Registry, c yacht.Criteria) {
	reg.AddRecentSearch(c, time.Now())
	if err := reg.Save(); err != nil {
		logging.Warn("Failed to save recent search", zap.Error(err))
	}
}

// failureHints turns validation failures into flag hints and backend
// failures into troubleshooting tips.
func failureHints(err error) []string {
	var verr *panel.ValidationError
	if errors.As(err, &verr) {
		flags := map[string]string{
			panel.FieldDate:       "--date",
			panel.FieldPartySize:  "--party",
			panel.FieldGuestName:  "--name",
			panel.FieldGuestEmail: "--email",
		}
		tips := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			tips = append(tips, fmt.Sprintf("%s: %s", flags[f.Field], f.Message))
		}
		return tips
	}
	return backend.TroubleshootingHints(err)
}

// tuiCmd launches the interactive interface
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive interface",
	Long: `Launch the three-pane reservation interface.

Search on the top, browse results on the left and book the selected
yacht on the right. Logs go to charterdesk.log in the config directory
because the interface owns the terminal.`,
	Example: `  # Launch with the configured backend
  charterdesk tui
  # Or simply (tui is default):
  charterdesk

  # Use a specific backend with debug logging
  charterdesk --backend http://localhost:8080 --log-level debug`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	dir, err := config.GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := logging.InitializeWithOptions(logging.Options{
		Level:      logLevel,
		OutputPath: filepath.Join(dir, tuiLogFile),
	}); err != nil {
		return err
	}

	c, err := services(cmd, p)
	if err != nil {
		return err
	}
	defer c.Close()

	reg := c.Registry()
	if last, ok := reg.LastSearch(); ok {
		c.Search().SetDate(last.ReservationDate)
		c.Search().SetType(last.YachtType)
		if last.MinimumCapacity > 0 {
			c.Search().SetPartySize(strconv.Itoa(last.MinimumCapacity))
		}
	}

	opts := tui.Options{
		Bus:       c.Bus(),
		Search:    c.Search(),
		Results:   c.Results(),
		Detail:    c.Detail(),
		Feed:      c.Feed(),
		Refresher: c.Refresher(),
		OnSearch: func(criteria yacht.Criteria) {
			rememberSearch(reg, criteria)
		},
	}
	if reg.Guest != nil {
		opts.GuestName, opts.GuestEmail = reg.Guest.Name, reg.Guest.Email
	}

	logging.Info("Starting TUI", zap.String("backend", c.Client().BaseURL))
	return tui.Run(cmd.Context(), opts)
}

// searchCmd runs one availability query
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for yachts available on a date",
	Long: `Query the reservation service for yachts and their availability on
the given date. Available yachts are listed first.`,
	Example: `  # Every yacht on a date
  charterdesk search --date 2026-07-14

  # Catamarans for at least six guests, as JSON
  charterdesk search --date 2026-07-14 --type Catamaran --party 6 --format json`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchDate, "date", "", "Reservation date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchType, "type", "", "Yacht type (default from config, or "+yacht.AllTypes+")")
	searchCmd.Flags().IntVar(&searchParty, "party", 0, "Minimum number of guests")
	_ = searchCmd.MarkFlagRequired("date")
}

// runCriteriaSearch fills the search panel from the flags and submits it.
func runCriteriaSearch(ctx context.Context, c *container.Container) (yacht.Criteria, error) {
	s := c.Search()
	s.SetDate(searchDate)
	if searchType != "" {
		s.SetType(searchType)
	}
	if searchParty != 0 {
		s.SetPartySize(strconv.Itoa(searchParty))
	}

	criteria, err := s.Criteria()
	if err != nil {
		return yacht.Criteria{}, err
	}
	if err := s.Submit(ctx); err != nil {
		return yacht.Criteria{}, err
	}
	return criteria, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	c, err := services(cmd, p)
	if err != nil {
		return err
	}
	defer c.Close()

	criteria, err := runCriteriaSearch(cmd.Context(), c)
	if err != nil {
		if outputFormat == formatTable {
			p.PrintError("Search failed", err, failureHints(err))
		}
		return err
	}
	rememberSearch(c.Registry(), criteria)

	records := c.Results().Master()
	if outputFormat == formatJSON {
		return p.PrintJSON(records)
	}

	params := []ui.Param{
		{Key: "Date", Value: criteria.ReservationDate},
		{Key: "Type", Value: criteria.TypeFilter()},
	}
	if criteria.MinimumCapacity > 0 {
		params = append(params, ui.Param{Key: "Guests", Value: strconv.Itoa(criteria.MinimumCapacity)})
	}
	p.PrintHeader("Yacht Search", "charterdesk search", params...)
	p.PrintYachts(records)
	return nil
}

// typesCmd lists the yacht types offered by the backend
var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List yacht types",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

func runTypes(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	c, err := services(cmd, p)
	if err != nil {
		return err
	}
	defer c.Close()

	types, err := c.Client().YachtTypes(cmd.Context())
	if err != nil {
		if outputFormat == formatTable {
			p.PrintError("Failed to load yacht types", err, failureHints(err))
		}
		return err
	}

	if outputFormat == formatJSON {
		return p.PrintJSON(types)
	}
	rows := make([][]string, 0, len(types))
	for _, t := range types {
		rows = append(rows, []string{t})
	}
	p.PrintTable([]string{"Yacht type"}, rows)
	return nil
}

// reserveCmd books one yacht
var reserveCmd = &cobra.Command{
	Use:   "reserve <yacht-id>",
	Short: "Reserve a yacht for a date",
	Long: `Look up the yacht on the given date and submit a reservation for it.

The guest name and email default to the profile stored with
'charterdesk config set-guest'. You are asked to confirm before the
reservation is sent unless --yes is given.`,
	Example: `  # Reserve with the stored guest profile
  charterdesk reserve Y-104 --date 2026-07-14

  # Reserve for someone else without prompting
  charterdesk reserve Y-104 --date 2026-07-14 --name "Ada Lovelace" --email ada@example.com --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runReserve,
}

func init() {
	reserveCmd.Flags().StringVar(&searchDate, "date", "", "Reservation date (YYYY-MM-DD)")
	reserveCmd.Flags().IntVar(&searchParty, "party", 0, "Number of guests")
	reserveCmd.Flags().StringVar(&guestName, "name", "", "Guest name (default from config)")
	reserveCmd.Flags().StringVar(&guestEmail, "email", "", "Guest email (default from config)")
	reserveCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	_ = reserveCmd.MarkFlagRequired("date")
}

// reservationJSON is the --format json output of reserve
type reservationJSON struct {
	YachtID         string `json:"yachtId"`
	YachtName       string `json:"yachtName"`
	ReservationDate string `json:"reservationDate"`
	Outcome         string `json:"outcome"`
	Message         string `json:"message"`
}

func runReserve(cmd *cobra.Command, args []string) error {
	if outputFormat == formatJSON && !assumeYes {
		return errors.New("--yes is required with --format json")
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	ctx := cmd.Context()

	c, err := services(cmd, p)
	if err != nil {
		return err
	}
	defer c.Close()

	yachtID := args[0]
	c.Search().SetType(yacht.AllTypes)
	if _, err := runCriteriaSearch(ctx, c); err != nil {
		if outputFormat == formatTable {
			p.PrintError("Availability check failed", err, failureHints(err))
		}
		return err
	}

	var record yacht.Record
	found := false
	for _, r := range c.Results().Master() {
		if r.ID == yachtID {
			record, found = r, true
			break
		}
	}
	if !found {
		return fmt.Errorf("yacht %q not found on %s", yachtID, searchDate)
	}
	if !record.Available {
		return fmt.Errorf("%s is not available on %s", record.Name, record.ReservationDate)
	}

	// Selecting the tile shows the yacht in the detail panel over the bus.
	c.Results().OnTileSelected(panel.NewTile(record, "").Select())
	detail := c.Detail()
	if err := detail.OpenForm(); err != nil {
		return err
	}

	name, email := guestName, guestEmail
	if g := c.Registry().Guest; g != nil {
		if name == "" {
			name = g.Name
		}
		if email == "" {
			email = g.Email
		}
	}
	detail.SetGuestName(name)
	detail.SetGuestEmail(email)

	shown, _ := detail.Yacht()
	summary := []ui.Param{
		{Key: "Yacht", Value: fmt.Sprintf("%s (%s)", shown.Name, shown.ID)},
		{Key: "Date", Value: shown.ReservationDate},
		{Key: "Price", Value: ui.FormatPrice(shown.Price)},
		{Key: "Guest", Value: fmt.Sprintf("%s <%s>", name, email)},
	}

	if outputFormat == formatJSON {
		err := detail.Submit(ctx)
		b := detail.Banner()
		out := reservationJSON{
			YachtID:         shown.ID,
			YachtName:       shown.Name,
			ReservationDate: shown.ReservationDate,
			Outcome:         b.Kind.String(),
			Message:         b.Message,
		}
		if err != nil && !b.Visible() {
			out.Outcome, out.Message = "invalid", err.Error()
		}
		if perr := p.PrintJSON(out); perr != nil {
			return perr
		}
		return err
	}

	if !assumeYes && !p.Confirm(cmd.InOrStdin(), "Reservation", summary, "Send this reservation?") {
		return nil
	}

	runner := ui.NewRunner(p, ui.RunnerConfig{
		Title:    "Reservation",
		Command:  "charterdesk reserve " + yachtID,
		Params:   summary,
		Wait:     "Submitting reservation",
		WaitHint: "up to " + c.Client().HTTPClient.Timeout.String(),
	}, failureHints)

	return runner.Run(ctx, func(ctx context.Context) ([]ui.Param, error) {
		if err := detail.Submit(ctx); err != nil {
			return nil, err
		}
		return []ui.Param{{Key: "Confirmation", Value: detail.Banner().Message}}, nil
	})
}

// discoverCmd browses the local network for backends
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find reservation services on the local network",
	Long: `Browse for reservation services advertised over mDNS/DNS-SD.

Every service found is remembered in the config file. With --save and
exactly one result, it also becomes the configured backend.`,
	Example: `  # Browse for 5 seconds
  charterdesk discover

  # Longer browse and use the result
  charterdesk discover --timeout 15 --save`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 0, "Browse timeout in seconds (default from config)")
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "Use the discovered service as the backend")
}

// endpointJSON is the --format json output of discover
type endpointJSON struct {
	Instance string            `json:"instance"`
	URL      string            `json:"url"`
	Hostname string            `json:"hostname"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// scanBackends browses the local network; replaced in tests.
var scanBackends = func(ctx context.Context, timeout time.Duration) ([]*discovery.Endpoint, error) {
	scanner := discovery.NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan(ctx)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	timeout := reg.DiscoverTimeout()
	if discoverTimeout > 0 {
		timeout = time.Duration(discoverTimeout) * time.Second
	}

	if outputFormat == formatTable {
		p.PrintHeader("Discover", "charterdesk discover", ui.Param{Key: "Timeout", Value: timeout.String()})
		p.PrintPleaseWait("Browsing for reservation services", "up to "+timeout.String())
		p.Newline()
	}

	endpoints, err := scanBackends(cmd.Context(), timeout)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	now := time.Now()
	for _, ep := range endpoints {
		reg.RememberBackend(ep.BaseURL(), ep.Instance, now)
	}
	if discoverSave {
		switch len(endpoints) {
		case 0:
		case 1:
			if err := reg.SetBackendURL(endpoints[0].BaseURL()); err != nil {
				return err
			}
		default:
			return fmt.Errorf("found %d services; use 'charterdesk config set-backend <url>' to pick one", len(endpoints))
		}
	}
	if len(endpoints) > 0 {
		if err := reg.Save(); err != nil {
			return err
		}
	}

	if outputFormat == formatJSON {
		out := make([]endpointJSON, 0, len(endpoints))
		for _, ep := range endpoints {
			out = append(out, endpointJSON{Instance: ep.Instance, URL: ep.BaseURL(), Hostname: ep.Hostname, Metadata: ep.Metadata})
		}
		return p.PrintJSON(out)
	}

	if len(endpoints) == 0 {
		p.PrintError("No reservation services found", nil, []string{
			"Check that the reservation service is running and advertising over mDNS",
			"Make sure you are on the same network segment",
			"Try increasing --timeout for slower networks",
			"Use --backend or 'charterdesk config set-backend' to set the URL manually",
		})
		return nil
	}

	rows := make([][]string, 0, len(endpoints))
	for _, ep := range endpoints {
		rows = append(rows, []string{ep.Instance, ep.BaseURL(), ep.GetMetadata("version")})
	}
	p.PrintTable([]string{"Service", "URL", "Version"}, rows)
	if discoverSave {
		p.PrintSuccess("Backend saved", ui.Param{Key: "URL", Value: endpoints[0].BaseURL()})
	}
	return nil
}
