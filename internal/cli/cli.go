package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/pfrederiksen/o365-builds/internal/build"
	"github.com/pfrederiksen/o365-builds/internal/config"
	"github.com/pfrederiksen/o365-builds/internal/logger"
	"github.com/pfrederiksen/o365-builds/internal/scraper"
	"github.com/pfrederiksen/o365-builds/internal/sqlgen"
	"github.com/pfrederiksen/o365-builds/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig   string
	flagLogLevel string
	flagVerbose  bool
	flagQuiet    bool

	flagChannel string
	flagInput   string
	flagOutput  string
	flagFormat  string
	flagSort    string

	flagColumn                string
	flagAlias                 string
	flagTableName             string
	flagDontDropTable         bool
	flagDeleteExistingRecords bool
	flagEscape                bool

	// cfg is loaded once per invocation by the root command.
	cfg *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "o365-builds",
		Short: "Map Office 365 versions to build numbers and render them as SQL",
		Long: `A CLI tool that scrapes the Microsoft 365 Apps update history pages for
version/build pairs and renders them as a SQL CASE expression or a lookup table script.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: reportMetrics,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath, "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging and print run metrics")
	cmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "Do not show a progress spinner")

	cmd.AddCommand(newFetchCmd(), newCaseCmd(), newTableCmd(), newChannelsCmd())

	return cmd
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Scrape a channel and print its version/build records",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}
	addChannelFlag(cmd)
	cmd.Flags().StringVar(&flagFormat, "format", string(FormatText), "Output format: text, json or csv")
	cmd.Flags().StringVar(&flagSort, "sort", string(SortByVersion), "Sort order: version or newest")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write output to file instead of stdout")
	return cmd
}

func newCaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Render a SQL CASE expression mapping versions to builds",
		Args:  cobra.NoArgs,
		RunE:  runCase,
	}
	addChannelFlag(cmd)
	addInputFlags(cmd)
	cmd.Flags().StringVar(&flagColumn, "column", "", "Report column holding the version (default from config)")
	cmd.Flags().StringVar(&flagAlias, "alias", "", "Alias of the CASE result (default from config)")
	return cmd
}

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Render a SQL script that creates and fills the version/build table",
		Args:  cobra.NoArgs,
		RunE:  runTable,
	}
	addChannelFlag(cmd)
	addInputFlags(cmd)
	cmd.Flags().StringVar(&flagTableName, "table-name", "", "Table name (default from config)")
	cmd.Flags().BoolVar(&flagDontDropTable, "dont-drop-table", false, "Omit the DROP TABLE statement")
	cmd.Flags().BoolVar(&flagDeleteExistingRecords, "delete-existing-records", false, "Delete existing rows before inserting")
	return cmd
}

func newChannelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List the accepted channels and the pages they resolve to",
		Args:  cobra.NoArgs,
		RunE:  runChannels,
	}
}

func addChannelFlag(cmd *cobra.Command) {
	names := make([]string, 0, len(scraper.Channels()))
	for _, c := range scraper.Channels() {
		names = append(names, string(c))
	}
	cmd.Flags().StringVar(&flagChannel, "channel", string(scraper.DefaultChannel),
		"Update channel: "+strings.Join(names, ", "))
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagInput, "input", "i", "", "Read records from a JSON file written by fetch instead of scraping")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write SQL to file instead of stdout")
	cmd.Flags().BoolVar(&flagEscape, "escape", false, "Double single quotes in interpolated values")
}

// setup loads the configuration and installs the default logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded

	levelName := cfg.LogLevel
	if flagLogLevel != "" {
		levelName = flagLogLevel
	}
	if flagVerbose {
		levelName = string(logger.LevelDebug)
	}
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	return nil
}

func reportMetrics(cmd *cobra.Command, args []string) {
	if flagVerbose {
		logger.Info("run metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})
	}
}

// newScraper builds a scraper from the loaded configuration.
func newScraper() (*scraper.Scraper, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return scraper.New(
		scraper.WithTimeout(timeout),
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithVersionPrefix(cfg.VersionPrefix),
		scraper.WithParseMode(scraper.ParseMode(cfg.Parser)),
		scraper.WithChannelURLs(cfg.Channels),
	), nil
}

// fetchRecords scrapes flagChannel. Unknown channels are passed through and yield no records.
func fetchRecords(cmd *cobra.Command) ([]build.Record, error) {
	sc, err := newScraper()
	if err != nil {
		return nil, err
	}

	channel := scraper.Channel(flagChannel)
	logger.Debug("fetching channel", logger.Fields{"channel": flagChannel})

	stop := startSpinner(cmd.ErrOrStderr(), fmt.Sprintf(" Fetching %s release notes...", channel))
	start := time.Now()
	records := sc.FetchBuildRecords(channel)
	stop()

	logger.Debug("fetched records", logger.Fields{
		"channel":  flagChannel,
		"records":  len(records),
		"duration": time.Since(start).String(),
	})
	return records, nil
}

// loadRecords returns the records of --input when set, otherwise scrapes --channel.
func loadRecords(cmd *cobra.Command) ([]build.Record, error) {
	if flagInput == "" {
		return fetchRecords(cmd)
	}

	snapshot, err := storage.Load(flagInput)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	if snapshot.Count == 0 {
		logger.Warn("input contains no records", logger.Fields{"path": flagInput})
	}
	logger.Debug("loaded records", logger.Fields{"path": flagInput, "records": snapshot.Count})
	return snapshot.Records, nil
}

// startSpinner shows a spinner on w when it is a terminal. The returned func stops it.
func startSpinner(w io.Writer, suffix string) func() {
	f, ok := w.(*os.File)
	if flagQuiet || !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(f))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}

// withOutput runs write against --output or the command's stdout.
func withOutput(cmd *cobra.Command, write func(io.Writer) error) error {
	if flagOutput == "" {
		return write(cmd.OutOrStdout())
	}

	path, err := storage.ExpandPath(flagOutput)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}
	return f.Close()
}

func runFetch(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if !format.Valid() {
		return fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'csv')", flagFormat)
	}
	order := SortOrder(strings.ToLower(flagSort))
	if !order.Valid() {
		return fmt.Errorf("invalid sort: %s (must be 'version' or 'newest')", flagSort)
	}

	records, err := fetchRecords(cmd)
	if err != nil {
		return fmt.Errorf("fetching records: %w", err)
	}
	records = sortRecords(records, order)

	if format == FormatJSON && flagOutput != "" {
		if err := storage.Save(flagOutput, storage.NewSnapshot(flagChannel, records)); err != nil {
			return fmt.Errorf("saving records: %w", err)
		}
		return nil
	}

	return withOutput(cmd, func(w io.Writer) error {
		if err := WriteRecords(w, records, format, flagChannel); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	})
}

func runCase(cmd *cobra.Command, args []string) error {
	records, err := loadRecords(cmd)
	if err != nil {
		return err
	}

	opts := sqlgen.CaseOptions{
		Column: firstNonEmpty(flagColumn, cfg.SQL.Column),
		Alias:  firstNonEmpty(flagAlias, cfg.SQL.Alias),
		Escape: flagEscape || cfg.SQL.Escape,
	}

	return withOutput(cmd, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, sqlgen.CaseExpression(records, opts))
		return err
	})
}

func runTable(cmd *cobra.Command, args []string) error {
	records, err := loadRecords(cmd)
	if err != nil {
		return err
	}

	opts := sqlgen.TableOptions{
		TableName:             firstNonEmpty(flagTableName, cfg.SQL.TableName),
		DontDropTable:         flagDontDropTable,
		DeleteExistingRecords: flagDeleteExistingRecords,
		Escape:                flagEscape || cfg.SQL.Escape,
	}

	return withOutput(cmd, func(w io.Writer) error {
		_, err := io.WriteString(w, sqlgen.TableScript(records, opts))
		return err
	})
}

func runChannels(cmd *cobra.Command, args []string) error {
	sc, err := newScraper()
	if err != nil {
		return err
	}
	return WriteChannels(cmd.OutOrStdout(), sc)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		logger.Error("command failed", nil, err)
		os.Exit(ExitError)
	}
}
