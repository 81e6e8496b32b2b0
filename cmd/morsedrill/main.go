// Package main provides the CLI entrypoint for morsedrill.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/verte-zerg/morsedrill/internal/config"
	"github.com/verte-zerg/morsedrill/internal/drill"
	"github.com/verte-zerg/morsedrill/internal/model"
	"github.com/verte-zerg/morsedrill/internal/morse"
	"github.com/verte-zerg/morsedrill/internal/stats"
	"github.com/verte-zerg/morsedrill/internal/store"
	"github.com/verte-zerg/morsedrill/internal/tui"
)

const (
	defaultCourse      = "koch"
	defaultTimelyMs    = 500
	defaultCurveWindow = 20
	defaultWeakTop     = 5
)

var (
	verbose bool
	logger  = zap.NewNop()

	drillCourse        string
	drillAlphabet      string
	drillMastery       int
	drillMinTries      int
	drillMaxWeak       int
	drillEntireSet     bool
	drillEmphasizeWeak bool
	drillTimelyMs      int
	drillSeed          int64

	statsCourse      string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsWeakTop     int

	resetCourse string
	resetAll    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "morsedrill",
		Short:             "Adaptive Morse code symbol trainer",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: initLogger,
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync()
		},
		RunE: runDrillCmd,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().StringVar(&drillCourse, "course", defaultCourse, "course name (see: morsedrill courses)")
	rootCmd.Flags().StringVar(&drillAlphabet, "alphabet", "", "custom curriculum order, overrides the course order")
	rootCmd.Flags().IntVar(&drillMastery, "mastery", drill.DefaultMastery, "accuracy percentage a symbol must exceed to count as learned")
	rootCmd.Flags().IntVar(&drillMinTries, "min-tries", drill.DefaultMinTries, "tries a symbol needs before it can count as learned")
	rootCmd.Flags().IntVar(&drillMaxWeak, "max-weak", drill.DefaultMaxWeak, "weak symbols drilled at once before new ones unlock")
	rootCmd.Flags().BoolVar(&drillEntireSet, "entire-set", false, "drill the whole unlocked set instead of introducing new symbols one by one")
	rootCmd.Flags().BoolVar(&drillEmphasizeWeak, "emphasize-weak", false, "push selection harder toward weak symbols")
	rootCmd.Flags().IntVar(&drillTimelyMs, "timely-ms", defaultTimelyMs, "response time limit in milliseconds")
	rootCmd.Flags().Int64Var(&drillSeed, "seed", 0, "random seed (0 = time based)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCoursesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

// initLogger writes structured logs to a file so they stay out of the TUI.
func initLogger(_ *cobra.Command, _ []string) error {
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = built
	return nil
}

func runDrillCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, "course", &drillCourse, fileCfg.Drill.Course)
	applyConfig(cmd, "alphabet", &drillAlphabet, fileCfg.Drill.Alphabet)
	applyConfig(cmd, "mastery", &drillMastery, fileCfg.Drill.Mastery)
	applyConfig(cmd, "min-tries", &drillMinTries, fileCfg.Drill.MinTries)
	applyConfig(cmd, "max-weak", &drillMaxWeak, fileCfg.Drill.MaxWeak)
	applyConfig(cmd, "entire-set", &drillEntireSet, fileCfg.Drill.EntireSet)
	applyConfig(cmd, "emphasize-weak", &drillEmphasizeWeak, fileCfg.Drill.EmphasizeWeak)
	applyConfig(cmd, "timely-ms", &drillTimelyMs, fileCfg.Drill.TimelyMs)
	applyConfig(cmd, "seed", &drillSeed, fileCfg.Drill.Seed)

	cfg := model.Config{
		Course:        strings.ToLower(strings.TrimSpace(drillCourse)),
		Alphabet:      drillAlphabet,
		Mastery:       drillMastery,
		MinTries:      drillMinTries,
		MaxWeak:       drillMaxWeak,
		EntireSet:     drillEntireSet,
		EmphasizeWeak: drillEmphasizeWeak,
		TimelyMs:      drillTimelyMs,
		Seed:          drillSeed,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	alphabet, err := resolveAlphabet(cfg)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("drill needs an interactive terminal")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	reg, err := st.LoadRegistry(context.Background(), cfg.Course)
	if err != nil {
		return err
	}

	var opts []drill.Option
	if cfg.Seed != 0 {
		opts = append(opts, drill.WithSeed(cfg.Seed))
	}
	logger.Info("starting drill",
		zap.String("course", cfg.Course),
		zap.String("alphabet", alphabet.String()),
		zap.Int("mastery", cfg.Mastery),
		zap.Int("min_tries", cfg.MinTries),
		zap.Int("max_weak", cfg.MaxWeak))
	m, err := tui.NewModel(cfg, alphabet, st, reg, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to start drill: %w", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func resolveAlphabet(cfg model.Config) (drill.Alphabet, error) {
	order := cfg.Alphabet
	if order == "" {
		courseOrder, ok := morse.Course(cfg.Course)
		if !ok {
			return drill.Alphabet{}, fmt.Errorf("unknown course %q (available: %s); use --alphabet for a custom one",
				cfg.Course, strings.Join(morse.Courses(), ", "))
		}
		order = courseOrder
	}
	alphabet, err := drill.NewAlphabet(order)
	if err != nil {
		return drill.Alphabet{}, fmt.Errorf("invalid alphabet: %w", err)
	}
	if missing := morse.Validate(alphabet); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, sym := range missing {
			names[i] = sym.String()
		}
		return drill.Alphabet{}, fmt.Errorf("no Morse code for %s", strings.Join(names, " "))
	}
	return alphabet, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		logger.Info("config created", zap.String("path", path))
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List built-in courses and their symbols",
		Args:  cobra.NoArgs,
		RunE:  runCoursesCmd,
	}
}

func runCoursesCmd(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	for _, name := range morse.Courses() {
		order, _ := morse.Course(name)
		if _, err := fmt.Fprintf(out, "%-8s %s\n", name, order); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsCourse, "course", defaultCourse, "course filter (empty for all sessions)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsWeakTop, "weak-top", defaultWeakTop, "number of weakest symbols to list")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	cfg := model.StatsConfig{
		Course:      statsCourse,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, cfg, statsWeakTop)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Sessions); err != nil {
		return err
	}
	if err := stats.RenderCurves(out, report.Sessions, cfg.CurveWindow, outputWidth()); err != nil {
		return err
	}
	if order, ok := morse.Course(cfg.Course); ok {
		if err := stats.RenderTotals(out, order, report.Totals, drill.DefaultMastery, drill.DefaultMinTries); err != nil {
			return err
		}
	}
	if err := stats.RenderSymbolTable(out, report.SymbolAggsWindow); err != nil {
		return err
	}
	if len(report.Weakest) > 0 {
		if _, err := fmt.Fprintf(out, "Weakest: %s\n", strings.Join(report.Weakest, " ")); err != nil {
			return err
		}
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear symbol statistics (session history is kept)",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().StringVar(&resetCourse, "course", defaultCourse, "course to reset")
	cmd.Flags().BoolVar(&resetAll, "all", false, "reset every course")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	course := strings.ToLower(strings.TrimSpace(resetCourse))
	if resetAll {
		course = ""
	} else if course == "" {
		return fmt.Errorf("--course must not be empty (use --all to reset everything)")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	n, err := st.ResetTotals(context.Background(), course)
	if err != nil {
		return fmt.Errorf("failed to reset statistics: %w", err)
	}
	logger.Info("statistics reset", zap.String("course", course), zap.Int64("symbols", n))
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d symbol records\n", n); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func outputWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 60
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 60
	}
	return width
}

func applyConfig[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# morsedrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[drill]
# course = %q          # Built-in course (see: morsedrill courses)
# alphabet = ""            # Custom curriculum order, overrides the course
# mastery = %d             # Accuracy percentage a symbol must exceed
# min-tries = %d            # Tries before a symbol can count as learned
# max-weak = %d             # Weak symbols drilled at once
# entire-set = false       # Drill the whole unlocked set
# emphasize-weak = false   # Push selection harder toward weak symbols
# timely-ms = %d          # Response time limit in milliseconds
# seed = 0                 # Random seed (0 = time based)
`,
		defaultCourse,
		drill.DefaultMastery,
		drill.DefaultMinTries,
		drill.DefaultMaxWeak,
		defaultTimelyMs,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Course == "" {
		return fmt.Errorf("--course must not be empty")
	}
	if cfg.Mastery < 0 || cfg.Mastery > 100 {
		return fmt.Errorf("--mastery must be between 0 and 100")
	}
	if cfg.MinTries < 0 {
		return fmt.Errorf("--min-tries must be >= 0")
	}
	if cfg.MaxWeak <= 0 {
		return fmt.Errorf("--max-weak must be > 0")
	}
	if cfg.TimelyMs <= 0 {
		return fmt.Errorf("--timely-ms must be > 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
