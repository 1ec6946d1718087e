// Package main provides the CLI entrypoint for cubik.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hexahedra/cubik/internal/config"
	"github.com/hexahedra/cubik/internal/importer"
	"github.com/hexahedra/cubik/internal/model"
	"github.com/hexahedra/cubik/internal/scramble"
	"github.com/hexahedra/cubik/internal/stats"
	"github.com/hexahedra/cubik/internal/statsui"
	"github.com/hexahedra/cubik/internal/store"
	"github.com/hexahedra/cubik/internal/storage"
	"github.com/hexahedra/cubik/internal/tui"
)

const (
	defaultPuzzle      = model.DefaultPuzzle
	defaultTrendWindow = 12
)

var (
	timerPuzzle        string
	timerInspection    bool
	timerScrambleMoves int

	statsSession string
	statsLast    int
	statsWindow  int
	statsPlain   bool

	importSession string

	scrambleCount int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cubik",
		Short:         "TUI speedcubing timer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTimerCmd,
	}

	rootCmd.Flags().StringVar(&timerPuzzle, "puzzle", defaultPuzzle, "puzzle type (222, 333, 444)")
	rootCmd.Flags().BoolVar(&timerInspection, "inspection", false, "enable 15s WCA inspection")
	rootCmd.Flags().IntVar(&timerScrambleMoves, "scramble-moves", 0, "scramble length (0 = puzzle default)")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newScrambleCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runTimerCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "puzzle", &timerPuzzle, fileCfg.Timer.Puzzle)
	applyBoolConfig(cmd, "inspection", &timerInspection, fileCfg.Timer.Inspection)
	applyIntConfig(cmd, "scramble-moves", &timerScrambleMoves, fileCfg.Timer.ScrambleMoves)

	cfg := model.Config{
		Puzzle:        timerPuzzle,
		Inspection:    timerInspection,
		ScrambleMoves: timerScrambleMoves,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	nav := scramble.NewNavigator(scramble.New(), cfg.Puzzle, cfg.ScrambleMoves)
	timerModel := tui.NewModel(cfg, st, nav)
	program := tea.NewProgram(timerModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show solve stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSession, "session", "", "session name (default: active session)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N solves")
	cmd.Flags().IntVar(&statsWindow, "window", defaultTrendWindow, "moving average window for the trend")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print to stdout instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	cfg := model.StatsConfig{
		Session: statsSession,
		Last:    statsLast,
		Window:  statsWindow,
		Plain:   statsPlain,
	}
	if cfg.Plain {
		return printStats(cmd, st, cfg)
	}
	statsModel := statsui.NewModel(st, cfg)
	program := tea.NewProgram(statsModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(cmd *cobra.Command, st *store.Store, cfg model.StatsConfig) error {
	sess, ok := findSession(st, cfg.Session)
	if !ok {
		return fmt.Errorf("session %q not found", cfg.Session)
	}
	report := stats.BuildReport(sess, cfg)
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderHistory(out, report.Solves); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTrend(out, sess.Solves, cfg.Window, 0, 0); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage sessions",
		RunE:  runSessionsListCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "new <name>",
		Short: "Create a session",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsNewCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "switch <name>",
		Short: "Make a session active",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsSwitchCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a session",
		Args:  cobra.ExactArgs(2),
		RunE:  runSessionsRenameCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a session and its solves",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsDeleteCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every solve in the active session",
		Args:  cobra.NoArgs,
		RunE:  runSessionsClearCmd,
	})
	return cmd
}

func runSessionsListCmd(cmd *cobra.Command, _ []string) error {
	st, closeStore, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	for _, sess := range st.Sessions() {
		marker := " "
		if sess.Active {
			marker = "*"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d solves)\n", marker, sess.Name, len(sess.Solves)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runSessionsNewCmd(cmd *cobra.Command, args []string) error {
	return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
		name := args[0]
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("session name must not be empty")
		}
		return st.CreateSession(ctx, name)
	})
}

func runSessionsSwitchCmd(cmd *cobra.Command, args []string) error {
	return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
		sess, ok := findSession(st, args[0])
		if !ok {
			return fmt.Errorf("session %q not found", args[0])
		}
		return st.SwitchSession(ctx, sess.ID)
	})
}

func runSessionsRenameCmd(cmd *cobra.Command, args []string) error {
	return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
		sess, ok := findSession(st, args[0])
		if !ok {
			return fmt.Errorf("session %q not found", args[0])
		}
		return st.RenameSession(ctx, sess.ID, args[1])
	})
}

func runSessionsDeleteCmd(cmd *cobra.Command, args []string) error {
	return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
		sess, ok := findSession(st, args[0])
		if !ok {
			return fmt.Errorf("session %q not found", args[0])
		}
		return st.DeleteSession(ctx, sess.ID)
	})
}

func runSessionsClearCmd(cmd *cobra.Command, _ []string) error {
	return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
		return st.ClearActiveSession(ctx)
	})
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import solve times from a text or JSON export",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importSession, "session", "", "target session name (default: active session)")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	times, err := importer.LoadTimes(args[0])
	if err != nil {
		return fmt.Errorf("failed to load export: %w", err)
	}
	return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
		if importSession != "" {
			sess, ok := findSession(st, importSession)
			if !ok {
				return fmt.Errorf("session %q not found", importSession)
			}
			if err := st.SwitchSession(ctx, sess.ID); err != nil {
				return err
			}
		}
		if err := st.ImportTimes(ctx, times); err != nil {
			return err
		}
		logErrf("Imported %d solves\n", len(times))
		return nil
	})
}

func newScrambleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scramble",
		Short: "Print scrambles",
		RunE:  runScrambleCmd,
	}
	cmd.Flags().StringVar(&timerPuzzle, "puzzle", defaultPuzzle, "puzzle type (222, 333, 444)")
	cmd.Flags().IntVar(&scrambleCount, "count", 1, "number of scrambles")
	return cmd
}

func runScrambleCmd(cmd *cobra.Command, _ []string) error {
	if scrambleCount <= 0 {
		return fmt.Errorf("--count must be greater than 0")
	}
	gen := scramble.New()
	for i := 0; i < scrambleCount; i++ {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), gen.Generate(timerPuzzle, 0)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
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
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func openStore(ctx context.Context) (*store.Store, func(), error) {
	medium, err := storage.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	st, err := store.Open(ctx, medium)
	if err != nil {
		if cerr := medium.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
		return nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}
	closeStore := func() {
		if cerr := medium.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return st, closeStore, nil
}

func withStore(ctx context.Context, fn func(context.Context, *store.Store) error) error {
	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(ctx, st)
}

func findSession(st *store.Store, name string) (model.Session, bool) {
	if name == "" {
		return st.ActiveSession()
	}
	for _, sess := range st.Sessions() {
		if sess.Name == name {
			return sess, true
		}
	}
	return model.Session{}, false
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# cubik configuration
# Uncomment a value to enable it. CLI flags override config values.

[timer]
# puzzle = %q           # Puzzle type: 222, 333, 444
# inspection = false    # 15s WCA inspection before each solve
# scramble-moves = 0    # Scramble length (0 = puzzle default)
`,
		defaultPuzzle,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Puzzle == "" {
		return fmt.Errorf("--puzzle must not be empty")
	}
	if cfg.ScrambleMoves < 0 {
		return fmt.Errorf("--scramble-moves must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
