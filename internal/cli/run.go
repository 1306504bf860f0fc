package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/notetasks/internal/cache"
	"github.com/ppiankov/notetasks/internal/caldav"
	"github.com/ppiankov/notetasks/internal/dates"
	"github.com/ppiankov/notetasks/internal/llm"
	"github.com/ppiankov/notetasks/internal/model"
	"github.com/ppiankov/notetasks/internal/notes"
	"github.com/ppiankov/notetasks/internal/pipeline"
	"github.com/ppiankov/notetasks/internal/worker"
)

var (
	runDate       string
	runInput      string
	runExclude    []string
	runModel      string
	runServer     string
	runProvider   string
	runAPIKey     string
	runCalDAVURL  string
	runCalDAVUser string
	runCalDAVPass string
	runTodoList   string
	runNoDupCheck bool
	runDelay      float64
	runWorkers    int
	runNoCache    bool
	runDryRun     bool
	runTimeout    time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract tasks from one day's notes and add them to the todo list",
	Long: `Run finds the notes modified, created, or dated on the target day
(yesterday by default), sends each to the language model for task
extraction, resolves date phrases against the note's modification time,
and adds the tasks to the CalDAV todo list.

Example:
  notetasks run
  notetasks run --date 2024-01-10 --provider openai --model gpt-4o-mini
  notetasks run --date "last friday" --dry-run --debug`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVar(&runDate, "date", "", "day to process: YYYY-MM-DD or a phrase such as \"last friday\" (default: yesterday)")
	f.StringVar(&runInput, "input", "", "notes folder")
	f.StringArrayVar(&runExclude, "exclude", nil, "folder to skip (repeatable)")

	f.StringVar(&runProvider, "provider", "", "LLM provider (ollama, openai, anthropic)")
	f.StringVar(&runModel, "model", "", "LLM model name")
	f.StringVar(&runServer, "server", "", "LLM server address (Ollama base URL)")
	f.StringVar(&runAPIKey, "api-key", "", "LLM API key (overrides OPENAI_API_KEY / ANTHROPIC_API_KEY)")
	f.Float64Var(&runDelay, "delay", 0, "seconds to wait between LLM calls")
	f.BoolVar(&runNoCache, "no-cache", false, "disable the LLM response cache")

	f.StringVar(&runCalDAVURL, "caldav-url", "", "CalDAV server URL")
	f.StringVar(&runCalDAVUser, "caldav-user", "", "CalDAV username")
	f.StringVar(&runCalDAVPass, "caldav-pass", "", "CalDAV password")
	f.StringVar(&runTodoList, "todo-list", "", "name of the todo list")
	f.BoolVar(&runNoDupCheck, "no-duplicate-check", false, "do not skip tasks already on the list")

	f.IntVar(&runWorkers, "workers", 0, "number of notes processed concurrently")
	f.BoolVar(&runDryRun, "dry-run", false, "extract and resolve tasks without writing to CalDAV")
	f.DurationVar(&runTimeout, "timeout", 0, "overall run timeout (0 = none)")
}

// applyRunFlags overrides config values with explicitly set flags
func applyRunFlags(cmd *cobra.Command, cfg *model.Config) {
	f := cmd.Flags()
	if f.Changed("input") {
		cfg.Notes.InputFolder = runInput
	}
	if f.Changed("exclude") {
		cfg.Notes.ExcludeFolders = runExclude
	}
	if f.Changed("provider") {
		cfg.LLM.Provider = runProvider
		applyProviderEnv(cfg)
	}
	if f.Changed("model") {
		cfg.LLM.Model = runModel
	}
	if f.Changed("server") {
		cfg.LLM.BaseURL = runServer
	}
	if f.Changed("api-key") {
		cfg.LLM.APIKey = runAPIKey
	}
	if f.Changed("delay") {
		cfg.LLM.Delay = runDelay
	}
	if f.Changed("no-cache") {
		cfg.Cache.Enabled = !runNoCache
	}
	if f.Changed("caldav-url") {
		cfg.CalDAV.URL = runCalDAVURL
	}
	if f.Changed("caldav-user") {
		cfg.CalDAV.Username = runCalDAVUser
	}
	if f.Changed("caldav-pass") {
		cfg.CalDAV.Password = runCalDAVPass
	}
	if f.Changed("todo-list") {
		cfg.CalDAV.TodoList = runTodoList
	}
	if f.Changed("no-duplicate-check") {
		cfg.CalDAV.CheckExisting = !runNoDupCheck
	}
	if f.Changed("workers") {
		cfg.Concurrency.Workers = runWorkers
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if used := viper.ConfigFileUsed(); used != "" {
		logger.Infof("Using config file: %s", used)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runTimeout)
		defer cancel()
	}

	parser := dates.NewDateParser()
	target, err := targetDate(runDate, time.Now(), parser)
	if err != nil {
		return err
	}
	start, end := dayWindow(target)

	prompt, err := llm.LoadPrompt(model.ExpandHome(cfg.LLM.PromptFile))
	if err != nil {
		return err
	}

	llmCfg := llm.ConfigFromModel(cfg.LLM)
	printRunBanner(cfg, llmCfg, target)

	paths, err := notes.Discover(notes.DiscoverOptions{
		Root:       model.ExpandHome(cfg.Notes.InputFolder),
		Exclude:    expandAll(cfg.Notes.ExcludeFolders),
		Extension:  cfg.Notes.Extension,
		Start:      start,
		End:        end,
		DateParser: parser,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("discover notes: %w", err)
	}
	if len(paths) == 0 {
		logger.Info("No files found to process")
		return nil
	}
	logger.Infof("Found %d files to process", len(paths))

	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		return err
	}
	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	if err := provider.Ping(pingCtx); err != nil {
		logger.Warnw("LLM provider check failed, continuing", "provider", provider.Name(), "error", err)
	}
	cancelPing()

	extractor := llm.NewExtractor(provider, prompt, buildExtractorOptions(cfg, llmCfg, logger)...)

	list, err := openTodoList(ctx, cfg, logger)
	if err != nil {
		return err
	}

	p := pipeline.New(extractor, dates.NewResolver(parser), list, logger, pipelineOptions(cfg))
	summary := p.Run(ctx, paths)

	printRunSummary(summary, runDryRun)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	return nil
}

// pipelineOptions maps config to pipeline options. A dry run lists an empty
// in-memory list, so duplicates are still caught within the run.
func pipelineOptions(cfg *model.Config) pipeline.Options {
	return pipeline.Options{
		CheckExisting: cfg.CalDAV.CheckExisting,
		Workers:       cfg.Concurrency.Workers,
	}
}

func buildExtractorOptions(cfg *model.Config, llmCfg llm.Config, logger *zap.SugaredLogger) []llm.ExtractorOption {
	opts := []llm.ExtractorOption{
		llm.WithLogger(logger),
		llm.WithModel(llmCfg.Model, llmCfg.MaxTokens),
		llm.WithPacer(worker.NewLimiterFromSeconds(cfg.LLM.Delay)),
	}
	if cfg.Cache.Enabled {
		memTTL := time.Duration(cfg.Cache.MemoryTTLMinutes) * time.Minute
		diskTTL := time.Duration(cfg.Cache.DiskTTLHours) * time.Hour
		c := cache.NewLayeredCache(memTTL, model.ExpandHome(cfg.Cache.Dir), diskTTL)
		// zero ttl lets each layer apply its own expiry
		opts = append(opts, llm.WithCache(c, 0))
	}
	return opts
}

// openTodoList connects to CalDAV, or returns an in-memory list for dry runs
func openTodoList(ctx context.Context, cfg *model.Config, logger *zap.SugaredLogger) (caldav.TodoList, error) {
	if runDryRun {
		logger.Info("Dry run: tasks will not be written to CalDAV")
		return caldav.NewMemoryList("dry-run"), nil
	}
	list, err := caldav.Connect(ctx, caldav.ConfigFromModel(cfg.CalDAV), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}
	return list, nil
}

// targetDate interprets --date. Empty means yesterday.
func targetDate(value string, now time.Time, parser dates.FallbackParser) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if value == "" {
		return today.AddDate(0, 0, -1), nil
	}

	if t, err := time.ParseInLocation("2006-01-02", value, now.Location()); err == nil {
		return t, nil
	}

	if parser != nil {
		if t, ok := parser.Parse(value, now, false); ok {
			t = t.In(now.Location())
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --date %q: use YYYY-MM-DD or a date phrase", value)
}

// dayWindow spans the whole calendar day of t
func dayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

func expandAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, model.ExpandHome(p))
	}
	return out
}

func printRunBanner(cfg *model.Config, llmCfg llm.Config, target time.Time) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  notetasks run\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Date:         %s\n", target.Format("2006-01-02 (Monday)"))
	fmt.Fprintf(os.Stderr, "  Notes:        %s\n", model.ExpandHome(cfg.Notes.InputFolder))
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", llmCfg.Provider, llmCfg.Model)
	if runDryRun {
		fmt.Fprintf(os.Stderr, "  Todo list:    (dry run)\n")
	} else {
		fmt.Fprintf(os.Stderr, "  Todo list:    %s @ %s\n", cfg.CalDAV.TodoList, cfg.CalDAV.URL)
	}
	fmt.Fprintf(os.Stderr, "  Dedup:        %v\n", cfg.CalDAV.CheckExisting)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")
}

func printRunSummary(s model.Summary, dryRun bool) {
	verb := "added"
	if dryRun {
		verb = "found (dry run)"
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Run Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Files processed:   %d\n", s.FilesProcessed)
	fmt.Fprintf(os.Stderr, "  Files with errors: %d\n", s.FilesWithErrors)
	fmt.Fprintf(os.Stderr, "  Tasks extracted:   %d\n", s.TasksExtracted)
	fmt.Fprintf(os.Stderr, "  Tasks %s: %d\n", verb, s.TasksAdded)
	fmt.Fprintf(os.Stderr, "  Tasks skipped:     %d\n", s.TasksSkipped)
	fmt.Fprintf(os.Stderr, "  Dates unresolved:  %d\n", s.DatesUnresolved)
	fmt.Fprintf(os.Stderr, "\n")

	for _, t := range s.Added {
		line := "  ✓ " + t.Text
		if t.Due != nil {
			line += fmt.Sprintf(" [Due: %s]", t.Due.Format("2006-01-02"))
		}
		if t.DatePhrase != "" {
			line += fmt.Sprintf(" (Phrase: '%s')", t.DatePhrase)
		}
		line += fmt.Sprintf(" (Priority: %s)", t.Priority)
		fmt.Fprintln(os.Stderr, line)
	}
	if len(s.Added) > 0 {
		fmt.Fprintf(os.Stderr, "\n")
	}
}
