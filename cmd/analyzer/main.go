package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
	"github.com/jdgilhuly/go_text_analyzer/pkg/config"
	"github.com/jdgilhuly/go_text_analyzer/pkg/diff"
	"github.com/jdgilhuly/go_text_analyzer/pkg/logging"
	"github.com/jdgilhuly/go_text_analyzer/pkg/prompt"
	"github.com/jdgilhuly/go_text_analyzer/pkg/registry"
	"github.com/jdgilhuly/go_text_analyzer/pkg/report"
	"github.com/jdgilhuly/go_text_analyzer/pkg/result"
	"github.com/jdgilhuly/go_text_analyzer/pkg/runner"
	"github.com/jdgilhuly/go_text_analyzer/pkg/suite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// errAnalysisFailed is returned after an error result has been printed so the
// process exits non-zero.
var errAnalysisFailed = errors.New("analysis failed")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "analyzer",
		Short: "LLM text analyzer",
		Long: `Analyze text with one of four LLM providers (Claude, ChatGPT, Sonar, xAI).

Supported analyses are Sentiment Analysis, Named Entity Recognition and
Text Classification. Use 'analyzer init' to scaffold a config, then
'analyzer run' to analyze a piece of text.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "config.yaml", "Path to config file")

	list := &cobra.Command{
		Use:   "list",
		Short: "List providers, capabilities or prompts",
	}
	list.AddCommand(newListProvidersCmd(), newListCapabilitiesCmd(), newListPromptsCmd())

	root.AddCommand(newRunCmd(), newBatchCmd(), newShowCmd(), newDiffCmd(), list, newValidateCmd(), newInitCmd())
	return root
}

// runtime is everything built from the config file at startup.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *registry.Registry
}

// loadRuntime loads .env and the config, validates it, and builds the logger
// and the provider registry. Any failure is fatal for the command.
func loadRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, &analysis.ConfigError{Err: err}
	}

	reg, err := registry.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, logger: logger, registry: reg}, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if err := config.LoadEnv(cfgPath); err != nil {
		return nil, &analysis.ConfigError{Err: err}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, &analysis.ConfigError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func useColor(cmd *cobra.Command, cfg *config.Config) bool {
	noColor, _ := cmd.Flags().GetBool("no-color")
	return cfg.OutputSettings.Color && !noColor
}

func outputFormat(cmd *cobra.Command, cfg *config.Config) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.OutputSettings.Format
	}
	if format != "text" && format != "json" {
		return "", fmt.Errorf("unknown format %q (want text or json)", format)
	}
	return format, nil
}

// --- run command ---

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze one piece of text",
		Long: `Send text to a provider and print the analysis.

The text comes from --text, --file, or standard input, in that order.
Use --save to write the result to the configured output directory.`,
		Example: `  analyzer run --provider Claude --type "Sentiment Analysis" --text "Tesla Reports Record Q4 Earnings"
  echo "Apple opens a store in Paris" | analyzer run -p ChatGPT -t ner`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}
	cmd.Flags().StringP("provider", "p", "Claude", "Provider: Claude, ChatGPT, Sonar or xAI")
	cmd.Flags().StringP("type", "t", "Sentiment Analysis", "Analysis type (name or sentiment|ner|classification)")
	cmd.Flags().String("text", "", "Text to analyze")
	cmd.Flags().StringP("file", "f", "", "Read the text from a file")
	cmd.Flags().Bool("save", false, "Save the result as JSON")
	cmd.Flags().String("format", "", "Output format: text or json (default from config)")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	providerName, _ := cmd.Flags().GetString("provider")
	typeName, _ := cmd.Flags().GetString("type")

	c, err := analysis.ParseCapability(typeName)
	if err != nil {
		return err
	}
	text, err := readText(cmd)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return registry.ErrEmptyText
	}

	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	if _, ok := rt.registry.Get(providerName); !ok {
		return &analysis.UnknownProviderError{Name: providerName}
	}

	format, err := outputFormat(cmd, rt.cfg)
	if err != nil {
		return err
	}

	r := rt.registry.Analyze(cmd.Context(), providerName, c.String(), text)
	rec := result.NewRecord(displayName(rt.registry, providerName), c, text, r)

	out := cmd.OutOrStdout()
	if format == "json" {
		if err := report.PrintJSON(out, rec); err != nil {
			return err
		}
	} else {
		report.PrintResult(out, rec.Provider, c, r, useColor(cmd, rt.cfg))
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		path := result.DefaultRecordPath(rt.cfg.OutputSettings.Dir, rec)
		if err := rec.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved to %s\n", path)
	}

	if !r.OK() {
		return errAnalysisFailed
	}
	return nil
}

func readText(cmd *cobra.Command) (string, error) {
	if text, _ := cmd.Flags().GetString("text"); text != "" {
		return text, nil
	}
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading text file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading standard input: %w", err)
	}
	return string(data), nil
}

func displayName(reg *registry.Registry, name string) string {
	if a, ok := reg.Get(name); ok {
		return a.Name()
	}
	return name
}

// --- batch command ---

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <suite.yaml|dir>",
		Short: "Analyze every text in a suite file or directory of suites",
		Long: `Run each case of a suite through one provider, one request at a time.

Given a directory, every .yaml suite in it is run in turn.

Cases with expect_dominant are checked against the dominant sentiment label
or category. The command exits non-zero if any case errored or failed.`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}
	cmd.Flags().StringP("provider", "p", "", "Override the suite's provider")
	cmd.Flags().StringP("type", "t", "", "Override the suite's analysis type")
	cmd.Flags().StringSlice("tag", nil, "Only run cases with one of these tags")
	cmd.Flags().Bool("save", false, "Save the run summary as JSON")
	cmd.Flags().StringP("output", "o", "", "Summary output path (implies --save)")
	cmd.Flags().String("format", "", "Output format: text or json (default from config)")
	cmd.Flags().BoolP("verbose", "v", false, "Print per-case details")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	suites, fromDir, err := loadSuites(args[0])
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("output")
	if path != "" && len(suites) > 1 {
		return errors.New("--output needs a single suite file; use --save for a directory")
	}

	providerName, _ := cmd.Flags().GetString("provider")
	typeName, _ := cmd.Flags().GetString("type")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	for i, s := range suites {
		s.Override(providerName, typeName)
		suites[i] = s.FilterByTag(tags)
		if err := suites[i].Validate(); err != nil {
			return fmt.Errorf("invalid suite %q: %w", s.Name, err)
		}
	}

	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	for _, s := range suites {
		if _, ok := rt.registry.Get(s.Provider); !ok {
			return &analysis.UnknownProviderError{Name: s.Provider}
		}
	}
	format, err := outputFormat(cmd, rt.cfg)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	progress := func(index, total int, name string, elapsed time.Duration, err error) {
		mark := "ok"
		if err != nil {
			mark = "FAIL: " + err.Error()
		}
		fmt.Fprintf(stderr, "[%d/%d] %s %s (%s)\n", index+1, total, name, mark, report.FormatDuration(elapsed))
	}

	out := cmd.OutOrStdout()
	color := useColor(cmd, rt.cfg)
	verbose, _ := cmd.Flags().GetBool("verbose")
	save, _ := cmd.Flags().GetBool("save")
	run := runner.New(rt.registry, rt.logger)

	var summaries []*result.RunSummary
	var bad, total int
	for _, s := range suites {
		rr, runErr := run.Run(cmd.Context(), s, progress)
		if rr == nil {
			return runErr
		}
		summary := result.FromRunResult(rr)
		summaries = append(summaries, summary)

		switch {
		case format == "json":
		case verbose:
			report.PrintVerbose(out, summary, color)
		default:
			report.PrintSummaryTable(out, summary, color)
		}

		if save || path != "" {
			dest := path
			if dest == "" {
				dest = result.DefaultPath(rt.cfg.OutputSettings.Dir, s.Name, rr.StartTime)
			}
			if err := summary.Save(dest); err != nil {
				return err
			}
			fmt.Fprintf(stderr, "Saved to %s\n", dest)
		}

		if runErr != nil {
			return runErr
		}
		bad += summary.Stats.FailedCases + summary.Stats.ErroredCases
		total += summary.Stats.TotalCases
	}

	if format == "json" {
		var v any = summaries
		if !fromDir {
			v = summaries[0]
		}
		if err := report.PrintJSON(out, v); err != nil {
			return err
		}
	}

	if bad > 0 {
		return fmt.Errorf("%d of %d cases did not pass", bad, total)
	}
	return nil
}

// loadSuites reads one suite file, or every suite in a directory.
func loadSuites(path string) ([]*suite.Suite, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading suite: %w", err)
	}
	if !info.IsDir() {
		s, err := suite.Load(path)
		if err != nil {
			return nil, false, err
		}
		return []*suite.Suite{s}, false, nil
	}

	suites, err := suite.LoadDir(path)
	if err != nil {
		return nil, true, err
	}
	if len(suites) == 0 {
		return nil, true, fmt.Errorf("no suite files in %s", path)
	}
	return suites, true, nil
}

// --- show command ---

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <result.json>",
		Short: "Print a saved result or batch summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			out := cmd.OutOrStdout()

			rec, recErr := result.LoadRecord(args[0])
			if recErr == nil {
				report.PrintRecord(out, rec, !noColor)
				return nil
			}
			summary, err := result.LoadSummary(args[0])
			if err != nil || summary.RunID == "" {
				return recErr
			}
			report.PrintVerbose(out, summary, !noColor)
			return nil
		},
	}
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	return cmd
}

// --- diff command ---

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <run-a.json> <run-b.json>",
		Short: "Compare two saved batch runs",
		Long: `Compare two batch summaries case by case, for example the same suite run
against two providers. Cases are matched by name; a differing dominant label
is marked with *.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := result.LoadSummary(args[0])
			if err != nil {
				return err
			}
			b, err := result.LoadSummary(args[1])
			if err != nil {
				return err
			}

			filter, _ := cmd.Flags().GetStringSlice("filter")
			cats := make([]diff.Category, 0, len(filter))
			for _, f := range filter {
				cats = append(cats, diff.Category(strings.ToLower(f)))
			}
			dr := diff.Compare(a, b).Filter(cats)

			out := cmd.OutOrStdout()
			if format, _ := cmd.Flags().GetString("format"); format == "json" {
				data, err := dr.JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			dr.PrintTable(out)
			return nil
		},
	}
	cmd.Flags().StringSlice("filter", nil, "Only show these changes: improved, regressed, unchanged, new, removed")
	cmd.Flags().String("format", "table", "Output format: table or json")
	return cmd
}

// --- list commands ---

func newListProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers and their configured models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				cfg = config.Default()
			}

			out := cmd.OutOrStdout()
			for _, svc := range config.Services {
				model := "(not configured)"
				caps := "all"
				if pc, ok := cfg.APIKeys[svc]; ok {
					model = pc.Model
					if len(pc.Capabilities) > 0 {
						caps = strings.Join(pc.Capabilities, ", ")
					}
				}
				fmt.Fprintf(out, "  %-8s %-8s %-32s %s\n", config.DisplayNames[svc], svc, model, caps)
			}
			return nil
		},
	}
}

func newListCapabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List analysis types",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range analysis.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-26s %s\n", c.String(), c.Slug())
			}
			return nil
		},
	}
}

func newListPromptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "List the prompt used for each analysis type",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			dir := ""
			if cfg, err := config.Load(cfgPath); err == nil {
				dir = cfg.AnalysisSettings.PromptsDir
			}

			set, err := prompt.LoadSet(dir)
			if err != nil {
				return fmt.Errorf("loading prompts: %w", err)
			}
			for _, c := range analysis.All() {
				p, _ := set.Get(c)
				desc := p.Description
				if desc == "" {
					desc = "(no description)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-26s %-22s %s\n", c.String(), p.Name, desc)
			}
			return nil
		},
	}
}

// --- validate command ---

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the config and, optionally, a suite file",
		Long: `Check the configuration for missing providers, models and API keys.

API keys given through api_key_env must be set in the environment or in a
.env file next to the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if suitePath, _ := cmd.Flags().GetString("suite"); suitePath != "" {
				s, err := suite.Load(suitePath)
				if err != nil {
					return fmt.Errorf("loading suite: %w", err)
				}
				if err := s.Validate(); err != nil {
					return fmt.Errorf("suite validation failed: %w", err)
				}
				fmt.Fprintf(out, "Suite %q is valid (%d cases).\n", s.Name, len(s.Cases))
			}

			if _, err := loadConfig(cmd); err != nil {
				return err
			}
			cfgPath, _ := cmd.Flags().GetString("config")
			fmt.Fprintf(out, "Config %q is valid.\n", cfgPath)
			return nil
		},
	}
	cmd.Flags().String("suite", "", "Path to suite file to validate")
	return cmd
}
