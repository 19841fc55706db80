// Command robinsmesh runs a single OSINT investigation through the agent
// swarm and writes the resulting report to disk.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/duskline/robin-smesh/internal/api"
	"github.com/duskline/robin-smesh/internal/archive"
	"github.com/duskline/robin-smesh/internal/config"
	"github.com/duskline/robin-smesh/internal/llm"
	"github.com/duskline/robin-smesh/internal/swarm"
	"github.com/duskline/robin-smesh/internal/tor"
)

var (
	flagQuery         string
	flagModel         string
	flagAPIKey        string
	flagAnthropicKey  string
	flagOpenRouterKey string
	flagUseOpenAI     bool
	flagUseOpenRouter bool
	flagUseAnthropic  bool
	flagOutput        string
	flagTimeout       time.Duration
	flagCrawlers      int
	flagScrapers      int
	flagSpecialists   bool
	flagEnrich        bool
	flagBlockchain    bool
	flagPastes        bool
	flagDashboard     bool
	flagVerbose       int
)

func main() {
	root := &cobra.Command{
		Use:   "robinsmesh",
		Short: "Authorized OSINT investigation swarm over Tor",
	}

	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Run a single investigation and write its Markdown report",
		RunE:  runInvestigation,
	}
	queryCmd.Flags().StringVar(&flagQuery, "query", "", "investigation query (required)")
	queryCmd.Flags().StringVar(&flagModel, "model", "gpt-4o-mini", "LLM model name")
	queryCmd.Flags().StringVar(&flagAPIKey, "api-key", "", "OpenAI API key (falls back to OPENAI_API_KEY)")
	queryCmd.Flags().StringVar(&flagAnthropicKey, "anthropic-key", "", "Anthropic API key (falls back to ANTHROPIC_API_KEY)")
	queryCmd.Flags().StringVar(&flagOpenRouterKey, "openrouter-key", "", "OpenRouter API key (falls back to OPENROUTER_API_KEY)")
	queryCmd.Flags().BoolVar(&flagUseOpenAI, "openai", false, "use the OpenAI backend (the default)")
	queryCmd.Flags().BoolVar(&flagUseOpenRouter, "openrouter", false, "route the LLM backend through OpenRouter")
	queryCmd.Flags().BoolVar(&flagUseAnthropic, "anthropic", false, "use the Anthropic Messages backend")
	queryCmd.Flags().StringVar(&flagOutput, "output", ".", "directory to write the summary_<timestamp>.md report to")
	queryCmd.Flags().DurationVar(&flagTimeout, "timeout", 300*time.Second, "maximum investigation runtime")
	queryCmd.Flags().IntVar(&flagCrawlers, "crawlers", 2, "number of crawler agents")
	queryCmd.Flags().IntVar(&flagScrapers, "scrapers", 3, "number of scraper agents")
	queryCmd.Flags().BoolVar(&flagSpecialists, "specialists", false, "run the multi-specialist analyst panel instead of a single pass")
	queryCmd.Flags().BoolVar(&flagEnrich, "enrich", false, "enable the external-source enrichment worker")
	queryCmd.Flags().BoolVar(&flagBlockchain, "blockchain", false, "enable the blockchain analyst worker")
	queryCmd.Flags().BoolVar(&flagPastes, "pastes", false, "enable the paste-site monitor worker")
	queryCmd.Flags().BoolVar(&flagDashboard, "dashboard", false, "serve the live monitoring dashboard on PORT while the investigation runs")
	queryCmd.Flags().IntVar(&flagVerbose, "verbose", 0, "log verbosity, 0 (warnings) through 3 (trace)")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Probe Tor reachability and report configured backends",
		RunE:  runStatus,
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Report swarm/field statistics (no investigation is persisted across runs)",
		RunE:  runStats,
	}

	root.AddCommand(queryCmd, statusCmd, statsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runStatus performs a live Tor reachability probe and reports which LLM
// backends have credentials configured, without starting an investigation.
func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.SetupLogging(flagVerbose)
	printBanner()

	color.Cyan("checking tor connectivity (socks5h://127.0.0.1:9050)...")
	if tor.CheckConnection(tor.DefaultConfig()) {
		color.Green("tor: reachable")
	} else {
		color.Red("tor: unreachable — is the Tor daemon running?")
	}

	report := func(name, key string) {
		if key == "" {
			color.Yellow("%s: not configured", name)
		} else {
			color.Green("%s: configured", name)
		}
	}
	report("openai", cfg.OpenAIKey)
	report("anthropic", cfg.AnthropicKey)
	report("openrouter", cfg.OpenRouterKey)
	report("github enrichment", cfg.GitHubToken)
	report("brave enrichment", cfg.BraveAPIKey)
	report("etherscan", cfg.EtherscanAPIKey)
	return nil
}

// runStats explains itself when invoked outside an active investigation:
// this process keeps no state across restarts, so there is nothing to report
// beyond pointing at the `query` subcommand.
func runStats(cmd *cobra.Command, args []string) error {
	config.SetupLogging(flagVerbose)
	printBanner()
	color.Yellow("no investigation is currently running in this process.")
	fmt.Println("field/swarm statistics are only available while `robinsmesh query` is running (see --verbose).")
	fmt.Println("this process does not persist investigations across restarts; run a query to produce one.")
	return nil
}

func runInvestigation(cmd *cobra.Command, args []string) error {
	if flagQuery == "" {
		return fmt.Errorf("--query is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.SetupLogging(flagVerbose)

	printBanner()

	backend, err := buildBackend(cfg)
	if err != nil {
		return err
	}

	swarmCfg := swarm.DefaultConfig()
	swarmCfg.MaxRuntime = flagTimeout
	swarmCfg.NumCrawlers = flagCrawlers
	swarmCfg.NumScrapers = flagScrapers
	swarmCfg.UseSpecialists = flagSpecialists
	swarmCfg.EnableEnrichment = flagEnrich
	swarmCfg.EnableBlockchain = flagBlockchain
	swarmCfg.EnablePastes = flagPastes
	swarmCfg.GitHubToken = cfg.GitHubToken
	swarmCfg.BraveAPIKey = cfg.BraveAPIKey
	swarmCfg.EtherscanAPIKey = cfg.EtherscanAPIKey

	var hub *api.Hub
	if flagDashboard {
		hub = api.NewHub()
		go hub.Run()
		swarmCfg.OnTick = func(stats swarm.Stats) {
			hub.BroadcastStats(api.SwarmStats{
				Tick:             stats.Tick,
				ElapsedSeconds:   stats.Elapsed.Seconds(),
				ActiveSignals:    stats.FieldStats.ActiveSignals,
				TotalIntensity:   stats.FieldStats.TotalIntensity,
				AverageIntensity: stats.FieldStats.AverageIntensity,
				HistorySize:      stats.FieldStats.HistorySize,
				SummaryFound:     stats.SummaryFound,
			})
		}
	}

	sw, err := swarm.New(swarmCfg, backend)
	if err != nil {
		return fmt.Errorf("initializing swarm: %w", err)
	}

	if hub != nil {
		router := api.SetupRouter(sw, hub)
		go func() {
			if err := router.Run(":" + cfg.Port); err != nil {
				log.Warn().Err(err).Msg("dashboard server stopped")
			}
		}()
	}

	sw.SubmitQuery(flagQuery, 0.8)

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout+5*time.Second)
	defer cancel()

	color.Cyan("investigating: %s", flagQuery)
	report, err := sw.Run(ctx)
	if err != nil {
		stats := sw.Stats()
		color.Red("investigation failed: %v", err)
		fmt.Printf("ticks: %d, elapsed: %s, live signals: %d, reinforcements: %d, history: %d\n",
			stats.Tick, stats.Elapsed.Round(time.Millisecond),
			stats.FieldStats.ActiveSignals, stats.FieldStats.TotalReinforcements,
			stats.FieldStats.HistorySize)
		return err
	}

	path, err := writeReport(flagOutput, report)
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if cfg.DatabaseURL != "" {
		archiveInvestigation(cfg.DatabaseURL, flagQuery, report, sw)
	}

	color.Green("report written to %s", path)
	return nil
}

// archiveInvestigation saves the finished report to the configured Postgres
// archive. A failure here is logged, not fatal — the report is already on
// disk.
func archiveInvestigation(databaseURL, query, report string, sw *swarm.Swarm) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := archive.Connect(ctx, databaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("archive unavailable; skipping investigation save")
		return
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("archive schema init failed; skipping investigation save")
		return
	}

	artifacts := sw.ArtifactsSeen()
	id, err := store.SaveInvestigation(ctx, query, report, sw.SourcesSeen(), artifacts)
	if err != nil {
		log.Warn().Err(err).Msg("saving investigation to archive failed")
		return
	}
	log.Info().Int64("id", id).Int("artifacts", len(artifacts)).Msg("investigation archived")
}

func buildBackend(cfg config.Config) (llm.Backend, error) {
	model := flagModel
	if model == "" {
		model = cfg.Model
	}

	if flagUseOpenAI && (flagUseOpenRouter || flagUseAnthropic) {
		return nil, fmt.Errorf("--openai conflicts with --openrouter/--anthropic; pick one backend")
	}

	switch {
	case flagUseAnthropic:
		key := firstNonEmpty(flagAnthropicKey, cfg.AnthropicKey)
		if key == "" {
			return nil, fmt.Errorf("anthropic backend requires --anthropic-key or ANTHROPIC_API_KEY")
		}
		return llm.NewAnthropicBackend(llm.NewAnthropicConfig(key, model))

	case flagUseOpenRouter:
		key := firstNonEmpty(flagOpenRouterKey, cfg.OpenRouterKey)
		if key == "" {
			return nil, fmt.Errorf("openrouter backend requires --openrouter-key or OPENROUTER_API_KEY")
		}
		return llm.NewOpenAIBackend(llm.OpenAIForOpenRouter(key, model))

	default:
		key := firstNonEmpty(flagAPIKey, cfg.OpenAIKey)
		if key == "" {
			return nil, fmt.Errorf("openai backend requires --api-key or OPENAI_API_KEY")
		}
		return llm.NewOpenAIBackend(llm.OpenAIForOpenAI(key, model))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func writeReport(dir, markdown string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("summary_%s.md", time.Now().UTC().Format("20060102T150405Z"))
	path := dir + string(os.PathSeparator) + name
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", err
	}
	log.Info().Str("path", path).Msg("investigation report written")
	return path, nil
}

func printBanner() {
	color.New(color.FgHiMagenta, color.Bold).Println("robinsmesh — authorized OSINT swarm")
}
