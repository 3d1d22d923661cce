package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gamesearch/config"
	"gamesearch/experiments"
	"gamesearch/experiments/metrics"
	"gamesearch/scoring"
	"gamesearch/searcher"
	"gamesearch/tree"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const usage = `usage: gamesearch <command> [flags]

commands:
  play        play matches between the searching agent and an opponent
  analyze     search the starting position and print the mainline
  throughput  measure search cost for increasing ply caps
`

func main() {
	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "-") {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	flags := config.Flags()
	plies := flags.IntSlice("plies", []int{1, 2, 3, 4, 5, 6}, "ply caps for the throughput command")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[2:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	setupLogger(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := termenv.NewOutput(os.Stdout)
	switch command {
	case "play":
		err = play(ctx, out, cfg)
	case "analyze":
		err = analyze(ctx, out, cfg)
	case "throughput":
		err = throughput(ctx, out, cfg, *plies)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msgf("%s failed", command)
		os.Exit(1)
	}
}

func setupLogger(level zerolog.Level) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func play(ctx context.Context, out *termenv.Output, cfg *config.Config) error {
	exp := cfg.Experiment(fmt.Sprintf("%s_vs_%s", metrics.Searching, cfg.Opponent))
	summary, err := experiments.Run(ctx, exp)
	if err != nil {
		return err
	}

	title := out.String(fmt.Sprintf("%s: %d games", cfg.Game, summary.Games)).Bold()
	fmt.Fprintln(out, title)
	for _, agent := range exp.Agents {
		label := fmt.Sprintf("agent %d (%s)", agent.ID, agent.Kind)
		fmt.Fprintf(out, "  %-20s %s\n", label, out.String(fmt.Sprintf("%d wins", summary.Wins[agent.ID])).Foreground(out.Color("2")))
	}
	fmt.Fprintf(out, "  %-20s %d\n", "draws", summary.Draws)
	if summary.Dir != "" {
		fmt.Fprintf(out, "records written to %s\n", out.String(summary.Dir).Faint())
	}
	return nil
}

func analyze(ctx context.Context, out *termenv.Output, cfg *config.Config) error {
	state, err := experiments.NewState(cfg.Game, cfg.Target)
	if err != nil {
		return err
	}
	scorer, err := experiments.NewScorer(cfg.AgentConfig())
	if err != nil {
		return err
	}

	options := append(cfg.SearchOptions(log.Logger),
		searcher.WithPlyListener(func(ply int, mainline *tree.Mainline) {
			fmt.Fprintf(out, "%s %s\n", out.String(fmt.Sprintf("ply %d", ply)).Faint(), formatScores(mainline))
		}),
	)
	handle := searcher.NewExpectimax(scorer, options...).Start(ctx, state)
	mainline, metric, err := handle.Wait()
	if err != nil {
		return err
	}
	printMainline(out, mainline, metric)
	return nil
}

func printMainline(out *termenv.Output, mainline *tree.Mainline, metric metrics.SearchMetric) {
	exactness := out.String("truncated").Foreground(out.Color("3"))
	if mainline.FullyDetermined() {
		exactness = out.String("exact").Foreground(out.Color("2"))
	}
	fmt.Fprintf(out, "%s depth %d, %s\n", out.String("mainline").Bold(), mainline.Depth(), exactness)

	for _, player := range scoring.Players(mainline.Scores()) {
		fmt.Fprintf(out, "  %-8s %.3f\n", player, mainline.Score(player))
	}
	for i, step := range mainline.Steps() {
		fmt.Fprintf(out, "  %2d. %-8s %v\n", i+1, step.Player, step.Strategy)
	}
	fmt.Fprintf(out, "%s\n", out.String(fmt.Sprintf(
		"%d plies, %d nodes, %d cache hits, %d cached, %s",
		metric.Plies, metric.Nodes, metric.CacheHits, metric.CacheSize, metric.Duration.Round(time.Millisecond),
	)).Faint())
}

func formatScores(mainline *tree.Mainline) string {
	parts := []string{}
	for _, player := range scoring.Players(mainline.Scores()) {
		parts = append(parts, fmt.Sprintf("%s=%.3f", player, mainline.Score(player)))
	}
	if move := mainline.Move(); move != nil {
		parts = append(parts, fmt.Sprintf("best %v", move))
	}
	return strings.Join(parts, " ")
}

func throughput(ctx context.Context, out *termenv.Output, cfg *config.Config, plies []int) error {
	// Plies alone bound each search
	base := cfg.AgentConfig()
	base.MinThink, base.MaxThink = 0, 0
	results, err := experiments.RunThroughput(ctx, cfg.Game, cfg.Target, base, plies)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, out.String(fmt.Sprintf("%-6s %12s %12s %12s", "plies", "nodes", "cache hits", "duration")).Bold())
	for i, metric := range results {
		fmt.Fprintf(out, "%-6d %12d %12d %12s\n", plies[i], metric.Nodes, metric.CacheHits, metric.Duration.Round(time.Microsecond))
	}
	return nil
}
