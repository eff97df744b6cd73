package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cocan/internal/advisor"
	"cocan/internal/database"
	"cocan/internal/kitchen"
	"cocan/internal/stage"
)

var (
	simMaxTicks int
	simStep     time.Duration
	simVerbose  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a whole game headless with the advisor",
	Long: `Run a game without a player. Whenever a chobin asks for a command the
advisor plans one for the next guest and submits it. The simulation runs
with a fixed step as fast as possible and prints the final scoreboard.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simMaxTicks, "max-ticks", 0, "Stop after this many ticks (default: simulation.max_ticks)")
	simulateCmd.Flags().DurationVar(&simStep, "step", 0, "Simulated time per tick (default: simulation.tick_interval)")
	simulateCmd.Flags().BoolVarP(&simVerbose, "verbose", "v", false, "Print every served dish")
}

// tally counts reactions as dishes are served.
type tally struct {
	reactions map[string]int
	verbose   bool
}

func (t *tally) Publish(e stage.Event) {
	if e.Kind != stage.EventDishServed {
		return
	}
	t.reactions[e.Text]++
	if t.verbose && e.Guest != nil && e.Score != nil {
		fmt.Printf("  %7.1fs  guest %-3d %s %s\n", e.At.Seconds(), *e.Guest, reactionColor(e.Text).Sprintf("%-8s", e.Text), color.HiBlackString("score %d", *e.Score))
	}
}

func reactionColor(r string) *color.Color {
	switch r {
	case "amazing", "great":
		return color.New(color.FgGreen, color.Bold)
	case "good":
		return color.New(color.FgGreen)
	case "ok":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	maxTicks := cfg.Simulation.MaxTicks
	if simMaxTicks > 0 {
		maxTicks = simMaxTicks
	}
	step := cfg.Simulation.TickInterval
	if simStep > 0 {
		step = simStep
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return err
	}

	model, err := advisor.NewModel(cfg.Advisor)
	if err != nil {
		return err
	}
	pilot := advisor.NewPilot(advisor.New(model, log.Named("advisor"), cfg.Advisor.Timeout), log.Named("pilot"))

	t := &tally{reactions: map[string]int{}, verbose: simVerbose}
	k, err := kitchen.New(cfg.Kitchen(),
		kitchen.WithSink(t),
		kitchen.WithLedger(store),
		kitchen.WithLogger(log.Named("kitchen")),
	)
	if err != nil {
		return err
	}

	start := time.Now()
	board, err := pilot.Play(ctx, k, step, maxTicks)
	if err != nil && !errors.Is(err, advisor.ErrTickLimit) {
		return err
	}

	bold := color.New(color.Bold)
	fmt.Println()
	bold.Printf("Session %s (%s)\n", k.ID(), cfg.Scenario)
	fmt.Printf("  simulated %s in %s\n", k.Clock().Now().Round(time.Millisecond), time.Since(start).Round(time.Millisecond))
	if errors.Is(err, advisor.ErrTickLimit) {
		color.Yellow("  stopped after %d ticks with guests still inside", maxTicks)
	}
	fmt.Printf("  dishes served:  %d\n", board.Served)
	fmt.Printf("  total score:    %d\n", board.TotalScore)
	fmt.Printf("  discarded:      %d\n", k.Discarded())
	for _, r := range []string{"amazing", "great", "good", "ok", "worst"} {
		if n := t.reactions[r]; n > 0 {
			fmt.Printf("    %s %d\n", reactionColor(r).Sprintf("%-8s", r), n)
		}
	}
	bold.Printf("  result:         %s\n", color.GreenString("%d", board.TotalSum))
	return nil
}
