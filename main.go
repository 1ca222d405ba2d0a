//go:build !js

package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"harvest/pkg/config"
	"harvest/pkg/gamelog"
	"harvest/pkg/grid"
	"harvest/pkg/history"
	"harvest/pkg/level"
	"harvest/pkg/logger"
	"harvest/pkg/world"
)

func main() {
	seedFlag := flag.Int64("seed", 0, "run seed (overrides HARVEST_SEED; 0 picks one from the clock)")
	maxTurns := flag.Int("turns", 200, "stop after this many player turns")
	quiet := flag.Bool("quiet", false, "only print the final board and summary")
	record := flag.Bool("record", false, "record the finished run into the history database")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	seed := cfg.Seed
	if *seedFlag != 0 {
		seed = *seedFlag
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	gen, err := level.NewGenerator(cfg.Width, cfg.Height)
	if err != nil {
		fmt.Fprintf(os.Stderr, "level: %v\n", err)
		os.Exit(1)
	}
	inserts, err := gen.Generate(rng, cfg.Houses, cfg.TreeDensity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "level: %v\n", err)
		os.Exit(1)
	}

	events := gamelog.New()
	w := world.New(world.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		SpawnEvery: cfg.SpawnEvery,
		Waves:      cfg.Waves,
		WaveSize:   cfg.WaveSize,
	}, rng, events)
	w.LoadLevel(inserts)
	w.Tick()

	log.Info("run started", "seed", seed, "board", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))

	for turn := 0; turn < *maxTurns && w.Phase() != world.PhaseGameOver; turn++ {
		autoplay(w)
		w.Tick() // player turn
		w.Tick() // monster turn

		if !*quiet {
			fmt.Printf("turn %d\n%s", w.Turn(), w.BoardString())
			for _, e := range events.Flush() {
				fmt.Println("  " + e.String())
			}
		}
	}

	fmt.Print(w.BoardString())
	outcome, done := w.Outcome()
	switch {
	case !done:
		fmt.Printf("run still going after %d turns (wave %d, %d goblins down)\n",
			w.Turn(), w.Wave(), w.GoblinsDefeated())
	case outcome.Victory:
		fmt.Printf("victory in %d turns, %d goblins down\n", outcome.Turns, outcome.GoblinsDefeated)
	default:
		fmt.Printf("defeat after %d turns, %d goblins down\n", outcome.Turns, outcome.GoblinsDefeated)
	}

	if *record && done {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			log.Error("open history", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		if _, err := store.Record(context.Background(), history.Run{
			Seed:            seed,
			Turns:           outcome.Turns,
			GoblinsDefeated: outcome.GoblinsDefeated,
			Victory:         outcome.Victory,
		}); err != nil {
			log.Error("record run", "error", err)
			os.Exit(1)
		}
		log.Info("run recorded", "victory", outcome.Victory)
	}
}

// autoplay queues one player action: step towards the nearest goblin, or
// hold position when none are on the board.
func autoplay(w *world.World) {
	var player grid.Point
	var goblins []grid.Point
	for _, s := range w.DrawList() {
		switch s.Glyph {
		case world.GlyphPlayer:
			player = s.Pos
		case world.GlyphGoblin:
			goblins = append(goblins, s.Pos)
		}
	}

	if len(goblins) == 0 {
		w.Wait()
		return
	}

	nearest := goblins[0]
	for _, g := range goblins[1:] {
		if player.Distance(g) < player.Distance(nearest) {
			nearest = g
		}
	}
	w.Move(grid.Toward(player, nearest))
}
