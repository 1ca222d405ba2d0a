package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"harvest/pkg/config"
	"harvest/pkg/gamelog"
	"harvest/pkg/grid"
	"harvest/pkg/history"
	"harvest/pkg/level"
	"harvest/pkg/logger"
	"harvest/pkg/save"
	"harvest/pkg/world"
)

type session struct {
	cfg    config.Config
	log    *slog.Logger
	events *gamelog.Log

	world *world.World
	seed  int64

	saves   *save.Store
	history *history.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	saves, err := save.LoadFrom(cfg.SavePath)
	if err != nil {
		log.Error("load save slots", "error", err)
		saves = save.NewStore()
	}

	runs, err := history.Open(cfg.HistoryPath)
	if err != nil {
		log.Warn("open history", "error", err)
		runs = nil
	}
	if runs != nil {
		defer runs.Close()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &session{
		cfg:     cfg,
		log:     log,
		events:  gamelog.New(),
		saves:   saves,
		history: runs,
	}
	if err := s.newRun(seed); err != nil {
		fmt.Fprintf(os.Stderr, "start run: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("commands: w/a/s/d move, wait, save <slot>, load <slot>, slots, history, new, quit")
	s.printBoard()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if !s.handle(strings.Fields(strings.ToLower(scanner.Text()))) {
			break
		}
	}

	if saves.Dirty() {
		if err := saves.SyncTo(cfg.SavePath); err != nil {
			log.Error("final save sync", "error", err)
		}
	}
}

func (s *session) newRun(seed int64) error {
	rng := rand.New(rand.NewSource(seed))

	gen, err := level.NewGenerator(s.cfg.Width, s.cfg.Height)
	if err != nil {
		return err
	}
	inserts, err := gen.Generate(rng, s.cfg.Houses, s.cfg.TreeDensity)
	if err != nil {
		return err
	}

	w := world.New(world.Options{
		Width:      s.cfg.Width,
		Height:     s.cfg.Height,
		SpawnEvery: s.cfg.SpawnEvery,
		Waves:      s.cfg.Waves,
		WaveSize:   s.cfg.WaveSize,
	}, rng, s.events)
	w.LoadLevel(inserts)
	w.Tick()

	s.world = w
	s.seed = seed
	return nil
}

// handle runs one command. Returns false when the session should end.
func (s *session) handle(fields []string) bool {
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "quit", "q":
		return false
	case "new":
		if err := s.newRun(time.Now().UnixNano()); err != nil {
			fmt.Println("new run:", err)
			return true
		}
		s.printBoard()
	case "w":
		s.playTurn(grid.Up)
	case "s":
		s.playTurn(grid.Down)
	case "a":
		s.playTurn(grid.Left)
	case "d":
		s.playTurn(grid.Right)
	case "wait", ".":
		s.playWait()
	case "save":
		s.save(slotArg(fields))
	case "load":
		s.load(slotArg(fields))
	case "slots":
		for _, name := range s.saves.List() {
			fmt.Println(" ", name)
		}
	case "history":
		s.printHistory()
	default:
		fmt.Println("unknown command:", fields[0])
	}
	return true
}

func slotArg(fields []string) string {
	if len(fields) > 1 {
		return fields[1]
	}
	return "slot1"
}

func (s *session) playTurn(d grid.Direction) {
	if !s.world.Move(d) {
		fmt.Println("not your turn")
		return
	}
	s.resolve()
}

func (s *session) playWait() {
	if !s.world.Wait() {
		fmt.Println("not your turn")
		return
	}
	s.resolve()
}

// resolve runs the machine until it needs input again, then reports.
func (s *session) resolve() {
	for s.world.Phase() == world.PhasePlayerTurn || s.world.Phase() == world.PhaseMonsterTurn {
		s.world.Tick()
	}

	s.printBoard()

	if outcome, done := s.world.Outcome(); done {
		s.recordRun(outcome)
		if outcome.Victory {
			fmt.Printf("victory in %d turns, %d goblins down\n", outcome.Turns, outcome.GoblinsDefeated)
		} else {
			fmt.Printf("defeat after %d turns, %d goblins down\n", outcome.Turns, outcome.GoblinsDefeated)
		}
		fmt.Println(`type "new" for another run`)
	}
}

func (s *session) printBoard() {
	fmt.Print(s.world.BoardString())
	for _, e := range s.events.Flush() {
		fmt.Println("  " + e.String())
	}
	if hp, ok := s.world.PlayerHealth(); ok {
		fmt.Printf("hp %d  turn %d  wave %d/%d\n", hp, s.world.Turn(), s.world.Wave(), s.cfg.Waves)
	}
}

func (s *session) save(slot string) {
	data, err := save.Encode(s.world.Snapshot(), save.Meta{SavedAt: time.Now(), Seed: s.seed})
	if err != nil {
		fmt.Println("save:", err)
		return
	}
	if err := s.saves.Write(slot, data); err != nil {
		fmt.Println("save:", err)
		return
	}
	if err := s.saves.SyncTo(s.cfg.SavePath); err != nil {
		s.log.Error("sync save slots", "error", err)
	}
	fmt.Println("saved to", slot)
}

func (s *session) load(slot string) {
	data, err := s.saves.Read(slot)
	if err != nil {
		fmt.Println("load:", err)
		return
	}
	state, meta, err := save.Decode(data)
	if err != nil {
		fmt.Println("load:", err)
		return
	}
	restored, err := world.Restore(state, rand.New(rand.NewSource(time.Now().UnixNano())), s.events)
	if err != nil {
		fmt.Println("load:", err)
		return
	}
	s.world = restored
	s.seed = meta.Seed
	fmt.Println("loaded", slot)
	s.printBoard()
}

func (s *session) recordRun(outcome world.Outcome) {
	if s.history == nil {
		return
	}
	_, err := s.history.Record(context.Background(), history.Run{
		Seed:            s.seed,
		Turns:           outcome.Turns,
		GoblinsDefeated: outcome.GoblinsDefeated,
		Victory:         outcome.Victory,
	})
	if err != nil {
		s.log.Error("record run", "error", err)
	}
}

func (s *session) printHistory() {
	if s.history == nil {
		fmt.Println("history unavailable")
		return
	}
	runs, err := s.history.Recent(context.Background(), 10)
	if err != nil {
		fmt.Println("history:", err)
		return
	}
	for _, run := range runs {
		result := "defeat"
		if run.Victory {
			result = "victory"
		}
		fmt.Printf("  %s  seed %d  %s in %d turns, %d goblins down\n",
			run.FinishedAt.Format("2006-01-02 15:04"), run.Seed, result, run.Turns, run.GoblinsDefeated)
	}
}
