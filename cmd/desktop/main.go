package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/colornames"

	"harvest/pkg/config"
	"harvest/pkg/gamelog"
	"harvest/pkg/grid"
	"harvest/pkg/history"
	"harvest/pkg/level"
	"harvest/pkg/logger"
	"harvest/pkg/save"
	"harvest/pkg/world"
)

const (
	cellSize = 24
	hudRows  = 6
	// quickSlot is the save slot used by F5/F9.
	quickSlot = "quicksave"
)

type Game struct {
	cfg    config.Config
	log    *slog.Logger
	events *gamelog.Log

	world *world.World
	seed  int64

	saves   *save.Store
	history *history.Store

	boardImg *ebiten.Image // reused one-pixel-per-cell canvas
	lines    []string      // recent log lines for the HUD
	recorded bool
}

func (g *Game) Update() error {
	g.drainEvents()

	switch g.world.Phase() {
	case world.PhaseAwaitingInput:
		g.handleInput()
	case world.PhaseGameOver:
		g.recordOnce()
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			g.restart(time.Now().UnixNano())
		}
	default:
		g.world.Tick()
	}

	return nil
}

func (g *Game) handleInput() {
	switch {
	case pressed(ebiten.KeyArrowUp, ebiten.KeyW):
		g.world.Move(grid.Up)
	case pressed(ebiten.KeyArrowDown, ebiten.KeyS):
		g.world.Move(grid.Down)
	case pressed(ebiten.KeyArrowLeft, ebiten.KeyA):
		g.world.Move(grid.Left)
	case pressed(ebiten.KeyArrowRight, ebiten.KeyD):
		g.world.Move(grid.Right)
	case pressed(ebiten.KeySpace):
		g.world.Wait()
	case pressed(ebiten.KeyF5):
		g.quicksave()
	case pressed(ebiten.KeyF9):
		g.quickload()
	}
}

func pressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}

func (g *Game) drainEvents() {
	for _, e := range g.events.Flush() {
		g.lines = append(g.lines, e.String())
	}
	if over := len(g.lines) - 4; over > 0 {
		g.lines = g.lines[over:]
	}
}

func (g *Game) quicksave() {
	data, err := save.Encode(g.world.Snapshot(), save.Meta{SavedAt: time.Now(), Seed: g.seed})
	if err != nil {
		g.log.Error("encode snapshot", "error", err)
		return
	}
	if err := g.saves.Write(quickSlot, data); err != nil {
		g.log.Error("write save slot", "error", err)
		return
	}
	g.lines = append(g.lines, "game saved")
}

func (g *Game) quickload() {
	data, err := g.saves.Read(quickSlot)
	if err != nil {
		g.log.Warn("read save slot", "error", err)
		return
	}
	state, meta, err := save.Decode(data)
	if err != nil {
		g.log.Error("decode snapshot", "error", err)
		return
	}

	// The RNG stream restarts on load; the board state is exact.
	restored, err := world.Restore(state, rand.New(rand.NewSource(time.Now().UnixNano())), g.events)
	if err != nil {
		g.log.Error("restore snapshot", "error", err)
		return
	}
	g.world = restored
	g.seed = meta.Seed
	g.recorded = false
	g.lines = append(g.lines, "game loaded")
}

func (g *Game) restart(seed int64) {
	rng := rand.New(rand.NewSource(seed))

	gen, err := level.NewGenerator(g.cfg.Width, g.cfg.Height)
	if err != nil {
		g.log.Error("level generator", "error", err)
		return
	}
	inserts, err := gen.Generate(rng, g.cfg.Houses, g.cfg.TreeDensity)
	if err != nil {
		g.log.Error("generate level", "error", err)
		return
	}

	w := world.New(world.Options{
		Width:      g.cfg.Width,
		Height:     g.cfg.Height,
		SpawnEvery: g.cfg.SpawnEvery,
		Waves:      g.cfg.Waves,
		WaveSize:   g.cfg.WaveSize,
	}, rng, g.events)
	w.LoadLevel(inserts)

	g.world = w
	g.seed = seed
	g.recorded = false
	g.lines = nil
}

func (g *Game) recordOnce() {
	if g.recorded {
		return
	}
	g.recorded = true

	outcome, done := g.world.Outcome()
	if !done || g.history == nil {
		return
	}
	_, err := g.history.Record(context.Background(), history.Run{
		Seed:            g.seed,
		Turns:           outcome.Turns,
		GoblinsDefeated: outcome.GoblinsDefeated,
		Victory:         outcome.Victory,
	})
	if err != nil {
		g.log.Error("record run", "error", err)
	}
}

func (g *Game) drawBoard(screen *ebiten.Image) {
	bounds := g.world.Bounds()
	if g.boardImg == nil {
		g.boardImg = ebiten.NewImage(bounds.W, bounds.H)
	}

	pixels := make([]byte, bounds.W*bounds.H*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i+3] = 0xFF
	}
	for _, s := range g.world.DrawList() {
		c := glyphColor(s.Glyph)
		i := grid.Index(s.Pos.X, s.Pos.Y, bounds.W) * 4
		pixels[i] = c.R
		pixels[i+1] = c.G
		pixels[i+2] = c.B
	}
	g.boardImg.WritePixels(pixels)

	// Scale the one-pixel-per-cell image up to the logical screen.
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(cellSize, cellSize)
	screen.DrawImage(g.boardImg, op)

	for _, s := range g.world.DrawList() {
		px := s.Pos.X*cellSize + cellSize/2 - 3
		py := s.Pos.Y*cellSize + cellSize/2 - 8
		ebitenutil.DebugPrintAt(screen, string(s.Glyph.Rune()), px, py)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	bounds := g.world.Bounds()
	y := bounds.H * cellSize

	hp := "-"
	if amount, ok := g.world.PlayerHealth(); ok {
		hp = fmt.Sprintf("%d", amount)
	}
	status := fmt.Sprintf("hp %s  turn %d  wave %d/%d  goblins down %d",
		hp, g.world.Turn(), g.world.Wave(), g.cfg.Waves, g.world.GoblinsDefeated())
	if outcome, done := g.world.Outcome(); done {
		if outcome.Victory {
			status = "VICTORY - press R for a new run"
		} else {
			status = "DEFEAT - press R for a new run"
		}
	}
	ebitenutil.DebugPrintAt(screen, status, 2, y)

	for i, line := range g.lines {
		ebitenutil.DebugPrintAt(screen, line, 2, y+16*(i+1))
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawBoard(screen)
	g.drawHUD(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	bounds := g.world.Bounds()
	return bounds.W * cellSize, bounds.H*cellSize + hudRows*16
}

func glyphColor(gl world.Glyph) color.RGBA {
	switch gl {
	case world.GlyphPlayer:
		return colornames.Gold
	case world.GlyphGoblin:
		return colornames.Limegreen
	case world.GlyphFarm:
		return colornames.Wheat
	case world.GlyphHouse:
		return colornames.Sienna
	case world.GlyphWall:
		return colornames.Slategray
	case world.GlyphTree:
		return colornames.Forestgreen
	default:
		return colornames.White
	}
}

// startSlotSyncer flushes dirty save slots to disk every interval while
// stop is open.
func startSlotSyncer(store *save.Store, dir string, log *slog.Logger, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if store.Dirty() {
				if err := store.SyncTo(dir); err != nil {
					log.Error("sync save slots", "error", err)
				}
			}
		case <-stop:
			return
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Env)

	saves, err := save.LoadFrom(cfg.SavePath)
	if err != nil {
		log.Error("load save slots", "error", err)
		saves = save.NewStore()
	}

	runs, err := history.Open(cfg.HistoryPath)
	if err != nil {
		// History is best-effort; play on without it.
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

	game := &Game{
		cfg:     cfg,
		log:     log,
		events:  gamelog.New(),
		saves:   saves,
		history: runs,
	}
	game.restart(seed)

	// Flush dirty save slots to the host every 3 s.
	stopSyncer := make(chan struct{})
	go startSlotSyncer(saves, cfg.SavePath, log, 3*time.Second, stopSyncer)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Width*cellSize*2, (cfg.Height*cellSize+hudRows*16)*2)
	ebiten.SetWindowTitle("Harvest")

	if err := ebiten.RunGame(game); err != nil {
		log.Error("game loop", "error", err)
	}

	// Graceful shutdown: stop the syncer and do a final flush.
	close(stopSyncer)
	if saves.Dirty() {
		if err := saves.SyncTo(cfg.SavePath); err != nil {
			log.Error("final save sync", "error", err)
		}
	}
}
