package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/piwi3910/TilePack/internal/collision"
	"github.com/piwi3910/TilePack/internal/geometry"
	"github.com/piwi3910/TilePack/internal/model"
	"github.com/piwi3910/TilePack/internal/scale"
	"github.com/piwi3910/TilePack/internal/shape"
)

var (
	ErrNoOutlines = errors.New("no usable outlines")
	ErrRunning    = errors.New("run already in progress")
)

// State is the lifecycle stage of an Engine.
type State int

const (
	StateIdle State = iota
	StatePlacing
	StateGrowing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StatePlacing:
		return "placing"
	case StateGrowing:
		return "growing"
	case StateStopped:
		return "stopped"
	default:
		return "idle"
	}
}

const (
	jumpMin = 50 // Spiral parameter jump range between search attempts
	jumpMax = 200

	failureThreshold = 100             // Consecutive abandoned candidates before forcing a scale advance
	stallTimeout     = 2 * time.Second // Time without a placement before forcing a scale advance

	highlightThreshold = 0.05
	highlightGrowth    = 1.1

	growthStep     = 1.02
	maxGrowthSteps = 500

	boundaryMargin  = 0.01 // Candidates are discarded beyond the canvas grown by this fraction
	highlightMargin = 0.1  // Only shapes inside the canvas shrunk by this fraction are highlighted

	minPointsPerPath = 10
)

// Option configures an Engine.
type Option func(*Engine)

// WithSeed fixes the random seed, overriding the config.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithStatusHandler registers a callback invoked after every tick and once
// more when the run stops.
func WithStatusHandler(fn func(model.Status)) Option {
	return func(e *Engine) { e.onStatus = fn }
}

// Engine packs outlines onto a canvas one candidate per Step. It is not safe
// for concurrent use, except for Abort.
type Engine struct {
	cfg       model.Config
	outlines  []model.Outline
	shapeOpts shape.Options

	seed     int64
	now      func() time.Time
	logger   *slog.Logger
	onStatus func(model.Status)

	multiplier float64
	growth     scale.GrowthFunc
	spiral     Spiral

	width, height   float64
	boundary        [4]geometry.Vector
	highlightBounds [4]geometry.Vector

	// Per-run state, reset by Start.
	state     State
	runID     string
	rng       *rand.Rand
	origin    geometry.Vector
	index     *collision.Index
	seq       *scale.Sequence
	placed    []*shape.Shape // indexed by shape id
	discarded int
	failed    int

	highlightApplied bool
	threshold        float64

	started       time.Time
	lastPlaced    time.Time // last placement or forced advance
	lastPlacement time.Time
	elapsed       time.Duration
	durations     []float64 // seconds between consecutive placements

	aborted atomic.Bool
}

// New validates the config and prepares an engine. Outlines that cannot form
// a shape are skipped with a warning; if none remain ErrNoOutlines is returned.
func New(cfg model.Config, outlines []model.Outline, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		seed:   cfg.Seed,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
		width:  cfg.Size.X,
		height: cfg.Size.Y,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.seed == 0 {
		e.seed = e.now().UnixNano()
	}
	e.cfg.Seed = e.seed

	e.shapeOpts = shape.Options{
		Padding:      cfg.Tile.Padding,
		PointSpacing: cfg.Tile.PointSpacing,
		MinPoints:    minPointsPerPath,
	}
	for _, o := range outlines {
		if _, err := shape.New(0, o, e.shapeOpts); err != nil {
			e.logger.Warn("skipping outline", "name", o.Name, "error", err)
			continue
		}
		e.outlines = append(e.outlines, o)
	}
	if len(e.outlines) == 0 {
		return nil, ErrNoOutlines
	}

	var err error
	if e.multiplier, err = cfg.Multiplier(); err != nil {
		return nil, err
	}
	if e.growth, err = scale.GrowthByName(cfg.Scale.Frequency); err != nil {
		return nil, err
	}
	if e.spiral, err = SpiralByName(cfg.Spiral, e.width, e.height); err != nil {
		return nil, err
	}

	e.boundary = canvasRect(e.width, e.height, -boundaryMargin, 1+boundaryMargin)
	e.highlightBounds = canvasRect(e.width, e.height, highlightMargin, 1-highlightMargin)
	return e, nil
}

// canvasRect returns the rectangle spanning fractions lo..hi of the canvas,
// corners ordered top-left, top-right, bottom-right, bottom-left.
func canvasRect(w, h, lo, hi float64) [4]geometry.Vector {
	return [4]geometry.Vector{
		{X: w * lo, Y: h * lo},
		{X: w * hi, Y: h * lo},
		{X: w * hi, Y: h * hi},
		{X: w * lo, Y: h * hi},
	}
}

// Start resets all run state and begins placing. The origin is chosen at
// random inside the centre third of the canvas.
func (e *Engine) Start() error {
	if e.state == StatePlacing || e.state == StateGrowing {
		return ErrRunning
	}

	e.rng = rand.New(rand.NewSource(e.seed))
	e.runID = model.NewRunID()
	e.index = collision.New(e.width, e.height, e.cfg.Resolution)
	e.seq = scale.New(e.cfg.Start.Count, e.multiplier, e.growth, e.cfg.Scale.MaxLevels)
	e.placed = nil
	e.discarded = 0
	e.failed = 0
	e.highlightApplied = false
	e.threshold = highlightThreshold
	e.durations = nil
	e.aborted.Store(false)

	e.origin = geometry.Vec(
		float64(IntegerBetween(e.rng, e.width/3, e.width/3*2)),
		float64(IntegerBetween(e.rng, e.height/3, e.height/3*2)),
	)

	e.started = e.now()
	e.lastPlaced = e.started
	e.lastPlacement = e.started
	e.elapsed = 0
	e.state = StatePlacing

	e.logger.Info("run started",
		"run_id", e.runID,
		"seed", e.seed,
		"outlines", len(e.outlines),
		"width", e.width,
		"height", e.height,
		"spiral", e.cfg.Spiral)
	return nil
}

// Abort asks the run to stop at the next tick. Shapes already placed are kept.
// It may be called from any goroutine.
func (e *Engine) Abort() {
	e.aborted.Store(true)
}

// Step runs one tick: a single candidate is sized, searched for along the
// spiral and either placed or abandoned. It returns whether another tick
// should be scheduled.
func (e *Engine) Step() bool {
	if e.state != StatePlacing {
		return false
	}
	if e.aborted.Load() {
		e.logger.Info("run aborted", "run_id", e.runID, "placed", len(e.placed))
		e.finish()
		return false
	}

	e.placeOne()
	e.elapsed = e.now().Sub(e.started)

	if e.shouldStop() {
		e.finish()
		return false
	}
	e.emit()
	return true
}

// Run drives Step until the run stops or ctx is cancelled. Cancellation is a
// normal stop: the partial result is returned without error.
func (e *Engine) Run(ctx context.Context) (model.Result, error) {
	if err := e.Start(); err != nil {
		return model.Result{}, err
	}
	for {
		if ctx.Err() != nil {
			e.Abort()
		}
		if !e.Step() {
			break
		}
	}
	return e.Result(), nil
}

func (e *Engine) shouldStop() bool {
	return e.aborted.Load() ||
		len(e.placed) >= e.cfg.StopConditions.Tiles ||
		e.elapsed.Seconds() >= e.cfg.StopConditions.Time
}

func (e *Engine) placeOne() {
	outline := Pick(e.rng, e.outlines)
	size := Wiggle(e.rng, e.cfg.StartSize()*e.seq.Factor(), e.cfg.Tile.Wiggle)
	rotation := Wiggle(e.rng, RotationStep(e.rng, e.cfg.Tile.Rotation), e.cfg.Tile.Wiggle)

	s, err := shape.New(len(e.placed), outline, e.shapeOpts)
	if err != nil {
		// Outlines were checked in New.
		e.logger.Error("build shape", "name", outline.Name, "error", err)
		return
	}
	s.Apply(shape.NewBuilder().
		Scale(s.ScaleFor(size)).
		RotateDegrees(rotation).
		Translate(e.origin).
		Build())

	if e.search(s) {
		e.accept(s)
	} else {
		e.abandon(s)
	}
}

// search walks the candidate along the spiral until it no longer collides or
// leaves the canvas boundary. It reports whether a free in-bounds spot was found.
func (e *Engine) search(s *shape.Shape) bool {
	inBounds := s.InBounds(e.boundary)
	collides := true
	for pos := 0; collides && inBounds; pos += IntegerBetween(e.rng, jumpMin, jumpMax) {
		s.SetTranslation(e.origin.Plus(e.spiral(pos)))
		collides = e.collides(s)
		inBounds = s.InBounds(e.boundary)
	}
	return inBounds
}

// collides reports whether s intersects any placed shape other than itself.
func (e *Engine) collides(s *shape.Shape) bool {
	for _, id := range e.index.Candidates(s) {
		if s.Intersects(e.placed[id]) {
			return true
		}
	}
	return false
}

func (e *Engine) accept(s *shape.Shape) {
	now := e.now()
	e.placed = append(e.placed, s)
	e.index.AddShape(s)
	e.failed = 0
	e.durations = append(e.durations, now.Sub(e.lastPlacement).Seconds())
	e.lastPlacement = now
	e.lastPlaced = now
	e.seq.ConsumeOne()

	// At most one highlight per run; the odds grow after every miss.
	roll := e.rng.Float64()
	if !e.highlightApplied && roll < e.threshold && s.InBounds(e.highlightBounds) {
		s.Highlight = true
		e.highlightApplied = true
	} else {
		e.threshold *= highlightGrowth
	}
}

func (e *Engine) abandon(s *shape.Shape) {
	e.discarded++
	e.failed++

	now := e.now()
	if e.cfg.Scale.StrictFrequency {
		return
	}
	if e.failed >= failureThreshold || now.Sub(e.lastPlaced) > stallTimeout {
		e.seq.ForceAdvance()
		e.logger.Debug("forced scale advance",
			"run_id", e.runID,
			"level", e.seq.Level(),
			"factor", e.seq.Factor(),
			"failures", e.failed,
			"outline", s.Name())
		e.failed = 0
		e.lastPlaced = now
	}
}

func (e *Engine) finish() {
	if e.cfg.TwoPass && !e.aborted.Load() && len(e.placed) > 0 {
		e.state = StateGrowing
		e.growAll()
	}
	e.state = StateStopped

	if e.cfg.Debug {
		st := e.index.Stats()
		e.logger.Info("collision index",
			"cells", st.Cells,
			"occupied", st.Occupied,
			"entries", st.Entries,
			"max_per_cell", st.MaxPerCell)
	}
	e.logger.Info("run stopped",
		"run_id", e.runID,
		"placed", len(e.placed),
		"discarded", e.discarded,
		"level", e.seq.Level(),
		"elapsed", e.elapsed)
	e.emit()
}

// growAll enlarges every placed shape, in placement order, until it touches
// a neighbour or the canvas boundary.
func (e *Engine) growAll() {
	grown := 0
	for _, s := range e.placed {
		if e.grow(s) > 0 {
			grown++
		}
	}
	e.logger.Debug("growth pass finished", "run_id", e.runID, "grown", grown, "shapes", len(e.placed))
}

// grow scales s up in small steps. A step that causes an overlap or pushes s
// outside the boundary is reverted and ends the growth. Accepted steps are
// re-indexed so later shapes see the grown footprint.
func (e *Engine) grow(s *shape.Shape) int {
	if !s.Within(e.boundary) {
		return 0
	}
	steps := 0
	for steps < maxGrowthSteps {
		prevScale := s.Transform().Scale
		prevBounds := s.Bounds()

		s.ScaleBy(growthStep)
		if !s.Within(e.boundary) || e.collides(s) {
			s.SetScale(prevScale)
			break
		}
		e.index.Remove(s.ID(), prevBounds)
		e.index.AddShape(s)
		steps++
	}
	return steps
}

func (e *Engine) emit() {
	if e.onStatus != nil {
		e.onStatus(e.Status())
	}
}

// Status reports the progress of the current run.
func (e *Engine) Status() model.Status {
	st := model.Status{
		RunID:       e.runID,
		State:       e.state.String(),
		TilesPlaced: len(e.placed),
		Discarded:   e.discarded,
		TotalTime:   e.elapsed.Seconds(),
		ScaleRatio:  e.multiplier,
		Processing:  e.state == StatePlacing || e.state == StateGrowing,
	}
	if len(e.durations) > 0 {
		st.AverageTimeToPlace = stat.Mean(e.durations, nil)
	}
	if e.seq != nil {
		st.ScaleLevel = e.seq.Level()
		st.ScaleFactor = e.seq.Factor()
	}
	return st
}

// Result returns the placements so far in placement order.
func (e *Engine) Result() model.Result {
	placements := make([]model.Placement, len(e.placed))
	for i, s := range e.placed {
		placements[i] = s.Record(i)
	}
	return model.Result{
		RunID:      e.runID,
		Config:     e.cfg,
		Placements: placements,
		Discarded:  e.discarded,
		Status:     e.Status(),
	}
}

func (e *Engine) State() State { return e.state }

// Seed returns the seed in effect, which is also stored in the result config.
func (e *Engine) Seed() int64 { return e.seed }

func (e *Engine) RunID() string { return e.runID }

// Origin is the spiral centre chosen by Start.
func (e *Engine) Origin() geometry.Vector { return e.origin }

// Boundary is the canvas grown by a 1% margin; candidates leaving it are discarded.
func (e *Engine) Boundary() [4]geometry.Vector { return e.boundary }

// Placed returns the placed shapes. The slice must not be modified.
func (e *Engine) Placed() []*shape.Shape {
	return e.placed
}

func (e *Engine) String() string {
	return fmt.Sprintf("engine %s: %s, %d placed", e.runID, e.state, len(e.placed))
}
