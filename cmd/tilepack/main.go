// Command tilepack packs outlines onto a canvas with shrinking scale levels
// and writes the layout as JSON, PDF, SVG, tile labels or GCode.
//
// Usage: tilepack [options] [outlines.dxf|.csv|.xlsx]
//
// Without an input file a unit square is packed. Settings are read from the
// config file, then TILEPACK_* environment variables, then flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/piwi3910/TilePack/internal/config"
	"github.com/piwi3910/TilePack/internal/engine"
	"github.com/piwi3910/TilePack/internal/export"
	"github.com/piwi3910/TilePack/internal/gcode"
	"github.com/piwi3910/TilePack/internal/geometry"
	"github.com/piwi3910/TilePack/internal/importer"
	"github.com/piwi3910/TilePack/internal/model"
	"github.com/piwi3910/TilePack/internal/project"
)

var (
	flagConfig     = flag.String("config", "", "Config file (default ~/.tilepack/config.json)")
	flagSaveConfig = flag.Bool("save-config", false, "Write the effective config back to the config file")
	flagWidth      = flag.Float64("width", 0, "Canvas width")
	flagHeight     = flag.Float64("height", 0, "Canvas height")
	flagTiles      = flag.Int("tiles", 0, "Stop after this many tiles")
	flagTime       = flag.Float64("time", 0, "Stop after this many seconds")
	flagSpiral     = flag.String("spiral", "", "Search spiral: archimedean or rectangular")
	flagSeed       = flag.Int64("seed", 0, "Random seed, 0 picks one from the clock")
	flagSplit      = flag.Bool("split", false, "Treat every closed path of the input as its own outline")
	flagDebug      = flag.Bool("debug", false, "Debug logging and collision index stats")
	flagLogLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error")
	flagCompare    = flag.Bool("compare", false, "Run the default comparison scenarios and print a table")

	flagJSON    = flag.String("json", "", "Write the layout snapshot to this JSON file")
	flagPDF     = flag.String("pdf", "", "Write a PDF report to this file")
	flagSVG     = flag.String("svg", "", "Write an SVG drawing to this file")
	flagLabels  = flag.String("labels", "", "Write QR tile labels to this PDF file")
	flagGCode   = flag.String("gcode", "", "Write plotter GCode to this file")
	flagProfile = flag.String("profile", "PenPlotter", "GCode profile name")
	flagMMUnit  = flag.Float64("mm-per-unit", 1, "GCode scale in mm per canvas unit")
)

func main() {
	flag.Parse()

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, err := logLevel(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(env, logger); err != nil {
		slog.Error("tilepack failed", "error", err)
		os.Exit(1)
	}
}

func logLevel(env *config.Env) (slog.Level, error) {
	if *flagDebug {
		return slog.LevelDebug, nil
	}
	if *flagLogLevel != "" {
		return config.ParseLevel(*flagLogLevel)
	}
	return env.Level()
}

func run(env *config.Env, logger *slog.Logger) error {
	configPath := firstNonEmpty(*flagConfig, env.ConfigFile, project.DefaultConfigPath())
	cfg, err := project.LoadConfig(configPath)
	if err != nil {
		return err
	}
	env.ApplyTo(&cfg)
	applyFlags(&cfg, setFlags())

	if err := cfg.Validate(); err != nil {
		return err
	}
	if *flagSaveConfig {
		if err := project.SaveConfig(configPath, cfg); err != nil {
			return err
		}
		logger.Info("config saved", "path", configPath)
	}

	outlines, err := loadOutlines(flag.Arg(0), *flagSplit, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *flagCompare {
		return compare(ctx, cfg, outlines, logger)
	}

	e, err := engine.New(cfg, outlines,
		engine.WithLogger(logger),
		engine.WithStatusHandler(progress(logger)),
	)
	if err != nil {
		return err
	}

	result, err := e.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("layout finished",
		"run", result.RunID,
		"seed", e.Seed(),
		"tiles", len(result.Placements),
		"coverage", fmt.Sprintf("%.1f%%", result.Coverage()),
	)

	return writeOutputs(result, logger)
}

// setFlags returns the names of flags given on the command line.
func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyFlags copies explicitly set flags onto cfg.
func applyFlags(cfg *model.Config, set map[string]bool) {
	if set["width"] {
		cfg.Size.X = *flagWidth
	}
	if set["height"] {
		cfg.Size.Y = *flagHeight
	}
	if set["tiles"] {
		cfg.StopConditions.Tiles = *flagTiles
	}
	if set["time"] {
		cfg.StopConditions.Time = *flagTime
	}
	if set["spiral"] {
		cfg.Spiral = *flagSpiral
	}
	if set["seed"] {
		cfg.Seed = *flagSeed
	}
	if set["debug"] {
		cfg.Debug = *flagDebug
	}
}

func loadOutlines(path string, split bool, logger *slog.Logger) ([]model.Outline, error) {
	if path == "" {
		return []model.Outline{unitSquare()}, nil
	}

	res := importer.Import(path, importer.Options{SplitPaths: split})
	for _, w := range res.Warnings {
		logger.Warn("import", "file", path, "warning", w)
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			logger.Error("import", "file", path, "error", e)
		}
		return nil, fmt.Errorf("failed to import %s: %d errors", path, len(res.Errors))
	}
	if len(res.Outlines) == 0 {
		return nil, errors.New("no outlines found in " + path)
	}
	logger.Info("outlines imported", "file", path, "count", len(res.Outlines))
	return res.Outlines, nil
}

func unitSquare() model.Outline {
	return model.NewOutline("Square", geometry.Polygon{
		geometry.Vec(0, 0),
		geometry.Vec(1, 0),
		geometry.Vec(1, 1),
		geometry.Vec(0, 1),
	})
}

// progress logs a status line every 25 placements.
func progress(logger *slog.Logger) func(model.Status) {
	last := 0
	return func(s model.Status) {
		if s.TilesPlaced-last < 25 {
			return
		}
		last = s.TilesPlaced
		logger.Debug("progress", "status", s.String())
	}
}

func compare(ctx context.Context, cfg model.Config, outlines []model.Outline, logger *slog.Logger) error {
	seed := comparisonSeed(cfg.Seed, time.Now)
	logger.Info("comparing scenarios", "seed", seed)
	results := engine.CompareScenarios(ctx, engine.BuildDefaultScenarios(cfg), outlines,
		engine.WithLogger(logger), engine.WithSeed(seed))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tTILES\tDISCARDED\tLEVEL\tCOVERAGE")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\t\n", r.Scenario.Name, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f%%\n", r.Scenario.Name, r.Placed, r.Discarded, r.FinalLevel, r.Coverage)
	}
	return w.Flush()
}

// comparisonSeed returns the configured seed, or one from the clock, so every
// scenario runs with the same seed.
func comparisonSeed(seed int64, now func() time.Time) int64 {
	if seed != 0 {
		return seed
	}
	return now().UnixNano()
}

func writeOutputs(result model.Result, logger *slog.Logger) error {
	if *flagJSON != "" {
		if err := project.SaveResult(*flagJSON, result); err != nil {
			return err
		}
		logger.Info("wrote layout", "path", *flagJSON)
	}
	if *flagPDF != "" {
		if err := export.ExportPDF(*flagPDF, result); err != nil {
			return fmt.Errorf("failed to export PDF: %w", err)
		}
		logger.Info("wrote PDF", "path", *flagPDF)
	}
	if *flagSVG != "" {
		if err := writeFile(*flagSVG, func(f *os.File) error { return export.WriteSVG(f, result) }); err != nil {
			return fmt.Errorf("failed to export SVG: %w", err)
		}
		logger.Info("wrote SVG", "path", *flagSVG)
	}
	if *flagLabels != "" {
		if err := export.ExportLabels(*flagLabels, result); err != nil {
			return fmt.Errorf("failed to export labels: %w", err)
		}
		logger.Info("wrote labels", "path", *flagLabels)
	}
	if *flagGCode != "" {
		if err := writeGCode(*flagGCode, result, logger); err != nil {
			return err
		}
	}
	return nil
}

func writeGCode(path string, result model.Result, logger *slog.Logger) error {
	custom, err := project.LoadCustomProfiles(project.DefaultProfilesPath())
	if err != nil {
		logger.Warn("ignoring custom profiles", "error", err)
	}

	settings := gcode.DefaultSettings()
	settings.Profile = *flagProfile
	settings.Scale = *flagMMUnit
	gen := gcode.NewWithProfile(settings, gcode.FindProfile(settings.Profile, custom))

	if err := writeFile(path, func(f *os.File) error {
		_, err := f.WriteString(gen.Generate(result))
		return err
	}); err != nil {
		return fmt.Errorf("failed to export GCode: %w", err)
	}
	logger.Info("wrote GCode", "path", path, "profile", settings.Profile)
	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
