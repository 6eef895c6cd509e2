// Package main searches run parameters with CMA-ES for the settings that push
// the most varied text through the floor-bounce side channel.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/bouncebits/config"
)

// evalRecord is one optimize_log.csv row.
type evalRecord struct {
	Eval    int     `csv:"eval"`
	Fitness float64 `csv:"fitness"`
	Decoded float64 `csv:"decoded"`
	Quality float64 `csv:"quality"`
	ForceX  float64 `csv:"force_x"`
	ForceY  float64 `csv:"force_y"`
	KickMin float64 `csv:"kick_min"`
	KickMax float64 `csv:"kick_max"`
}

// evalLog appends evaluations as CSV and remembers the best one.
type evalLog struct {
	w             io.Writer
	headerWritten bool

	count int
	best  evalRecord
	bestX []float64
}

func newEvalLog(w io.Writer) *evalLog {
	return &evalLog{w: w}
}

// add records an evaluation of the clamped parameters x.
func (l *evalLog) add(fitness, decoded, quality float64, x []float64) (evalRecord, error) {
	l.count++
	rec := evalRecord{
		Eval:    l.count,
		Fitness: fitness,
		Decoded: decoded,
		Quality: quality,
		ForceX:  x[0],
		ForceY:  x[1],
		KickMin: x[2],
		KickMax: x[3],
	}
	if l.bestX == nil || fitness < l.best.Fitness {
		l.best = rec
		l.bestX = append(l.bestX[:0], x...)
	}

	rows := []evalRecord{rec}
	var err error
	if l.headerWritten {
		err = gocsv.MarshalWithoutHeaders(rows, l.w)
	} else {
		err = gocsv.Marshal(rows, l.w)
		l.headerWritten = true
	}
	if err != nil {
		return rec, fmt.Errorf("writing eval %d: %w", rec.Eval, err)
	}
	return rec, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 1200, "Simulation duration in ticks per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = 4 + floor(3 ln dim))")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		return fmt.Errorf("--output is required")
	}
	if *population < 0 {
		return fmt.Errorf("--population must not be negative")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := config.Init(*configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := NewParamVector()
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(*maxTicks), evalSeeds, config.Cfg())

	logFile, err := os.Create(filepath.Join(*outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating eval log: %w", err)
	}
	defer logFile.Close()
	evals := newEvalLog(logFile)

	start := time.Now()
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)

			rec, err := evals.add(fitness, evaluator.LastDecoded(), evaluator.LastQuality(), clamped)
			if err != nil {
				slog.Error("failed to log evaluation", "error", err)
			}
			slog.Info("eval",
				"n", rec.Eval,
				"decoded", rec.Decoded,
				"quality", rec.Quality,
				"fitness", rec.Fitness,
				"best_decoded", evals.best.Decoded,
				"elapsed", time.Since(start).Round(time.Second).String(),
			)
			return fitness
		},
	}

	// Evaluate already runs seeds in parallel
	settings := &optimize.Settings{FuncEvaluations: *maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: *population}

	slog.Info("starting optimization",
		"params", params.Dim(),
		"max_evals", *maxEvals,
		"seeds", *seeds,
		"max_ticks", *maxTicks,
	)

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		slog.Warn("optimization ended early", "error", err)
	}

	bestX := evals.bestX
	if bestX == nil {
		if result == nil {
			return fmt.Errorf("no evaluations completed")
		}
		bestX = params.Clamp(params.Denormalize(result.X))
	}

	attrs := []any{
		"evals", evals.count,
		"elapsed", time.Since(start).Round(time.Second).String(),
		"best_decoded", evals.best.Decoded,
		"best_quality", evals.best.Quality,
	}
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Name, bestX[i])
	}
	slog.Info("optimization complete", attrs...)

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	params.ApplyToConfig(bestCfg, bestX)
	configOut := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOut); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	slog.Info("saved best config", "path", configOut)

	if msg := evaluator.BestMessage(); msg != "" {
		msgOut := filepath.Join(*outputDir, "best_message.txt")
		if err := os.WriteFile(msgOut, []byte(msg+"\n"), 0644); err != nil {
			return fmt.Errorf("writing best message: %w", err)
		}
		slog.Info("saved best message", "path", msgOut)
	}
	return nil
}
