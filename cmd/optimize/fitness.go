package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/bouncebits/config"
	"github.com/pthm-cable/bouncebits/game"
	"github.com/pthm-cable/bouncebits/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestMessage string
	lastQuality float64 // quality from most recent Evaluate call
	lastDecoded float64 // mean decoded characters from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestMessage returns the decoded message from the best evaluation.
func (fe *FitnessEvaluator) BestMessage() string {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestMessage
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// LastDecoded returns the mean decoded character count from the most recent
// evaluation.
func (fe *FitnessEvaluator) LastDecoded() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastDecoded
}

// runResult holds the results from a single simulation run.
type runResult struct {
	decoded     int                     // characters stored in the message
	windowStats []telemetry.WindowStats // collected via StatsCallback each window
	message     string
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	decoded int
	message string
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative decoded characters, scaled up by channel quality.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Seeds are independent runs, each with its own world
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result, err := fe.runSimulation(x, s)
			if err != nil {
				results[idx] = seedResult{fitness: 0}
				return
			}
			results[idx] = seedResult{
				fitness: computeFitness(result),
				quality: computeQuality(result.windowStats, result.message),
				decoded: result.decoded,
				message: result.message,
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, totalQuality, totalDecoded float64
	bestSeedFitness := math.Inf(1)
	var bestSeedMessage string

	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		totalDecoded += float64(r.decoded)
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedMessage = r.message
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestMessage = bestSeedMessage
	}
	fe.lastQuality = totalQuality / n
	fe.lastDecoded = totalDecoded / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (*runResult, error) {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}

	g, err := game.New(cfg, game.Options{
		Seed: seed,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return nil, err
	}

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	if err := g.Close(); err != nil {
		return nil, err
	}

	result.message = g.Message()
	result.decoded = len(result.message)
	return result, nil
}

// copyConfig creates a copy of the base config that runs can modify.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Spawns = append([]config.SpawnConfig(nil), fe.baseConfig.Spawns...)
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(decoded × (1.0 + quality))
// Throughput dominates; quality at most doubles it so a varied message beats
// a run of identical characters of the same length.
func computeFitness(r *runResult) float64 {
	quality := computeQuality(r.windowStats, r.message)
	return -(float64(r.decoded) * (1.0 + quality))
}

// Quality component weights.
const (
	qualityWeightBalance   = 0.40
	qualityWeightDiversity = 0.40
	qualityWeightHeadroom  = 0.20

	// Distinct printable characters (space to DEL)
	printableRange = 96
)

// computeQuality computes channel quality ∈ [0, 1]: how evenly ones and
// zeros are emitted, how many distinct characters the message holds and
// how little was dropped at capacity.
func computeQuality(windows []telemetry.WindowStats, message string) float64 {
	var bits, ones, decoded, dropped int
	for _, w := range windows {
		bits += w.Bits
		ones += w.Ones
		decoded += w.Decoded
		dropped += w.Dropped
	}
	if bits == 0 {
		return 0
	}

	// 1. Bit balance: 1 at an even split, 0 when every bit is the same
	ratio := telemetry.BitBalance(bits, ones)
	balanceScore := 1.0 - math.Abs(ratio-0.5)*2

	// 2. Character diversity
	seen := make(map[byte]struct{})
	for i := 0; i < len(message); i++ {
		seen[message[i]] = struct{}{}
	}
	diversityScore := float64(len(seen)) / printableRange

	// 3. Capacity headroom: characters lost past the end of the buffer
	headroomScore := 1.0
	if decoded+dropped > 0 {
		headroomScore = float64(decoded) / float64(decoded+dropped)
	}

	quality := qualityWeightBalance*balanceScore +
		qualityWeightDiversity*diversityScore +
		qualityWeightHeadroom*headroomScore

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
