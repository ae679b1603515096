// stimgen generates stimulus datasets for a seed/correlation grid and writes
// them as JSON, for calibrating stimuli outside a live session.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/JiarongF/StatsLearning/domain/stats"
	"github.com/JiarongF/StatsLearning/domain/stimulus"
	"github.com/JiarongF/StatsLearning/internal/generator"
)

type gridEntry struct {
	Seed        int64            `json:"seed"`
	TargetR     float64          `json:"target_r"`
	RealizedR   *float64         `json:"realized_r"`
	ActualSlope *float64         `json:"actual_slope,omitempty"`
	Points      []stimulus.Point `json:"points"`
}

func main() {
	seedsFlag := flag.String("seeds", "42", "comma-separated seeds")
	rsFlag := flag.String("correlations", "-0.9,-0.5,0,0.5,0.9", "comma-separated target correlations")
	n := flag.Int("n", 30, "sample size")
	clustered := flag.Bool("clustered", false, "use the cluster-mixture variant")
	flag.Parse()

	seeds, err := parseInt64s(*seedsFlag)
	if err != nil {
		log.Fatalf("invalid -seeds: %v", err)
	}
	targets, err := parseFloats(*rsFlag)
	if err != nil {
		log.Fatalf("invalid -correlations: %v", err)
	}

	cache, err := generator.NewBaseCache(0)
	if err != nil {
		log.Fatalf("failed to create cache: %v", err)
	}
	gen := generator.New(cache)

	var entries []gridEntry
	for _, seed := range seeds {
		for _, target := range targets {
			var dataset stimulus.GeneratedDataset
			if *clustered {
				dataset, err = generator.GenerateClustered(target, generator.MixtureOptions{
					SampleSize: *n,
					Seed:       seed,
				})
			} else {
				dataset, err = gen.Generate(stimulus.GenerationRequest{
					TargetCorrelation: target,
					SampleSize:        *n,
					Seed:              seed,
				})
			}
			if err != nil {
				log.Fatalf("generate seed=%d r=%.2f: %v", seed, target, err)
			}

			entry := gridEntry{
				Seed:        seed,
				TargetR:     target,
				ActualSlope: dataset.ActualSlope,
				Points:      dataset.Points,
			}
			if r, ok := stats.Pearson(dataset.Points); ok {
				entry.RealizedR = &r
			}
			entries = append(entries, entry)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		log.Fatalf("encode: %v", err)
	}
}

func parseInt64s(s string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
