package ports

import (
	"github.com/JiarongF/StatsLearning/domain/stimulus"
)

// GeneratorPort is the generator surface exposed to stimulus collaborators.
// All operations are synchronous, deterministic in their inputs, and safe to
// call on every parameter change.
type GeneratorPort interface {
	// Generate produces the full dataset for a request (base + mix).
	Generate(req stimulus.GenerationRequest) (stimulus.GeneratedDataset, error)

	// Base returns the cacheable base vectors for a (sampleSize, seed)
	// pair. Reusing one base across a slider drag keeps the animation a
	// smooth deformation of a fixed cloud.
	Base(sampleSize int, seed int64) (stimulus.BaseVectors, error)
}
