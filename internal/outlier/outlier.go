package outlier

import (
	"math"

	goiforest "github.com/narumiruna/go-iforest/pkg/iforest"
)

// minSamples is the smallest calendar an isolation forest can say
// anything useful about.
const minSamples = 8

type Detector struct {
	threshold  float64
	numTrees   int
	sampleSize int
}

func NewDetector(threshold float64, numTrees, sampleSize int) *Detector {
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.62
	}
	if numTrees <= 0 {
		numTrees = 200
	}
	if sampleSize <= 0 {
		sampleSize = 64
	}
	return &Detector{threshold: threshold, numTrees: numTrees, sampleSize: sampleSize}
}

// Flag fits a forest on the vectors and marks the ones scoring past the
// threshold. Input shorter than minSamples returns all-false: too little
// data to call anything unusual.
func (d *Detector) Flag(vectors [][]float64) []bool {
	flags := make([]bool, len(vectors))
	if d == nil || len(vectors) < minSamples || len(vectors[0]) == 0 {
		return flags
	}

	means, stds := fitNormalizer(vectors)
	normalized := normalizeBatch(vectors, means, stds)

	forest := goiforest.NewWithOptions(goiforest.Options{
		DetectionType: goiforest.DetectionTypeThreshold,
		Threshold:     d.threshold,
		NumTrees:      d.numTrees,
		SampleSize:    d.sampleSize,
	})
	forest.Fit(normalized)

	scores := forest.Score(normalized)
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			continue
		}
		flags[i] = s >= d.threshold
	}
	return flags
}

func fitNormalizer(samples [][]float64) (means, stds []float64) {
	n := len(samples)
	dim := len(samples[0])
	means = make([]float64, dim)
	stds = make([]float64, dim)

	for _, s := range samples {
		for j, v := range s {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(n)
	}
	for _, s := range samples {
		for j, v := range s {
			diff := v - means[j]
			stds[j] += diff * diff
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / float64(n))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

func normalizeBatch(samples [][]float64, means, stds []float64) [][]float64 {
	out := make([][]float64, len(samples))
	for i, s := range samples {
		row := make([]float64, len(s))
		for j, v := range s {
			row[j] = (v - means[j]) / stds[j]
		}
		out[i] = row
	}
	return out
}
