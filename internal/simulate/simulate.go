// Package simulate is the embedded track generator. It produces
// schema-conformant results without any external toolchain, which makes it
// the always-available fallback strategy.
package simulate

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/particlelab/tracksim/internal/schema"
)

// Physics parameters for the placeholder noise model. The ideal trajectory is
// a linear-plus-quadratic curve across x in [0, domainMax].
const (
	domainMax        = 100
	initialY         = 5.0
	initialPhi       = -0.2
	curvatureRadius  = 100.0
	measurementSigma = 2.0
)

// idealY evaluates the ideal trajectory at x.
func idealY(x float64) float64 {
	return initialY + x*math.Tan(initialPhi) - (x*x)/(2*curvatureRadius)
}

// Generate produces one simulation result. It is a pure function of seed:
// equal seeds yield bit-identical results. Hits carry zero-mean Gaussian
// noise at measurementSigma; the reconstructed track carries half that,
// modeling improved estimation.
func Generate(seed uint64) schema.SimulationResult {
	src := rand.NewPCG(seed, seed)
	hitNoise := distuv.Normal{Mu: 0, Sigma: measurementSigma, Src: src}
	reconNoise := distuv.Normal{Mu: 0, Sigma: measurementSigma / 2, Src: src}

	layers := schema.DefaultLayers()

	trueTrack := make([]schema.TrackPoint, 0, domainMax+1)
	for x := 0; x <= domainMax; x++ {
		fx := float64(x)
		trueTrack = append(trueTrack, schema.TrackPoint{X: fx, Y: idealY(fx)})
	}

	hits := make([]schema.TrackPoint, 0, len(layers))
	kfTrack := make([]schema.TrackPoint, 0, len(layers))
	for _, layer := range layers {
		hits = append(hits, schema.TrackPoint{X: layer, Y: idealY(layer) + hitNoise.Rand()})
		kfTrack = append(kfTrack, schema.TrackPoint{X: layer, Y: idealY(layer) + reconNoise.Rand()})
	}

	return schema.SimulationResult{
		DetectorLayers: layers,
		TrueTrack:      trueTrack,
		Hits:           hits,
		KFTrack:        kfTrack,
	}
}

// RandomSeed derives a fresh seed by hashing the current time, so unseeded
// invocations are statistically independent across requests.
func RandomSeed() uint64 {
	h := fnv.New64a()
	h.Write([]byte(strconv.FormatInt(time.Now().UnixNano(), 10)))
	return h.Sum64()
}

// GenerateRandom produces one result with a time-derived seed.
func GenerateRandom() schema.SimulationResult {
	return Generate(RandomSeed())
}
