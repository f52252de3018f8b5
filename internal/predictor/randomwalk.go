package predictor

import (
	"math/rand"
	"sync"
	"time"

	"MarketLens/internal/model"
)

// DefaultVolatility bounds the random move as a fraction of the current price.
const DefaultVolatility = 0.15

// RandomWalk is a placeholder model: a uniformly random move within ±Volatility,
// a confidence in [65, 95] and support/resistance a few percent either side of the
// price. It is not fitted to anything.
type RandomWalk struct {
	Volatility float64

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewRandomWalk creates the placeholder model. A zero seed draws one from the clock.
func NewRandomWalk(volatility float64, seed int64) *RandomWalk {
	if volatility <= 0 {
		volatility = DefaultVolatility
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomWalk{
		Volatility: volatility,
		rng:        rand.New(rand.NewSource(seed)),
		now:        time.Now,
	}
}

func (r *RandomWalk) Name() string { return "random-walk" }

func (r *RandomWalk) Predict(in Input) (*model.Prediction, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	price := in.CurrentPrice

	r.mu.Lock()
	move := r.rng.Float64()*2*r.Volatility - r.Volatility
	confidence := 65 + r.rng.Intn(31)
	support := price * (0.95 - r.rng.Float64()*0.05)
	resistance := price * (1.05 + r.rng.Float64()*0.05)
	r.mu.Unlock()

	e := estimate{
		predicted:  price * (1 + move),
		confidence: confidence,
		support:    support,
		resistance: resistance,
	}
	return finalize(r.Name(), in, e, r.now()), nil
}
