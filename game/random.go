package game

import (
	"math"

	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

// RandomBehavior picks uniformly among the legal actions using its own
// random stream. No process-wide source is touched, so distinct
// behaviors never need synchronization.
type RandomBehavior struct {
	rng *rand.Rand
}

// NewRandomBehavior returns a behavior seeded from system entropy.
func NewRandomBehavior() *RandomBehavior {
	return NewSeededRandomBehavior(frand.Uint64n(math.MaxUint64))
}

// NewSeededRandomBehavior returns a behavior with a deterministic
// stream, for reproducible runs.
func NewSeededRandomBehavior(seed uint64) *RandomBehavior {
	return &RandomBehavior{rng: rand.New(rand.NewSource(seed))}
}

// Clone derives an independent stream from the parent's, so a clone and
// its parent can be driven concurrently.
func (b *RandomBehavior) Clone() Behavior {
	return NewSeededRandomBehavior(b.rng.Uint64())
}

func (b *RandomBehavior) ChooseAction(state State) Action {
	actions := state.LegalActions()
	if len(actions) == 0 {
		panic("no legal action to choose from")
	}
	return actions[b.rng.Intn(len(actions))]
}
