package game

import "context"

// Player identifies one of the two seats in a game.
type Player int

const (
	PlayerOne Player = iota + 1
	PlayerTwo
)

func (p Player) Opponent() Player {
	switch p {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	}
	panic("no opponent for invalid player")
}

func (p Player) String() string {
	switch p {
	case PlayerOne:
		return "one"
	case PlayerTwo:
		return "two"
	}
	return "invalid"
}

// Outcome is the result of a game from player one's perspective.
type Outcome int

const (
	Undecided Outcome = iota
	Win
	Loss
	Draw
)

// Scalar maps a decided outcome to its signed value for player one:
// +1 for a win, -1 for a loss, 0 for a draw. An undecided game has no
// scalar value.
func (o Outcome) Scalar() float64 {
	switch o {
	case Win:
		return 1
	case Loss:
		return -1
	case Draw:
		return 0
	}
	panic("no scalar value for an undecided outcome")
}

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	case Draw:
		return "draw"
	}
	return "undecided"
}

// Action is an opaque move supplied by the embedding game. Its dynamic
// type must be comparable: actions key the search tree's child maps.
type Action any

// FeatureVector is a fixed-length encoding of a game state. Two vectors
// are the same training key iff they have equal length and every
// component compares exactly equal.
type FeatureVector []float64

// State is the capability surface the engine consumes from the
// embedding game. Implementations are mutable; Clone isolates them.
type State interface {
	ActivePlayer() Player
	Outcome() Outcome
	IsDecided() bool
	Clone() State
	Apply(Action)
	LegalActions() []Action
	Featurize() FeatureVector
	// Simulate plays the state to a terminal outcome with one behavior
	// per seat. The context is polled at most once per move.
	Simulate(ctx context.Context, one, two Behavior) Outcome
}

// Behavior picks an action for whichever seat it occupies. Clone must
// isolate any internal mutable policy state, e.g. a random stream, so
// that clones never contend.
type Behavior interface {
	Clone() Behavior
	ChooseAction(State) Action
}
