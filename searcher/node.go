package searcher

import (
	"errors"
	"math"

	"lookahead/game"
)

// epsilon floors every divisor in the selection formula. Because an
// unvisited child's explore term divides by epsilon alone, it dwarfs
// any visited sibling's score: unvisited children are always selected
// first. That tie-break is load-bearing, not an approximation.
const epsilon = 1e-5

var (
	// ErrNotExpanded reports a score request on a node with no
	// children, either never expanded or terminal.
	ErrNotExpanded = errors.New("node has no children")
	// ErrNotAChild reports a lookup of an action that is not a child
	// of the queried node.
	ErrNotAChild = errors.New("action is not a child of this node")
	// ErrInvalidPlayer reports a wins query for a player outside the
	// two seats.
	ErrInvalidPlayer = errors.New("invalid player")
)

// node is one search tree node. Children are owned exclusively by
// their parent, keyed by the action that produces them; there are no
// parent back-references since every step traverses root-downward.
type node struct {
	player    game.Player
	outcome   game.Outcome
	advantage float64 // cumulative player-one advantage
	visits    int
	children  map[game.Action]*node // nil until expanded
}

// newNode builds the node for a freshly reached state. A terminal
// node's advantage starts at +Inf or -Inf so it dominates (or is
// shunned by) every selection comparison regardless of visit counts.
func newNode(state game.State) *node {
	n := &node{player: state.ActivePlayer()}
	if state.IsDecided() {
		n.outcome = state.Outcome()
		switch n.outcome {
		case game.Win:
			n.advantage = math.Inf(1)
		case game.Loss:
			n.advantage = math.Inf(-1)
		}
	}
	return n
}

func (n *node) terminal() bool {
	return n.outcome != game.Undecided
}

func (n *node) expanded() bool {
	return n.children != nil
}

// wins returns the accumulated advantage from the given player's
// perspective. The accumulator is kept in player-one units; player
// two's share is the complement against the visit count.
func (n *node) wins(player game.Player) (float64, error) {
	switch player {
	case game.PlayerOne:
		return n.advantage, nil
	case game.PlayerTwo:
		return float64(n.visits) - n.advantage, nil
	}
	return 0, ErrInvalidPlayer
}

func (n *node) child(action game.Action) (*node, error) {
	child, ok := n.children[action]
	if !ok {
		return nil, ErrNotAChild
	}
	return child, nil
}

// update folds one simulation result, in player-one units, into the
// node's statistics.
func (n *node) update(result float64) {
	n.advantage += result
	n.visits++
}

// uct scores a child for selection by the player active at its parent:
// exploitation of the child's observed value plus an exploration bonus
// that shrinks as the child is visited.
func (n *node) uct(child *node, exploreFactor float64) float64 {
	wins, err := child.wins(n.player)
	if err != nil {
		panic(err) // node players are assigned at construction
	}
	childVisits := float64(child.visits)
	exploit := wins / (childVisits + epsilon)
	explore := exploreFactor * math.Sqrt(math.Log(float64(n.visits)+epsilon)/(childVisits+epsilon))
	return exploit + explore + epsilon
}
