package searcher

import (
	"context"
	"math"
	"sync"

	"lookahead/game"
)

// Tree binds a search tree to one game position. It is the unit the
// UCT controller drives: each Step call runs one full
// selection/expansion/simulation/backpropagation cycle against a fresh
// clone of the bound state.
//
// A Tree is not safe for concurrent Step calls; parallelism lives in
// the rollout fan-out inside a single Step.
type Tree struct {
	root            *node
	state           game.State
	exploreFactor   float64
	rollouts        int
	rolloutBehavior game.Behavior
	metrics         Collector
}

type TreeOption func(t *Tree)

// WithExploreFactor sets the weight of the exploration term in the
// selection formula.
func WithExploreFactor(factor float64) TreeOption {
	return func(t *Tree) {
		if factor > 0 {
			t.exploreFactor = factor
		}
	}
}

// WithRollouts sets how many independent playouts estimate a leaf's
// value in one simulation step.
func WithRollouts(rollouts int) TreeOption {
	return func(t *Tree) {
		if rollouts > 0 {
			t.rollouts = rollouts
		}
	}
}

// WithRolloutBehavior sets the policy both seats follow during
// playouts. Each playout gets its own clone.
func WithRolloutBehavior(behavior game.Behavior) TreeOption {
	return func(t *Tree) {
		if behavior != nil {
			t.rolloutBehavior = behavior
		}
	}
}

func WithTreeCollector(collector Collector) TreeOption {
	return func(t *Tree) {
		if collector != nil {
			t.metrics = collector
		}
	}
}

func NewTree(state game.State, options ...TreeOption) *Tree {
	t := &Tree{
		root:            newNode(state),
		state:           state.Clone(),
		exploreFactor:   math.Sqrt2,
		rollouts:        4,
		rolloutBehavior: game.NewRandomBehavior(),
		metrics:         NewNoCollector(),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// Step runs one search cycle: descend by UCT to a leaf, expand it,
// estimate its value by rollouts, and fold the result back along the
// descended path. The context bounds only the rollouts; selection and
// expansion always complete.
func (t *Tree) Step(ctx context.Context) {
	state := t.state.Clone()
	path := []*node{t.root}

	// Selection: descend while the current node has been expanded,
	// always toward the child maximizing the UCT score.
	current := t.root
	for current.expanded() && len(current.children) > 0 {
		action := current.selectAction(t.exploreFactor)
		state.Apply(action)
		current = current.children[action]
		path = append(path, current)
	}

	// Expansion: a non-terminal leaf grows one child per legal action,
	// exactly once; the child set is fixed from this point on.
	if !current.terminal() && !current.expanded() {
		current.children = make(map[game.Action]*node)
		for _, action := range state.LegalActions() {
			childState := state.Clone()
			childState.Apply(action)
			current.children[action] = newNode(childState)
		}
	}

	result := t.simulate(ctx, current, state)

	// Backpropagation: the result stays in player-one units all the
	// way up; perspective is applied only when reading scores.
	for _, n := range path {
		n.update(result)
	}
	t.metrics.AddStep()
}

// selectAction picks the action whose child maximizes the UCT score.
func (n *node) selectAction(exploreFactor float64) game.Action {
	var best game.Action
	maxScore := math.Inf(-1)
	picked := false
	for action, child := range n.children {
		score := n.uct(child, exploreFactor)
		if !picked || score > maxScore {
			maxScore = score
			best = action
			picked = true
		}
	}
	return best
}

// simulate estimates the leaf's value in player-one units. A decided
// leaf needs no playout; otherwise the configured number of rollouts
// run concurrently on independent clones and their outcomes average.
func (t *Tree) simulate(ctx context.Context, leaf *node, state game.State) float64 {
	if leaf.terminal() {
		return leaf.outcome.Scalar()
	}

	// Clones happen up front so the playout goroutines share nothing:
	// each owns its state and both seat behaviors outright.
	results := make([]float64, t.rollouts)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		playout := state.Clone()
		one := t.rolloutBehavior.Clone()
		two := t.rolloutBehavior.Clone()
		go func(i int, playout game.State, one, two game.Behavior) {
			defer wg.Done()
			results[i] = playout.Simulate(ctx, one, two).Scalar()
		}(i, playout, one, two)
	}
	wg.Wait()
	t.metrics.AddRollouts(t.rollouts)

	var sum float64
	for _, r := range results {
		sum += r
	}
	return sum / float64(t.rollouts)
}

// Evaluation returns the root's mean advantage for player one.
func (t *Tree) Evaluation() float64 {
	return t.root.advantage / (float64(t.root.visits) + epsilon)
}

// ActionScores returns, per root action, the value of the resulting
// position from the perspective of the player who moved to reach it.
// It fails with ErrNotExpanded before the first Step has expanded the
// root, and on a terminal root.
func (t *Tree) ActionScores() (map[game.Action]float64, error) {
	if !t.root.expanded() || len(t.root.children) == 0 {
		return nil, ErrNotExpanded
	}

	scores := make(map[game.Action]float64, len(t.root.children))
	for action, child := range t.root.children {
		wins, err := child.wins(child.player.Opponent())
		if err != nil {
			return nil, err
		}
		scores[action] = wins / (float64(child.visits) + epsilon)
	}
	return scores, nil
}

// ActionScore returns the score of a single root action, failing with
// ErrNotAChild when the root has no child for it.
func (t *Tree) ActionScore(action game.Action) (float64, error) {
	if !t.root.expanded() || len(t.root.children) == 0 {
		return 0, ErrNotExpanded
	}
	child, err := t.root.child(action)
	if err != nil {
		return 0, err
	}
	wins, err := child.wins(child.player.Opponent())
	if err != nil {
		return 0, err
	}
	return wins / (float64(child.visits) + epsilon), nil
}
