package searcher

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"lookahead/game"
)

// nimState is a countdown game for integration-style tests: players
// alternate taking one or two tokens and whoever takes the last token
// wins.
type nimState struct {
	tokens int
	active game.Player
	winner game.Player
}

func newNim(tokens int) *nimState {
	return &nimState{tokens: tokens, active: game.PlayerOne}
}

func (s *nimState) ActivePlayer() game.Player { return s.active }

func (s *nimState) Outcome() game.Outcome {
	switch s.winner {
	case game.PlayerOne:
		return game.Win
	case game.PlayerTwo:
		return game.Loss
	}
	return game.Undecided
}

func (s *nimState) IsDecided() bool { return s.winner != 0 }

func (s *nimState) Clone() game.State { c := *s; return &c }

func (s *nimState) Apply(action game.Action) {
	s.tokens -= action.(int)
	if s.tokens <= 0 {
		s.winner = s.active
	}
	s.active = s.active.Opponent()
}

func (s *nimState) LegalActions() []game.Action {
	if s.IsDecided() {
		return nil
	}
	actions := []game.Action{1}
	if s.tokens >= 2 {
		actions = append(actions, 2)
	}
	return actions
}

func (s *nimState) Featurize() game.FeatureVector {
	return game.FeatureVector{float64(s.tokens), float64(s.active)}
}

func (s *nimState) Simulate(ctx context.Context, one, two game.Behavior) game.Outcome {
	for !s.IsDecided() {
		behavior := one
		if s.active == game.PlayerTwo {
			behavior = two
		}
		s.Apply(behavior.ChooseAction(s))
	}
	return s.Outcome()
}

func testTree(state game.State) *Tree {
	return NewTree(state,
		WithRollouts(2),
		WithRolloutBehavior(game.NewSeededRandomBehavior(1)))
}

func TestStepExpandsRootOnce(t *testing.T) {
	tree := testTree(newNim(3))

	tree.Step(context.Background())

	require.True(t, tree.root.expanded())
	require.Len(t, tree.root.children, 2, "one child per legal action")
	require.Equal(t, 1, tree.root.visits)

	for _, child := range tree.root.children {
		require.Equal(t, 0, child.visits, "expansion alone should not visit children")
	}
}

func TestStepSelectsUnvisitedChildFirst(t *testing.T) {
	tree := testTree(newNim(3))

	// First step expands the root; the next two must each descend into
	// a different, still unvisited child.
	for i := 0; i < 3; i++ {
		tree.Step(context.Background())
	}

	for action, child := range tree.root.children {
		require.Equal(t, 1, child.visits, "child %v should have been visited exactly once", action)
	}
}

func TestStepAlwaysSelectsForcedWin(t *testing.T) {
	// Taking both tokens ends the game immediately in player one's
	// favor; that child's infinite advantage must win every selection,
	// even against an unvisited sibling.
	tree := testTree(newNim(2))

	steps := 5
	for i := 0; i < steps; i++ {
		tree.Step(context.Background())
	}

	winning, err := tree.root.child(2)
	require.NoError(t, err)
	require.Equal(t, steps-1, winning.visits, "every post-expansion step should descend into the forced win")

	other, err := tree.root.child(1)
	require.NoError(t, err)
	require.Equal(t, 0, other.visits)
}

func TestBackpropagationStaysInPlayerOneUnits(t *testing.T) {
	tree := testTree(newNim(2))

	steps := 5
	for i := 0; i < steps; i++ {
		tree.Step(context.Background())
	}

	// Every step after the first backs up the forced win's +1 along
	// the root-to-leaf path, regardless of who is active where.
	// The first step's rollouts may estimate anywhere in [-1, 1].
	require.Equal(t, steps, tree.root.visits)
	require.GreaterOrEqual(t, tree.root.advantage, float64(steps-1)-1)
}

func TestActionScoresNotExpanded(t *testing.T) {
	tree := testTree(newNim(3))

	_, err := tree.ActionScores()
	require.ErrorIs(t, err, ErrNotExpanded, "a never-expanded root has no scores to report")
}

func TestActionScoresTerminalRoot(t *testing.T) {
	terminal := newNim(1)
	terminal.Apply(1)
	tree := testTree(terminal)

	tree.Step(context.Background())

	_, err := tree.ActionScores()
	require.ErrorIs(t, err, ErrNotExpanded)
}

func TestActionScoresMoverPerspective(t *testing.T) {
	tree := testTree(newNim(2))

	for i := 0; i < 5; i++ {
		tree.Step(context.Background())
	}

	scores, err := tree.ActionScores()
	require.NoError(t, err)
	require.Len(t, scores, 2)
	require.True(t, math.IsInf(scores[2], 1),
		"the forced win scores infinitely for the player who moved into it")
	require.Greater(t, scores[2], scores[1])
}

func TestActionScoreUnknownAction(t *testing.T) {
	tree := testTree(newNim(2))
	tree.Step(context.Background())

	_, err := tree.ActionScore(7)
	require.ErrorIs(t, err, ErrNotAChild)
}
