package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type mockState struct {
	actions []Action
}

func (s *mockState) ActivePlayer() Player     { return PlayerOne }
func (s *mockState) Outcome() Outcome         { return Undecided }
func (s *mockState) IsDecided() bool          { return false }
func (s *mockState) Clone() State             { c := *s; return &c }
func (s *mockState) Apply(Action)             {}
func (s *mockState) LegalActions() []Action   { return s.actions }
func (s *mockState) Featurize() FeatureVector { return nil }
func (s *mockState) Simulate(ctx context.Context, one, two Behavior) Outcome {
	return Undecided
}

func TestPlayerOpponent(t *testing.T) {
	require.Equal(t, PlayerTwo, PlayerOne.Opponent())
	require.Equal(t, PlayerOne, PlayerTwo.Opponent())
	require.Panics(t, func() { Player(0).Opponent() })
}

func TestOutcomeScalar(t *testing.T) {
	require.Equal(t, 1.0, Win.Scalar())
	require.Equal(t, -1.0, Loss.Scalar())
	require.Equal(t, 0.0, Draw.Scalar())
	require.Panics(t, func() { Undecided.Scalar() },
		"an undecided outcome has no scalar value")
}

func TestSeededRandomBehaviorIsDeterministic(t *testing.T) {
	state := &mockState{actions: []Action{0, 1, 2, 3, 4, 5, 6, 7}}

	first := NewSeededRandomBehavior(42)
	second := NewSeededRandomBehavior(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, first.ChooseAction(state), second.ChooseAction(state),
			"same seed should produce the same action sequence")
	}
}

func TestRandomBehaviorCloneIsIndependent(t *testing.T) {
	state := &mockState{actions: []Action{0, 1, 2, 3, 4, 5, 6, 7}}

	parent := NewSeededRandomBehavior(7)
	clone := parent.Clone()

	// A clone of the same parent state derives the same stream.
	sibling := NewSeededRandomBehavior(7).Clone()
	for i := 0; i < 100; i++ {
		require.Equal(t, clone.ChooseAction(state), sibling.ChooseAction(state))
	}
}

func TestRandomBehaviorPanicsWithoutActions(t *testing.T) {
	require.Panics(t, func() {
		NewSeededRandomBehavior(1).ChooseAction(&mockState{})
	})
}
