package searcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lookahead/game"
)

func TestNewUCTRequiresBudget(t *testing.T) {
	require.Panics(t, func() { NewUCT() })
}

func TestTimeBudget(t *testing.T) {
	u := NewUCT(WithTimeBudget(25 * time.Millisecond))
	require.Equal(t, 25*time.Millisecond, u.TimeBudget())
}

func TestChooseActionFindsForcedWin(t *testing.T) {
	u := NewUCT(
		WithTimeBudget(50*time.Millisecond),
		WithUCTRollouts(2),
		WithUCTRolloutBehavior(game.NewSeededRandomBehavior(1)),
		WithMetrics())

	action, err := u.ChooseAction(context.Background(), newNim(2))

	require.NoError(t, err)
	require.Equal(t, 2, action, "taking both tokens wins immediately")
}

func TestChooseActionTerminalState(t *testing.T) {
	terminal := newNim(1)
	terminal.Apply(1)

	u := NewUCT(WithTimeBudget(5 * time.Millisecond))
	_, err := u.ChooseAction(context.Background(), terminal)

	require.ErrorIs(t, err, ErrNotExpanded)
}

func TestEvaluateWonPosition(t *testing.T) {
	u := NewUCT(
		WithTimeBudget(50*time.Millisecond),
		WithUCTRollouts(2),
		WithUCTRolloutBehavior(game.NewSeededRandomBehavior(1)))

	// Player one takes the last token on every continuation.
	value, err := u.Evaluate(context.Background(), newNim(1))

	require.NoError(t, err)
	require.Greater(t, value, 0.9, "a won position should evaluate near +1")
}

func TestEvaluateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := NewUCT(WithTimeBudget(time.Minute))
	_, err := u.Evaluate(ctx, newNim(3))

	require.ErrorIs(t, err, context.Canceled,
		"cancellation is polled before every search cycle")
}
