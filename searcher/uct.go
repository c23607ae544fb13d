package searcher

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"lookahead/game"
)

// UCT drives a search tree against a wall-clock time budget and reads
// the aggregate out of it. It is the evaluator behind both training
// labels and move choices.
type UCT struct {
	budget          time.Duration
	exploreFactor   float64
	rollouts        int
	rolloutBehavior game.Behavior
	metrics         Collector
}

type Option func(u *UCT)

// WithTimeBudget sets the wall-clock budget of one Evaluate or
// ChooseAction call.
func WithTimeBudget(budget time.Duration) Option {
	return func(u *UCT) {
		if budget > 0 {
			u.budget = budget
		}
	}
}

func WithUCTExploreFactor(factor float64) Option {
	return func(u *UCT) {
		if factor > 0 {
			u.exploreFactor = factor
		}
	}
}

func WithUCTRollouts(rollouts int) Option {
	return func(u *UCT) {
		if rollouts > 0 {
			u.rollouts = rollouts
		}
	}
}

func WithUCTRolloutBehavior(behavior game.Behavior) Option {
	return func(u *UCT) {
		if behavior != nil {
			u.rolloutBehavior = behavior
		}
	}
}

func WithMetrics() Option {
	return func(u *UCT) {
		u.metrics = NewCollector()
	}
}

func NewUCT(options ...Option) *UCT {
	u := &UCT{
		exploreFactor:   math.Sqrt2,
		rollouts:        4,
		rolloutBehavior: game.NewRandomBehavior(),
		metrics:         NewNoCollector(),
	}
	for _, option := range options {
		option(u)
	}
	if u.budget <= 0 {
		panic("must specify a positive time budget")
	}
	return u
}

// TimeBudget is the wall-clock budget of one search call.
func (u *UCT) TimeBudget() time.Duration {
	return u.budget
}

// Evaluate searches the state for the full time budget and returns the
// root's mean advantage for player one. Cancellation is cooperative:
// the context is polled between whole search cycles, never mid-cycle.
func (u *UCT) Evaluate(ctx context.Context, state game.State) (float64, error) {
	tree, err := u.search(ctx, state)
	if err != nil {
		return 0, err
	}
	return tree.Evaluation(), nil
}

// ChooseAction searches the state for the full time budget and returns
// the best-scored root action. It fails with ErrNotExpanded when the
// state has no action to choose, i.e. it is terminal.
func (u *UCT) ChooseAction(ctx context.Context, state game.State) (game.Action, error) {
	tree, err := u.search(ctx, state)
	if err != nil {
		return nil, err
	}

	scores, err := tree.ActionScores()
	if err != nil {
		return nil, err
	}
	var best game.Action
	maxScore := math.Inf(-1)
	picked := false
	for action, score := range scores {
		if !picked || score > maxScore {
			maxScore = score
			best = action
			picked = true
		}
	}
	return best, nil
}

func (u *UCT) search(ctx context.Context, state game.State) (*Tree, error) {
	tree := NewTree(state,
		WithExploreFactor(u.exploreFactor),
		WithRollouts(u.rollouts),
		WithRolloutBehavior(u.rolloutBehavior),
		WithTreeCollector(u.metrics))

	u.metrics.Start()
	deadline := time.Now().Add(u.budget)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		tree.Step(ctx)
	}
	metric := u.metrics.Complete()
	if metric.Steps > 0 {
		log.Debug().
			Dur("duration", metric.Duration).
			Int64("steps", metric.Steps).
			Int64("rollouts", metric.Rollouts).
			Msg("search completed")
	}

	return tree, nil
}
