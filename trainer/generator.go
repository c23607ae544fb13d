package trainer

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"lookahead/game"
)

const (
	canonicalFile = "examples.txt"
	backupSuffix  = "_backup.txt"
	// Checkpoints land roughly every two minutes of wall-clock time;
	// the batch size is derived from the evaluator's per-call budget.
	checkpointSpan = 120 * time.Second
)

// Evaluator labels a game state by a budgeted search. One instance per
// worker; see NewGenerator.
type Evaluator interface {
	TimeBudget() time.Duration
	Evaluate(ctx context.Context, state game.State) (float64, error)
}

// Config controls one generation run.
type Config struct {
	// Examples is the number of examples to generate, split across the
	// workers. Pre-existing examples folded in append mode are not
	// subtracted from it.
	Examples int
	// Dir is the output directory; created if missing.
	Dir string
	// Append folds any prior output files in Dir into the canonical
	// file first and resumes on top of them.
	Append bool
	// Workers is the number of generation workers. Zero derives
	// floor(NumCPU/2): each worker fans out further into rollouts, so
	// half the cores are left as headroom.
	Workers int
}

// Generator mass-produces labeled training examples. Candidate states
// are drawn uniformly from random self-play games and labeled by the
// evaluator; each worker accumulates into its own store and file, and
// all partial results reduce into one canonical file at the end.
type Generator struct {
	cfg          Config
	initial      game.State
	newEvaluator func() Evaluator
}

// NewGenerator prepares a run rooted at the given initial state. The
// factory is called once per worker so that workers share no evaluator
// state.
func NewGenerator(initial game.State, newEvaluator func() Evaluator, cfg Config) *Generator {
	return &Generator{cfg: cfg, initial: initial, newEvaluator: newEvaluator}
}

// Run generates until every worker has met its share of the configured
// example count, then reduces all per-worker files into the canonical
// file. A crash between checkpoints loses at most one checkpoint
// interval of examples; rerunning with Append recovers the rest from
// the surviving files.
func (g *Generator) Run(ctx context.Context) error {
	logger := log.With().Str("run", uuid.NewString()).Logger()

	workers := g.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() / 2
	}
	if workers < 1 {
		workers = 1
	}

	if err := os.MkdirAll(g.cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	canonical := filepath.Join(g.cfg.Dir, canonicalFile)

	seed := NewStore()
	if g.cfg.Append {
		var err error
		seed, err = g.fold(logger, canonical)
		if err != nil {
			return err
		}
	}

	budget := g.newEvaluator().TimeBudget()
	if budget <= 0 {
		return fmt.Errorf("evaluator time budget must be positive, got %v", budget)
	}
	batchSize := int(checkpointSpan / budget)
	if batchSize < 1 {
		batchSize = 1
	}

	logger.Info().
		Int("examples", g.cfg.Examples).
		Int("workers", workers).
		Int("batchSize", batchSize).
		Bool("append", g.cfg.Append).
		Msg("starting generation")

	quotas := partition(g.cfg.Examples, workers)
	grp, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		store := NewStore()
		if i == 0 {
			store = seed // append mode seeds exactly one worker
		}
		path := filepath.Join(g.cfg.Dir, workerFile(i))
		quota := quotas[i]
		worker := logger.With().Int("worker", i).Logger()
		grp.Go(func() error {
			return g.generate(gctx, worker, store, quota, batchSize, path)
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	return g.reduce(logger, canonical)
}

func workerFile(i int) string {
	return fmt.Sprintf("examples%d.txt", i+1)
}

func (g *Generator) generate(ctx context.Context, logger zerolog.Logger, store *Store, quota, batchSize int, path string) error {
	logger.Info().Int("quota", quota).Msg("worker started")

	evaluator := g.newEvaluator()
	behavior := game.NewRandomBehavior()
	rng := rand.New(rand.NewSource(frand.Uint64n(math.MaxUint64)))

	backup := path + backupSuffix
	for accepted := 0; accepted < quota; accepted++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		state := g.sample(behavior, rng)
		label, err := evaluator.Evaluate(ctx, state)
		if err != nil {
			return err
		}
		store.Add(state.Featurize(), label)

		if (accepted+1)%batchSize == 0 {
			if err := WriteFile(backup, store); err != nil {
				return err
			}
			logger.Info().Int("examples", store.Len()).Msg("checkpoint written")
		}
	}

	if err := WriteFile(path, store); err != nil {
		return err
	}
	if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove backup file: %w", err)
	}
	logger.Info().Int("examples", store.Len()).Msg("worker finished")
	return nil
}

// sample plays one random self-play game to its end and picks one state
// uniformly from the full history, initial and terminal included.
func (g *Generator) sample(behavior game.Behavior, rng *rand.Rand) game.State {
	state := g.initial.Clone()
	history := []game.State{state.Clone()}
	for !state.IsDecided() {
		state.Apply(behavior.ChooseAction(state))
		history = append(history, state.Clone())
	}
	return history[rng.Intn(len(history))]
}

// fold merges every prior output file, backups included, into the
// canonical file and removes the stragglers. Parse failures surface
// here, before any generation work starts.
func (g *Generator) fold(logger zerolog.Logger, canonical string) (*Store, error) {
	paths, err := filepath.Glob(filepath.Join(g.cfg.Dir, "examples*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate prior output: %w", err)
	}

	folded := NewStore()
	for _, p := range paths {
		store, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		folded.Merge(store)
	}
	if len(paths) == 0 {
		return folded, nil
	}

	if err := WriteFile(canonical, folded); err != nil {
		return nil, err
	}
	for _, p := range paths {
		if p == canonical {
			continue
		}
		if err := os.Remove(p); err != nil {
			return nil, fmt.Errorf("failed to remove straggler file: %w", err)
		}
	}
	logger.Info().Int("files", len(paths)).Int("examples", folded.Len()).Msg("folded prior output")
	return folded, nil
}

// reduce merges the canonical file (if present) and every worker file,
// in file enumeration order, into the canonical file, then deletes the
// worker files.
func (g *Generator) reduce(logger zerolog.Logger, canonical string) error {
	paths, err := filepath.Glob(filepath.Join(g.cfg.Dir, "examples*.txt"))
	if err != nil {
		return fmt.Errorf("failed to enumerate worker output: %w", err)
	}

	merged := NewStore()
	for _, p := range paths {
		store, err := ReadFile(p)
		if err != nil {
			return err
		}
		merged.Merge(store)
	}

	if err := WriteFile(canonical, merged); err != nil {
		return err
	}
	for _, p := range paths {
		if p == canonical {
			continue
		}
		if err := os.Remove(p); err != nil {
			return fmt.Errorf("failed to remove worker file: %w", err)
		}
	}
	logger.Info().Int("examples", merged.Len()).Msg("generation completed")
	return nil
}

func partition(total, workers int) []int {
	quotas := make([]int, workers)
	for i := range quotas {
		quotas[i] = total / workers
	}
	for i := 0; i < total%workers; i++ {
		quotas[i]++
	}
	return quotas
}
