package arena

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"lookahead/game"
)

// Callback receives the outcome of one finished game, reported from
// player one's perspective. In parallel mode callbacks may run
// concurrently and in any order.
type Callback func(index int, outcome game.Outcome)

// Config controls one benchmark match between two behaviors.
type Config struct {
	// Games is the number of games to play.
	Games int
	// Parallel bounds the game fan-out. Zero or one plays games one
	// at a time.
	Parallel int
	// Alternate swaps seat one between the behaviors by game-index
	// parity: behavior A holds seat one on even indices, B on odd.
	Alternate bool
	// LogStream, when set, receives one YAML list item per finished
	// game for offline analysis. Writes are serialized.
	LogStream io.Writer
}

type gameLog struct {
	Game    int    `yaml:"game"`
	SeatOne string `yaml:"seat_one"`
	Outcome string `yaml:"outcome"`
}

// AIsSeatOne reports whether behavior A holds seat one in the game at
// the given index. Seat assignment is a pure function of the index and
// the alternate flag; no shared state is involved.
func AIsSeatOne(index int, alternate bool) bool {
	return !alternate || index%2 == 0
}

// SimulateGames plays the configured number of games between two
// behaviors from the given initial position and reports every outcome
// through the callback.
//
// Cancellation is cooperative and coarse: it is polled between whole
// games, never inside one. In sequential mode a cancelled context
// aborts before the next game starts and its callback never fires; in
// parallel mode no new games are scheduled but games already in flight
// run to completion and still report.
func SimulateGames(ctx context.Context, a, b game.Behavior, initial game.State, cfg Config, callback Callback) error {
	if cfg.Parallel > 1 {
		return simulateParallel(ctx, a, b, initial, cfg, callback)
	}
	return simulateSequential(ctx, a, b, initial, cfg, callback)
}

func simulateSequential(ctx context.Context, a, b game.Behavior, initial game.State, cfg Config, callback Callback) error {
	for i := 0; i < cfg.Games; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		outcome := playGame(ctx, a.Clone(), b.Clone(), initial, i, cfg.Alternate)
		if cfg.LogStream != nil {
			rec := gameLog{Game: i, SeatOne: seatOneName(i, cfg.Alternate), Outcome: outcome.String()}
			if err := writeGameLog(cfg.LogStream, rec); err != nil {
				return err
			}
		}
		callback(i, outcome)
	}
	log.Info().Int("games", cfg.Games).Msg("match completed")
	return nil
}

func simulateParallel(ctx context.Context, a, b game.Behavior, initial game.State, cfg Config, callback Callback) error {
	// In-flight games must finish even after cancellation, so they run
	// against a context that never cancels.
	gameCtx := context.WithoutCancel(ctx)

	logChan := make(chan gameLog, cfg.Games)
	writer := errgroup.Group{}
	if cfg.LogStream != nil {
		writer.Go(func() error {
			for rec := range logChan {
				if err := writeGameLog(cfg.LogStream, rec); err != nil {
					return err
				}
			}
			return nil
		})
	}

	grp := errgroup.Group{}
	grp.SetLimit(cfg.Parallel)
	scheduled := 0
	for i := 0; i < cfg.Games; i++ {
		// Cancellation is polled between whole games: a Go call that
		// was already blocked on a free slot when the signal lands
		// still starts its game.
		if ctx.Err() != nil {
			break // stop scheduling, let in-flight games finish
		}
		scheduled++
		// Clones happen in the scheduling loop: concurrent Clone
		// calls on the shared behaviors would race on their streams.
		i := i
		cloneA := a.Clone()
		cloneB := b.Clone()
		grp.Go(func() error {
			outcome := playGame(gameCtx, cloneA, cloneB, initial, i, cfg.Alternate)
			if cfg.LogStream != nil {
				logChan <- gameLog{Game: i, SeatOne: seatOneName(i, cfg.Alternate), Outcome: outcome.String()}
			}
			callback(i, outcome)
			return nil
		})
	}

	err := grp.Wait()
	close(logChan)
	if werr := writer.Wait(); err == nil {
		err = werr
	}
	log.Info().Int("scheduled", scheduled).Int("games", cfg.Games).Msg("match completed")
	return err
}

// playGame resolves seats and plays one game to its terminal outcome.
// Both behaviors must already be this game's private clones; playGame
// never touches the match's shared originals.
func playGame(ctx context.Context, a, b game.Behavior, initial game.State, index int, alternate bool) game.Outcome {
	one, two := a, b
	if !AIsSeatOne(index, alternate) {
		one, two = b, a
	}
	state := initial.Clone()
	return state.Simulate(ctx, one, two)
}

func seatOneName(index int, alternate bool) string {
	if AIsSeatOne(index, alternate) {
		return "A"
	}
	return "B"
}

func writeGameLog(w io.Writer, rec gameLog) error {
	// A single-element list item per game keeps the concatenated
	// stream one valid YAML list.
	out, err := yaml.Marshal([]gameLog{rec})
	if err != nil {
		return fmt.Errorf("failed to marshal game log: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write game log: %w", err)
	}
	return nil
}
