package arena

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"lookahead/game"
)

const fuzzEpsilon = 1e-6

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < fuzzEpsilon
}

// Statistic accumulates a running mean and variance with Welford's
// algorithm, so millions of game outcomes aggregate without keeping
// them around.
type Statistic struct {
	count int
	oldM  float64
	newM  float64
	oldS  float64
	newS  float64
}

func (s *Statistic) Push(val float64) {
	s.count++
	if s.count == 1 {
		s.oldM = val
		s.newM = val
		s.oldS = 0
	} else {
		s.newM = s.oldM + (val-s.oldM)/float64(s.count)
		s.newS = s.oldS + (val-s.oldM)*(val-s.newM)
		s.oldM = s.newM
		s.oldS = s.newS
	}
}

func (s *Statistic) Count() int {
	return s.count
}

func (s *Statistic) Mean() float64 {
	if s.count > 0 {
		return s.newM
	}
	return 0
}

func (s *Statistic) Variance() float64 {
	if s.count <= 1 {
		return 0
	}
	return s.newS / float64(s.count-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) StandardError() float64 {
	if s.count == 0 {
		return 0
	}
	return math.Sqrt(s.Variance() / float64(s.count))
}

// ZVal returns the two-tailed z-value for a confidence interval given
// in percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	area := (1 + confidenceInterval/100) / 2
	return dist.Quantile(area)
}

// Tally aggregates the outcomes of one match, by behavior and by seat.
// Its methods are safe to call from concurrent callbacks.
type Tally struct {
	mu          sync.Mutex
	games       int
	winsA       int
	winsB       int
	draws       int
	winsSeatOne int
	winsSeatTwo int
	score       Statistic // per-game score for A: win 1, draw 0.5, loss 0
}

// Add records one outcome. The index and alternate flag must match the
// ones the game was simulated with, since they determine which behavior
// held seat one.
func (t *Tally) Add(index int, alternate bool, outcome game.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.games++
	aIsOne := AIsSeatOne(index, alternate)
	switch outcome {
	case game.Win:
		t.winsSeatOne++
		if aIsOne {
			t.winsA++
			t.score.Push(1)
		} else {
			t.winsB++
			t.score.Push(0)
		}
	case game.Loss:
		t.winsSeatTwo++
		if aIsOne {
			t.winsB++
			t.score.Push(0)
		} else {
			t.winsA++
			t.score.Push(1)
		}
	case game.Draw:
		t.draws++
		t.score.Push(0.5)
	default:
		panic("cannot tally an undecided outcome")
	}
}

func (t *Tally) Games() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.games
}

func (t *Tally) Wins() (a, b, draws int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.winsA, t.winsB, t.draws
}

func (t *Tally) SeatWins() (one, two int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.winsSeatOne, t.winsSeatTwo
}

// Score is behavior A's mean per-game score, counting a draw as half a
// win.
func (t *Tally) Score() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.score.Mean()
}

// ConfidenceInterval bounds A's mean score at the given confidence
// level in percent, by normal approximation.
func (t *Tally) ConfidenceInterval(confidence float64) (low, high float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	mean := t.score.Mean()
	margin := ZVal(confidence) * t.score.StandardError()
	return mean - margin, mean + margin
}
