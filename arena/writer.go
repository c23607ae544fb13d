package arena

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// GameRecord is one finished game as persisted by Writer.
type GameRecord struct {
	ID       int
	SeatOne  string // which behavior held seat one, "A" or "B"
	Outcome  string
	Duration time.Duration
}

// Writer persists match results as CSV under a timestamped
// subdirectory, one directory per match.
type Writer struct {
	baseDir string
}

func NewWriter(dir, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(dir, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{baseDir: baseDir}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	path := filepath.Join(w.baseDir, "game_records.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create game records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"id", "seat_one", "outcome", "duration"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write game records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.ID),
			record.SeatOne,
			record.Outcome,
			record.Duration.String(),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write game record row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteTally(tally *Tally) error {
	path := filepath.Join(w.baseDir, "tally.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create tally file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := []string{"games", "wins_a", "wins_b", "draws", "wins_seat_one", "wins_seat_two", "score_a", "ci95_low", "ci95_high"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write tally header: %w", err)
	}

	winsA, winsB, draws := tally.Wins()
	seatOne, seatTwo := tally.SeatWins()
	low, high := tally.ConfidenceInterval(95)
	row := []string{
		strconv.Itoa(tally.Games()),
		strconv.Itoa(winsA),
		strconv.Itoa(winsB),
		strconv.Itoa(draws),
		strconv.Itoa(seatOne),
		strconv.Itoa(seatTwo),
		strconv.FormatFloat(tally.Score(), 'f', 4, 64),
		strconv.FormatFloat(low, 'f', 4, 64),
		strconv.FormatFloat(high, 'f', 4, 64),
	}
	err = writer.Write(row)
	if err != nil {
		return fmt.Errorf("failed to write tally row: %w", err)
	}

	return nil
}
