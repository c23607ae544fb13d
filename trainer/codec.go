package trainer

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"lookahead/game"
)

// One record per line, "[v0,v1,...,vn]:label", numbers in decimal text
// form. Parsing is strict: a malformed line fails the whole read.

func encodeFeatures(features game.FeatureVector) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range features {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}

func encodeRecord(r Record) string {
	return encodeFeatures(r.Features) + ":" + strconv.FormatFloat(r.Label, 'g', -1, 64)
}

func parseRecord(line string) (Record, error) {
	if !strings.HasPrefix(line, "[") {
		return Record{}, fmt.Errorf("record %q does not start with '['", line)
	}
	end := strings.Index(line, "]")
	if end < 0 {
		return Record{}, fmt.Errorf("record %q has no closing ']'", line)
	}
	rest := line[end+1:]
	if !strings.HasPrefix(rest, ":") {
		return Record{}, fmt.Errorf("record %q has no ':' after the feature vector", line)
	}

	components := strings.Split(line[1:end], ",")
	features := make(game.FeatureVector, 0, len(components))
	for _, c := range components {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return Record{}, fmt.Errorf("parsing feature %q: %w", c, err)
		}
		features = append(features, v)
	}

	label, err := strconv.ParseFloat(rest[1:], 64)
	if err != nil {
		return Record{}, fmt.Errorf("parsing label %q: %w", rest[1:], err)
	}

	return Record{Features: features, Label: label}, nil
}

// WriteFile persists the store, one record per line, replacing any
// existing file at path.
func WriteFile(path string, store *Store) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, r := range store.Records() {
		if _, err := w.WriteString(encodeRecord(r) + "\n"); err != nil {
			return fmt.Errorf("failed to write example: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush example file: %w", err)
	}
	return nil
}

// ReadFile loads a persisted store. Any malformed line is an error;
// there is no partial tolerance.
func ReadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open example file: %w", err)
	}
	defer f.Close()

	store := NewStore()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		r, err := parseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		store.Add(r.Features, r.Label)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read example file: %w", err)
	}
	return store, nil
}
