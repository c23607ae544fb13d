package trainer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lookahead/game"
)

func TestEncodeRecord(t *testing.T) {
	r := Record{Features: game.FeatureVector{1, 2.5, -3}, Label: 0.75}
	require.Equal(t, "[1,2.5,-3]:0.75", encodeRecord(r))
}

func TestParseRecord(t *testing.T) {
	t.Run("valid line", func(t *testing.T) {
		r, err := parseRecord("[1,2.5,-3]:0.75")
		require.NoError(t, err)
		require.Equal(t, game.FeatureVector{1, 2.5, -3}, r.Features)
		require.Equal(t, 0.75, r.Label)
	})

	t.Run("malformed lines are rejected", func(t *testing.T) {
		malformed := []string{
			"1,2,3:0.5",
			"[1,2,3:0.5",
			"[1,2,3]0.5",
			"[1,x,3]:0.5",
			"[1,2,3]:abc",
			"[]:0.5",
		}
		for _, line := range malformed {
			_, err := parseRecord(line)
			require.Error(t, err, "line %q should not parse", line)
		}
	})
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := NewStore()
	s.Add(game.FeatureVector{1, 2.5, -3}, 0.75)
	s.Add(game.FeatureVector{0, 0.3333333333333333}, 0.5)
	s.Add(game.FeatureVector{-1.25, 1e-9, 42}, 0)

	path := filepath.Join(t.TempDir(), "examples.txt")
	require.NoError(t, WriteFile(path, s))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, s.Records(), loaded.Records(),
		"a round trip reproduces the exact feature and label set")
}

func TestReadFileRejectsMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "examples.txt")
	content := "[1,2]:0.5\nnot a record\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := ReadFile(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 2")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
