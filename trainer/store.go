package trainer

import (
	"sort"

	"github.com/samber/lo"

	"lookahead/game"
)

// Record is one labeled training example.
type Record struct {
	Features game.FeatureVector
	Label    float64
}

// Store maps feature vectors to labels. Keys compare exactly, component
// by component, with no tolerance: vectors differing in the last
// decimal digit of one component are distinct examples.
type Store struct {
	records map[string]Record
}

func NewStore() *Store {
	return &Store{records: make(map[string]Record)}
}

// Add inserts an example, clamping the label to [0, 1]. A duplicate key
// replaces its label with the plain average of the old and new label,
// not a running mean, so merging the same records in a different order
// yields a different final label.
//
// The feature vector must not be empty: the persisted line grammar has
// no empty-vector form, so an empty key could never be read back.
func (s *Store) Add(features game.FeatureVector, label float64) {
	if len(features) == 0 {
		panic("cannot add an example with an empty feature vector")
	}
	label = clamp(label, 0, 1)
	k := encodeFeatures(features)
	if existing, ok := s.records[k]; ok {
		existing.Label = (existing.Label + label) / 2
		s.records[k] = existing
		return
	}
	s.records[k] = Record{Features: features, Label: label}
}

// Merge folds every record of other into s under the same pairwise
// average rule Add applies, in other's deterministic record order.
func (s *Store) Merge(other *Store) {
	for _, r := range other.Records() {
		s.Add(r.Features, r.Label)
	}
}

func (s *Store) Len() int {
	return len(s.records)
}

// Records enumerates the examples in a deterministic order.
func (s *Store) Records() []Record {
	keys := lo.Keys(s.records)
	sort.Strings(keys)
	records := make([]Record, 0, len(keys))
	for _, k := range keys {
		records = append(records, s.records[k])
	}
	return records
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
