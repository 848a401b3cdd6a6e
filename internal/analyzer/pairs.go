package analyzer

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadPairs reads a translations file: a YAML (or JSON) mapping of stroke
// notation to word, the shape steno dictionaries ship in. The pairs are
// returned sorted by key string so bulk runs over the same file enqueue
// work in a reproducible order.
func LoadPairs(path string) ([]Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading translations file: %w", err)
	}
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding translations file: %w", err)
	}
	pairs := make([]Pair, 0, len(m))
	for k, w := range m {
		pairs = append(pairs, Pair{Keys: k, Word: w})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Keys < pairs[j].Keys })
	return pairs, nil
}
