package sorting

import (
	"errors"
	"fmt"
	"strings"
)

// Algorithm names one of the supported sorting procedures.
type Algorithm string

// Supported algorithms.
const (
	Bubble    Algorithm = "bubble"
	Selection Algorithm = "selection"
	Insertion Algorithm = "insertion"
	Merge     Algorithm = "merge"
	Quick     Algorithm = "quick"
)

// ErrUnknownAlgorithm is returned for names outside [Algorithms].
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Info describes an algorithm for display.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Complexity  string `json:"complexity"`
}

type procedure func(c *Channel) bool

type entry struct {
	info Info
	run  procedure
}

var order = []Algorithm{Bubble, Selection, Insertion, Merge, Quick}

var catalog = map[Algorithm]entry{
	Bubble: {
		info: Info{
			Name:        "Bubble Sort",
			Description: "Compares adjacent elements and swaps them if they're in wrong order.",
			Complexity:  "O(n²)",
		},
		run: bubbleSort,
	},
	Selection: {
		info: Info{
			Name:        "Selection Sort",
			Description: "Finds minimum element and places it at beginning.",
			Complexity:  "O(n²)",
		},
		run: selectionSort,
	},
	Insertion: {
		info: Info{
			Name:        "Insertion Sort",
			Description: "Builds sorted array one element at a time.",
			Complexity:  "O(n²)",
		},
		run: insertionSort,
	},
	Merge: {
		info: Info{
			Name:        "Merge Sort",
			Description: "Divides array and merges sorted halves.",
			Complexity:  "O(n log n)",
		},
		run: func(c *Channel) bool {
			return mergeSort(c, 0, len(c.state.Values)-1)
		},
	},
	Quick: {
		info: Info{
			Name:        "Quick Sort",
			Description: "Partitions around pivot and recursively sorts.",
			Complexity:  "O(n log n)",
		},
		run: func(c *Channel) bool {
			return quickSort(c, 0, len(c.state.Values)-1)
		},
	},
}

// Algorithms returns every supported algorithm in menu order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, len(order))
	copy(out, order)

	return out
}

// ParseAlgorithm resolves a case-insensitive name such as "quick" or "Quick Sort".
func ParseAlgorithm(name string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(strings.TrimSuffix(key, "sort"), " ")
	key = strings.TrimSuffix(key, "-")

	alg := Algorithm(key)
	if _, ok := catalog[alg]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}

	return alg, nil
}

// Info returns the display information for a. Unknown algorithms yield a zero Info.
func (a Algorithm) Info() Info {
	return catalog[a].info
}

// String returns the algorithm name.
func (a Algorithm) String() string {
	return string(a)
}
