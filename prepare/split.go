package prepare

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

// Fold holds row indices of one cross-validation fold.
type Fold struct {
	Train []int
	Valid []int
	Test  []int
}

// StratifiedKFold splits samples into folds that keep the proportion of each
// stratum. Strata are arbitrary string keys, e.g. site and diagnosis.
type StratifiedKFold struct {
	NSplits int
	Shuffle bool
	Seed    uint64
}

// NewStratifiedKFold creates a splitter. nSplits < 2 falls back to 10.
func NewStratifiedKFold(nSplits int, shuffle bool, seed uint64) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 10
	}
	return &StratifiedKFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// Split returns one fold per split with disjoint test sets covering every
// sample. Valid is left empty; see ValidationSplit.
func (skf *StratifiedKFold) Split(strata []string) ([]Fold, error) {
	n := len(strata)
	if n < skf.NSplits {
		return nil, errors.NewValidationError("n_splits",
			"cannot exceed the number of samples", skf.NSplits)
	}

	groups := groupByStratum(strata)
	if skf.Shuffle {
		r := rand.New(rand.NewPCG(skf.Seed, skf.Seed))
		for _, g := range groups {
			r.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
		}
	}

	folds := make([]Fold, skf.NSplits)
	// deal every stratum round-robin, continuing where the previous one
	// stopped so small strata do not all land in the first folds
	next := 0
	for _, g := range groups {
		for _, idx := range g {
			folds[next].Test = append(folds[next].Test, idx)
			next = (next + 1) % skf.NSplits
		}
	}

	for i := range folds {
		inTest := make(map[int]bool, len(folds[i].Test))
		for _, idx := range folds[i].Test {
			inTest[idx] = true
		}
		for j := 0; j < n; j++ {
			if !inTest[j] {
				folds[i].Train = append(folds[i].Train, j)
			}
		}
		sort.Ints(folds[i].Test)
	}
	return folds, nil
}

// ValidationSplit moves a stratified fraction of train into a validation
// set. At least one sample is moved when train has two or more.
func ValidationSplit(train []int, strata []string, fraction float64, seed uint64) (rest, valid []int) {
	sub := make([]string, len(train))
	for i, idx := range train {
		sub[i] = strata[idx]
	}
	r := rand.New(rand.NewPCG(seed, seed^0x5bd1e995))

	for _, g := range groupByStratum(sub) {
		r.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
		k := int(math.Round(float64(len(g)) * fraction))
		for i, pos := range g {
			if i < k {
				valid = append(valid, train[pos])
			} else {
				rest = append(rest, train[pos])
			}
		}
	}
	if len(valid) == 0 && len(rest) > 1 && fraction > 0 {
		valid = append(valid, rest[len(rest)-1])
		rest = rest[:len(rest)-1]
	}
	sort.Ints(rest)
	sort.Ints(valid)
	return rest, valid
}

// groupByStratum returns the indices of each stratum, strata in sorted order.
func groupByStratum(strata []string) [][]int {
	byKey := make(map[string][]int)
	for i, s := range strata {
		byKey[s] = append(byKey[s], i)
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([][]int, len(keys))
	for i, k := range keys {
		groups[i] = byKey[k]
	}
	return groups
}
