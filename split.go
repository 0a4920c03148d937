package ulasan

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
)

// A Split holds the train and test partitions of a dataset.
type Split struct {
	Train      LabeledDataset
	Test       LabeledDataset
	Stratified bool
}

// SplitDataset partitions d into train and test sets. The test set receives
// ceil(testSize * n) rows. When every label has at least two members the
// split is stratified so each label keeps its proportion and at least one
// training row; otherwise rows are drawn without regard to label.
func SplitDataset(d LabeledDataset, testSize float64, seed int64) (Split, error) {
	n := d.Len()
	if n < 2 {
		return Split{}, errors.Wrapf(ErrNotEnoughRows, "need at least 2 rows to split, have %d", n)
	}
	if testSize <= 0 || testSize >= 1 {
		return Split{}, errors.Wrapf(ErrInvalidConfig, "test size %v outside (0, 1)", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}

	rng := rand.New(rand.NewSource(seed))
	labels := d.Labels()

	var train, test []int
	stratified := canStratify(labels)
	if stratified {
		train, test = stratifiedIndices(labels, nTest, rng)
	} else {
		perm := rng.Perm(n)
		test = append(test, perm[:nTest]...)
		train = append(train, perm[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)

	return Split{
		Train:      d.Subset(train),
		Test:       d.Subset(test),
		Stratified: stratified,
	}, nil
}

func canStratify(labels []string) bool {
	counts := map[string]int{}
	for _, l := range labels {
		counts[l]++
	}
	for _, c := range counts {
		if c < 2 {
			return false
		}
	}
	return len(counts) > 0
}

// stratifiedIndices allocates nTest rows across classes proportionally,
// rounding by largest remainder, and draws each class's test rows at random.
func stratifiedIndices(labels []string, nTest int, rng *rand.Rand) (train, test []int) {
	byClass := map[string][]int{}
	for i, l := range labels {
		byClass[l] = append(byClass[l], i)
	}
	classes := make([]string, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	n := float64(len(labels))
	alloc := make([]int, len(classes))
	remainders := make([]float64, len(classes))
	assigned := 0
	for i, c := range classes {
		exact := float64(nTest) * float64(len(byClass[c])) / n
		alloc[i] = int(math.Floor(exact))
		if limit := len(byClass[c]) - 1; alloc[i] > limit {
			alloc[i] = limit
		}
		remainders[i] = exact - math.Floor(exact)
		assigned += alloc[i]
	}

	order := make([]int, len(classes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for assigned < nTest {
		progressed := false
		for _, i := range order {
			if assigned == nTest {
				break
			}
			if alloc[i] < len(byClass[classes[i]])-1 {
				alloc[i]++
				assigned++
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	for i, c := range classes {
		members := append([]int(nil), byClass[c]...)
		rng.Shuffle(len(members), func(a, b int) {
			members[a], members[b] = members[b], members[a]
		})
		test = append(test, members[:alloc[i]]...)
		train = append(train, members[alloc[i]:]...)
	}
	return train, test
}
