package datasets

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// Mode names one part of a split.
type Mode string

const (
	ModeTrain Mode = "train"
	ModeVal   Mode = "val"
	ModeTest  Mode = "test"
)

// Index returns the position of m's part in the split fractions.
func (m Mode) Index() (int, error) {
	switch m {
	case ModeTrain:
		return 0, nil
	case ModeVal:
		return 1, nil
	case ModeTest:
		return 2, nil
	}
	return 0, errors.Errorf("unknown mode %q", string(m))
}

// splitSeed fixes the shuffle so every part of every dataset built over the
// same number of trajectories sees the same permutation.
const splitSeed = 2843014334

const fractionTolerance = 1e-6

// Partition shuffles [0, n) with a fixed seed and returns the indices of
// part, where fractions gives the share of each part. The parts of one
// (n, fractions) pair are disjoint and together cover [0, n).
func Partition(n int, fractions []float64, part int) ([]int, error) {
	if n < 0 {
		return nil, errors.Errorf("negative length %d", n)
	}
	if len(fractions) == 0 {
		return nil, errors.New("no split fractions")
	}
	if part < 0 || part >= len(fractions) {
		return nil, errors.Errorf("part %d outside split %v", part, fractions)
	}
	var sum float64
	for _, f := range fractions {
		if f < 0 || math.IsNaN(f) {
			return nil, errors.Errorf("invalid split fraction %v in %v", f, fractions)
		}
		sum += f
	}
	if math.Abs(sum-1) > fractionTolerance {
		return nil, errors.Errorf("split %v sums to %v, not 1", fractions, sum)
	}

	order := rand.New(rand.NewSource(splitSeed)).Perm(n)

	var cum float64
	lo := 0
	for i, f := range fractions {
		cum += f
		hi := int(math.Floor(float64(n)*cum + fractionTolerance))
		if i == len(fractions)-1 {
			hi = n
		}
		hi = min(max(hi, lo), n)
		if i == part {
			return order[lo:hi:hi], nil
		}
		lo = hi
	}
	return nil, nil
}

// partitionMode is Partition with the part named by mode.
func partitionMode(n int, cfg SplitConfig) ([]int, error) {
	part, err := cfg.Mode.Index()
	if err != nil {
		return nil, err
	}
	return Partition(n, cfg.Split, part)
}
