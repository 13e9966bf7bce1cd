package datasets

import (
	"io"
	"math/rand"
)

// epoch walks the examples of a dataset in batches for Yield.
type epoch struct {
	order     []int
	pos       int
	batchSize int
}

func newEpoch(n, batchSize int) *epoch {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return &epoch{order: order, batchSize: batchSize}
}

// next returns the indices of the next batch, or io.EOF once every example
// has been returned. The last batch may be short.
func (e *epoch) next() ([]int, error) {
	if e.pos >= len(e.order) {
		return nil, io.EOF
	}
	end := min(e.pos+e.batchSize, len(e.order))
	batch := append([]int(nil), e.order[e.pos:end]...)
	e.pos = end
	return batch, nil
}

func (e *epoch) reset() {
	e.pos = 0
}

// shuffle permutes the order with seed and restarts the epoch.
func (e *epoch) shuffle(seed int64) {
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(e.order), func(i, j int) {
		e.order[i], e.order[j] = e.order[j], e.order[i]
	})
	e.pos = 0
}

func (e *epoch) clone() *epoch {
	return &epoch{order: append([]int(nil), e.order...), batchSize: e.batchSize}
}
