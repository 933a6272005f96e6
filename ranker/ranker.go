// Package ranker performs exhaustive k-nearest-neighbor ranking of a
// descriptor corpus against a reference descriptor.
package ranker

import (
	"sort"
	"sync"

	"wavefinder/feature"
	"wavefinder/metric"
)

// Result is one ranked corpus entry.
type Result struct {
	Distance   float64
	Descriptor feature.Descriptor
}

// Options controls ranking.
type Options struct {
	// Workers bounds the number of goroutines computing distances.
	// Zero or one means sequential.
	Workers int
}

// Rank computes the distance from ref to every corpus descriptor and
// returns the k closest in ascending order. Ties are broken by corpus
// order, and tied entries all appear; equal distances never collapse into
// one slot. k is clamped to the corpus size; k <= 0 or an empty corpus
// yields an empty result. If ref itself is in the corpus it is ranked
// like any other entry.
func Rank(ref feature.Descriptor, corpus []feature.Descriptor, m metric.Metric, k int) ([]Result, error) {
	return RankWith(ref, corpus, m, k, Options{})
}

// RankWith is Rank with explicit Options.
func RankWith(ref feature.Descriptor, corpus []feature.Descriptor, m metric.Metric, k int, opts Options) ([]Result, error) {
	if k > len(corpus) {
		k = len(corpus)
	}
	if k <= 0 {
		return []Result{}, nil
	}

	dists := make([]float64, len(corpus))
	errs := make([]error, len(corpus))

	if opts.Workers > 1 {
		var wg sync.WaitGroup
		semaphore := make(chan struct{}, opts.Workers)
		for i := range corpus {
			wg.Add(1)
			semaphore <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-semaphore }()
				dists[i], errs[i] = m.Distance(ref.Vector, corpus[i].Vector)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range corpus {
			dists[i], errs[i] = m.Distance(ref.Vector, corpus[i].Vector)
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	order := make([]int, len(corpus))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dists[order[a]] < dists[order[b]]
	})

	results := make([]Result, k)
	for i := 0; i < k; i++ {
		results[i] = Result{
			Distance:   dists[order[i]],
			Descriptor: corpus[order[i]],
		}
	}
	return results, nil
}
