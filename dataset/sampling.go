package dataset

import (
	"sort"

	"github.com/fsoeltoni/vocal-remover/errors"
	"github.com/fsoeltoni/vocal-remover/spectral"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mixup overwrites a random rate-fraction of the dataset with convex
// combinations of adjacent selected pairs, in place. For each adjacent
// selection (i, i+1) a Beta(alpha, alpha) lambda blends sample i toward
// sample i+1; the last selected index is left untouched.
func Mixup(rng *rand.Rand, X, y []*spectral.Spectrogram, rate, alpha float64) error {
	if len(X) != len(y) {
		return errors.Errorf("dataset slices differ in length: %d vs %d", len(X), len(y))
	}

	perm := rng.Perm(len(X))[:int(float64(len(X))*rate)]
	beta := distuv.Beta{Alpha: alpha, Beta: alpha, Src: rng}

	for i := 0; i+1 < len(perm); i++ {
		lam := beta.Rand()
		if err := X[perm[i]].Lerp(X[perm[i+1]], lam); err != nil {
			return err
		}
		if err := y[perm[i]].Lerp(y[perm[i+1]], lam); err != nil {
			return err
		}
	}
	return nil
}

// OracleResample re-samples the hardest examples: it ranks indices by
// instance loss descending, keeps the top len(X)*rate/(1-dropRate) as a
// pool, and draws len(X)*rate indices from the pool without replacement.
// The drop discount widens the pool so the exact hardest set is not
// re-sampled every time. Returns copies of the chosen samples and their
// indices.
func OracleResample(rng *rand.Rand, X, y []*spectral.Spectrogram, instanceLoss []float64, rate, dropRate float64) ([]*spectral.Spectrogram, []*spectral.Spectrogram, []int, error) {
	if len(X) != len(y) {
		return nil, nil, nil, errors.Errorf("dataset slices differ in length: %d vs %d", len(X), len(y))
	}
	if len(instanceLoss) != len(X) {
		return nil, nil, nil, errors.Errorf("have %d losses for %d samples", len(instanceLoss), len(X))
	}

	k := int(float64(len(X)) * rate / (1 - dropRate))
	n := int(float64(len(X)) * rate)
	if k > len(X) {
		k = len(X)
	}
	if n > k {
		return nil, nil, nil, errors.Errorf("cannot draw %d samples from a pool of %d", n, k)
	}

	order := make([]int, len(instanceLoss))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return instanceLoss[order[a]] > instanceLoss[order[b]]
	})
	pool := order[:k]

	idx := make([]int, 0, n)
	for _, j := range rng.Perm(k)[:n] {
		idx = append(idx, pool[j])
	}

	oX := make([]*spectral.Spectrogram, 0, n)
	oY := make([]*spectral.Spectrogram, 0, n)
	for _, j := range idx {
		oX = append(oX, X[j].Clone())
		oY = append(oY, y[j].Clone())
	}
	return oX, oY, idx, nil
}
