// Package stochastic provides the seeded random sources and correlated
// shock synthesis shared by all simulation engines.
package stochastic

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Source is a deterministically seeded random generator. Every engine owns
// its own Source so draw order inside one engine never perturbs another,
// and a fixed top-level seed reproduces a run bit for bit.
type Source struct {
	seed int64
	rng  *rand.Rand
}

// NewSource returns a generator seeded with the given value.
func NewSource(seed int64) *Source {
	return &Source{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Reset rewinds the generator to its initial seeded state.
func (s *Source) Reset() {
	s.rng = rand.New(rand.NewSource(s.seed))
}

// Seed returns the seed the source was constructed with.
func (s *Source) Seed() int64 { return s.seed }

// Normal draws one standard normal value.
func (s *Source) Normal() float64 { return s.rng.NormFloat64() }

// Uniform draws one value uniformly from [0,1).
func (s *Source) Uniform() float64 { return s.rng.Float64() }

// UniformRange draws uniformly from [lo,hi).
func (s *Source) UniformRange(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// LogNormal draws from a log-normal distribution with the given log-space
// location and scale.
func (s *Source) LogNormal(mu, sigma float64) float64 {
	return math.Exp(mu + sigma*s.rng.NormFloat64())
}

// Pick draws an index according to the given weights. Weights need not be
// normalized; a zero total falls back to index 0.
func (s *Source) Pick(weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	u := s.rng.Float64() * total
	for i, w := range weights {
		u -= w
		if u < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// CorrelatedShocks draws one vector of correlated shocks: independent
// standard normals are transformed through the Cholesky factor of corr and
// scaled per-asset by vols. If corr is not positive definite the identity
// factor is substituted, yielding uncorrelated shocks instead of a failed
// step. The draw consumes exactly len(vols) normals from src either way,
// so the fallback stays reproducible under a fixed seed.
func CorrelatedShocks(corr *mat.SymDense, vols []float64, src *Source) []float64 {
	n := len(vols)
	z := make([]float64, n)
	for i := range z {
		z[i] = src.Normal()
	}

	out := make([]float64, n)
	var chol mat.Cholesky
	if corr == nil || corr.SymmetricDim() != n || !chol.Factorize(corr) {
		for i := range out {
			out[i] = z[i] * vols[i]
		}
		return out
	}

	var l mat.TriDense
	chol.LTo(&l)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j <= i; j++ {
			sum += l.At(i, j) * z[j]
		}
		out[i] = sum * vols[i]
	}
	return out
}

// RepairCorrelation clips the eigenvalues of a symmetric matrix to at
// least minEigen, reconstructs it, and re-normalizes to unit diagonal.
// The result is a valid, positive definite correlation matrix even when
// the input pairwise entries were inconsistent.
func RepairCorrelation(corr *mat.SymDense, minEigen float64) *mat.SymDense {
	n := corr.SymmetricDim()

	var eig mat.EigenSym
	if ok := eig.Factorize(corr, true); !ok {
		// Eigen decomposition of a finite symmetric matrix should not
		// fail; return the identity rather than propagate garbage.
		return identity(n)
	}

	vals := eig.Values(nil)
	for i, v := range vals {
		if v < minEigen {
			vals[i] = minEigen
		}
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// rebuilt = V diag(vals) V^T
	scaled := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			scaled.Set(i, j, vecs.At(i, j)*vals[j])
		}
	}
	var rebuilt mat.Dense
	rebuilt.Mul(scaled, vecs.T())

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			di := math.Sqrt(rebuilt.At(i, i))
			dj := math.Sqrt(rebuilt.At(j, j))
			out.SetSym(i, j, rebuilt.At(i, j)/(di*dj))
		}
	}
	return out
}

func identity(n int) *mat.SymDense {
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		m.SetSym(i, i, 1)
	}
	return m
}
