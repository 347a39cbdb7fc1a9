package stochastic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSourceDeterminism(t *testing.T) {
	a := NewSource(42)
	b := NewSource(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Normal(), b.Normal())
		assert.Equal(t, a.Uniform(), b.Uniform())
	}
}

func TestSourceReset(t *testing.T) {
	s := NewSource(7)

	var first []float64
	for i := 0; i < 10; i++ {
		first = append(first, s.Normal())
	}

	s.Reset()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first[i], s.Normal())
	}
}

func TestUniformRange(t *testing.T) {
	s := NewSource(1)
	for i := 0; i < 1000; i++ {
		v := s.UniformRange(50, 200)
		assert.GreaterOrEqual(t, v, 50.0)
		assert.Less(t, v, 200.0)
	}
}

func TestLogNormalPositive(t *testing.T) {
	s := NewSource(1)
	for i := 0; i < 1000; i++ {
		assert.Greater(t, s.LogNormal(math.Log(100), 0.5), 0.0)
	}
}

func TestPick(t *testing.T) {
	s := NewSource(3)

	counts := make([]int, 3)
	for i := 0; i < 10000; i++ {
		idx := s.Pick([]float64{0.4, 0.4, 0.2})
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 3)
		counts[idx]++
	}
	// Rough shape check, not a distribution test.
	assert.Greater(t, counts[0], counts[2])
	assert.Greater(t, counts[1], counts[2])
}

func TestPickZeroTotal(t *testing.T) {
	s := NewSource(3)
	assert.Equal(t, 0, s.Pick([]float64{0, 0, 0}))
}

func TestCorrelatedShocksValidMatrix(t *testing.T) {
	corr := mat.NewSymDense(2, []float64{
		1.0, 0.5,
		0.5, 1.0,
	})
	src := NewSource(11)

	shocks := CorrelatedShocks(corr, []float64{0.1, 0.2}, src)
	require.Len(t, shocks, 2)
	for _, v := range shocks {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
}

func TestCorrelatedShocksNotPositiveDefinite(t *testing.T) {
	// Pairwise entries that no valid correlation matrix can have: this
	// matrix has a negative eigenvalue, so Cholesky must fail and the
	// identity fallback kicks in.
	corr := mat.NewSymDense(3, []float64{
		1.0, 0.9, -0.9,
		0.9, 1.0, 0.9,
		-0.9, 0.9, 1.0,
	})
	src := NewSource(11)

	shocks := CorrelatedShocks(corr, []float64{0.1, 0.1, 0.1}, src)
	require.Len(t, shocks, 3)
	for _, v := range shocks {
		assert.False(t, math.IsNaN(v))
	}
}

func TestCorrelatedShocksFallbackConsumesSameDraws(t *testing.T) {
	bad := mat.NewSymDense(2, []float64{
		1.0, 2.0,
		2.0, 1.0,
	})

	src := NewSource(5)
	CorrelatedShocks(bad, []float64{1, 1}, src)
	after := src.Normal()

	// The fallback must consume exactly as many normals as the happy
	// path, so downstream draws stay aligned.
	ref := NewSource(5)
	ref.Normal()
	ref.Normal()
	assert.Equal(t, ref.Normal(), after)
}

func TestCorrelatedShocksNilMatrix(t *testing.T) {
	src := NewSource(5)
	shocks := CorrelatedShocks(nil, []float64{0.1, 0.2}, src)
	require.Len(t, shocks, 2)
}

func TestRepairCorrelation(t *testing.T) {
	bad := mat.NewSymDense(3, []float64{
		1.0, 0.9, -0.9,
		0.9, 1.0, 0.9,
		-0.9, 0.9, 1.0,
	})

	fixed := RepairCorrelation(bad, 0.01)
	require.Equal(t, 3, fixed.SymmetricDim())

	// Unit diagonal.
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 1.0, fixed.At(i, i), 1e-9)
	}

	// Positive definite: Cholesky must now succeed.
	var chol mat.Cholesky
	assert.True(t, chol.Factorize(fixed))
}

func TestRepairCorrelationKeepsValidMatrix(t *testing.T) {
	good := mat.NewSymDense(2, []float64{
		1.0, 0.3,
		0.3, 1.0,
	})

	fixed := RepairCorrelation(good, 0.01)
	assert.InDelta(t, 0.3, fixed.At(0, 1), 1e-9)
}
