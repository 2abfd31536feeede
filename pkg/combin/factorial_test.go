package combin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorial(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "1"},
		{1, "1"},
		{2, "2"},
		{3, "6"},
		{4, "24"},
		{10, "3628800"},
		{20, "2432902008176640000"},
		{30, "265252859812191058636308480000000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Factorial(tt.n).String(), "Factorial(%d)", tt.n)
	}
}

func TestFallingRange(t *testing.T) {
	t.Run("EqualBounds", func(t *testing.T) {
		assert.Equal(t, "1", FallingRange(5, 5).String())
	})

	t.Run("SimpleRange", func(t *testing.T) {
		// 4*5*6 = 120
		assert.Equal(t, "120", FallingRange(3, 6).String())
	})

	t.Run("FromZero", func(t *testing.T) {
		assert.Equal(t, Factorial(8).String(), FallingRange(0, 8).String())
	})

	t.Run("TailOfFactorial", func(t *testing.T) {
		// 20!/10! == 11*12*...*20
		want := new(big.Int).Div(Factorial(20), Factorial(10))
		assert.Equal(t, want.String(), FallingRange(10, 20).String())
	})
}

func TestBinomial(t *testing.T) {
	t.Run("SubsetLargerThanSet", func(t *testing.T) {
		total, ok := Binomial(3, 4)
		assert.False(t, ok)
		assert.Nil(t, total)
	})

	t.Run("KnownValues", func(t *testing.T) {
		tests := []struct {
			n, k int
			want string
		}{
			{0, 0, "1"},
			{5, 0, "1"},
			{5, 5, "1"},
			{4, 2, "6"},
			{5, 3, "10"},
			{10, 4, "210"},
			{52, 5, "2598960"},
			{60, 30, "118264581564861424"},
		}

		for _, tt := range tests {
			total, ok := Binomial(tt.n, tt.k)
			require.True(t, ok, "Binomial(%d,%d)", tt.n, tt.k)
			assert.Equal(t, tt.want, total.String(), "Binomial(%d,%d)", tt.n, tt.k)
		}
	})

	t.Run("Symmetry", func(t *testing.T) {
		for n := 1; n <= 12; n++ {
			for k := 0; k <= n; k++ {
				a, ok := Binomial(n, k)
				require.True(t, ok)
				b, ok := Binomial(n, n-k)
				require.True(t, ok)
				assert.Zero(t, a.Cmp(b), "C(%d,%d) vs C(%d,%d)", n, k, n, n-k)
			}
		}
	})

	t.Run("PascalRule", func(t *testing.T) {
		for n := 2; n <= 15; n++ {
			for k := 1; k < n; k++ {
				total, _ := Binomial(n, k)
				left, _ := Binomial(n-1, k-1)
				right, _ := Binomial(n-1, k)
				sum := new(big.Int).Add(left, right)
				assert.Zero(t, total.Cmp(sum), "C(%d,%d)", n, k)
			}
		}
	})
}
