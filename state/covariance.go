package state

import (
	"gonum.org/v1/gonum/mat"
)

// Covariance is the joint covariance of the state error: a square dense
// matrix which grows as variables are appended to the state. The row and
// column block of every variable is addressed by its offset and size.
// Shrinking is left to the marginalization collaborator, which must renumber
// the offsets of all remaining variables after removing a block.
type Covariance struct {
	// m is the matrix storage, nil until the first Grow
	m *mat.Dense
	// n is the current dimension
	n int
}

// NewCovariance creates a new zeroed n x n covariance.
// n may be zero: the covariance then holds no storage until Grow is called.
func NewCovariance(n int) *Covariance {
	c := &Covariance{}
	if n > 0 {
		c.m = mat.NewDense(n, n, nil)
		c.n = n
	}

	return c
}

// Dim returns the current dimension.
func (c *Covariance) Dim() int {
	return c.n
}

// Grow expands the covariance by k rows and columns, preserving existing
// entries and zero-filling the new ones.
func (c *Covariance) Grow(k int) {
	if k <= 0 {
		return
	}

	if c.n == 0 {
		c.m = mat.NewDense(k, k, nil)
		c.n = k
		return
	}

	c.m = c.m.Grow(k, k).(*mat.Dense)
	c.n += k
}

// At returns the element at row i, column j.
func (c *Covariance) At(i, j int) float64 {
	return c.m.At(i, j)
}

// Set sets the element at row i, column j to v.
func (c *Covariance) Set(i, j int, v float64) {
	c.m.Set(i, j, v)
}

// Block returns a mutable view of the r x q block rooted at row i, column j.
// It panics if the block reaches outside the covariance or r or q is zero.
func (c *Covariance) Block(i, j, r, q int) *mat.Dense {
	return c.m.Slice(i, i+r, j, j+q).(*mat.Dense)
}

// SetBlock copies src into the block rooted at row i, column j.
func (c *Covariance) SetBlock(i, j int, src mat.Matrix) {
	r, q := src.Dims()
	c.Block(i, j, r, q).Copy(src)
}

// CopyBlock copies the r x q block rooted at (si, sj) into the block rooted
// at (di, dj).
func (c *Covariance) CopyBlock(di, dj, si, sj, r, q int) {
	c.Block(di, dj, r, q).Copy(c.Block(si, sj, r, q))
}

// MirrorUpper copies the upper triangle onto the lower one, restoring exact
// symmetry after updates which write only the upper half.
func (c *Covariance) MirrorUpper() {
	for i := 1; i < c.n; i++ {
		for j := 0; j < i; j++ {
			c.m.Set(i, j, c.m.At(j, i))
		}
	}
}

// Sym returns a symmetric snapshot of the covariance built from its upper
// triangle.
// It panics if the covariance is empty.
func (c *Covariance) Sym() *mat.SymDense {
	s := mat.NewSymDense(c.n, nil)
	for i := 0; i < c.n; i++ {
		for j := i; j < c.n; j++ {
			s.SetSym(i, j, c.m.At(i, j))
		}
	}

	return s
}
