package trajopt

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// collocation is the full program over z = [T, x_0..x_{N-1}]. Constraint
// Jacobians are assembled block by block: each RK4 defect depends only on
// T, the launch velocity, and two neighbouring knots, and each clearance
// row only on two neighbouring positions.
type collocation struct {
	p *Problem

	// scratch is z with one block's variables replaced during differencing.
	scratch []float64

	defectVars [][]int
	pathVars   []int
	defectJac  []*mat.Dense
	pathJac    *mat.Dense
	segGrad    []float64
	blockX     []float64
}

func newCollocation(p *Problem) *collocation {
	c := &collocation{
		p:       p,
		scratch: make([]float64, p.Dim()),
		segGrad: make([]float64, 6),
	}

	v0 := []int{knotOffset(0) + 3, knotOffset(0) + 4, knotOffset(0) + 5}
	for k := 0; k < p.knots-1; k++ {
		vars := []int{0}
		vars = appendUnique(vars, v0...)
		vars = appendUnique(vars, knotRange(k)...)
		vars = appendUnique(vars, knotRange(k+1)...)
		c.defectVars = append(c.defectVars, vars)
		c.defectJac = append(c.defectJac, mat.NewDense(stateDim, len(vars), nil))
	}

	c.pathVars = appendUnique([]int{0}, v0...)
	c.pathVars = appendUnique(c.pathVars, knotRange(p.knots-1)...)
	c.pathJac = mat.NewDense(pathIneqs, len(c.pathVars), nil)
	return c
}

func knotRange(k int) []int {
	o := knotOffset(k)
	out := make([]int, stateDim)
	for i := range out {
		out[i] = o + i
	}
	return out
}

func appendUnique(dst []int, idx ...int) []int {
outer:
	for _, i := range idx {
		for _, j := range dst {
			if i == j {
				continue outer
			}
		}
		dst = append(dst, i)
	}
	return dst
}

func (c *collocation) Dim() int                        { return c.p.Dim() }
func (c *collocation) NumEq() int                      { return c.p.NumEq() }
func (c *collocation) NumIneq() int                    { return c.p.NumIneq() }
func (c *collocation) Objective(z []float64) float64   { return c.p.Objective(z) }
func (c *collocation) ObjectiveGrad(grad, z []float64) { c.p.ObjectiveGrad(grad, z) }
func (c *collocation) Constraints(eq, ineq, z []float64) {
	c.p.Constraints(eq, ineq, z)
}

// gather copies the block variables out of z.
func (c *collocation) gather(z []float64, vars []int) []float64 {
	if cap(c.blockX) < len(vars) {
		c.blockX = make([]float64, len(vars))
	}
	x := c.blockX[:len(vars)]
	for i, v := range vars {
		x[i] = z[v]
	}
	return x
}

// scatter writes block values into the scratch copy of z.
func (c *collocation) scatter(vars []int, x []float64) {
	for i, v := range vars {
		c.scratch[v] = x[i]
	}
}

func allZero(w []float64) bool {
	for _, v := range w {
		if v != 0 {
			return false
		}
	}
	return true
}

// addJacT adds Jᵀw to grad for a block Jacobian over vars.
func addJacT(grad []float64, jac *mat.Dense, vars []int, w []float64) {
	rows, cols := jac.Dims()
	for j := 0; j < cols; j++ {
		var sum float64
		for i := 0; i < rows; i++ {
			sum += jac.At(i, j) * w[i]
		}
		grad[vars[j]] += sum
	}
}

func (c *collocation) AccumulateJacT(grad, z, we, wi []float64) {
	p := c.p
	copy(c.scratch, z)
	central := &fd.JacobianSettings{Formula: fd.Central}

	// Launch pin rows are the identity on x_0's position.
	for i := 0; i < 3; i++ {
		grad[knotOffset(0)+i] += we[i]
	}

	for k := 0; k < p.knots-1; k++ {
		w := we[3+stateDim*k : 3+stateDim*(k+1)]
		if allZero(w) {
			continue
		}
		vars := c.defectVars[k]
		x := append([]float64(nil), c.gather(z, vars)...)
		fd.Jacobian(c.defectJac[k], func(y, xs []float64) {
			c.scatter(vars, xs)
			p.defect(y, c.scratch, k)
		}, x, central)
		c.scatter(vars, x)
		addJacT(grad, c.defectJac[k], vars, w)
	}

	if w := wi[:pathIneqs]; !allZero(w) {
		x := append([]float64(nil), c.gather(z, c.pathVars)...)
		last := p.knots - 1
		fd.Jacobian(c.pathJac, func(y, xs []float64) {
			c.scatter(c.pathVars, xs)
			p.pathConstraints(y, c.scratch[0], stateAt(c.scratch, 0).Velocity(), stateAt(c.scratch, last))
		}, x, central)
		c.scatter(c.pathVars, x)
		addJacT(grad, c.pathJac, c.pathVars, w)
	}

	gradSettings := &fd.Settings{Formula: fd.Central}
	for k := 0; k < p.knots-1; k++ {
		w := wi[pathIneqs+k]
		if w == 0 {
			continue
		}
		a, b := knotOffset(k), knotOffset(k+1)
		x := []float64{z[a], z[a+1], z[a+2], z[b], z[b+1], z[b+2]}
		fd.Gradient(c.segGrad, func(xs []float64) float64 {
			return p.clearanceRow(vec(xs[0:3]), vec(xs[3:6]))
		}, x, gradSettings)
		for i := 0; i < 3; i++ {
			grad[a+i] += w * c.segGrad[i]
			grad[b+i] += w * c.segGrad[3+i]
		}
	}
}
