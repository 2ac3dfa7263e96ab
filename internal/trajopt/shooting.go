package trajopt

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// shooting eliminates the knots by integrating from the launch point, so
// the decision vector is w = [T, vx0, vy0, vz0] and only the inequality
// rows remain. Every row depends on every variable, so Jacobians are dense.
type shooting struct {
	p   *Problem
	jac *mat.Dense
}

func newShooting(p *Problem) *shooting {
	return &shooting{
		p:   p,
		jac: mat.NewDense(p.NumIneq(), 4, nil),
	}
}

// warmStart reduces a full vector to [T, v0].
func (s *shooting) warmStart(z []float64) []float64 {
	o := knotOffset(0)
	return []float64{z[0], z[o+3], z[o+4], z[o+5]}
}

// expand rolls w out into a full trajectory.
func (s *shooting) expand(w []float64) *Trajectory {
	return &Trajectory{Duration: w[0], Knots: s.p.rollout(w[0], vec(w[1:4]))}
}

func (s *shooting) Dim() int     { return 4 }
func (s *shooting) NumEq() int   { return 0 }
func (s *shooting) NumIneq() int { return s.p.NumIneq() }

func (s *shooting) Objective(w []float64) float64 {
	t := s.p.params.Target.Position
	var sum float64
	for _, k := range s.p.rollout(w[0], vec(w[1:4])) {
		dx, dy, dz := k[0]-t.X, k[1]-t.Y, k[2]-t.Z
		sum += dx*dx + dy*dy + dz*dz
	}
	return sum
}

func (s *shooting) ObjectiveGrad(grad, w []float64) {
	fd.Gradient(grad, s.Objective, w, &fd.Settings{Formula: fd.Central})
}

func (s *shooting) Constraints(_, ineq, w []float64) {
	p := s.p
	knots := p.rollout(w[0], vec(w[1:4]))
	p.pathConstraints(ineq[:pathIneqs], w[0], vec(w[1:4]), knots[len(knots)-1])
	for k := 0; k+1 < len(knots); k++ {
		ineq[pathIneqs+k] = p.clearanceRow(knots[k].Position(), knots[k+1].Position())
	}
}

func (s *shooting) AccumulateJacT(grad, w, _, wi []float64) {
	if allZero(wi) {
		return
	}
	fd.Jacobian(s.jac, func(y, x []float64) {
		s.Constraints(nil, y, x)
	}, w, &fd.JacobianSettings{Formula: fd.Central})

	var jtw mat.VecDense
	jtw.MulVec(s.jac.T(), mat.NewVecDense(len(wi), wi))
	for i := range grad {
		grad[i] += jtw.AtVec(i)
	}
}
