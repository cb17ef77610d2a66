package gallery

import (
	"fmt"

	"github.com/notargets/ElemKernel/qfunction"
)

func init() {
	qfunction.MustRegister("Poisson3DBuild", NewPoisson3DBuild)
	qfunction.MustRegister("Vector3Poisson1DApply", func() (*qfunction.QFunction, error) {
		return NewVectorPoisson1DApply(VectorPoissonContext{NumComponents: 3})
	})
}

// NewPoisson3DBuild builds the geometric factors for the 3D Poisson
// operator: the symmetric matrix G = w/det(J) * adj(J) adj(J)^T stored
// as the six entries [G11 G12 G13 G22 G23 G33] per point. J holds the
// coordinate Jacobian dx/dX, column-major, dim*dim values per point.
func NewPoisson3DBuild() (*qfunction.QFunction, error) {
	const dim = 3
	qf := qfunction.New("Poisson3DBuild", func(q int, in, out [][]float64) error {
		j, w := in[0], in[1]
		qdata := out[0]
		for i := 0; i < q; i++ {
			j11, j21, j31 := j[i+q*0], j[i+q*1], j[i+q*2]
			j12, j22, j32 := j[i+q*3], j[i+q*4], j[i+q*5]
			j13, j23, j33 := j[i+q*6], j[i+q*7], j[i+q*8]

			// Adjugate of J; J^-1 = A / det
			a11 := j22*j33 - j23*j32
			a12 := j13*j32 - j12*j33
			a13 := j12*j23 - j13*j22
			a21 := j23*j31 - j21*j33
			a22 := j11*j33 - j13*j31
			a23 := j13*j21 - j11*j23
			a31 := j21*j32 - j22*j31
			a32 := j12*j31 - j11*j32
			a33 := j11*j22 - j12*j21

			det := j11*a11 + j21*a12 + j31*a13
			qw := w[i] / det

			qdata[i+q*0] = qw * (a11*a11 + a12*a12 + a13*a13)
			qdata[i+q*1] = qw * (a11*a21 + a12*a22 + a13*a23)
			qdata[i+q*2] = qw * (a11*a31 + a12*a32 + a13*a33)
			qdata[i+q*3] = qw * (a21*a21 + a22*a22 + a23*a23)
			qdata[i+q*4] = qw * (a21*a31 + a22*a32 + a23*a33)
			qdata[i+q*5] = qw * (a31*a31 + a32*a32 + a33*a33)
		}
		return nil
	})
	if err := qf.AddInput("dx", dim*dim, qfunction.EvalGrad); err != nil {
		return nil, err
	}
	if err := qf.AddInput("weights", 1, qfunction.EvalWeight); err != nil {
		return nil, err
	}
	if err := qf.AddOutput("qdata", dim*(dim+1)/2, qfunction.EvalNone); err != nil {
		return nil, err
	}
	return qf, nil
}

// VectorPoissonContext configures the vector Poisson apply kernels
type VectorPoissonContext struct {
	NumComponents int
}

// NewVectorPoisson1DApply builds the 1D Poisson action on a vector
// field: vg[c] = qdata * ug[c] for each of the context's components
func NewVectorPoisson1DApply(ctx VectorPoissonContext) (*qfunction.QFunction, error) {
	if ctx.NumComponents <= 0 {
		return nil, fmt.Errorf("gallery: vector poisson needs positive components, got %d",
			ctx.NumComponents)
	}
	nc := ctx.NumComponents
	qf := qfunction.New("VectorPoisson1DApply", func(q int, in, out [][]float64) error {
		ug, qdata := in[0], in[1]
		vg := out[0]
		for i := 0; i < q; i++ {
			for c := 0; c < nc; c++ {
				vg[i+q*c] = qdata[i] * ug[i+q*c]
			}
		}
		return nil
	})
	if err := qf.AddInput("du", nc, qfunction.EvalGrad); err != nil {
		return nil, err
	}
	if err := qf.AddInput("qdata", 1, qfunction.EvalNone); err != nil {
		return nil, err
	}
	if err := qf.AddOutput("dv", nc, qfunction.EvalGrad); err != nil {
		return nil, err
	}
	return qf, nil
}
