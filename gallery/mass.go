// Package gallery provides stock pointwise kernels registered by name
// with the qfunction registry. Each kernel declares its field contract
// in its factory; physical parameters enter through typed context
// structs closed over by the kernel body.
package gallery

import (
	"github.com/notargets/ElemKernel/qfunction"
)

func init() {
	qfunction.MustRegister("MassApply", NewMassApply)
	qfunction.MustRegister("Mass1DBuild", NewMass1DBuild)
	qfunction.MustRegister("Mass2DBuild", NewMass2DBuild)
	qfunction.MustRegister("Mass3DBuild", NewMass3DBuild)
}

// NewMassApply builds the mass operator action at quadrature points:
// v = qdata * u, with qdata the prebuilt geometric factor
func NewMassApply() (*qfunction.QFunction, error) {
	qf := qfunction.New("MassApply", func(q int, in, out [][]float64) error {
		qdata, u := in[0], in[1]
		v := out[0]
		for i := 0; i < q; i++ {
			v[i] = qdata[i] * u[i]
		}
		return nil
	})
	if err := qf.AddInput("qdata", 1, qfunction.EvalNone); err != nil {
		return nil, err
	}
	if err := qf.AddInput("u", 1, qfunction.EvalInterp); err != nil {
		return nil, err
	}
	if err := qf.AddOutput("v", 1, qfunction.EvalInterp); err != nil {
		return nil, err
	}
	return qf, nil
}

// NewMass1DBuild builds the 1D mass geometric factor:
// qdata = w * dx/dX
func NewMass1DBuild() (*qfunction.QFunction, error) {
	qf := qfunction.New("Mass1DBuild", func(q int, in, out [][]float64) error {
		j, w := in[0], in[1]
		qdata := out[0]
		for i := 0; i < q; i++ {
			qdata[i] = j[i] * w[i]
		}
		return nil
	})
	return declareMassBuildFields(qf, 1)
}

// NewMass2DBuild builds the 2D mass geometric factor:
// qdata = w * det(J)
func NewMass2DBuild() (*qfunction.QFunction, error) {
	qf := qfunction.New("Mass2DBuild", func(q int, in, out [][]float64) error {
		j, w := in[0], in[1]
		qdata := out[0]
		for i := 0; i < q; i++ {
			qdata[i] = w[i] * (j[i+q*0]*j[i+q*3] - j[i+q*1]*j[i+q*2])
		}
		return nil
	})
	return declareMassBuildFields(qf, 2)
}

// NewMass3DBuild builds the 3D mass geometric factor:
// qdata = w * det(J)
func NewMass3DBuild() (*qfunction.QFunction, error) {
	qf := qfunction.New("Mass3DBuild", func(q int, in, out [][]float64) error {
		j, w := in[0], in[1]
		qdata := out[0]
		for i := 0; i < q; i++ {
			det := j[i+q*0]*(j[i+q*4]*j[i+q*8]-j[i+q*5]*j[i+q*7]) -
				j[i+q*1]*(j[i+q*3]*j[i+q*8]-j[i+q*5]*j[i+q*6]) +
				j[i+q*2]*(j[i+q*3]*j[i+q*7]-j[i+q*4]*j[i+q*6])
			qdata[i] = w[i] * det
		}
		return nil
	})
	return declareMassBuildFields(qf, 3)
}

// declareMassBuildFields declares the shared build-kernel contract: the
// coordinate Jacobian (dim*dim values per point), quadrature weights,
// and the collocated qdata output
func declareMassBuildFields(qf *qfunction.QFunction, dim int) (*qfunction.QFunction, error) {
	if err := qf.AddInput("dx", dim*dim, qfunction.EvalGrad); err != nil {
		return nil, err
	}
	if err := qf.AddInput("weights", 1, qfunction.EvalWeight); err != nil {
		return nil, err
	}
	if err := qf.AddOutput("qdata", 1, qfunction.EvalNone); err != nil {
		return nil, err
	}
	return qf, nil
}
