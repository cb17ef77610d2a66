package operator

import (
	"fmt"

	"github.com/notargets/ElemKernel/qfunction"
	"github.com/notargets/ElemKernel/restriction"
	"gonum.org/v1/gonum/mat"
)

// Basis is the external-collaborator boundary: the stage that maps
// element-local nodal values to quadrature-point values per a field's
// evaluation mode, and back. Implementations must honor the layouts the
// operator produces: nodal values are component-major
// (c*numElem*P + e*P + n), quadrature values are component-major over
// the per-point value index d (d*numElem*Q + e*Q + i), with d = c for
// INTERP and d = c + numComp*k for derivative direction k under GRAD.
type Basis interface {
	// Dimension returns the reference dimension
	Dimension() int
	// NumNodes returns nodal points per element (P)
	NumNodes() int
	// NumQuadraturePoints returns quadrature points per element (Q)
	NumQuadraturePoints() int
	// Apply maps u to v for numElem elements: NoTranspose goes nodes to
	// quadrature points, Transpose accumulates quadrature contributions
	// back onto nodes
	Apply(numElem int, dir restriction.Direction, mode qfunction.EvalMode, u, v []float64) error
}

// Collocated is the identity basis: nodal and quadrature points
// coincide and values pass through unchanged. Its node/quadrature
// counts are taken from the field's restriction at finalize.
var Collocated Basis = collocatedBasis{}

type collocatedBasis struct{}

func (collocatedBasis) Dimension() int           { return 0 }
func (collocatedBasis) NumNodes() int            { return 0 }
func (collocatedBasis) NumQuadraturePoints() int { return 0 }

func (collocatedBasis) Apply(numElem int, dir restriction.Direction, mode qfunction.EvalMode, u, v []float64) error {
	switch mode {
	case qfunction.EvalNone, qfunction.EvalInterp:
		copy(v, u)
		return nil
	default:
		return fmt.Errorf("%w: collocated basis cannot evaluate %v", ErrUnsupportedMode, mode)
	}
}

// MatrixBasis implements Basis with dense interpolation and gradient
// matrices, the reference implementation used by tests and examples
type MatrixBasis struct {
	dim      int
	numComp  int
	p, q     int
	interp   *mat.Dense // q x p
	grad     *mat.Dense // (dim*q) x p, gradient matrices stacked by direction
	qWeights []float64
}

// NewMatrixBasis creates a matrix-backed basis. interp is q x p; grad
// stacks the dim directional q x p gradient matrices; qWeights holds
// the q quadrature weights.
func NewMatrixBasis(dim, numComp, p, q int, interp, grad mat.Matrix, qWeights []float64) (*MatrixBasis, error) {
	if dim <= 0 || numComp <= 0 || p <= 0 || q <= 0 {
		return nil, fmt.Errorf("%w: dim=%d numComp=%d p=%d q=%d",
			ErrIncompatible, dim, numComp, p, q)
	}
	if r, c := interp.Dims(); r != q || c != p {
		return nil, fmt.Errorf("%w: interp is %dx%d, need %dx%d", ErrIncompatible, r, c, q, p)
	}
	b := &MatrixBasis{dim: dim, numComp: numComp, p: p, q: q}
	b.interp = mat.DenseCopyOf(interp)
	if grad != nil {
		if r, c := grad.Dims(); r != dim*q || c != p {
			return nil, fmt.Errorf("%w: grad is %dx%d, need %dx%d", ErrIncompatible, r, c, dim*q, p)
		}
		b.grad = mat.DenseCopyOf(grad)
	}
	if qWeights != nil {
		if len(qWeights) != q {
			return nil, fmt.Errorf("%w: %d weights for %d quadrature points",
				ErrIncompatible, len(qWeights), q)
		}
		b.qWeights = append([]float64{}, qWeights...)
	}
	return b, nil
}

func (b *MatrixBasis) Dimension() int           { return b.dim }
func (b *MatrixBasis) NumNodes() int            { return b.p }
func (b *MatrixBasis) NumQuadraturePoints() int { return b.q }

// Apply maps between nodal and quadrature layouts for numElem elements
func (b *MatrixBasis) Apply(numElem int, dir restriction.Direction, mode qfunction.EvalMode, u, v []float64) error {
	switch mode {
	case qfunction.EvalNone:
		copy(v, u)
		return nil

	case qfunction.EvalWeight:
		if b.qWeights == nil {
			return fmt.Errorf("%w: basis has no quadrature weights", ErrUnsupportedMode)
		}
		if dir == restriction.Transpose {
			return fmt.Errorf("%w: WEIGHT has no transpose", ErrUnsupportedMode)
		}
		for e := 0; e < numElem; e++ {
			copy(v[e*b.q:(e+1)*b.q], b.qWeights)
		}
		return nil

	case qfunction.EvalInterp:
		return b.applyMatrix(numElem, dir, u, v, b.interp, 0)

	case qfunction.EvalGrad:
		if b.grad == nil {
			return fmt.Errorf("%w: basis has no gradient matrices", ErrUnsupportedMode)
		}
		for k := 0; k < b.dim; k++ {
			gk := b.grad.Slice(k*b.q, (k+1)*b.q, 0, b.p)
			if err := b.applyMatrix(numElem, dir, u, v, gk, k); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedMode, mode)
	}
}

// applyMatrix runs the per-element, per-component matvec for one
// directional block k of the quadrature layout
func (b *MatrixBasis) applyMatrix(numElem int, dir restriction.Direction, u, v []float64, m mat.Matrix, k int) error {
	nodeStride := numElem * b.p
	quadStride := numElem * b.q

	for e := 0; e < numElem; e++ {
		for c := 0; c < b.numComp; c++ {
			d := c + b.numComp*k
			nodes := u[c*nodeStride+e*b.p : c*nodeStride+(e+1)*b.p]
			quads := v[d*quadStride+e*b.q : d*quadStride+(e+1)*b.q]
			if dir == restriction.Transpose {
				// u and v swap roles: accumulate quadrature data onto nodes
				nodes = v[c*nodeStride+e*b.p : c*nodeStride+(e+1)*b.p]
				quads = u[d*quadStride+e*b.q : d*quadStride+(e+1)*b.q]
				tmp := mat.NewVecDense(b.p, nil)
				tmp.MulVec(m.T(), mat.NewVecDense(b.q, quads))
				for n := 0; n < b.p; n++ {
					nodes[n] += tmp.AtVec(n)
				}
				continue
			}
			out := mat.NewVecDense(b.q, quads)
			out.MulVec(m, mat.NewVecDense(b.p, nodes))
		}
	}
	return nil
}
