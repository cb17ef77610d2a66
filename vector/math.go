package vector

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// NormType selects the norm computed by Norm
type NormType int

const (
	Norm1 NormType = iota
	Norm2
	NormMax
)

// Scale multiplies every entry by alpha
func (v *Vector) Scale(alpha float64) error {
	arr, err := v.GetArray()
	if err != nil {
		return err
	}
	floats.Scale(alpha, arr)
	return v.RestoreArray()
}

// AXPY computes v = alpha*x + v
func (v *Vector) AXPY(alpha float64, x *Vector) error {
	if x.size != v.size {
		return fmt.Errorf("%w: axpy operand %d vs %d", ErrSizeMismatch, x.size, v.size)
	}
	xArr, err := x.GetArrayRead()
	if err != nil {
		return err
	}
	defer x.RestoreArrayRead()
	arr, err := v.GetArray()
	if err != nil {
		return err
	}
	floats.AddScaled(arr, alpha, xArr)
	return v.RestoreArray()
}

// PointwiseMult computes v[i] = x[i] * y[i]
func (v *Vector) PointwiseMult(x, y *Vector) error {
	if x.size != v.size || y.size != v.size {
		return fmt.Errorf("%w: pointwise mult operands %d, %d vs %d",
			ErrSizeMismatch, x.size, y.size, v.size)
	}
	xArr, err := x.GetArrayRead()
	if err != nil {
		return err
	}
	defer x.RestoreArrayRead()
	yArr, err := y.GetArrayRead()
	if err != nil {
		return err
	}
	defer y.RestoreArrayRead()
	arr, err := v.GetArrayWrite()
	if err != nil {
		return err
	}
	floats.MulTo(arr, xArr, yArr)
	return v.RestoreArray()
}

// Norm computes the requested norm of the vector
func (v *Vector) Norm(kind NormType) (float64, error) {
	arr, err := v.GetArrayRead()
	if err != nil {
		return 0, err
	}
	defer v.RestoreArrayRead()
	switch kind {
	case Norm1:
		return floats.Norm(arr, 1), nil
	case NormMax:
		return floats.Norm(arr, math.Inf(1)), nil
	default:
		return floats.Norm(arr, 2), nil
	}
}
