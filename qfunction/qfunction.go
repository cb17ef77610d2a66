// Package qfunction defines the pointwise-kernel field contract: named
// input/output fields with declared evaluation modes, and a batched
// invocation over Q independent points.
//
// Kernels receive one flat array per declared field, laid out
// component-major with stride Q: the value of component c at point q is
// field[q + Q*c]. Each of the Q points must be treated independently,
// with no data dependency between points, which permits arbitrary
// partitioning of a batch across workers or vector lanes. Kernels are
// pure with respect to their declared fields: physical parameters enter
// through a typed per-kernel context struct the kernel closes over, not
// through an untyped payload.
//
// Field/component mismatches against call sites are the operator's
// one-time finalize check, not a per-invocation cost; Apply itself only
// verifies arity.
package qfunction

import "fmt"

// EvalMode determines the per-point array shape a field takes
type EvalMode int

const (
	// EvalNone passes nodal values through unchanged (collocated data)
	EvalNone EvalMode = iota
	// EvalInterp interpolates nodal values to quadrature points
	EvalInterp
	// EvalGrad evaluates gradients: component count times the reference dimension
	EvalGrad
	// EvalDiv evaluates the divergence
	EvalDiv
	// EvalCurl evaluates the curl
	EvalCurl
	// EvalWeight supplies quadrature weights; input-only, one value per point
	EvalWeight
)

func (m EvalMode) String() string {
	switch m {
	case EvalNone:
		return "NONE"
	case EvalInterp:
		return "INTERP"
	case EvalGrad:
		return "GRAD"
	case EvalDiv:
		return "DIV"
	case EvalCurl:
		return "CURL"
	case EvalWeight:
		return "WEIGHT"
	}
	return fmt.Sprintf("EvalMode(%d)", int(m))
}

// QuadratureSize returns the number of values per quadrature point for
// numComponents field components in the given reference dimension
func (m EvalMode) QuadratureSize(numComponents, dim int) int {
	switch m {
	case EvalGrad:
		return numComponents * dim
	case EvalWeight:
		return 1
	default:
		return numComponents
	}
}

// Field declares one named input or output of a pointwise kernel
type Field struct {
	Name          string
	NumComponents int
	Mode          EvalMode
}

// PointFunc is the batched kernel body: q points, one array per
// declared input and output field
type PointFunc func(q int, in, out [][]float64) error

// QFunction pairs a pointwise kernel with its ordered field declarations
type QFunction struct {
	name    string
	f       PointFunc
	inputs  []Field
	outputs []Field
}

// New creates a QFunction around the given kernel body
func New(name string, f PointFunc) *QFunction {
	return &QFunction{name: name, f: f}
}

// Name returns the kernel name
func (qf *QFunction) Name() string { return qf.name }

// Inputs returns the ordered input field declarations
func (qf *QFunction) Inputs() []Field { return qf.inputs }

// Outputs returns the ordered output field declarations
func (qf *QFunction) Outputs() []Field { return qf.outputs }

// AddInput declares the next input field
func (qf *QFunction) AddInput(name string, numComponents int, mode EvalMode) error {
	return qf.addField(&qf.inputs, name, numComponents, mode)
}

// AddOutput declares the next output field. Weights cannot be outputs.
func (qf *QFunction) AddOutput(name string, numComponents int, mode EvalMode) error {
	if mode == EvalWeight {
		return fmt.Errorf("%w: output field %q cannot use WEIGHT", ErrBadField, name)
	}
	return qf.addField(&qf.outputs, name, numComponents, mode)
}

func (qf *QFunction) addField(fields *[]Field, name string, numComponents int, mode EvalMode) error {
	if name == "" || numComponents <= 0 {
		return fmt.Errorf("%w: name %q, %d components", ErrBadField, name, numComponents)
	}
	for _, f := range append(qf.inputs, qf.outputs...) {
		if f.Name == name {
			return fmt.Errorf("%w: %q", ErrDuplicateField, name)
		}
	}
	*fields = append(*fields, Field{Name: name, NumComponents: numComponents, Mode: mode})
	return nil
}

// Apply invokes the kernel on a batch of q points. in and out hold one
// array per declared field, in declaration order.
func (qf *QFunction) Apply(q int, in, out [][]float64) error {
	if len(in) != len(qf.inputs) || len(out) != len(qf.outputs) {
		return fmt.Errorf("%w: got %d/%d arrays, declared %d/%d",
			ErrArity, len(in), len(out), len(qf.inputs), len(qf.outputs))
	}
	return qf.f(q, in, out)
}
