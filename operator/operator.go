// Package operator composes restrictions, a basis stage, and a
// pointwise kernel into the action of a discrete operator:
// gather, basis evaluation, batched QFunction call, basis transpose,
// scatter-add.
package operator

import (
	"fmt"

	"github.com/notargets/ElemKernel/qfunction"
	"github.com/notargets/ElemKernel/restriction"
	"github.com/notargets/ElemKernel/vector"
	"k8s.io/klog/v2"
)

// opField is one bound field: the declaration plus its restriction,
// basis, data vector, and the work buffers allocated at finalize
type opField struct {
	decl    qfunction.Field
	isInput bool

	r     *restriction.ElemRestriction
	basis Basis
	vec   *vector.Vector

	evec *vector.Vector // element-local work vector; nil for WEIGHT
	qArr []float64      // quadrature-layout buffer handed to the kernel
}

// Operator assembles one QFunction with its field bindings
type Operator struct {
	qf     *qfunction.QFunction
	fields []*opField

	numElements int
	numQuad     int
	dim         int
	finalized   bool
}

// New creates an operator around the given QFunction
func New(qf *qfunction.QFunction) *Operator {
	op := &Operator{qf: qf}
	for _, f := range qf.Inputs() {
		op.fields = append(op.fields, &opField{decl: f, isInput: true})
	}
	for _, f := range qf.Outputs() {
		op.fields = append(op.fields, &opField{decl: f})
	}
	return op
}

// SetField binds a declared field to a restriction, basis, and vector.
// vec may be vector.Active (substituted with the apply-time
// input/output) or vector.None (no passive data; required for WEIGHT
// fields, which also take no restriction).
func (op *Operator) SetField(name string, r *restriction.ElemRestriction, basis Basis, vec *vector.Vector) error {
	f := op.findField(name)
	if f == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if f.r != nil || f.basis != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateField, name)
	}
	if f.decl.Mode == qfunction.EvalWeight {
		if r != nil || vec != vector.None {
			return fmt.Errorf("%w: WEIGHT field %q takes no restriction or data", ErrBadVector, name)
		}
	} else if r == nil {
		return fmt.Errorf("%w: field %q needs a restriction", ErrIncompatible, name)
	}
	if basis == nil {
		return fmt.Errorf("%w: field %q needs a basis", ErrIncompatible, name)
	}
	f.r = r
	f.basis = basis
	f.vec = vec
	return nil
}

func (op *Operator) findField(name string) *opField {
	for _, f := range op.fields {
		if f.decl.Name == name {
			return f
		}
	}
	return nil
}

// Finalize runs the one-time configuration checks and allocates the
// work buffers. Field mismatches surface here, not per apply.
func (op *Operator) Finalize() error {
	if op.finalized {
		return nil
	}

	for _, f := range op.fields {
		if f.basis == nil {
			return fmt.Errorf("%w: %q", ErrFieldNotSet, f.decl.Name)
		}
	}

	// Element count must agree across all restrictions
	op.numElements = -1
	for _, f := range op.fields {
		if f.r == nil {
			continue
		}
		if op.numElements < 0 {
			op.numElements = f.r.NumElements()
		} else if f.r.NumElements() != op.numElements {
			return fmt.Errorf("%w: field %q has %d elements, operator has %d",
				ErrIncompatible, f.decl.Name, f.r.NumElements(), op.numElements)
		}
	}
	if op.numElements < 0 {
		return fmt.Errorf("%w: no field carries a restriction", ErrIncompatible)
	}

	// Quadrature size and dimension come from the first real basis;
	// collocated fields inherit them from their restriction
	op.numQuad, op.dim = 0, 0
	for _, f := range op.fields {
		if f.basis == Collocated {
			continue
		}
		q, d := f.basis.NumQuadraturePoints(), f.basis.Dimension()
		if op.numQuad == 0 {
			op.numQuad, op.dim = q, d
		} else if q != op.numQuad || d != op.dim {
			return fmt.Errorf("%w: field %q basis is Q=%d dim=%d, operator has Q=%d dim=%d",
				ErrIncompatible, f.decl.Name, q, d, op.numQuad, op.dim)
		}
	}
	if op.dim == 0 {
		op.dim = 1
	}

	for _, f := range op.fields {
		if err := op.checkField(f); err != nil {
			return err
		}
	}
	if op.numQuad == 0 {
		return fmt.Errorf("%w: no basis or restriction determines the quadrature size", ErrIncompatible)
	}

	// Work buffers: one element-local vector and one quadrature-layout
	// array per field
	for _, f := range op.fields {
		f.qArr = make([]float64, op.numElements*op.numQuad*f.decl.NumComponents)
		if f.r == nil {
			continue
		}
		evec, err := f.r.CreateLocalVector()
		if err != nil {
			return err
		}
		f.evec = evec
	}

	op.finalized = true
	klog.V(2).Infof("operator %q finalized: %d elements, %d quadrature points, dim %d",
		op.qf.Name(), op.numElements, op.numQuad, op.dim)
	return nil
}

// checkField validates one field's declaration against its binding
func (op *Operator) checkField(f *opField) error {
	if f.decl.Mode == qfunction.EvalWeight {
		if f.decl.NumComponents != 1 {
			return fmt.Errorf("%w: WEIGHT field %q declares %d components, needs 1",
				ErrIncompatible, f.decl.Name, f.decl.NumComponents)
		}
		return nil
	}

	slots := f.r.LocalSize() / (f.r.NumElements() * f.r.NumComponents())
	if f.basis == Collocated {
		if op.numQuad == 0 {
			op.numQuad = slots
		} else if slots != op.numQuad {
			return fmt.Errorf("%w: collocated field %q has %d points per element, operator has %d",
				ErrIncompatible, f.decl.Name, slots, op.numQuad)
		}
	} else if f.basis.NumNodes() != slots {
		return fmt.Errorf("%w: field %q basis has %d nodes, restriction has %d",
			ErrIncompatible, f.decl.Name, f.basis.NumNodes(), slots)
	}

	want := f.decl.Mode.QuadratureSize(f.r.NumComponents(), op.dim)
	if f.decl.NumComponents != want {
		return fmt.Errorf("%w: field %q declares %d values per point, restriction/basis imply %d",
			ErrIncompatible, f.decl.Name, f.decl.NumComponents, want)
	}

	if f.vec != vector.Active && f.vec != vector.None && f.vec != nil {
		if f.vec.Size() != f.r.GlobalSize() {
			return fmt.Errorf("%w: field %q vector has %d values, restriction needs %d",
				ErrBadVector, f.decl.Name, f.vec.Size(), f.r.GlobalSize())
		}
	}
	return nil
}

// Apply computes out = Op(in): out is zeroed, then accumulated
func (op *Operator) Apply(in, out *vector.Vector) error {
	if err := op.Finalize(); err != nil {
		return err
	}
	if err := out.SetValue(0); err != nil {
		return err
	}
	return op.ApplyAdd(in, out)
}

// ApplyAdd accumulates Op(in) into out without zeroing
func (op *Operator) ApplyAdd(in, out *vector.Vector) error {
	if err := op.Finalize(); err != nil {
		return err
	}

	var ins, outs [][]float64
	for _, f := range op.fields {
		if f.isInput {
			if err := op.evalInput(f, in); err != nil {
				return fmt.Errorf("input field %q: %w", f.decl.Name, err)
			}
			ins = append(ins, f.qArr)
		} else {
			for i := range f.qArr {
				f.qArr[i] = 0
			}
			outs = append(outs, f.qArr)
		}
	}

	if err := op.qf.Apply(op.numElements*op.numQuad, ins, outs); err != nil {
		return fmt.Errorf("qfunction %q: %w", op.qf.Name(), err)
	}

	for _, f := range op.fields {
		if f.isInput {
			continue
		}
		if err := op.assembleOutput(f, out); err != nil {
			return fmt.Errorf("output field %q: %w", f.decl.Name, err)
		}
	}
	return nil
}

// evalInput runs gather and basis evaluation into the field's
// quadrature buffer
func (op *Operator) evalInput(f *opField, active *vector.Vector) error {
	if f.decl.Mode == qfunction.EvalWeight {
		return f.basis.Apply(op.numElements, restriction.NoTranspose, qfunction.EvalWeight, nil, f.qArr)
	}

	vec := f.vec
	if vec == vector.Active {
		vec = active
	}
	if err := f.evec.SetValue(0); err != nil {
		return err
	}
	if err := f.r.Apply(restriction.NoTranspose, vec, f.evec); err != nil {
		return err
	}
	eArr, err := f.evec.GetArrayRead()
	if err != nil {
		return err
	}
	defer f.evec.RestoreArrayRead()
	return f.basis.Apply(op.numElements, restriction.NoTranspose, f.decl.Mode, eArr, f.qArr)
}

// assembleOutput runs basis transpose and scatter-add from the field's
// quadrature buffer into its destination vector
func (op *Operator) assembleOutput(f *opField, active *vector.Vector) error {
	vec := f.vec
	if vec == vector.Active {
		vec = active
	}
	if err := f.evec.SetValue(0); err != nil {
		return err
	}
	eArr, err := f.evec.GetArray()
	if err != nil {
		return err
	}
	if err := f.basis.Apply(op.numElements, restriction.Transpose, f.decl.Mode, f.qArr, eArr); err != nil {
		f.evec.RestoreArray()
		return err
	}
	if err := f.evec.RestoreArray(); err != nil {
		return err
	}
	return f.r.Apply(restriction.Transpose, f.evec, vec)
}
