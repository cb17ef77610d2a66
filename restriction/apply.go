package restriction

import (
	"fmt"

	"github.com/notargets/ElemKernel/vector"
)

// Apply maps values between the global vector and the element-local
// layout. NoTranspose gathers src (global) into dst (local); at-points
// slots beyond an element's count are left unwritten. Transpose
// scatter-adds src (local) into dst (global); callers wanting an exact
// result must zero dst first. Dimension checks run on every call; index
// validation happened at creation.
func (r *ElemRestriction) Apply(dir Direction, src, dst *vector.Vector) error {
	srcArr, dstArr, err := r.acquire(dir, src, dst)
	if err != nil {
		return err
	}
	defer src.RestoreArrayRead()
	defer dst.RestoreArray()

	r.applyRange(dir, srcArr, dstArr, 0, r.numElements)
	return nil
}

// acquire validates extents and opens the vector accesses for an apply
func (r *ElemRestriction) acquire(dir Direction, src, dst *vector.Vector) (srcArr, dstArr []float64, err error) {
	globalLen, localLen := r.GlobalSize(), r.LocalSize()
	wantSrc, wantDst := globalLen, localLen
	if dir == Transpose {
		wantSrc, wantDst = localLen, globalLen
	}
	if src.Size() != wantSrc {
		return nil, nil, fmt.Errorf("%w: src has %d, need %d", ErrSizeMismatch, src.Size(), wantSrc)
	}
	if dst.Size() != wantDst {
		return nil, nil, fmt.Errorf("%w: dst has %d, need %d", ErrSizeMismatch, dst.Size(), wantDst)
	}

	srcArr, err = src.GetArrayRead()
	if err != nil {
		return nil, nil, fmt.Errorf("acquiring src: %w", err)
	}
	// Read-write on dst: gather leaves ragged tail slots untouched and
	// scatter accumulates
	dstArr, err = dst.GetArray()
	if err != nil {
		src.RestoreArrayRead()
		return nil, nil, fmt.Errorf("acquiring dst: %w", err)
	}
	return srcArr, dstArr, nil
}

// applyRange runs the gather or scatter-add loop over elements [lo, hi)
func (r *ElemRestriction) applyRange(dir Direction, src, dst []float64, lo, hi int) {
	nComp := r.numComponents
	slots := r.slots()
	compStride := r.numElements * slots

	for e := lo; e < hi; e++ {
		base := r.slotBase(e)
		count := r.pointsIn(e)
		for j := 0; j < count; j++ {
			idx := r.indices[base+j]
			local := e*slots + j
			for c := 0; c < nComp; c++ {
				if dir == NoTranspose {
					dst[c*compStride+local] = src[r.globalIndex(idx, c)]
				} else {
					dst[r.globalIndex(idx, c)] += src[c*compStride+local]
				}
			}
		}
	}
}

// ApplyAtPointsInElement applies the gather/scatter-add semantics to a
// single element's slot range. The local vector covers one element:
// MaxPointsInElement (or elemSize) slots times numComponents values,
// with component c of slot j at c*slots + j.
func (r *ElemRestriction) ApplyAtPointsInElement(elem int, dir Direction, src, dst *vector.Vector) error {
	if elem < 0 || elem >= r.numElements {
		return fmt.Errorf("%w: %d of %d", ErrElementOutOfRange, elem, r.numElements)
	}

	slots := r.slots()
	globalLen, localLen := r.GlobalSize(), slots*r.numComponents
	wantSrc, wantDst := globalLen, localLen
	if dir == Transpose {
		wantSrc, wantDst = localLen, globalLen
	}
	if src.Size() != wantSrc {
		return fmt.Errorf("%w: src has %d, need %d", ErrSizeMismatch, src.Size(), wantSrc)
	}
	if dst.Size() != wantDst {
		return fmt.Errorf("%w: dst has %d, need %d", ErrSizeMismatch, dst.Size(), wantDst)
	}

	srcArr, err := src.GetArrayRead()
	if err != nil {
		return fmt.Errorf("acquiring src: %w", err)
	}
	defer src.RestoreArrayRead()
	dstArr, err := dst.GetArray()
	if err != nil {
		return fmt.Errorf("acquiring dst: %w", err)
	}
	defer dst.RestoreArray()

	base := r.slotBase(elem)
	count := r.pointsIn(elem)
	for j := 0; j < count; j++ {
		idx := r.indices[base+j]
		for c := 0; c < r.numComponents; c++ {
			if dir == NoTranspose {
				dstArr[c*slots+j] = srcArr[r.globalIndex(idx, c)]
			} else {
				dstArr[r.globalIndex(idx, c)] += srcArr[c*slots+j]
			}
		}
	}
	return nil
}
