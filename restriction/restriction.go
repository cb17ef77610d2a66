package restriction

import (
	"fmt"

	"github.com/notargets/ElemKernel/vector"
	"k8s.io/klog/v2"
)

// Direction selects gather or scatter-add when applying a restriction
type Direction int

const (
	// NoTranspose gathers global values into the element-local layout
	NoTranspose Direction = iota
	// Transpose scatter-adds element-local values into the global vector
	Transpose
)

// Layout describes the component ordering of the global vector
type Layout int

const (
	// Interleaved stores the components of one point contiguously
	Interleaved Layout = iota
	// Blocked stores each component as a separate block of length LSize
	Blocked
)

// CopyMode describes the ownership policy for caller-provided index data
type CopyMode int

const (
	// CopyValues copies the caller's data; the caller keeps ownership
	CopyValues CopyMode = iota
	// OwnPointer transfers ownership; the caller must not touch the
	// storage afterwards
	OwnPointer
	// UsePointer borrows the storage; the caller must keep it alive and
	// unchanged for the restriction's lifetime
	UsePointer
)

// ElemRestriction maps between a global vector of LSize addressable
// points (times numComponents values) and per-element local arrays.
// Immutable after creation.
type ElemRestriction struct {
	numElements   int
	elemSize      int // fixed form; 0 in the at-points form
	numComponents int
	layout        Layout
	lSize         int

	atPoints  bool
	offsets   []int // at-points form, length numElements+1
	indices   []int
	minPoints int
	maxPoints int

	copyMode CopyMode
	refCount int

	// Conflict-free element batches for the parallel Transpose path,
	// computed lazily on first use
	colors [][]int
}

// New creates a fixed-degree element restriction: every element
// addresses elemSize global points. indices has length
// numElements*elemSize with every value in [0, lSize). Validation
// happens here, once; Apply never re-checks index bounds.
func New(numElements, elemSize, numComponents int, layout Layout, lSize int,
	mode CopyMode, indices []int) (*ElemRestriction, error) {
	if numElements < 0 || elemSize <= 0 || numComponents <= 0 || lSize <= 0 {
		return nil, fmt.Errorf("%w: numElements=%d elemSize=%d numComponents=%d lSize=%d",
			ErrInvalidArgument, numElements, elemSize, numComponents, lSize)
	}
	if len(indices) != numElements*elemSize {
		return nil, fmt.Errorf("%w: got %d, need %d",
			ErrBadIndices, len(indices), numElements*elemSize)
	}
	if err := checkIndexBounds(indices, lSize); err != nil {
		return nil, err
	}

	r := &ElemRestriction{
		numElements:   numElements,
		elemSize:      elemSize,
		numComponents: numComponents,
		layout:        layout,
		lSize:         lSize,
		minPoints:     elemSize,
		maxPoints:     elemSize,
		copyMode:      mode,
		refCount:      1,
	}
	r.indices = retainIndexData(indices, mode)

	klog.V(2).Infof("restriction: created fixed form, %d elements of %d points, L=%d",
		numElements, elemSize, lSize)
	return r, nil
}

// NewAtPoints creates a ragged ("at points") element restriction.
// offsets has length numElements+1, starts at 0, and is non-decreasing;
// element e owns the index range [offsets[e], offsets[e+1]). indices has
// length offsets[numElements] with every value in [0, lSize). The
// min/max points-per-element extrema are computed in the same linear
// scan and cached.
func NewAtPoints(numElements, numComponents int, layout Layout, lSize int,
	mode CopyMode, offsets, indices []int) (*ElemRestriction, error) {
	if numElements < 0 || numComponents <= 0 || lSize <= 0 {
		return nil, fmt.Errorf("%w: numElements=%d numComponents=%d lSize=%d",
			ErrInvalidArgument, numElements, numComponents, lSize)
	}
	if len(offsets) != numElements+1 {
		return nil, fmt.Errorf("%w: offsets length %d, need %d",
			ErrBadOffsets, len(offsets), numElements+1)
	}
	if offsets[0] != 0 {
		return nil, fmt.Errorf("%w: offsets[0] = %d, must be 0", ErrBadOffsets, offsets[0])
	}

	minPoints, maxPoints := 0, 0
	for e := 0; e < numElements; e++ {
		count := offsets[e+1] - offsets[e]
		if count < 0 {
			return nil, fmt.Errorf("%w: offsets[%d]=%d > offsets[%d]=%d",
				ErrBadOffsets, e, offsets[e], e+1, offsets[e+1])
		}
		if e == 0 || count < minPoints {
			minPoints = count
		}
		if count > maxPoints {
			maxPoints = count
		}
	}
	if len(indices) != offsets[numElements] {
		return nil, fmt.Errorf("%w: got %d, need offsets[%d]=%d",
			ErrBadIndices, len(indices), numElements, offsets[numElements])
	}
	if err := checkIndexBounds(indices, lSize); err != nil {
		return nil, err
	}

	r := &ElemRestriction{
		numElements:   numElements,
		numComponents: numComponents,
		layout:        layout,
		lSize:         lSize,
		atPoints:      true,
		minPoints:     minPoints,
		maxPoints:     maxPoints,
		copyMode:      mode,
		refCount:      1,
	}
	r.offsets = retainIndexData(offsets, mode)
	r.indices = retainIndexData(indices, mode)

	klog.V(2).Infof("restriction: created at-points form, %d elements, %d points, min/max %d/%d, L=%d",
		numElements, len(indices), minPoints, maxPoints, lSize)
	return r, nil
}

func checkIndexBounds(indices []int, lSize int) error {
	for i, idx := range indices {
		if idx < 0 || idx >= lSize {
			return fmt.Errorf("%w: indices[%d] = %d, L = %d",
				ErrIndexOutOfRange, i, idx, lSize)
		}
	}
	return nil
}

func retainIndexData(data []int, mode CopyMode) []int {
	if mode == CopyValues {
		owned := make([]int, len(data))
		copy(owned, data)
		return owned
	}
	// OwnPointer and UsePointer both retain the caller's storage; they
	// differ only in who releases it
	return data
}

// NumElements returns the element count
func (r *ElemRestriction) NumElements() int { return r.numElements }

// NumComponents returns the component count
func (r *ElemRestriction) NumComponents() int { return r.numComponents }

// LSize returns the number of addressable global points
func (r *ElemRestriction) LSize() int { return r.lSize }

// IsAtPoints reports whether this is the ragged form
func (r *ElemRestriction) IsAtPoints() bool { return r.atPoints }

// ElemSize returns the fixed points-per-element, or 0 for the at-points form
func (r *ElemRestriction) ElemSize() int { return r.elemSize }

// MinPointsInElement returns the cached minimum points per element
func (r *ElemRestriction) MinPointsInElement() int { return r.minPoints }

// MaxPointsInElement returns the cached maximum points per element
func (r *ElemRestriction) MaxPointsInElement() int { return r.maxPoints }

// PointsInElement returns the number of points element e addresses
func (r *ElemRestriction) PointsInElement(e int) (int, error) {
	if e < 0 || e >= r.numElements {
		return 0, fmt.Errorf("%w: %d of %d", ErrElementOutOfRange, e, r.numElements)
	}
	return r.pointsIn(e), nil
}

func (r *ElemRestriction) pointsIn(e int) int {
	if r.atPoints {
		return r.offsets[e+1] - r.offsets[e]
	}
	return r.elemSize
}

func (r *ElemRestriction) slotBase(e int) int {
	if r.atPoints {
		return r.offsets[e]
	}
	return e * r.elemSize
}

// slots returns the per-element slot stride of the local layout
func (r *ElemRestriction) slots() int {
	if r.atPoints {
		return r.maxPoints
	}
	return r.elemSize
}

// globalIndex maps (point index, component) to a global vector offset
func (r *ElemRestriction) globalIndex(idx, c int) int {
	if r.layout == Blocked {
		return idx + c*r.lSize
	}
	return idx*r.numComponents + c
}

// GlobalSize returns the natural global vector extent
func (r *ElemRestriction) GlobalSize() int {
	return r.lSize * r.numComponents
}

// LocalSize returns the natural element-local vector extent
func (r *ElemRestriction) LocalSize() int {
	return r.numElements * r.slots() * r.numComponents
}

// CreateVector allocates a vector sized to the restriction's global extent
func (r *ElemRestriction) CreateVector() (*vector.Vector, error) {
	return vector.New(r.GlobalSize())
}

// CreateLocalVector allocates a vector sized to the restriction's
// element-local extent (maximum per-element count in the at-points form)
func (r *ElemRestriction) CreateLocalVector() (*vector.Vector, error) {
	return vector.New(r.LocalSize())
}

// Multiplicity returns, for each global vector entry, the number of
// element slots contributing to it under Transpose application
func (r *ElemRestriction) Multiplicity() ([]float64, error) {
	mult := make([]float64, r.GlobalSize())
	for e := 0; e < r.numElements; e++ {
		base := r.slotBase(e)
		for j := 0; j < r.pointsIn(e); j++ {
			idx := r.indices[base+j]
			for c := 0; c < r.numComponents; c++ {
				mult[r.globalIndex(idx, c)]++
			}
		}
	}
	return mult, nil
}

// Reference registers an additional holder of this restriction
func (r *ElemRestriction) Reference() *ElemRestriction {
	r.refCount++
	return r
}

// Destroy releases one reference. The last release drops the index
// storage; borrowed (UsePointer) storage is left to the caller.
func (r *ElemRestriction) Destroy() error {
	if r.refCount <= 0 {
		return ErrDestroyed
	}
	r.refCount--
	if r.refCount > 0 {
		return nil
	}
	r.indices = nil
	r.offsets = nil
	r.colors = nil
	return nil
}
