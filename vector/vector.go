// Package vector provides the flat scalar buffer shared by the
// restriction and operator layers, with lazy host/device residency
// tracking and scoped access control.
package vector

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"
	"k8s.io/klog/v2"
)

// AccessMode describes how an acquired array will be used
type AccessMode int

const (
	ReadAccess AccessMode = iota
	WriteAccess
	ReadWriteAccess
)

// Active is a sentinel passed to operator field bindings in place of a
// concrete vector; the operator substitutes its apply-time input/output.
var Active = &Vector{}

// None is a sentinel for fields that carry no passive data (e.g. weights).
var None = &Vector{}

// Vector is a logically flat buffer of float64 values with a host copy
// and an optional device copy. At most one copy needs to be valid at a
// time; synchronization happens lazily when an access is acquired in a
// space whose copy is stale.
type Vector struct {
	size int

	host        []float64
	hostValid   bool
	device      *gocca.OCCAMemory
	deviceValid bool

	// Outstanding access state: single writer or any number of readers
	readers int
	writing bool

	refCount int
}

// New creates a host-resident vector of the given size, zero-filled
func New(size int) (*Vector, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return &Vector{
		size:      size,
		host:      make([]float64, size),
		hostValid: true,
		refCount:  1,
	}, nil
}

// NewOnDevice creates a vector with both a host copy and a device buffer
// allocated on the given OCCA device. The host copy starts valid.
func NewOnDevice(device *gocca.OCCADevice, size int) (*Vector, error) {
	v, err := New(size)
	if err != nil {
		return nil, err
	}
	if size > 0 {
		v.device = device.Malloc(int64(size*8), nil, nil)
	}
	return v, nil
}

// Size returns the logical length of the vector
func (v *Vector) Size() int {
	return v.size
}

// HasDevice reports whether a device buffer is attached
func (v *Vector) HasDevice() bool {
	return v.device != nil
}

// SetValue sets every entry to val. Fails if any access is outstanding.
func (v *Vector) SetValue(val float64) error {
	if err := v.checkIdle(); err != nil {
		return err
	}
	for i := range v.host {
		v.host[i] = val
	}
	v.hostValid = true
	v.deviceValid = false
	return nil
}

// GetArray acquires the host array for reading and writing. The returned
// slice is valid until RestoreArray. Any other outstanding access fails
// the call.
func (v *Vector) GetArray() ([]float64, error) {
	if err := v.checkIdle(); err != nil {
		return nil, err
	}
	if err := v.syncToHost(); err != nil {
		return nil, err
	}
	v.writing = true
	v.deviceValid = false
	return v.host, nil
}

// GetArrayWrite acquires the host array for writing only; the prior
// contents are not synchronized and must not be read.
func (v *Vector) GetArrayWrite() ([]float64, error) {
	if err := v.checkIdle(); err != nil {
		return nil, err
	}
	v.writing = true
	v.hostValid = true
	v.deviceValid = false
	return v.host, nil
}

// GetArrayRead acquires the host array read-only. Multiple concurrent
// read accesses are permitted.
func (v *Vector) GetArrayRead() ([]float64, error) {
	if v.writing {
		return nil, ErrAccessConflict
	}
	if err := v.syncToHost(); err != nil {
		return nil, err
	}
	v.readers++
	return v.host, nil
}

// RestoreArray releases an exclusive host access
func (v *Vector) RestoreArray() error {
	if !v.writing {
		return ErrNoActiveAccess
	}
	v.writing = false
	v.hostValid = true
	return nil
}

// RestoreArrayRead releases one read access
func (v *Vector) RestoreArrayRead() error {
	if v.readers == 0 {
		return ErrNoActiveAccess
	}
	v.readers--
	return nil
}

// DeviceMemory acquires the device buffer in the given mode, copying the
// host data in first if the device copy is stale. Valid until
// RestoreDeviceMemory (exclusive modes) or RestoreDeviceMemoryRead.
func (v *Vector) DeviceMemory(mode AccessMode) (*gocca.OCCAMemory, error) {
	if v.device == nil {
		return nil, ErrNoDevice
	}
	if mode == ReadAccess {
		if v.writing {
			return nil, ErrAccessConflict
		}
	} else if err := v.checkIdle(); err != nil {
		return nil, err
	}
	if mode != WriteAccess {
		if err := v.syncToDevice(); err != nil {
			return nil, err
		}
	}
	switch mode {
	case ReadAccess:
		v.readers++
	default:
		v.writing = true
		v.deviceValid = true
		v.hostValid = false
	}
	return v.device, nil
}

// RestoreDeviceMemory releases an exclusive device access
func (v *Vector) RestoreDeviceMemory() error {
	if !v.writing {
		return ErrNoActiveAccess
	}
	v.writing = false
	v.deviceValid = true
	return nil
}

// RestoreDeviceMemoryRead releases one device read access
func (v *Vector) RestoreDeviceMemoryRead() error {
	return v.RestoreArrayRead()
}

// Reference registers an additional holder of this vector
func (v *Vector) Reference() *Vector {
	v.refCount++
	return v
}

// Destroy releases one reference; the last release frees the buffers.
// Fails if an access is outstanding.
func (v *Vector) Destroy() error {
	if v.refCount <= 0 {
		return ErrDestroyed
	}
	if err := v.checkIdle(); err != nil {
		return fmt.Errorf("destroy with outstanding access: %w", err)
	}
	v.refCount--
	if v.refCount > 0 {
		return nil
	}
	if v.device != nil {
		v.device.Free()
		v.device = nil
	}
	v.host = nil
	v.hostValid = false
	v.deviceValid = false
	return nil
}

// checkIdle fails fast when any access is outstanding
func (v *Vector) checkIdle() error {
	if v.writing || v.readers > 0 {
		return ErrAccessConflict
	}
	return nil
}

// syncToHost makes the host copy valid, copying from the device if the
// device holds the only valid copy
func (v *Vector) syncToHost() error {
	if v.hostValid {
		return nil
	}
	if v.deviceValid && v.device != nil && v.size > 0 {
		klog.V(2).Infof("vector: device->host copy of %d values", v.size)
		v.device.CopyTo(unsafe.Pointer(&v.host[0]), int64(v.size*8))
	}
	v.hostValid = true
	return nil
}

// syncToDevice makes the device copy valid, copying from the host if the
// host holds the only valid copy
func (v *Vector) syncToDevice() error {
	if v.device == nil {
		return ErrNoDevice
	}
	if v.deviceValid {
		return nil
	}
	if v.hostValid && v.size > 0 {
		klog.V(2).Infof("vector: host->device copy of %d values", v.size)
		v.device.CopyFrom(unsafe.Pointer(&v.host[0]), int64(v.size*8))
	}
	v.deviceValid = true
	return nil
}
