package vector

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/notargets/ElemKernel/utils"
)

// TestDeviceResidency tests lazy host<->device synchronization
func TestDeviceResidency(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	v, err := NewOnDevice(device, 8)
	if err != nil {
		t.Fatalf("NewOnDevice failed: %v", err)
	}
	defer v.Destroy()

	if !v.HasDevice() {
		t.Fatal("expected device buffer")
	}

	if err := v.SetValue(2.0); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	// Acquiring device memory read-only must copy the host data in
	mem, err := v.DeviceMemory(ReadAccess)
	if err != nil {
		t.Fatalf("DeviceMemory failed: %v", err)
	}
	check := make([]float64, 8)
	mem.CopyTo(unsafe.Pointer(&check[0]), int64(8*8))
	for i, val := range check {
		if val != 2.0 {
			t.Errorf("Device element %d: expected 2.0, got %f", i, val)
		}
	}
	if err := v.RestoreDeviceMemoryRead(); err != nil {
		t.Fatalf("RestoreDeviceMemoryRead failed: %v", err)
	}

	// Mutate on device, then read back through a host access
	mem, err = v.DeviceMemory(ReadWriteAccess)
	if err != nil {
		t.Fatalf("DeviceMemory rw failed: %v", err)
	}
	modified := make([]float64, 8)
	for i := range modified {
		modified[i] = float64(i)
	}
	mem.CopyFrom(unsafe.Pointer(&modified[0]), int64(8*8))
	if err := v.RestoreDeviceMemory(); err != nil {
		t.Fatalf("RestoreDeviceMemory failed: %v", err)
	}

	arr, err := v.GetArrayRead()
	if err != nil {
		t.Fatalf("GetArrayRead failed: %v", err)
	}
	for i := range arr {
		if arr[i] != float64(i) {
			t.Errorf("Host element %d: expected %f, got %f", i, float64(i), arr[i])
		}
	}
	v.RestoreArrayRead()
}

// TestDeviceAccessConflicts tests the access discipline across spaces
func TestDeviceAccessConflicts(t *testing.T) {
	device := utils.CreateTestDevice()
	defer device.Free()

	v, err := NewOnDevice(device, 4)
	if err != nil {
		t.Fatalf("NewOnDevice failed: %v", err)
	}
	defer v.Destroy()

	if _, err := v.DeviceMemory(ReadWriteAccess); err != nil {
		t.Fatalf("DeviceMemory failed: %v", err)
	}
	if _, err := v.GetArrayRead(); !errors.Is(err, ErrAccessConflict) {
		t.Errorf("host read during device write: expected ErrAccessConflict, got %v", err)
	}
	if err := v.RestoreDeviceMemory(); err != nil {
		t.Fatalf("RestoreDeviceMemory failed: %v", err)
	}
}

// TestHostOnlyDeviceAccess tests the device-space error on host vectors
func TestHostOnlyDeviceAccess(t *testing.T) {
	v, _ := New(4)
	defer v.Destroy()
	if _, err := v.DeviceMemory(ReadAccess); !errors.Is(err, ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}
}
