// Package utils holds shared test and device helpers.
package utils

import (
	"github.com/notargets/gocca"
	"k8s.io/klog/v2"
)

// CreateTestDevice creates a device for testing, preferring parallel backends
func CreateTestDevice() *gocca.OCCADevice {
	// Try OpenMP, then CUDA, then fall back to Serial
	backends := []string{
		`{"mode": "OpenMP"}`,
		`{"mode": "CUDA", "device_id": 0}`,
		`{"mode": "Serial"}`,
	}

	for _, props := range backends {
		device, err := gocca.NewDevice(props)
		if err == nil {
			klog.V(2).Infof("created %s device", device.Mode())
			return device
		}
	}

	// Should not reach here
	panic("Failed to create any device")
}
