package vector

import (
	"errors"
	"math"
	"testing"
)

// TestCreateAndSetValue tests basic creation and fill
func TestCreateAndSetValue(t *testing.T) {
	v, err := New(10)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer v.Destroy()

	if v.Size() != 10 {
		t.Errorf("Size: expected 10, got %d", v.Size())
	}

	if err := v.SetValue(3.5); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	arr, err := v.GetArrayRead()
	if err != nil {
		t.Fatalf("GetArrayRead failed: %v", err)
	}
	for i, val := range arr {
		if val != 3.5 {
			t.Errorf("Element %d: expected 3.5, got %f", i, val)
		}
	}
	if err := v.RestoreArrayRead(); err != nil {
		t.Errorf("RestoreArrayRead failed: %v", err)
	}
}

// TestCreateNegativeSize tests that creation rejects a negative size
func TestCreateNegativeSize(t *testing.T) {
	if _, err := New(-1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

// TestZeroSize tests that an empty vector is usable
func TestZeroSize(t *testing.T) {
	v, err := New(0)
	if err != nil {
		t.Fatalf("New(0) failed: %v", err)
	}
	if err := v.SetValue(1.0); err != nil {
		t.Errorf("SetValue on empty vector failed: %v", err)
	}
	if err := v.Destroy(); err != nil {
		t.Errorf("Destroy failed: %v", err)
	}
}

// TestAccessDiscipline tests single-writer/multi-reader enforcement
func TestAccessDiscipline(t *testing.T) {
	v, _ := New(4)
	defer v.Destroy()

	t.Run("SecondWriteFails", func(t *testing.T) {
		if _, err := v.GetArray(); err != nil {
			t.Fatalf("GetArray failed: %v", err)
		}
		if _, err := v.GetArray(); !errors.Is(err, ErrAccessConflict) {
			t.Errorf("expected ErrAccessConflict, got %v", err)
		}
		if _, err := v.GetArrayRead(); !errors.Is(err, ErrAccessConflict) {
			t.Errorf("read during write: expected ErrAccessConflict, got %v", err)
		}
		if err := v.RestoreArray(); err != nil {
			t.Fatalf("RestoreArray failed: %v", err)
		}
	})

	t.Run("ConcurrentReadsAllowed", func(t *testing.T) {
		if _, err := v.GetArrayRead(); err != nil {
			t.Fatalf("first read failed: %v", err)
		}
		if _, err := v.GetArrayRead(); err != nil {
			t.Fatalf("second read failed: %v", err)
		}
		if _, err := v.GetArray(); !errors.Is(err, ErrAccessConflict) {
			t.Errorf("write during reads: expected ErrAccessConflict, got %v", err)
		}
		v.RestoreArrayRead()
		v.RestoreArrayRead()
	})

	t.Run("SetValueDuringAccessFails", func(t *testing.T) {
		v.GetArrayRead()
		if err := v.SetValue(0); !errors.Is(err, ErrAccessConflict) {
			t.Errorf("expected ErrAccessConflict, got %v", err)
		}
		v.RestoreArrayRead()
	})

	t.Run("RestoreWithoutAccessFails", func(t *testing.T) {
		if err := v.RestoreArray(); !errors.Is(err, ErrNoActiveAccess) {
			t.Errorf("expected ErrNoActiveAccess, got %v", err)
		}
		if err := v.RestoreArrayRead(); !errors.Is(err, ErrNoActiveAccess) {
			t.Errorf("expected ErrNoActiveAccess, got %v", err)
		}
	})
}

// TestDestroyDuringAccess tests that destroy fails while an access is open
func TestDestroyDuringAccess(t *testing.T) {
	v, _ := New(4)
	v.GetArrayRead()
	if err := v.Destroy(); !errors.Is(err, ErrAccessConflict) {
		t.Errorf("expected ErrAccessConflict, got %v", err)
	}
	v.RestoreArrayRead()
	if err := v.Destroy(); err != nil {
		t.Errorf("Destroy failed: %v", err)
	}
}

// TestReferenceCounting tests shared ownership with last-release free
func TestReferenceCounting(t *testing.T) {
	v, _ := New(4)
	v.Reference()

	if err := v.Destroy(); err != nil {
		t.Fatalf("first Destroy failed: %v", err)
	}

	// Still alive: one holder remains
	if err := v.SetValue(2.0); err != nil {
		t.Errorf("SetValue after partial release failed: %v", err)
	}

	if err := v.Destroy(); err != nil {
		t.Fatalf("last Destroy failed: %v", err)
	}
	if err := v.Destroy(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}
}

// TestMath tests the vector arithmetic helpers
func TestMath(t *testing.T) {
	fill := func(vals ...float64) *Vector {
		v, _ := New(len(vals))
		arr, _ := v.GetArray()
		copy(arr, vals)
		v.RestoreArray()
		return v
	}

	t.Run("Scale", func(t *testing.T) {
		v := fill(1, 2, 3)
		defer v.Destroy()
		if err := v.Scale(2.0); err != nil {
			t.Fatalf("Scale failed: %v", err)
		}
		arr, _ := v.GetArrayRead()
		defer v.RestoreArrayRead()
		for i, want := range []float64{2, 4, 6} {
			if arr[i] != want {
				t.Errorf("Element %d: expected %f, got %f", i, want, arr[i])
			}
		}
	})

	t.Run("AXPY", func(t *testing.T) {
		v := fill(1, 1, 1)
		x := fill(1, 2, 3)
		defer v.Destroy()
		defer x.Destroy()
		if err := v.AXPY(0.5, x); err != nil {
			t.Fatalf("AXPY failed: %v", err)
		}
		arr, _ := v.GetArrayRead()
		defer v.RestoreArrayRead()
		for i, want := range []float64{1.5, 2.0, 2.5} {
			if math.Abs(arr[i]-want) > 1e-14 {
				t.Errorf("Element %d: expected %f, got %f", i, want, arr[i])
			}
		}
	})

	t.Run("AXPYSizeMismatch", func(t *testing.T) {
		v := fill(1, 1)
		x := fill(1, 2, 3)
		defer v.Destroy()
		defer x.Destroy()
		if err := v.AXPY(1.0, x); !errors.Is(err, ErrSizeMismatch) {
			t.Errorf("expected ErrSizeMismatch, got %v", err)
		}
	})

	t.Run("PointwiseMult", func(t *testing.T) {
		v := fill(0, 0, 0)
		x := fill(2, 3, 4)
		y := fill(5, 6, 7)
		defer v.Destroy()
		defer x.Destroy()
		defer y.Destroy()
		if err := v.PointwiseMult(x, y); err != nil {
			t.Fatalf("PointwiseMult failed: %v", err)
		}
		arr, _ := v.GetArrayRead()
		defer v.RestoreArrayRead()
		for i, want := range []float64{10, 18, 28} {
			if arr[i] != want {
				t.Errorf("Element %d: expected %f, got %f", i, want, arr[i])
			}
		}
	})

	t.Run("Norms", func(t *testing.T) {
		v := fill(3, -4)
		defer v.Destroy()
		n1, err := v.Norm(Norm1)
		if err != nil {
			t.Fatalf("Norm failed: %v", err)
		}
		if n1 != 7 {
			t.Errorf("Norm1: expected 7, got %f", n1)
		}
		n2, _ := v.Norm(Norm2)
		if math.Abs(n2-5) > 1e-14 {
			t.Errorf("Norm2: expected 5, got %f", n2)
		}
		nmax, _ := v.Norm(NormMax)
		if nmax != 4 {
			t.Errorf("NormMax: expected 4, got %f", nmax)
		}
	})
}

// TestGetArrayWriteSkipsSync tests that write-only access does not
// preserve prior contents as a contract (it may, on host-only vectors,
// but the residency flags must still mark host as the valid copy)
func TestGetArrayWriteSkipsSync(t *testing.T) {
	v, _ := New(3)
	defer v.Destroy()

	arr, err := v.GetArrayWrite()
	if err != nil {
		t.Fatalf("GetArrayWrite failed: %v", err)
	}
	for i := range arr {
		arr[i] = float64(i)
	}
	v.RestoreArray()

	got, _ := v.GetArrayRead()
	defer v.RestoreArrayRead()
	for i := range got {
		if got[i] != float64(i) {
			t.Errorf("Element %d: expected %f, got %f", i, float64(i), got[i])
		}
	}
}
