package qfunction

import (
	"errors"
	"math"
	"testing"
)

// TestFieldDeclarations tests the field contract checks
func TestFieldDeclarations(t *testing.T) {
	qf := New("test", func(q int, in, out [][]float64) error { return nil })

	if err := qf.AddInput("u", 2, EvalInterp); err != nil {
		t.Fatalf("AddInput failed: %v", err)
	}
	if err := qf.AddInput("weights", 1, EvalWeight); err != nil {
		t.Fatalf("AddInput weights failed: %v", err)
	}
	if err := qf.AddOutput("v", 2, EvalInterp); err != nil {
		t.Fatalf("AddOutput failed: %v", err)
	}

	t.Run("DuplicateName", func(t *testing.T) {
		if err := qf.AddInput("u", 1, EvalNone); !errors.Is(err, ErrDuplicateField) {
			t.Errorf("expected ErrDuplicateField, got %v", err)
		}
		if err := qf.AddOutput("u", 1, EvalNone); !errors.Is(err, ErrDuplicateField) {
			t.Errorf("output duplicating input: expected ErrDuplicateField, got %v", err)
		}
	})

	t.Run("WeightOutput", func(t *testing.T) {
		if err := qf.AddOutput("w", 1, EvalWeight); !errors.Is(err, ErrBadField) {
			t.Errorf("expected ErrBadField, got %v", err)
		}
	})

	t.Run("BadComponents", func(t *testing.T) {
		if err := qf.AddInput("bad", 0, EvalNone); !errors.Is(err, ErrBadField) {
			t.Errorf("expected ErrBadField, got %v", err)
		}
	})

	t.Run("Ordering", func(t *testing.T) {
		in := qf.Inputs()
		if len(in) != 2 || in[0].Name != "u" || in[1].Name != "weights" {
			t.Errorf("inputs out of order: %v", in)
		}
	})
}

// TestQuadratureSize tests per-mode value counts
func TestQuadratureSize(t *testing.T) {
	cases := []struct {
		mode  EvalMode
		ncomp int
		dim   int
		want  int
	}{
		{EvalNone, 3, 2, 3},
		{EvalInterp, 2, 3, 2},
		{EvalGrad, 2, 3, 6},
		{EvalWeight, 5, 3, 1},
	}
	for _, tc := range cases {
		if got := tc.mode.QuadratureSize(tc.ncomp, tc.dim); got != tc.want {
			t.Errorf("%v with %d comps dim %d: expected %d, got %d",
				tc.mode, tc.ncomp, tc.dim, tc.want, got)
		}
	}
}

// TestApplyContract tests arity checking and the batch layout
func TestApplyContract(t *testing.T) {
	// v = scale * u, with scale from a typed context struct
	type scaleContext struct {
		Scale float64
	}
	ctx := scaleContext{Scale: 3.0}

	qf := New("scale", func(q int, in, out [][]float64) error {
		u := in[0]
		v := out[0]
		for i := 0; i < q; i++ {
			v[i] = ctx.Scale * u[i]
		}
		return nil
	})
	qf.AddInput("u", 1, EvalInterp)
	qf.AddOutput("v", 1, EvalInterp)

	t.Run("ArityMismatch", func(t *testing.T) {
		if err := qf.Apply(4, nil, [][]float64{make([]float64, 4)}); !errors.Is(err, ErrArity) {
			t.Errorf("expected ErrArity, got %v", err)
		}
	})

	t.Run("Batch", func(t *testing.T) {
		q := 8
		u := make([]float64, q)
		v := make([]float64, q)
		for i := range u {
			u[i] = float64(i)
		}
		if err := qf.Apply(q, [][]float64{u}, [][]float64{v}); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		for i := range v {
			if v[i] != 3.0*float64(i) {
				t.Errorf("Point %d: expected %f, got %f", i, 3.0*float64(i), v[i])
			}
		}
	})

	// Point independence: chunked evaluation must agree with one batch
	t.Run("ChunkedAgreesWithWhole", func(t *testing.T) {
		q := 16
		u := make([]float64, q)
		for i := range u {
			u[i] = math.Sqrt(float64(i))
		}
		whole := make([]float64, q)
		qf.Apply(q, [][]float64{u}, [][]float64{whole})

		chunked := make([]float64, q)
		for lo := 0; lo < q; lo += 5 {
			hi := lo + 5
			if hi > q {
				hi = q
			}
			if err := qf.Apply(hi-lo, [][]float64{u[lo:hi]}, [][]float64{chunked[lo:hi]}); err != nil {
				t.Fatalf("chunked Apply failed: %v", err)
			}
		}
		for i := range whole {
			if whole[i] != chunked[i] {
				t.Errorf("Point %d: whole %f, chunked %f", i, whole[i], chunked[i])
			}
		}
	})
}

// TestRegistry tests named registration and lookup
func TestRegistry(t *testing.T) {
	factory := func() (*QFunction, error) {
		qf := New("registry-test", func(q int, in, out [][]float64) error { return nil })
		if err := qf.AddInput("u", 1, EvalNone); err != nil {
			return nil, err
		}
		return qf, nil
	}

	if err := Register("registry-test", factory); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := Register("registry-test", factory); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}

	qf, err := ByName("registry-test")
	if err != nil {
		t.Fatalf("ByName failed: %v", err)
	}
	if qf.Name() != "registry-test" || len(qf.Inputs()) != 1 {
		t.Errorf("unexpected qfunction: %s with %d inputs", qf.Name(), len(qf.Inputs()))
	}

	if _, err := ByName("no-such-kernel"); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("expected ErrNotRegistered, got %v", err)
	}
}
