package geometry

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"tractreg/internal/models"
)

// testBundle creates a small bundle of two streamlines around the origin
func testBundle() models.Bundle {
	return models.Bundle{
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}},
		{{X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 2, Y: 1, Z: 0}},
	}
}

func TestBuildTransform(t *testing.T) {
	t.Run("ZeroParamsGiveIdentity", func(t *testing.T) {
		m, err := BuildTransform([]float64{0, 0, 0, 0, 0, 0})
		if err != nil {
			t.Fatalf("BuildTransform failed: %v", err)
		}
		eye := mat.NewDense(4, 4, []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		})
		if !mat.Equal(m, eye) {
			t.Errorf("expected identity matrix, got:\n%v", mat.Formatted(m))
		}
	})

	t.Run("AffineIdentityParams", func(t *testing.T) {
		m, err := BuildTransform([]float64{0, 0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0})
		if err != nil {
			t.Fatalf("BuildTransform failed: %v", err)
		}
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				want := 0.0
				if i == j {
					want = 1.0
				}
				if math.Abs(m.At(i, j)-want) > 1e-12 {
					t.Errorf("entry (%d,%d) = %g, want %g", i, j, m.At(i, j), want)
				}
			}
		}
	})

	t.Run("TranslationEntries", func(t *testing.T) {
		m, err := BuildTransform([]float64{5, -3, 2, 0, 0, 0})
		if err != nil {
			t.Fatalf("BuildTransform failed: %v", err)
		}
		if m.At(0, 3) != 5 || m.At(1, 3) != -3 || m.At(2, 3) != 2 {
			t.Errorf("unexpected translation column: %g %g %g",
				m.At(0, 3), m.At(1, 3), m.At(2, 3))
		}
	})

	t.Run("RotationAboutX", func(t *testing.T) {
		// Rotating (0,1,0) by 90 degrees about x must give (0,0,1)
		m, err := BuildTransform([]float64{0, 0, 0, 90, 0, 0})
		if err != nil {
			t.Fatalf("BuildTransform failed: %v", err)
		}
		b := ApplyTransform(models.Bundle{{{X: 0, Y: 1, Z: 0}}}, m)
		p := b[0][0]
		if math.Abs(p.X) > 1e-12 || math.Abs(p.Y) > 1e-12 || math.Abs(p.Z-1) > 1e-12 {
			t.Errorf("rotated point = (%g, %g, %g), want (0, 0, 1)", p.X, p.Y, p.Z)
		}
	})

	t.Run("AnisotropicScale", func(t *testing.T) {
		m, err := BuildTransform([]float64{0, 0, 0, 0, 0, 0, 2, 3, 4, 0, 0, 0})
		if err != nil {
			t.Fatalf("BuildTransform failed: %v", err)
		}
		b := ApplyTransform(models.Bundle{{{X: 1, Y: 1, Z: 1}}}, m)
		p := b[0][0]
		if math.Abs(p.X-2) > 1e-12 || math.Abs(p.Y-3) > 1e-12 || math.Abs(p.Z-4) > 1e-12 {
			t.Errorf("scaled point = (%g, %g, %g), want (2, 3, 4)", p.X, p.Y, p.Z)
		}
	})

	t.Run("InvalidParameterCount", func(t *testing.T) {
		for _, n := range []int{0, 3, 7, 11, 13} {
			_, err := BuildTransform(make([]float64, n))
			if !errors.Is(err, ErrInvalidParameterCount) {
				t.Errorf("length %d: expected ErrInvalidParameterCount, got %v", n, err)
			}
		}
	})
}

func TestApplyTransform(t *testing.T) {
	t.Run("PureTranslation", func(t *testing.T) {
		bundle := testBundle()
		moved := ApplyTransform(bundle, Translation(10, -2, 0.5))
		for i, s := range bundle {
			for j, p := range s {
				q := moved[i][j]
				if q.X != p.X+10 || q.Y != p.Y-2 || q.Z != p.Z+0.5 {
					t.Fatalf("point (%d,%d) moved to (%g,%g,%g)", i, j, q.X, q.Y, q.Z)
				}
			}
		}
	})

	t.Run("InputNotAliased", func(t *testing.T) {
		bundle := testBundle()
		original := bundle.Clone()
		_ = ApplyTransform(bundle, Translation(100, 100, 100))
		for i := range bundle {
			for j := range bundle[i] {
				if bundle[i][j] != original[i][j] {
					t.Fatal("ApplyTransform modified its input")
				}
			}
		}
	})
}

func TestCenterBundle(t *testing.T) {
	t.Run("CentroidAtOrigin", func(t *testing.T) {
		bundle := ApplyTransform(testBundle(), Translation(50, -30, 12))
		centered, _ := CenterBundle(bundle)

		var cx, cy, cz float64
		n := 0
		for _, s := range centered {
			for _, p := range s {
				cx += p.X
				cy += p.Y
				cz += p.Z
				n++
			}
		}
		cx, cy, cz = cx/float64(n), cy/float64(n), cz/float64(n)
		if math.Abs(cx) > 1e-12 || math.Abs(cy) > 1e-12 || math.Abs(cz) > 1e-12 {
			t.Errorf("centroid after centering = (%g, %g, %g)", cx, cy, cz)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		bundle := ApplyTransform(testBundle(), Translation(50, -30, 12))
		centered, shift := CenterBundle(bundle)
		restored := ApplyTransform(centered, Translation(shift[0], shift[1], shift[2]))

		for i := range bundle {
			for j := range bundle[i] {
				p, q := bundle[i][j], restored[i][j]
				if math.Abs(p.X-q.X) > 1e-12 || math.Abs(p.Y-q.Y) > 1e-12 || math.Abs(p.Z-q.Z) > 1e-12 {
					t.Fatalf("point (%d,%d) not restored: got (%g,%g,%g), want (%g,%g,%g)",
						i, j, q.X, q.Y, q.Z, p.X, p.Y, p.Z)
				}
			}
		}
	})

	t.Run("EmptyBundle", func(t *testing.T) {
		centered, shift := CenterBundle(models.Bundle{})
		if len(centered) != 0 || shift != [3]float64{} {
			t.Errorf("unexpected result for empty bundle: %v, %v", centered, shift)
		}
	})
}

func TestCompose(t *testing.T) {
	t.Run("NetZeroTranslationIsIdentity", func(t *testing.T) {
		a := Translation(10, 0, 0)
		b := Translation(-20, 0, 0)
		c := Translation(10, 0, 0)

		got := Compose(a, b, c)
		eye := mat.NewDense(4, 4, []float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		})
		// Pure translations compose exactly in floating point
		if !mat.Equal(got, eye) {
			t.Errorf("expected exact identity, got:\n%v", mat.Formatted(got))
		}
	})

	t.Run("OrderMatters", func(t *testing.T) {
		// Rotate 90 degrees about z, then translate: the rotation must not
		// affect the later translation.
		rot, err := BuildTransform([]float64{0, 0, 0, 0, 0, 90})
		if err != nil {
			t.Fatalf("BuildTransform failed: %v", err)
		}
		trans := Translation(10, 0, 0)

		m := Compose(rot, trans)
		b := ApplyTransform(models.Bundle{{{X: 1, Y: 0, Z: 0}}}, m)
		p := b[0][0]
		// (1,0,0) rotates to (0,1,0), then shifts to (10,1,0)
		if math.Abs(p.X-10) > 1e-12 || math.Abs(p.Y-1) > 1e-12 || math.Abs(p.Z) > 1e-12 {
			t.Errorf("composed point = (%g, %g, %g), want (10, 1, 0)", p.X, p.Y, p.Z)
		}
	})

	t.Run("NoTransformsGiveIdentity", func(t *testing.T) {
		got := Compose()
		if got.At(0, 0) != 1 || got.At(3, 3) != 1 || got.At(0, 3) != 0 {
			t.Errorf("Compose() is not identity:\n%v", mat.Formatted(got))
		}
	})
}
