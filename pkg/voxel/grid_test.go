package voxel

import (
	"os"
	"path/filepath"
	"testing"

	"tractreg/internal/models"
)

func lineBundle(z float64) models.Bundle {
	s := make(models.Streamline, 10)
	for i := range s {
		s[i] = models.Point3D{X: float64(i), Y: 0, Z: z}
	}
	return models.Bundle{s}
}

func TestRasterize(t *testing.T) {
	g := NewGrid(12, 4, 4, 1.0, models.Point3D{X: -1, Y: -1, Z: -1})
	g.Rasterize(lineBundle(0))

	if got := g.OccupiedCount(); got != 10 {
		t.Errorf("occupied count = %d, want 10", got)
	}

	t.Run("OutOfRangePointsIgnored", func(t *testing.T) {
		g := NewGrid(2, 2, 2, 1.0, models.Point3D{})
		g.Rasterize(models.Bundle{{{X: 100, Y: 100, Z: 100}, {X: -50, Y: 0, Z: 0}}})
		if got := g.OccupiedCount(); got != 0 {
			t.Errorf("occupied count = %d, want 0", got)
		}
	})
}

func TestOverlap(t *testing.T) {
	t.Run("IdenticalBundlesFullyOverlap", func(t *testing.T) {
		a := NewGrid(12, 4, 4, 1.0, models.Point3D{X: -1, Y: -1, Z: -1})
		b := NewGrid(12, 4, 4, 1.0, models.Point3D{X: -1, Y: -1, Z: -1})
		a.Rasterize(lineBundle(0))
		b.Rasterize(lineBundle(0))

		frac, err := Overlap(a, b)
		if err != nil {
			t.Fatalf("Overlap failed: %v", err)
		}
		if frac != 1.0 {
			t.Errorf("overlap = %g, want 1.0", frac)
		}
	})

	t.Run("DisjointBundlesDoNotOverlap", func(t *testing.T) {
		a := NewGrid(12, 4, 6, 1.0, models.Point3D{X: -1, Y: -1, Z: -1})
		b := NewGrid(12, 4, 6, 1.0, models.Point3D{X: -1, Y: -1, Z: -1})
		a.Rasterize(lineBundle(0))
		b.Rasterize(lineBundle(3))

		frac, err := Overlap(a, b)
		if err != nil {
			t.Fatalf("Overlap failed: %v", err)
		}
		if frac != 0 {
			t.Errorf("overlap = %g, want 0", frac)
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		a := NewGrid(4, 4, 4, 1.0, models.Point3D{})
		b := NewGrid(5, 4, 4, 1.0, models.Point3D{})
		if _, err := Overlap(a, b); err == nil {
			t.Error("expected an error for mismatched grids")
		}
	})
}

func TestBoundingGrid(t *testing.T) {
	g := BoundingGrid(1.0, lineBundle(0), lineBundle(5))
	g.Rasterize(lineBundle(0))
	g.Rasterize(lineBundle(5))
	if got := g.OccupiedCount(); got != 20 {
		t.Errorf("occupied count = %d, want 20", got)
	}

	t.Run("EmptyInput", func(t *testing.T) {
		g := BoundingGrid(1.0, models.Bundle{})
		if g == nil {
			t.Fatal("expected a non-nil grid")
		}
	})
}

func TestExtractSlice(t *testing.T) {
	g := NewGrid(12, 4, 4, 1.0, models.Point3D{X: -1, Y: -1, Z: -1})
	g.Rasterize(lineBundle(0))

	t.Run("ZSliceContainsLine", func(t *testing.T) {
		img, err := g.ExtractSlice("z", 1)
		if err != nil {
			t.Fatalf("ExtractSlice failed: %v", err)
		}
		bounds := img.Bounds()
		if bounds.Dx() != 12 || bounds.Dy() != 4 {
			t.Errorf("slice size = %dx%d, want 12x4", bounds.Dx(), bounds.Dy())
		}
	})

	t.Run("InvalidAxis", func(t *testing.T) {
		if _, err := g.ExtractSlice("w", 0); err == nil {
			t.Error("expected an error for invalid axis")
		}
	})

	t.Run("OutOfRangePosition", func(t *testing.T) {
		if _, err := g.ExtractSlice("z", 99); err == nil {
			t.Error("expected an error for out-of-range position")
		}
	})
}

func TestSaveSliceSequence(t *testing.T) {
	dir, err := os.MkdirTemp("", "tractreg-voxel-test-*")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %v", err)
	}
	defer os.RemoveAll(dir)

	g := NewGrid(6, 4, 3, 1.0, models.Point3D{X: -1, Y: -1, Z: -1})
	g.Rasterize(lineBundle(0))

	outDir := filepath.Join(dir, "slices")
	if err := g.SaveSliceSequence("z", outDir); err != nil {
		t.Fatalf("SaveSliceSequence failed: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("Failed to read output directory: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 slice images, found %d", len(entries))
	}
}
