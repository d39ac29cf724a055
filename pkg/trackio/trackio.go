// Package trackio reads and writes bundles and fitted transforms as flat
// files: bundles as JSON point arrays, transforms as 16 row-major floats.
package trackio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"tractreg/internal/models"
)

// LoadBundle reads a bundle from a JSON file holding an array of
// streamlines, each an array of [x, y, z] points.
func LoadBundle(path string) (models.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle file: %v", err)
	}

	var raw [][][3]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse bundle file %s: %v", path, err)
	}

	bundle := make(models.Bundle, len(raw))
	for i, s := range raw {
		streamline := make(models.Streamline, len(s))
		for j, p := range s {
			streamline[j] = models.Point3D{X: p[0], Y: p[1], Z: p[2]}
		}
		bundle[i] = streamline
	}
	return bundle, nil
}

// SaveBundle writes a bundle to a JSON file in the format LoadBundle reads
func SaveBundle(path string, bundle models.Bundle) error {
	raw := make([][][3]float64, len(bundle))
	for i, s := range bundle {
		points := make([][3]float64, len(s))
		for j, p := range s {
			points[j] = [3]float64{p.X, p.Y, p.Z}
		}
		raw[i] = points
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write bundle file: %v", err)
	}
	return nil
}

// SaveMatrix writes a fitted 4x4 transform as 16 floats in row-major order,
// one row per line. The trailing homogeneous row is written out so it can be
// validated on reload.
func SaveMatrix(path string, m *mat.Dense) error {
	r, c := m.Dims()
	if r != 4 || c != 4 {
		return fmt.Errorf("expected a 4x4 matrix, got %dx%d", r, c)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create matrix file: %v", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := 0; i < 4; i++ {
		fmt.Fprintf(w, "%.17g %.17g %.17g %.17g\n",
			m.At(i, 0), m.At(i, 1), m.At(i, 2), m.At(i, 3))
	}
	return w.Flush()
}

// LoadMatrix reads a transform written by SaveMatrix and validates that the
// bottom row is [0 0 0 1].
func LoadMatrix(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open matrix file: %v", err)
	}
	defer f.Close()

	values := make([]float64, 0, 16)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var row [4]float64
		n, err := fmt.Sscan(scanner.Text(), &row[0], &row[1], &row[2], &row[3])
		if err != nil || n != 4 {
			return nil, fmt.Errorf("malformed matrix row %q in %s", scanner.Text(), path)
		}
		values = append(values, row[:]...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matrix file: %v", err)
	}
	if len(values) != 16 {
		return nil, fmt.Errorf("expected 16 matrix values in %s, got %d", path, len(values))
	}
	if values[12] != 0 || values[13] != 0 || values[14] != 0 || values[15] != 1 {
		return nil, fmt.Errorf("matrix in %s has invalid homogeneous row [%g %g %g %g]",
			path, values[12], values[13], values[14], values[15])
	}

	return mat.NewDense(4, 4, values), nil
}
