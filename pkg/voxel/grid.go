// Package voxel rasterizes bundles of streamlines into occupancy grids.
// Grids support spatial-overlap scoring between a registered moving bundle
// and its static reference, and can export occupancy slices as PNG images
// for visual inspection of a registration.
package voxel

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"tractreg/internal/models"
)

// Grid is a regular 3D occupancy grid. Voxel (0,0,0) covers the cube whose
// minimum corner is Origin; points are binned by rounding their grid
// coordinates to the nearest voxel index.
type Grid struct {
	// occupied holds the voxel states in x + y*width + z*width*height order
	occupied []bool

	// dimensions of the grid in voxels
	width  int
	height int
	depth  int

	// voxelSize is the edge length of a voxel in mm
	voxelSize float64

	// origin is the world position of the grid's minimum corner
	origin models.Point3D
}

// NewGrid creates an empty occupancy grid
func NewGrid(width, height, depth int, voxelSize float64, origin models.Point3D) *Grid {
	return &Grid{
		occupied:  make([]bool, width*height*depth),
		width:     width,
		height:    height,
		depth:     depth,
		voxelSize: voxelSize,
		origin:    origin,
	}
}

// Rasterize marks every voxel containing a point of the bundle as occupied.
// Points falling outside the grid are ignored.
func (g *Grid) Rasterize(bundle models.Bundle) {
	for _, s := range bundle {
		for _, p := range s {
			i := int(math.Round((p.X - g.origin.X) / g.voxelSize))
			j := int(math.Round((p.Y - g.origin.Y) / g.voxelSize))
			k := int(math.Round((p.Z - g.origin.Z) / g.voxelSize))
			if i < 0 || i >= g.width || j < 0 || j >= g.height || k < 0 || k >= g.depth {
				continue
			}
			g.occupied[i+j*g.width+k*g.width*g.height] = true
		}
	}
}

// OccupiedCount returns the number of occupied voxels
func (g *Grid) OccupiedCount() int {
	count := 0
	for _, v := range g.occupied {
		if v {
			count++
		}
	}
	return count
}

// Overlap returns the fraction of b's occupied voxels that are also occupied
// in a. The grids must share dimensions.
func Overlap(a, b *Grid) (float64, error) {
	if a.width != b.width || a.height != b.height || a.depth != b.depth {
		return 0, fmt.Errorf("grid dimensions differ: %dx%dx%d vs %dx%dx%d",
			a.width, a.height, a.depth, b.width, b.height, b.depth)
	}
	both := 0
	occB := 0
	for i, v := range b.occupied {
		if v {
			occB++
			if a.occupied[i] {
				both++
			}
		}
	}
	if occB == 0 {
		return 0, nil
	}
	return float64(both) / float64(occB), nil
}

// ExtractSlice extracts a 2D occupancy image from the grid along the
// specified axis at the given position.
func (g *Grid) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	var img *image.Gray

	switch axis {
	case "x", "X":
		if position >= g.width {
			return nil, fmt.Errorf("position %d out of range for x axis (max %d)", position, g.width-1)
		}
		img = image.NewGray(image.Rect(0, 0, g.height, g.depth))
		for k := 0; k < g.depth; k++ {
			for j := 0; j < g.height; j++ {
				if g.occupied[position+j*g.width+k*g.width*g.height] {
					img.Set(j, k, color.Gray{Y: 255})
				}
			}
		}
	case "y", "Y":
		if position >= g.height {
			return nil, fmt.Errorf("position %d out of range for y axis (max %d)", position, g.height-1)
		}
		img = image.NewGray(image.Rect(0, 0, g.width, g.depth))
		for k := 0; k < g.depth; k++ {
			for i := 0; i < g.width; i++ {
				if g.occupied[i+position*g.width+k*g.width*g.height] {
					img.Set(i, k, color.Gray{Y: 255})
				}
			}
		}
	case "z", "Z":
		if position >= g.depth {
			return nil, fmt.Errorf("position %d out of range for z axis (max %d)", position, g.depth-1)
		}
		img = image.NewGray(image.Rect(0, 0, g.width, g.height))
		for j := 0; j < g.height; j++ {
			for i := 0; i < g.width; i++ {
				if g.occupied[i+j*g.width+position*g.width*g.height] {
					img.Set(i, j, color.Gray{Y: 255})
				}
			}
		}
	default:
		return nil, fmt.Errorf("invalid axis %q, must be x, y or z", axis)
	}

	return img, nil
}

// SaveSliceSequence saves every slice along the given axis as a PNG image in
// the output directory, creating it if necessary.
func (g *Grid) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}

	var count int
	switch axis {
	case "x", "X":
		count = g.width
	case "y", "Y":
		count = g.height
	case "z", "Z":
		count = g.depth
	default:
		return fmt.Errorf("invalid axis %q, must be x, y or z", axis)
	}

	for pos := 0; pos < count; pos++ {
		img, err := g.ExtractSlice(axis, pos)
		if err != nil {
			return fmt.Errorf("failed to extract slice %d: %v", pos, err)
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", axis, pos))
		f, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create image file: %v", err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode image: %v", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close image file: %v", err)
		}
	}

	return nil
}

// BoundingGrid builds a grid just large enough to contain every point of the
// given bundles, padded by one voxel on each side.
func BoundingGrid(voxelSize float64, bundles ...models.Bundle) *Grid {
	minP := models.Point3D{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	maxP := models.Point3D{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, b := range bundles {
		for _, s := range b {
			for _, p := range s {
				minP.X = math.Min(minP.X, p.X)
				minP.Y = math.Min(minP.Y, p.Y)
				minP.Z = math.Min(minP.Z, p.Z)
				maxP.X = math.Max(maxP.X, p.X)
				maxP.Y = math.Max(maxP.Y, p.Y)
				maxP.Z = math.Max(maxP.Z, p.Z)
			}
		}
	}
	if minP.X > maxP.X {
		return NewGrid(1, 1, 1, voxelSize, models.Point3D{})
	}

	origin := models.Point3D{
		X: minP.X - voxelSize,
		Y: minP.Y - voxelSize,
		Z: minP.Z - voxelSize,
	}
	width := int((maxP.X-origin.X)/voxelSize) + 2
	height := int((maxP.Y-origin.Y)/voxelSize) + 2
	depth := int((maxP.Z-origin.Z)/voxelSize) + 2

	return NewGrid(width, height, depth, voxelSize, origin)
}
