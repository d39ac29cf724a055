// Package geometry provides homogeneous 4x4 rigid and affine transforms for
// bundles of streamlines: construction from parameter vectors, application,
// centroid centering and transform composition.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"tractreg/internal/models"
)

// ErrInvalidParameterCount is returned when a transform parameter vector does
// not have length 6 (rigid) or 12 (affine).
var ErrInvalidParameterCount = errors.New("transform parameters must have length 6 or 12")

// BuildTransform creates a 4x4 homogeneous transform from a parameter vector.
//
// A 6-element vector [tx, ty, tz, rx, ry, rz] produces a rigid transform:
// translation in mm and rotation in degrees about the x, y and z axes,
// composed as Translation * Rz * Ry * Rx.
//
// A 12-element vector extends this with [sx, sy, sz, shx, shy, shz]:
// anisotropic scale factors and shear terms applied before the rotation,
// giving Translation * Rz * Ry * Rx * Shear * Scale.
func BuildTransform(params []float64) (*mat.Dense, error) {
	if len(params) != 6 && len(params) != 12 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidParameterCount, len(params))
	}

	rx := params[3] * math.Pi / 180.0
	ry := params[4] * math.Pi / 180.0
	rz := params[5] * math.Pi / 180.0

	cosX, sinX := math.Cos(rx), math.Sin(rx)
	cosY, sinY := math.Cos(ry), math.Sin(ry)
	cosZ, sinZ := math.Cos(rz), math.Sin(rz)

	// Combined rotation Rz * Ry * Rx
	r00 := cosZ * cosY
	r01 := cosZ*sinY*sinX - sinZ*cosX
	r02 := cosZ*sinY*cosX + sinZ*sinX
	r10 := sinZ * cosY
	r11 := sinZ*sinY*sinX + cosZ*cosX
	r12 := sinZ*sinY*cosX - cosZ*sinX
	r20 := -sinY
	r21 := cosY * sinX
	r22 := cosY * cosX

	rot := mat.NewDense(3, 3, []float64{
		r00, r01, r02,
		r10, r11, r12,
		r20, r21, r22,
	})

	linear := rot
	if len(params) == 12 {
		sx, sy, sz := params[6], params[7], params[8]
		shx, shy, shz := params[9], params[10], params[11]

		shear := mat.NewDense(3, 3, []float64{
			1, shx, shy,
			0, 1, shz,
			0, 0, 1,
		})
		scale := mat.NewDense(3, 3, []float64{
			sx, 0, 0,
			0, sy, 0,
			0, 0, sz,
		})

		shearScale := mat.NewDense(3, 3, nil)
		shearScale.Mul(shear, scale)
		linear = mat.NewDense(3, 3, nil)
		linear.Mul(rot, shearScale)
	}

	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, linear.At(i, j))
		}
	}
	m.Set(0, 3, params[0])
	m.Set(1, 3, params[1])
	m.Set(2, 3, params[2])
	m.Set(3, 3, 1)

	return m, nil
}

// Translation returns the pure-translation transform that shifts points by
// (x, y, z). Useful for inverting the shift reported by CenterBundle.
func Translation(x, y, z float64) *mat.Dense {
	m := identity4()
	m.Set(0, 3, x)
	m.Set(1, 3, y)
	m.Set(2, 3, z)
	return m
}

// ApplyTransform applies a 4x4 homogeneous transform to every point of every
// streamline in the bundle and returns a new bundle. The input is never
// modified.
func ApplyTransform(bundle models.Bundle, m *mat.Dense) models.Bundle {
	m00, m01, m02, m03 := m.At(0, 0), m.At(0, 1), m.At(0, 2), m.At(0, 3)
	m10, m11, m12, m13 := m.At(1, 0), m.At(1, 1), m.At(1, 2), m.At(1, 3)
	m20, m21, m22, m23 := m.At(2, 0), m.At(2, 1), m.At(2, 2), m.At(2, 3)

	out := make(models.Bundle, len(bundle))
	for i, s := range bundle {
		ts := make(models.Streamline, len(s))
		for j, p := range s {
			ts[j] = models.Point3D{
				X: m00*p.X + m01*p.Y + m02*p.Z + m03,
				Y: m10*p.X + m11*p.Y + m12*p.Z + m13,
				Z: m20*p.X + m21*p.Y + m22*p.Z + m23,
			}
		}
		out[i] = ts
	}
	return out
}

// CenterBundle shifts the bundle so the centroid of the union of all points
// sits at the origin. It returns the recentered bundle together with the
// subtracted shift, so the operation can be inverted later with
// ApplyTransform(centered, Translation(shift[0], shift[1], shift[2])).
//
// Centering keeps the rotation search well conditioned: rotations about the
// origin applied to a far-from-origin bundle translate it wildly.
func CenterBundle(bundle models.Bundle) (models.Bundle, [3]float64) {
	var cx, cy, cz float64
	total := 0
	for _, s := range bundle {
		for _, p := range s {
			cx += p.X
			cy += p.Y
			cz += p.Z
			total++
		}
	}
	if total == 0 {
		return models.Bundle{}, [3]float64{}
	}
	cx /= float64(total)
	cy /= float64(total)
	cz /= float64(total)

	out := make(models.Bundle, len(bundle))
	for i, s := range bundle {
		cs := make(models.Streamline, len(s))
		for j, p := range s {
			cs[j] = models.Point3D{X: p.X - cx, Y: p.Y - cy, Z: p.Z - cz}
		}
		out[i] = cs
	}
	return out, [3]float64{cx, cy, cz}
}

// Compose multiplies an ordered chain of 4x4 transforms into one. The
// first-listed transform is applied first: Compose(A, B, C) returns the
// matrix product C * B * A, so applying the result equals applying A, then
// B, then C.
func Compose(transforms ...*mat.Dense) *mat.Dense {
	result := identity4()
	for _, t := range transforms {
		next := mat.NewDense(4, 4, nil)
		next.Mul(t, result)
		result = next
	}
	return result
}

func identity4() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return m
}
