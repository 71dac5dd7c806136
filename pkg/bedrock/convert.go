package bedrock

import (
	"errors"
	"math"

	vmath "github.com/Faultbox/objbench/pkg/math"
	"github.com/Faultbox/objbench/pkg/obj"
)

// Conversion errors.
var (
	ErrEmptyMesh       = errors.New("mesh has no vertices")
	ErrNonFiniteBounds = errors.New("mesh bounds are not finite")
)

// MaxSpan is the largest extent, in model units, a converted cube may have.
const MaxSpan = 16

// BoundingBox is an axis-aligned box.
type BoundingBox struct {
	Min vmath.Vec3
	Max vmath.Vec3
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() vmath.Vec3 {
	return b.Min.Mid(b.Max)
}

// Extent returns the box dimensions.
func (b BoundingBox) Extent() vmath.Vec3 {
	return b.Max.Sub(b.Min)
}

// ComputeBounds returns the bounding box of all vertices.
func ComputeBounds(vertices []obj.Vertex) (BoundingBox, error) {
	if len(vertices) == 0 {
		return BoundingBox{}, ErrEmptyMesh
	}

	box := BoundingBox{Min: vmath.Infinity(1), Max: vmath.Infinity(-1)}
	for _, v := range vertices {
		p := v.Vec3()
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box, nil
}

// Fit is a bounding box recentred on the origin and scaled to MaxSpan.
type Fit struct {
	Scale float64
	Min   vmath.Vec3
	Max   vmath.Vec3
	Size  [3]int
}

// FitBox centres the box on the origin and shrinks it uniformly so its
// largest extent is at most MaxSpan. Boxes are never enlarged. Size is the
// scaled extent rounded up, at least 1 on every axis.
func FitBox(box BoundingBox) Fit {
	center := box.Center()

	scale := 1.0
	if maxDim := box.Extent().MaxComponent(); maxDim > 0 {
		scale = math.Min(MaxSpan/maxDim, 1)
	}

	f := Fit{
		Scale: scale,
		Min:   box.Min.Sub(center).Scale(scale),
		Max:   box.Max.Sub(center).Scale(scale),
	}
	ext := f.Max.Sub(f.Min)
	f.Size = [3]int{cubeSize(ext.X), cubeSize(ext.Y), cubeSize(ext.Z)}
	return f
}

// Convert builds a one-cube geometry document for the mesh.
func Convert(mesh *obj.Mesh, modelName string) (*Document, error) {
	box, err := ComputeBounds(mesh.Vertices)
	if err != nil {
		return nil, err
	}
	if !box.Min.IsFinite() || !box.Max.IsFinite() || !box.Extent().IsFinite() {
		return nil, ErrNonFiniteBounds
	}

	fit := FitBox(box)
	if !fit.Min.IsFinite() || !fit.Max.IsFinite() {
		return nil, ErrNonFiniteBounds
	}
	name := SanitizeName(modelName)
	width, height := fit.Size[0], fit.Size[1]

	origin := fit.Min.Array()
	for i := range origin {
		origin[i] = positiveZero(origin[i])
	}

	cube := Cube{
		Origin: origin,
		Size:   fit.Size,
		UV:     [2]int{0, 0},
	}

	return &Document{
		FormatVersion: FormatVersion,
		Name:          name,
		Geometry: Geometry{
			TextureWidth:        TextureSize,
			TextureHeight:       TextureSize,
			VisibleBoundsWidth:  ceilDiv(width, 8),
			VisibleBoundsHeight: ceilDiv(height, 8),
			VisibleBoundsOffset: [3]int{0, ceilDiv(height, 16), 0},
			Bones: []Bone{
				&RootBone{Name: RootBoneName},
				&ModelBone{
					Name:   name,
					Parent: RootBoneName,
					Cubes:  []Cube{cube},
				},
			},
		},
	}, nil
}

// SanitizeName replaces every character outside [A-Za-z0-9_] with '_'.
func SanitizeName(name string) string {
	out := make([]byte, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, byte(r))
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func cubeSize(extent float64) int {
	return max(1, int(math.Ceil(extent)))
}

func ceilDiv(n, d int) int {
	return int(math.Ceil(float64(n) / float64(d)))
}

// positiveZero maps -0 to 0 so it encodes as "0".
func positiveZero(f float64) float64 {
	if f == 0 {
		return 0
	}
	return f
}
