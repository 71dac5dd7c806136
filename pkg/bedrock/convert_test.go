package bedrock

import (
	"bytes"
	"errors"
	"math"
	"testing"

	vmath "github.com/Faultbox/objbench/pkg/math"
	"github.com/Faultbox/objbench/pkg/obj"
)

func TestConvert_Cube(t *testing.T) {
	mesh := obj.Parse("v -1 -1 -1\nv 1 1 1\nf 1 2")

	doc, err := Convert(mesh, "cube")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if doc.FormatVersion != "1.10.0" {
		t.Errorf("expected format version 1.10.0, got %s", doc.FormatVersion)
	}
	if doc.Key() != "geometry.cube" {
		t.Errorf("expected key geometry.cube, got %s", doc.Key())
	}

	g := doc.Geometry
	if g.TextureWidth != 64 || g.TextureHeight != 64 {
		t.Errorf("expected 64x64 texture, got %dx%d", g.TextureWidth, g.TextureHeight)
	}
	if g.VisibleBoundsWidth != 1 || g.VisibleBoundsHeight != 1 {
		t.Errorf("expected visible bounds 1x1, got %dx%d", g.VisibleBoundsWidth, g.VisibleBoundsHeight)
	}
	if g.VisibleBoundsOffset != [3]int{0, 1, 0} {
		t.Errorf("expected offset [0 1 0], got %v", g.VisibleBoundsOffset)
	}

	if len(g.Bones) != 2 {
		t.Fatalf("expected 2 bones, got %d", len(g.Bones))
	}
	root, ok := g.Bones[0].(*RootBone)
	if !ok || root.Name != "root" || root.Pivot != [3]float64{} {
		t.Errorf("unexpected root bone: %#v", g.Bones[0])
	}
	mb, ok := g.Bones[1].(*ModelBone)
	if !ok {
		t.Fatalf("expected *ModelBone, got %T", g.Bones[1])
	}
	if mb.Name != "cube" || mb.Parent != "root" {
		t.Errorf("unexpected model bone name/parent: %s/%s", mb.Name, mb.Parent)
	}
	if len(mb.Cubes) != 1 {
		t.Fatalf("expected 1 cube, got %d", len(mb.Cubes))
	}
	c := mb.Cubes[0]
	if c.Origin != [3]float64{-1, -1, -1} {
		t.Errorf("expected origin [-1 -1 -1], got %v", c.Origin)
	}
	if c.Size != [3]int{2, 2, 2} {
		t.Errorf("expected size [2 2 2], got %v", c.Size)
	}
	if c.UV != [2]int{0, 0} || c.Mirror != nil {
		t.Errorf("unexpected uv/mirror: %v/%v", c.UV, c.Mirror)
	}
}

func TestConvert_SinglePoint(t *testing.T) {
	doc, err := Convert(obj.Parse("v 0 0 0"), "dot")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	c := doc.Geometry.ModelBone().Cubes[0]
	if c.Size != [3]int{1, 1, 1} {
		t.Errorf("expected size [1 1 1], got %v", c.Size)
	}
	if c.Origin != [3]float64{0, 0, 0} {
		t.Errorf("expected origin [0 0 0], got %v", c.Origin)
	}
	for _, f := range c.Origin {
		if math.Signbit(f) {
			t.Errorf("origin component is negative zero: %v", c.Origin)
		}
	}
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"empty text", "", ErrEmptyMesh},
		{"faces only", "f 1 2 3", ErrEmptyMesh},
		{"nan vertex", "v 0 0 0\nv 1 bad 1", ErrNonFiniteBounds},
		{"infinite vertex", "v 0 0 0\nv 1 Inf 1", ErrNonFiniteBounds},
		{"span overflows", "v -1.7e308 0 0\nv 1.7e308 0 0", ErrNonFiniteBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Convert(obj.Parse(tt.text), "m")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if doc != nil {
				t.Error("expected nil document on error")
			}
		})
	}
}

func TestConvert_LargeCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantSize [3]int
	}{
		{"single large point", "v 1.7e308 1.7e308 1.7e308", [3]int{1, 1, 1}},
		{"two large points", "v 1.7e308 0 0\nv 1.6e308 0 0", [3]int{MaxSpan, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Convert(obj.Parse(tt.text), "m")
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			c := doc.Geometry.ModelBone().Cubes[0]
			for i, o := range c.Origin {
				if math.IsNaN(o) || math.IsInf(o, 0) {
					t.Errorf("origin[%d] = %v, want finite", i, o)
				}
			}
			for i := 1; i < 3; i++ {
				if c.Size[i] != tt.wantSize[i] {
					t.Errorf("size[%d] = %d, want %d", i, c.Size[i], tt.wantSize[i])
				}
			}
			if c.Size[0] < tt.wantSize[0] || c.Size[0] > tt.wantSize[0]+1 {
				t.Errorf("size[0] = %d, want about %d", c.Size[0], tt.wantSize[0])
			}
			if _, err := Marshal(doc); err != nil {
				t.Errorf("Marshal() error = %v", err)
			}
		})
	}
}

func TestFitBox(t *testing.T) {
	tests := []struct {
		name      string
		box       BoundingBox
		wantScale float64
		wantMin   vmath.Vec3
		wantSize  [3]int
	}{
		{
			name:      "small box is not enlarged",
			box:       BoundingBox{Min: vmath.Vec3{X: 0, Y: 0, Z: 0}, Max: vmath.Vec3{X: 2, Y: 1, Z: 0.5}},
			wantScale: 1,
			wantMin:   vmath.Vec3{X: -1, Y: -0.5, Z: -0.25},
			wantSize:  [3]int{2, 1, 1},
		},
		{
			name:      "large box shrinks to max span",
			box:       BoundingBox{Min: vmath.Vec3{X: 0, Y: 0, Z: 0}, Max: vmath.Vec3{X: 64, Y: 32, Z: 8}},
			wantScale: 0.25,
			wantMin:   vmath.Vec3{X: -8, Y: -4, Z: -1},
			wantSize:  [3]int{16, 8, 2},
		},
		{
			name:      "fractional extent rounds up",
			box:       BoundingBox{Min: vmath.Vec3{X: 0, Y: 0, Z: 0}, Max: vmath.Vec3{X: 2.5, Y: 0.1, Z: 3}},
			wantScale: 1,
			wantMin:   vmath.Vec3{X: -1.25, Y: -0.05, Z: -1.5},
			wantSize:  [3]int{3, 1, 3},
		},
		{
			name:      "degenerate box clamps scale",
			box:       BoundingBox{Min: vmath.Vec3{X: 5, Y: 5, Z: 5}, Max: vmath.Vec3{X: 5, Y: 5, Z: 5}},
			wantScale: 1,
			wantMin:   vmath.Vec3{},
			wantSize:  [3]int{1, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit := FitBox(tt.box)
			if fit.Scale != tt.wantScale {
				t.Errorf("scale = %v, want %v", fit.Scale, tt.wantScale)
			}
			if fit.Min != tt.wantMin {
				t.Errorf("min = %v, want %v", fit.Min, tt.wantMin)
			}
			if fit.Size != tt.wantSize {
				t.Errorf("size = %v, want %v", fit.Size, tt.wantSize)
			}
		})
	}
}

func TestComputeBounds(t *testing.T) {
	box, err := ComputeBounds([]obj.Vertex{{X: 1, Y: -2, Z: 3}, {X: -4, Y: 5, Z: 0}, {X: 2, Y: 2, Z: -6}})
	if err != nil {
		t.Fatalf("ComputeBounds failed: %v", err)
	}
	if want := (vmath.Vec3{X: -4, Y: -2, Z: -6}); box.Min != want {
		t.Errorf("min = %v, want %v", box.Min, want)
	}
	if want := (vmath.Vec3{X: 2, Y: 5, Z: 3}); box.Max != want {
		t.Errorf("max = %v, want %v", box.Max, want)
	}

	if _, err := ComputeBounds(nil); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("expected ErrEmptyMesh, got %v", err)
	}
}

func TestConvert_VisibleBounds(t *testing.T) {
	// 16 x 9 x 4 box stays at scale 1.
	doc, err := Convert(obj.Parse("v 0 0 0\nv 16 9 4"), "tall")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	g := doc.Geometry
	if g.VisibleBoundsWidth != 2 {
		t.Errorf("expected visible width 2, got %d", g.VisibleBoundsWidth)
	}
	if g.VisibleBoundsHeight != 2 {
		t.Errorf("expected visible height 2, got %d", g.VisibleBoundsHeight)
	}
	if g.VisibleBoundsOffset != [3]int{0, 1, 0} {
		t.Errorf("expected offset [0 1 0], got %v", g.VisibleBoundsOffset)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Model!", "My_Model_"},
		{"cube", "cube"},
		{"snake_case_09", "snake_case_09"},
		{"a.b-c", "a_b_c"},
		{"épée", "_p_e"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvert_Idempotent(t *testing.T) {
	mesh := obj.Parse("v 0.3 -2 7\nv 5 5.5 -1\nv 2 2 2\nf 1 2 3")

	first, err := Convert(mesh, "My Model!")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	second, err := Convert(mesh, "My Model!")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	a, err := Marshal(first)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	b, err := Marshal(second)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("outputs differ:\n%s\n%s", a, b)
	}
}
