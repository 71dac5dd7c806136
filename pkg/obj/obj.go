// Package obj parses Wavefront OBJ geometry text into an in-memory mesh.
package obj

import (
	"errors"
	"fmt"
	"os"

	vmath "github.com/Faultbox/objbench/pkg/math"
)

// OBJ parse errors.
var (
	ErrMalformedNumber = errors.New("malformed numeric token")
	ErrMalformedIndex  = errors.New("malformed face index")
	ErrDegenerateFace  = errors.New("face has fewer than 3 vertices")
	ErrIndexMismatch   = errors.New("face index lists differ in length")
	ErrIndexOutOfRange = errors.New("face index out of range")
)

// Mode selects how the parser reacts to malformed input.
type Mode int

const (
	Permissive Mode = iota // Keep going: NaN for bad numbers, drop bad faces
	Strict                 // Stop at the first malformed record
)

// String returns the mode name as used in config files.
func (m Mode) String() string {
	switch m {
	case Permissive:
		return "permissive"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseMode converts a config string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "permissive":
		return Permissive, nil
	case "strict":
		return Strict, nil
	default:
		return Permissive, fmt.Errorf("unknown parse mode %q", s)
	}
}

// Options controls parser policy. The zero value matches Parse.
type Options struct {
	Mode Mode
	// ValidateFaces rejects faces with fewer than 3 vertices, uneven
	// index lists or indices outside the lists parsed so far.
	ValidateFaces bool
}

// ParseError reports the record that stopped a strict parse.
type ParseError struct {
	Line  int    // 1-based line number in the input
	Kind  string // Record kind ("v", "vt", "vn", "f")
	Token string // Offending token, empty for face-level checks
	Err   error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("obj: line %d: %s: %v", e.Line, e.Kind, e.Err)
	}
	return fmt.Sprintf("obj: line %d: %s: %v %q", e.Line, e.Kind, e.Err, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Vertex is a geometric vertex position.
type Vertex struct {
	X, Y, Z float64
}

// Vec3 returns the vertex as a vector.
func (v Vertex) Vec3() vmath.Vec3 {
	return vmath.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// TexCoord is a texture coordinate.
type TexCoord struct {
	U, V float64
}

// Normal is a vertex normal direction.
type Normal struct {
	X, Y, Z float64
}

// Face holds 0-based indices into the mesh lists. TexCoords and Normals
// are stored independently and may be shorter than Vertices.
type Face struct {
	Vertices  []int
	TexCoords []int
	Normals   []int
}

// Mesh is a parsed OBJ file.
type Mesh struct {
	Vertices  []Vertex
	TexCoords []TexCoord
	Normals   []Normal
	Faces     []Face
}

// ParseFile reads and parses an OBJ file.
func ParseFile(path string, opts Options) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseWithOptions(string(data), opts)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no vertices.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// UVBounds returns the range covered by the texture coordinates.
// ok is false when the mesh has none.
func (m *Mesh) UVBounds() (lo, hi vmath.Vec2, ok bool) {
	if len(m.TexCoords) == 0 {
		return lo, hi, false
	}
	lo = vmath.Vec2{X: m.TexCoords[0].U, Y: m.TexCoords[0].V}
	hi = lo
	for _, tc := range m.TexCoords[1:] {
		p := vmath.Vec2{X: tc.U, Y: tc.V}
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi, true
}
