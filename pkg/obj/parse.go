package obj

import (
	"math"
	"strconv"
	"strings"
)

// Parse parses OBJ text with the default permissive policy. It never fails:
// unknown or short records are skipped, bad numbers become NaN and faces
// with unreadable indices are dropped.
func Parse(text string) *Mesh {
	mesh, _ := ParseWithOptions(text, Options{})
	return mesh
}

// ParseWithOptions parses OBJ text using the given policy. An error is only
// returned in Strict mode, as a *ParseError.
func ParseWithOptions(text string, opts Options) (*Mesh, error) {
	p := &parser{opts: opts, mesh: &Mesh{}}

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := p.parseLine(i+1, strings.Fields(line)); err != nil {
			return nil, err
		}
	}

	return p.mesh, nil
}

type parser struct {
	opts Options
	mesh *Mesh
}

func (p *parser) parseLine(lineNo int, parts []string) error {
	kind := parts[0]

	switch kind {
	case "v":
		if len(parts) < 4 {
			return nil
		}
		xyz, err := p.floats(lineNo, kind, parts[1:4])
		if err != nil {
			return err
		}
		p.mesh.Vertices = append(p.mesh.Vertices, Vertex{X: xyz[0], Y: xyz[1], Z: xyz[2]})

	case "vt":
		if len(parts) < 3 {
			return nil
		}
		uv, err := p.floats(lineNo, kind, parts[1:3])
		if err != nil {
			return err
		}
		p.mesh.TexCoords = append(p.mesh.TexCoords, TexCoord{U: uv[0], V: uv[1]})

	case "vn":
		if len(parts) < 4 {
			return nil
		}
		xyz, err := p.floats(lineNo, kind, parts[1:4])
		if err != nil {
			return err
		}
		p.mesh.Normals = append(p.mesh.Normals, Normal{X: xyz[0], Y: xyz[1], Z: xyz[2]})

	case "f":
		face, err := p.face(lineNo, parts[1:])
		if err != nil {
			if p.opts.Mode == Strict {
				return err
			}
			return nil
		}
		p.mesh.Faces = append(p.mesh.Faces, face)
	}

	return nil
}

// floats parses numeric tokens. Permissive mode maps bad tokens to NaN.
func (p *parser) floats(lineNo int, kind string, tokens []string) ([]float64, error) {
	out := make([]float64, len(tokens))
	for i, tok := range tokens {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			if p.opts.Mode == Strict {
				return nil, &ParseError{Line: lineNo, Kind: kind, Token: tok, Err: ErrMalformedNumber}
			}
			f = math.NaN()
		}
		out[i] = f
	}
	return out, nil
}

// face resolves every "v/vt/vn" token against the list lengths at this point
// of the input. Any error means the face must not be recorded.
func (p *parser) face(lineNo int, tokens []string) (Face, error) {
	var face Face
	nv, nt, nn := len(p.mesh.Vertices), len(p.mesh.TexCoords), len(p.mesh.Normals)

	for _, tok := range tokens {
		fields := strings.Split(tok, "/")

		for slot, field := range fields {
			if slot > 2 {
				break
			}
			if field == "" {
				continue
			}
			n, err := strconv.Atoi(field)
			if err != nil {
				return Face{}, &ParseError{Line: lineNo, Kind: "f", Token: tok, Err: ErrMalformedIndex}
			}
			switch slot {
			case 0:
				face.Vertices = append(face.Vertices, resolveIndex(n, nv))
			case 1:
				face.TexCoords = append(face.TexCoords, resolveIndex(n, nt))
			case 2:
				face.Normals = append(face.Normals, resolveIndex(n, nn))
			}
		}
	}

	if p.opts.ValidateFaces {
		if err := validateFace(face, nv, nt, nn); err != nil {
			return Face{}, &ParseError{Line: lineNo, Kind: "f", Err: err}
		}
	}

	return face, nil
}

// resolveIndex converts an OBJ reference to a 0-based index. Positive
// references count from 1; anything else is relative to the current end.
func resolveIndex(ref, length int) int {
	if ref > 0 {
		return ref - 1
	}
	return length + ref
}

func validateFace(f Face, nv, nt, nn int) error {
	if len(f.Vertices) < 3 {
		return ErrDegenerateFace
	}
	if len(f.TexCoords) > 0 && len(f.TexCoords) != len(f.Vertices) {
		return ErrIndexMismatch
	}
	if len(f.Normals) > 0 && len(f.Normals) != len(f.Vertices) {
		return ErrIndexMismatch
	}
	if !inRange(f.Vertices, nv) || !inRange(f.TexCoords, nt) || !inRange(f.Normals, nn) {
		return ErrIndexOutOfRange
	}
	return nil
}

func inRange(indices []int, length int) bool {
	for _, i := range indices {
		if i < 0 || i >= length {
			return false
		}
	}
	return true
}
