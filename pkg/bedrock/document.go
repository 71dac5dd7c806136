// Package bedrock builds Bedrock entity geometry documents (the JSON format
// Blockbench imports) from parsed OBJ meshes.
package bedrock

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Document format constants.
const (
	FormatVersion     = "1.10.0"
	GeometryKeyPrefix = "geometry."
	RootBoneName      = "root"
	TextureSize       = 64
)

// Document decoding errors.
var (
	ErrNoGeometry       = errors.New("document has no geometry entry")
	ErrMultipleGeometry = errors.New("document has more than one geometry entry")
)

// Document is a single-geometry Bedrock model file. Name is the sanitized
// model name; it appears in the JSON as the "geometry.<Name>" key.
type Document struct {
	FormatVersion string
	Name          string
	Geometry      Geometry
}

// Key returns the JSON key of the geometry entry.
func (d *Document) Key() string {
	return GeometryKeyPrefix + d.Name
}

// Geometry is the body of a geometry entry.
type Geometry struct {
	TextureWidth        int    `json:"texturewidth"`
	TextureHeight       int    `json:"textureheight"`
	VisibleBoundsWidth  int    `json:"visible_bounds_width"`
	VisibleBoundsHeight int    `json:"visible_bounds_height"`
	VisibleBoundsOffset [3]int `json:"visible_bounds_offset"`
	Bones               []Bone `json:"bones"`
}

// Bone is either a *RootBone or a *ModelBone.
type Bone interface {
	BoneName() string
	isBone()
}

// RootBone is the top of the bone hierarchy. It has no parent and no cubes.
type RootBone struct {
	Name  string     `json:"name"`
	Pivot [3]float64 `json:"pivot"`
}

// ModelBone is a child bone holding the model's cubes.
type ModelBone struct {
	Name   string     `json:"name"`
	Parent string     `json:"parent"`
	Pivot  [3]float64 `json:"pivot"`
	Cubes  []Cube     `json:"cubes,omitempty"`
}

func (b *RootBone) BoneName() string  { return b.Name }
func (b *ModelBone) BoneName() string { return b.Name }

func (*RootBone) isBone()  {}
func (*ModelBone) isBone() {}

// Cube is an axis-aligned box in model space.
type Cube struct {
	Origin [3]float64 `json:"origin"`
	Size   [3]int     `json:"size"`
	UV     [2]int     `json:"uv"`
	Mirror *bool      `json:"mirror,omitempty"` // Omitted when nil
}

// ModelBone returns the first bone that holds cubes, or nil.
func (g *Geometry) ModelBone() *ModelBone {
	for _, b := range g.Bones {
		if mb, ok := b.(*ModelBone); ok {
			return mb
		}
	}
	return nil
}

// MarshalJSON writes format_version first, then the geometry entry.
func (d Document) MarshalJSON() ([]byte, error) {
	version, err := json.Marshal(d.FormatVersion)
	if err != nil {
		return nil, err
	}
	key, err := json.Marshal(d.Key())
	if err != nil {
		return nil, err
	}
	geometry, err := json.Marshal(d.Geometry)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"format_version":`)
	buf.Write(version)
	buf.WriteByte(',')
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(geometry)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a document with exactly one "geometry.*" entry.
func (d *Document) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var doc Document
	if raw, ok := fields["format_version"]; ok {
		if err := json.Unmarshal(raw, &doc.FormatVersion); err != nil {
			return fmt.Errorf("format_version: %w", err)
		}
	}

	found := false
	for key, raw := range fields {
		if !strings.HasPrefix(key, GeometryKeyPrefix) {
			continue
		}
		if found {
			return ErrMultipleGeometry
		}
		found = true
		doc.Name = strings.TrimPrefix(key, GeometryKeyPrefix)
		if err := json.Unmarshal(raw, &doc.Geometry); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	if !found {
		return ErrNoGeometry
	}

	*d = doc
	return nil
}

// UnmarshalJSON decodes bones as RootBone when they have neither parent
// nor cubes, ModelBone otherwise.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	type plain Geometry
	var aux struct {
		plain
		Bones []json.RawMessage `json:"bones"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*g = Geometry(aux.plain)
	g.Bones = make([]Bone, 0, len(aux.Bones))
	for i, raw := range aux.Bones {
		var probe struct {
			Parent *string           `json:"parent"`
			Cubes  []json.RawMessage `json:"cubes"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return fmt.Errorf("bone %d: %w", i, err)
		}

		var bone Bone
		if probe.Parent == nil && probe.Cubes == nil {
			bone = &RootBone{}
		} else {
			bone = &ModelBone{}
		}
		if err := json.Unmarshal(raw, bone); err != nil {
			return fmt.Errorf("bone %d: %w", i, err)
		}
		g.Bones = append(g.Bones, bone)
	}
	return nil
}

// Marshal serializes the document as indented JSON.
func Marshal(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal parses a document produced by Marshal or by Blockbench.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
