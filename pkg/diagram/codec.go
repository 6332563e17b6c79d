package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Document - Diagram Serialization Format
// =============================================================================

// Document is the canonical serialization format for diagrams.
// Used for files, API requests, storage, and caching.
//
// Level and transition order is preserved exactly: insertion order is the
// layout engine's deterministic tie-break, so reordering entries changes
// the computed geometry.
type Document struct {
	Levels      []LevelDoc      `json:"levels" bson:"levels" toml:"level"`
	Transitions []TransitionDoc `json:"transitions" bson:"transitions" toml:"transition"`
}

// LevelDoc is the serialized form of a [Level].
type LevelDoc struct {
	ID      string   `json:"id" bson:"id" toml:"id"`
	Energy  float64  `json:"energy" bson:"energy" toml:"energy"`
	Group   string   `json:"group,omitempty" bson:"group,omitempty" toml:"group"`
	Width   float64  `json:"width,omitempty" bson:"width,omitempty" toml:"width"`
	XOffset *float64 `json:"x_offset,omitempty" bson:"x_offset,omitempty" toml:"x_offset"`
	Label   string   `json:"label,omitempty" bson:"label,omitempty" toml:"label"`
}

// TransitionDoc is the serialized form of a [Transition].
type TransitionDoc struct {
	From       string  `json:"from" bson:"from" toml:"from"`
	To         string  `json:"to" bson:"to" toml:"to"`
	Style      string  `json:"style,omitempty" bson:"style,omitempty" toml:"style"`
	Label      string  `json:"label,omitempty" bson:"label,omitempty" toml:"label"`
	Anchor     string  `json:"anchor,omitempty" bson:"anchor,omitempty" toml:"anchor"`
	Detuning   float64 `json:"detuning,omitempty" bson:"detuning,omitempty" toml:"detuning"`
	WaveAmp    float64 `json:"wave_amp,omitempty" bson:"wave_amp,omitempty" toml:"wave_amp"`
	HalfPeriod float64 `json:"half_period,omitempty" bson:"half_period,omitempty" toml:"half_period"`
}

// =============================================================================
// Diagram ↔ Document Conversion
// =============================================================================

// FromDiagram converts a diagram to its serialization format.
// Levels and transitions appear in insertion order for round-trip fidelity.
func FromDiagram(d *Diagram) Document {
	doc := Document{
		Levels:      make([]LevelDoc, 0, d.LevelCount()),
		Transitions: make([]TransitionDoc, 0, d.TransitionCount()),
	}
	for _, l := range d.Levels() {
		doc.Levels = append(doc.Levels, LevelDoc{
			ID:      l.ID,
			Energy:  l.Energy,
			Group:   l.Group,
			Width:   l.Width,
			XOffset: l.XOffset,
			Label:   l.Label,
		})
	}
	for _, t := range d.Transitions() {
		doc.Transitions = append(doc.Transitions, TransitionDoc{
			From:       t.From,
			To:         t.To,
			Style:      string(t.Style),
			Label:      t.Label,
			Anchor:     string(t.Anchor),
			Detuning:   t.Detuning,
			WaveAmp:    t.WaveAmp,
			HalfPeriod: t.HalfPeriod,
		})
	}
	return doc
}

// ToDiagram converts a document to a diagram.
// Returns a descriptive error naming the offending level or transition when
// the document violates model constraints.
func ToDiagram(doc Document) (*Diagram, error) {
	d := New()
	for _, ld := range doc.Levels {
		l := Level{
			ID:      ld.ID,
			Energy:  ld.Energy,
			Group:   ld.Group,
			Width:   ld.Width,
			XOffset: ld.XOffset,
			Label:   ld.Label,
		}
		if err := d.AddLevel(l); err != nil {
			return nil, fmt.Errorf("level %q: %w", ld.ID, err)
		}
	}
	for _, td := range doc.Transitions {
		t := Transition{
			From:       td.From,
			To:         td.To,
			Style:      TransitionStyle(td.Style),
			Label:      td.Label,
			Anchor:     Anchor(td.Anchor),
			Detuning:   td.Detuning,
			WaveAmp:    td.WaveAmp,
			HalfPeriod: td.HalfPeriod,
		}
		if td.Anchor != "" {
			switch Anchor(td.Anchor) {
			case AnchorCenter, AnchorLeft, AnchorRight:
			default:
				return nil, fmt.Errorf("transition %s→%s: invalid anchor %q", td.From, td.To, td.Anchor)
			}
		}
		if err := d.AddTransition(t); err != nil {
			return nil, fmt.Errorf("transition %s→%s: %w", td.From, td.To, err)
		}
	}
	return d, nil
}

// =============================================================================
// JSON Serialization API
// =============================================================================

// Marshal converts a diagram to indented JSON bytes.
func Marshal(d *Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON bytes into a diagram.
func Unmarshal(data []byte) (*Diagram, error) {
	return readFrom(bytes.NewReader(data))
}

// WriteFile writes a diagram to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(d *Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(d, f)
}

// Write writes a diagram as JSON to an io.Writer.
func Write(d *Diagram, w io.Writer) error {
	return writeTo(d, w)
}

// ReadFile reads a JSON file and returns the decoded diagram.
// Returns validation errors for documents that violate model constraints.
func ReadFile(path string) (*Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

// Read decodes a JSON diagram from an io.Reader.
func Read(r io.Reader) (*Diagram, error) {
	return readFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(d *Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromDiagram(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (*Diagram, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToDiagram(doc)
}
