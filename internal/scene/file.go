package scene

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DocumentVersion is the scene file format version written by Encode.
const DocumentVersion = 1

// Document is the on-disk scene format.
//
//	version: 1
//	lights:
//	  - id: key-light
//	    name: Key light
//	    attributes:
//	      lumen:colorMode: spectral
//	      lumen:spectral:peakWavelength: 525
type Document struct {
	Version int     `yaml:"version,omitempty" json:"version,omitempty"`
	Lights  []Light `yaml:"lights" json:"lights"`
}

// Light is one entity in a scene file.
type Light struct {
	ID         string     `yaml:"id" json:"id"`
	Name       string     `yaml:"name,omitempty" json:"name,omitempty"`
	Attributes Attributes `yaml:"attributes" json:"attributes"`
}

// ParseDocument decodes a YAML scene. Lights without an id are assigned a
// random UUID so they can be addressed; duplicate ids are rejected.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Lights))
	for i := range doc.Lights {
		l := &doc.Lights[i]
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if _, dup := seen[l.ID]; dup {
			return nil, fmt.Errorf("duplicate light id %q", l.ID)
		}
		seen[l.ID] = struct{}{}

		attrs, err := NormalizeAll(l.Attributes)
		if err != nil {
			return nil, fmt.Errorf("light %s: %w", l.ID, err)
		}
		l.Attributes = attrs
	}
	return &doc, nil
}

// LoadFile reads a YAML scene file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Encode renders the document as YAML.
func (d *Document) Encode() ([]byte, error) {
	out := *d
	if out.Version == 0 {
		out.Version = DocumentVersion
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("failed to encode scene: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode scene: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveFile writes the document to path via a temporary file and rename.
func SaveFile(path string, doc *Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write scene: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write scene: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace scene: %w", err)
	}
	return nil
}

// Load adds every light in doc to the store.
func (s *Store) Load(doc *Document) error {
	for _, l := range doc.Lights {
		if err := s.Add(l.ID, l.Name, l.Attributes); err != nil {
			return err
		}
	}
	return nil
}

// Document snapshots the store in insertion order.
func (s *Store) Document() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := &Document{Version: DocumentVersion, Lights: make([]Light, 0, len(s.order))}
	for _, id := range s.order {
		doc.Lights = append(doc.Lights, Light{
			ID:         id,
			Name:       s.names[id],
			Attributes: s.entities[id].Clone(),
		})
	}
	return doc
}
