package types

import (
	"bytes"
	"encoding/json"
	"iter"

	"gopkg.in/yaml.v3"
)

// UnitMap is a map of units keyed by name that keeps insertion order.
// Replacing an existing key keeps its original position.
type UnitMap struct {
	keys  []string
	units map[string]*LegacyUnit
}

// NewUnitMap creates an empty UnitMap
func NewUnitMap() *UnitMap {
	return &UnitMap{units: make(map[string]*LegacyUnit)}
}

// Set registers a unit under name and reports whether a previous entry was replaced
func (m *UnitMap) Set(name string, unit *LegacyUnit) bool {
	if _, exists := m.units[name]; exists {
		m.units[name] = unit
		return true
	}
	m.keys = append(m.keys, name)
	m.units[name] = unit
	return false
}

// Get returns the unit registered under name
func (m *UnitMap) Get(name string) (*LegacyUnit, bool) {
	unit, ok := m.units[name]
	return unit, ok
}

// Delete removes name and reports whether it was present
func (m *UnitMap) Delete(name string) bool {
	if _, exists := m.units[name]; !exists {
		return false
	}
	delete(m.units, name)
	for i, key := range m.keys {
		if key == name {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of entries
func (m *UnitMap) Len() int {
	return len(m.keys)
}

// Keys returns the names in insertion order
func (m *UnitMap) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// All iterates entries in insertion order
func (m *UnitMap) All() iter.Seq2[string, *LegacyUnit] {
	return func(yield func(string, *LegacyUnit) bool) {
		for _, key := range m.keys {
			if !yield(key, m.units[key]) {
				return
			}
		}
	}
}

// MarshalJSON writes the entries as a JSON object in insertion order
func (m *UnitMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		unitJSON, err := json.Marshal(m.units[key])
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(unitJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the entries as a YAML mapping in insertion order
func (m *UnitMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range m.keys {
		var value yaml.Node
		if err := value.Encode(m.units[key]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			&value)
	}
	return node, nil
}
