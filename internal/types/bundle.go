package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Bundle defaults applied when the generator leaves a field empty
const (
	DefaultProjectName = "modernized_app"
	DefaultPackageName = "com.example.modernizedapp"
)

// GeneratedCodeBundle is the generated Java code handed to the materializer
type GeneratedCodeBundle struct {
	ProjectName string      `json:"project_name" yaml:"project_name"`
	PackageName string      `json:"package_name" yaml:"package_name"`
	Files       BundleFiles `json:"files" yaml:"files"`
}

// WithDefaults returns a copy with empty names replaced by the defaults
func (b GeneratedCodeBundle) WithDefaults() GeneratedCodeBundle {
	if b.ProjectName == "" {
		b.ProjectName = DefaultProjectName
	}
	if b.PackageName == "" {
		b.PackageName = DefaultPackageName
	}
	return b
}

// BundleFile is one generated document
type BundleFile struct {
	Path    string
	Content FileContent
}

// BundleFiles is the ordered list of generated documents, decoded from a
// JSON object or YAML mapping of relative path to content
type BundleFiles []BundleFile

// Set adds a file or replaces the content of an existing path in place
func (f *BundleFiles) Set(path string, content FileContent) {
	for i := range *f {
		if (*f)[i].Path == path {
			(*f)[i].Content = content
			return
		}
	}
	*f = append(*f, BundleFile{Path: path, Content: content})
}

// Has reports whether path is part of the bundle
func (f BundleFiles) Has(path string) bool {
	for _, file := range f {
		if file.Path == path {
			return true
		}
	}
	return false
}

// UnmarshalJSON decodes a JSON object keeping the key order
func (f *BundleFiles) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("files must be an object, got %v", tok)
	}

	files := BundleFiles{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		path, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("file %s: %w", path, err)
		}
		var content FileContent
		if err := content.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("file %s: %w", path, err)
		}
		files.Set(path, content)
	}
	*f = files
	return nil
}

// MarshalJSON encodes the files as a JSON object in order
func (f BundleFiles) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, file := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(file.Path)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(file.Content)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a YAML mapping keeping the key order
func (f *BundleFiles) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		*f = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("files must be a mapping (line %d)", node.Line)
	}

	files := BundleFiles{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		path := node.Content[i].Value
		var content FileContent
		if err := content.UnmarshalYAML(node.Content[i+1]); err != nil {
			return fmt.Errorf("file %s: %w", path, err)
		}
		files.Set(path, content)
	}
	*f = files
	return nil
}

// ContentShape tells which form a generated document arrived in
type ContentShape int

const (
	// ContentText is a plain string
	ContentText ContentShape = iota
	// ContentRecord is an object carrying the text under "content"
	ContentRecord
	// ContentOther is any other value, used through its string representation
	ContentOther
)

// FileContent is the loosely typed content of a generated document.
// Normalize turns every shape into plain text.
type FileContent struct {
	shape  ContentShape
	text   string
	record map[string]interface{}
	value  interface{}
}

// TextContent wraps a plain string
func TextContent(text string) FileContent {
	return FileContent{shape: ContentText, text: text}
}

// RecordContent wraps an object such as {"content": "...", "description": "..."}
func RecordContent(record map[string]interface{}) FileContent {
	return FileContent{shape: ContentRecord, record: record}
}

// OtherContent wraps any other value
func OtherContent(value interface{}) FileContent {
	return FileContent{shape: ContentOther, value: value}
}

// Shape returns the form the content arrived in
func (c FileContent) Shape() ContentShape {
	return c.shape
}

// Normalize returns the content as plain text
func (c FileContent) Normalize() string {
	switch c.shape {
	case ContentText:
		return c.text
	case ContentRecord:
		if inner, ok := c.record["content"]; ok {
			return stringify(inner)
		}
		return stringify(c.record)
	default:
		return stringify(c.value)
	}
}

// stringify renders a decoded value: strings as is, nil as empty, anything
// else as compact JSON
func stringify(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// UnmarshalJSON decodes any JSON value into the matching shape
func (c *FileContent) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*c = TextContent("")
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	switch trimmed[0] {
	case '"':
		var text string
		if err := dec.Decode(&text); err != nil {
			return err
		}
		*c = TextContent(text)
	case '{':
		var record map[string]interface{}
		if err := dec.Decode(&record); err != nil {
			return err
		}
		*c = RecordContent(record)
	default:
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		*c = OtherContent(value)
	}
	return nil
}

// MarshalJSON writes the original shape back
func (c FileContent) MarshalJSON() ([]byte, error) {
	switch c.shape {
	case ContentText:
		return json.Marshal(c.text)
	case ContentRecord:
		return json.Marshal(c.record)
	default:
		return json.Marshal(c.value)
	}
}

// UnmarshalYAML decodes any YAML node into the matching shape
func (c *FileContent) UnmarshalYAML(node *yaml.Node) error {
	switch {
	case node.Kind == yaml.ScalarNode && node.ShortTag() == "!!str":
		*c = TextContent(node.Value)
	case node.Kind == yaml.MappingNode:
		var record map[string]interface{}
		if err := node.Decode(&record); err != nil {
			return err
		}
		*c = RecordContent(record)
	default:
		var value interface{}
		if err := node.Decode(&value); err != nil {
			return err
		}
		*c = OtherContent(value)
	}
	return nil
}
