package manifest

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	apperr "github.com/bjoernmichaelsen/ghdepup/pkg/errors"
)

// Format identifies a document encoding.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", apperr.New(apperr.ErrCodeInvalidManifest, "unsupported manifest format: %s", path)
}

// Update applies resolved versions to the section of data and returns the
// new document and the names whose version changed. When nothing changed
// data is returned as is.
//
// section may be a dotted path ("workspace.dependencies").
func Update(data []byte, format Format, section string, resolved map[string]string) ([]byte, []string, error) {
	if section == "" {
		section = DefaultSection
	}
	switch format {
	case FormatTOML:
		return updateTOML(data, section, resolved)
	case FormatYAML:
		return updateYAML(data, section, resolved)
	case FormatJSON:
		return updateJSON(data, section, resolved)
	}
	return nil, nil, apperr.New(apperr.ErrCodeInvalidManifest, "unsupported manifest format: %q", format)
}

func sectionPath(section string) []string {
	return strings.Split(section, ".")
}

func missingSection(section string) error {
	return apperr.New(apperr.ErrCodeInvalidManifest, "section %q not found or not a table", section)
}

func updateTOML(data []byte, section string, resolved map[string]string) ([]byte, []string, error) {
	doc := make(map[string]any)
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, nil, apperr.Wrap(apperr.ErrCodeInvalidManifest, err, "manifest can't be parsed")
	}

	path := sectionPath(section)
	parent := doc
	for _, key := range path[:len(path)-1] {
		next, ok := parent[key].(map[string]any)
		if !ok {
			return nil, nil, missingSection(section)
		}
		parent = next
	}
	leaf := path[len(path)-1]
	table, ok := parent[leaf].(map[string]any)
	if !ok {
		return nil, nil, missingSection(section)
	}

	out, updated := ApplyVersions(table, resolved)
	if len(updated) == 0 {
		return data, nil, nil
	}
	parent[leaf] = map[string]any(out)

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return nil, nil, apperr.Wrap(apperr.ErrCodeInternal, err, "manifest can't be encoded")
	}
	return buf.Bytes(), updated, nil
}

// updateYAML edits the node tree so comments and key order survive.
func updateYAML(data []byte, section string, resolved map[string]string) ([]byte, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, apperr.Wrap(apperr.ErrCodeInvalidManifest, err, "manifest can't be parsed")
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil, missingSection(section)
	}

	node := root.Content[0]
	for _, key := range sectionPath(section) {
		node = mappingValue(node, key)
		if node == nil {
			return nil, nil, missingSection(section)
		}
	}
	if node.Kind != yaml.MappingNode {
		return nil, nil, missingSection(section)
	}

	var updated []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, entry := node.Content[i].Value, node.Content[i+1]
		version, ok := resolved[name]
		if !ok || entry.Kind != yaml.MappingNode {
			continue
		}
		if setYAMLVersion(entry, version) {
			updated = append(updated, name)
		}
	}
	if len(updated) == 0 {
		return data, nil, nil
	}
	slices.Sort(updated)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, nil, apperr.Wrap(apperr.ErrCodeInternal, err, "manifest can't be encoded")
	}
	if err := enc.Close(); err != nil {
		return nil, nil, apperr.Wrap(apperr.ErrCodeInternal, err, "manifest can't be encoded")
	}
	return buf.Bytes(), updated, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// setYAMLVersion sets the version scalar of entry and reports whether it
// changed.
func setYAMLVersion(entry *yaml.Node, version string) bool {
	if v := mappingValue(entry, versionKey); v != nil {
		if v.Kind == yaml.ScalarNode && v.Value == version {
			return false
		}
		*v = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: version, Style: v.Style}
		return true
	}
	entry.Content = append(entry.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: versionKey},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: version},
	)
	return true
}

// updateJSON edits the document in place so its layout survives.
func updateJSON(data []byte, section string, resolved map[string]string) ([]byte, []string, error) {
	if !gjson.ValidBytes(data) {
		return nil, nil, apperr.New(apperr.ErrCodeInvalidManifest, "manifest is not valid json")
	}

	parts := sectionPath(section)
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = escapePath(p)
	}
	base := strings.Join(escaped, ".")

	table := gjson.GetBytes(data, base)
	if !table.IsObject() {
		return nil, nil, missingSection(section)
	}

	type edit struct{ name, version string }
	var edits []edit
	table.ForEach(func(key, entry gjson.Result) bool {
		name := key.String()
		version, ok := resolved[name]
		if !ok || !entry.IsObject() {
			return true
		}
		if cur := entry.Get(versionKey); cur.Type == gjson.String && cur.String() == version {
			return true
		}
		edits = append(edits, edit{name, version})
		return true
	})
	if len(edits) == 0 {
		return data, nil, nil
	}

	out := data
	updated := make([]string, 0, len(edits))
	for _, e := range edits {
		var err error
		out, err = sjson.SetBytes(out, base+"."+escapePath(e.name)+"."+versionKey, e.version)
		if err != nil {
			return nil, nil, apperr.Wrap(apperr.ErrCodeInternal, err, "set version of %s", e.name)
		}
		updated = append(updated, e.name)
	}
	slices.Sort(updated)
	return out, updated, nil
}

// escapePath escapes the characters gjson and sjson treat as path syntax.
func escapePath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
