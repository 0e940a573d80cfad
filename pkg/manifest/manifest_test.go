package manifest

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	apperr "github.com/bjoernmichaelsen/ghdepup/pkg/errors"
)

var resolved = map[string]string{
	"hyper":   "1.2.3",
	"serde":   "9.9.9",
	"reqwest": "0.12.0",
}

func TestApplyVersions(t *testing.T) {
	table := Table{
		"hyper": map[string]any{"version": "0.14", "features": []any{"full"}},
		"serde": "1",
		"tokio": map[string]any{"version": "1", "features": []any{"rt"}},
	}

	out, updated := ApplyVersions(table, resolved)

	if !slices.Equal(updated, []string{"hyper"}) {
		t.Errorf("updated = %v, want [hyper]", updated)
	}
	hyper := out["hyper"].(map[string]any)
	if hyper["version"] != "1.2.3" {
		t.Errorf("hyper.version = %v, want 1.2.3", hyper["version"])
	}
	if !reflect.DeepEqual(hyper["features"], []any{"full"}) {
		t.Errorf("hyper.features = %v, want [full]", hyper["features"])
	}
	if out["serde"] != "1" {
		t.Errorf("scalar entry changed: %v", out["serde"])
	}
	if !reflect.DeepEqual(out["tokio"], table["tokio"]) {
		t.Errorf("unresolved entry changed: %v", out["tokio"])
	}
	if _, ok := out["reqwest"]; ok {
		t.Error("resolved name absent from table was added")
	}
	if len(out) != len(table) {
		t.Errorf("len = %d, want %d", len(out), len(table))
	}

	if v := table["hyper"].(map[string]any)["version"]; v != "0.14" {
		t.Errorf("input table modified: hyper.version = %v", v)
	}
}

func TestApplyVersionsUnchanged(t *testing.T) {
	table := Table{"hyper": map[string]any{"version": "1.2.3"}}
	_, updated := ApplyVersions(table, resolved)
	if len(updated) != 0 {
		t.Errorf("updated = %v, want none", updated)
	}

	table = Table{"hyper": map[string]any{"features": []any{"full"}}}
	out, updated := ApplyVersions(table, resolved)
	if !slices.Equal(updated, []string{"hyper"}) || out["hyper"].(map[string]any)["version"] != "1.2.3" {
		t.Errorf("entry without version: out = %v, updated = %v", out, updated)
	}
}

const cargoToml = `[package]
name = "demo"
version = "0.1.0"

[dependencies]
serde = "1"
hyper = { version = "0.14", features = ["full"] }
tokio = { version = "1", features = ["rt"] }
`

func decodeTOML(t *testing.T, data []byte) map[string]any {
	t.Helper()
	doc := make(map[string]any)
	if _, err := toml.Decode(string(data), &doc); err != nil {
		t.Fatalf("toml.Decode() error: %v\n%s", err, data)
	}
	return doc
}

func TestUpdateTOML(t *testing.T) {
	out, updated, err := Update([]byte(cargoToml), FormatTOML, "", resolved)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !slices.Equal(updated, []string{"hyper"}) {
		t.Errorf("updated = %v, want [hyper]", updated)
	}

	before := decodeTOML(t, []byte(cargoToml))
	after := decodeTOML(t, out)

	if !reflect.DeepEqual(before["package"], after["package"]) {
		t.Errorf("package changed: %v", after["package"])
	}
	deps := after["dependencies"].(map[string]any)
	hyper := deps["hyper"].(map[string]any)
	if hyper["version"] != "1.2.3" {
		t.Errorf("hyper.version = %v", hyper["version"])
	}
	if !reflect.DeepEqual(hyper["features"], []any{"full"}) {
		t.Errorf("hyper.features = %v", hyper["features"])
	}
	if deps["serde"] != "1" {
		t.Errorf("serde = %v", deps["serde"])
	}
	if !reflect.DeepEqual(deps["tokio"], before["dependencies"].(map[string]any)["tokio"]) {
		t.Errorf("tokio = %v", deps["tokio"])
	}
	if _, ok := deps["reqwest"]; ok {
		t.Error("reqwest was added")
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			t.Errorf("indented line %q", line)
		}
	}

	again, _, err := Update([]byte(cargoToml), FormatTOML, "", resolved)
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(out) {
		t.Error("repeated runs differ")
	}

	stable, updated, err := Update(out, FormatTOML, "", resolved)
	if err != nil {
		t.Fatal(err)
	}
	if len(updated) != 0 || string(stable) != string(out) {
		t.Errorf("second pass changed output, updated = %v", updated)
	}
}

func TestUpdateTOMLNestedSection(t *testing.T) {
	data := []byte("[workspace.dependencies]\nhyper = { version = \"0.14\" }\n")
	out, updated, err := Update(data, FormatTOML, "workspace.dependencies", resolved)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !slices.Equal(updated, []string{"hyper"}) {
		t.Errorf("updated = %v", updated)
	}
	doc := decodeTOML(t, out)
	ws := doc["workspace"].(map[string]any)["dependencies"].(map[string]any)
	if v := ws["hyper"].(map[string]any)["version"]; v != "1.2.3" {
		t.Errorf("hyper.version = %v", v)
	}
}

const composeYAML = `# tracked deps
dependencies:
  hyper:
    version: "0.14"
    features: [full]
  serde: "1"
  tokio:
    version: "1"
`

func TestUpdateYAML(t *testing.T) {
	out, updated, err := Update([]byte(composeYAML), FormatYAML, "dependencies", resolved)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !slices.Equal(updated, []string{"hyper"}) {
		t.Errorf("updated = %v, want [hyper]", updated)
	}
	if !strings.Contains(string(out), "# tracked deps") {
		t.Errorf("comment lost:\n%s", out)
	}

	var doc struct {
		Dependencies map[string]any `yaml:"dependencies"`
	}
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("yaml.Unmarshal() error: %v", err)
	}
	hyper := doc.Dependencies["hyper"].(map[string]any)
	if hyper["version"] != "1.2.3" {
		t.Errorf("hyper.version = %v", hyper["version"])
	}
	if !reflect.DeepEqual(hyper["features"], []any{"full"}) {
		t.Errorf("hyper.features = %v", hyper["features"])
	}
	if doc.Dependencies["serde"] != "1" {
		t.Errorf("serde = %v", doc.Dependencies["serde"])
	}
	if v := doc.Dependencies["tokio"].(map[string]any)["version"]; v != "1" {
		t.Errorf("tokio.version = %v", v)
	}
	if _, ok := doc.Dependencies["reqwest"]; ok {
		t.Error("reqwest was added")
	}
}

const packageJSON = `{
  "name": "demo",
  "dependencies": {
    "hyper": {"version": "0.14", "features": ["full"]},
    "serde": "1"
  }
}
`

func TestUpdateJSON(t *testing.T) {
	out, updated, err := Update([]byte(packageJSON), FormatJSON, "dependencies", resolved)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if !slices.Equal(updated, []string{"hyper"}) {
		t.Errorf("updated = %v, want [hyper]", updated)
	}
	if got := gjson.GetBytes(out, "dependencies.hyper.version").String(); got != "1.2.3" {
		t.Errorf("hyper.version = %q", got)
	}
	if got := gjson.GetBytes(out, "dependencies.hyper.features.0").String(); got != "full" {
		t.Errorf("hyper.features = %q", got)
	}
	if !strings.Contains(string(out), `"serde": "1"`) {
		t.Errorf("scalar entry changed:\n%s", out)
	}
	if gjson.GetBytes(out, "dependencies.reqwest").Exists() {
		t.Error("reqwest was added")
	}
	if !strings.HasPrefix(string(out), "{\n  \"name\": \"demo\",\n") {
		t.Errorf("layout lost:\n%s", out)
	}
}

func TestUpdateErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  Format
		section string
	}{
		{"toml syntax", "[dependencies\n", FormatTOML, ""},
		{"toml missing section", "[package]\nname = \"x\"\n", FormatTOML, ""},
		{"toml scalar section", "dependencies = \"x\"\n", FormatTOML, ""},
		{"yaml missing section", "name: x\n", FormatYAML, ""},
		{"yaml empty", "", FormatYAML, ""},
		{"json invalid", "{", FormatJSON, ""},
		{"json missing section", `{"name": "x"}`, FormatJSON, ""},
		{"unknown format", "", Format("ini"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Update([]byte(tt.data), tt.format, tt.section, resolved)
			if !apperr.Is(err, apperr.ErrCodeInvalidManifest) {
				t.Errorf("Update() error = %v, want INVALID_MANIFEST", err)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"Cargo.toml", FormatTOML, true},
		{"deps.YAML", FormatYAML, true},
		{"deps.yml", FormatYAML, true},
		{"package.json", FormatJSON, true},
		{"versions.env", "", false},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, %v", tt.path, got, err)
		}
	}
}

func TestUpdateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.toml")
	if err := os.WriteFile(path, []byte(cargoToml), 0o600); err != nil {
		t.Fatal(err)
	}

	updated, err := UpdateFile(path, "", resolved)
	if err != nil {
		t.Fatalf("UpdateFile() error: %v", err)
	}
	if !slices.Equal(updated, []string{"hyper"}) {
		t.Errorf("updated = %v", updated)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	deps := decodeTOML(t, data)["dependencies"].(map[string]any)
	if v := deps["hyper"].(map[string]any)["version"]; v != "1.2.3" {
		t.Errorf("hyper.version = %v", v)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	e, err := Prepare(path, "", resolved)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if e.Changed || len(e.Updated) != 0 {
		t.Errorf("second Prepare() = changed %v, updated %v", e.Changed, e.Updated)
	}

	_, err = UpdateFile(filepath.Join(dir, "missing.toml"), "", resolved)
	if !apperr.Is(err, apperr.ErrCodeReadConfig) {
		t.Errorf("missing file error = %v, want READ_CONFIG", err)
	}
}

func TestWriteAllFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "Cargo.toml")
	sub := filepath.Join(dir, "sub")
	second := filepath.Join(sub, "Cargo.toml")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{first, second} {
		if err := os.WriteFile(path, []byte(cargoToml), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	a, err := Prepare(first, "", resolved)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Prepare(second, "", resolved)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(sub); err != nil {
		t.Fatal(err)
	}

	written, err := WriteAll([]*Edit{a, b})
	if !apperr.Is(err, apperr.ErrCodeWriteFailed) {
		t.Fatalf("WriteAll() error = %v, want WRITE_FAILED", err)
	}
	if len(written) != 0 {
		t.Errorf("written = %v, want none", written)
	}
	data, _ := os.ReadFile(first)
	if string(data) != cargoToml {
		t.Errorf("first manifest was rewritten:\n%s", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("leftover files in %s: %v", dir, entries)
	}
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "versions.env")
	if err := os.WriteFile(out, []byte("old\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cargo := filepath.Join(dir, "Cargo.toml")
	if err := os.WriteFile(cargo, []byte(cargoToml), 0o644); err != nil {
		t.Fatal(err)
	}
	e, err := Prepare(cargo, "", resolved)
	if err != nil {
		t.Fatal(err)
	}
	fresh := filepath.Join(dir, "new.env")

	written, err := WriteAll([]*Edit{NewEdit(out, []byte("new\n")), e, NewEdit(fresh, []byte("x\n"))})
	if err != nil {
		t.Fatalf("WriteAll() error: %v", err)
	}
	if !slices.Equal(written, []string{out, cargo, fresh}) {
		t.Errorf("written = %v", written)
	}
	if data, _ := os.ReadFile(out); string(data) != "new\n" {
		t.Errorf("output = %q", data)
	}
	if info, _ := os.Stat(out); info.Mode().Perm() != 0o600 {
		t.Errorf("output mode = %v, want 0600", info.Mode().Perm())
	}
	if info, _ := os.Stat(fresh); info.Mode().Perm() != 0o644 {
		t.Errorf("new file mode = %v, want 0644", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 3 {
		t.Errorf("files in %s: %v", dir, entries)
	}
}
