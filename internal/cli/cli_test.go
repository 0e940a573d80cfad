package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/bjoernmichaelsen/ghdepup/pkg/cache"
	apperr "github.com/bjoernmichaelsen/ghdepup/pkg/errors"
)

const testToken = "secret-token"

// newTestCLI returns a CLI writing to a buffer with a fixed environment.
func newTestCLI(env map[string]string) (*CLI, *bytes.Buffer) {
	var out bytes.Buffer
	c := New(io.Discard, log.InfoLevel)
	c.SetOutput(&out)
	c.getenv = func(k string) string { return env[k] }
	return c, &out
}

func run(c *CLI, args ...string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

// fakeGitHub serves tag lists for a fixed set of projects.
func fakeGitHub(t *testing.T, tags map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		project := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/repos/"), "/tags")
		body, ok := tags[project]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func hyperGitHub(t *testing.T) *httptest.Server {
	return fakeGitHub(t, map[string]string{
		"hyperium/hyper": `[{"name":"v1.0.0"},{"name":"v0.14.28"},{"name":"v0.14.26"}]`,
	})
}

const hyperConfig = `HYPER_GH_PROJECT="hyperium/hyper"
HYPER_GH_TAG_PREFIX="v"
HYPER_GH_VERSION_REQ=">=0.14, <1"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// =============================================================================
// Credentials and Cache
// =============================================================================

func TestReadCredential(t *testing.T) {
	dir := t.TempDir()
	withNewline := writeFile(t, dir, "token", "file-token\n")
	withCRLF := writeFile(t, dir, "token-crlf", "file-token\r\n")
	empty := writeFile(t, dir, "empty", "\n")

	tests := []struct {
		name string
		file string
		env  string
		want string
		code apperr.Code
	}{
		{name: "env", env: "env-token", want: "env-token"},
		{name: "env trailing newline", env: "env-token\n", want: "env-token"},
		{name: "file", file: withNewline, env: "ignored", want: "file-token"},
		{name: "file crlf", file: withCRLF, want: "file-token"},
		{name: "missing", code: apperr.ErrCodeMissingCredential},
		{name: "empty file", file: empty, env: "ignored", code: apperr.ErrCodeMissingCredential},
		{name: "unreadable file", file: filepath.Join(dir, "nope"), code: apperr.ErrCodeReadConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string {
				if k == tokenEnv {
					return tt.env
				}
				return ""
			}
			got, err := readCredential(tt.file, getenv)
			if tt.code != "" {
				if !apperr.Is(err, tt.code) {
					t.Errorf("readCredential() error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("readCredential() = %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestOpenCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c, _ := newTestCLI(nil)
	ctx := context.Background()

	store, err := c.openCache(ctx, cacheNone, "")
	if _, ok := store.(*cache.NullCache); !ok || err != nil {
		t.Errorf("openCache(none) = %T, %v", store, err)
	}

	store, err = c.openCache(ctx, cacheFile, "")
	if fc, ok := store.(*cache.FileCache); !ok || err != nil {
		t.Errorf("openCache(file) = %T, %v", store, err)
	} else if filepath.Base(fc.Dir()) != appName {
		t.Errorf("file cache dir = %q", fc.Dir())
	}

	if _, err := c.openCache(ctx, cacheRedis, ""); !apperr.Is(err, apperr.ErrCodeInvalidConfig) {
		t.Errorf("openCache(redis) without url error = %v", err)
	}
	if _, err := c.openCache(ctx, "memcached", ""); !apperr.Is(err, apperr.ErrCodeInvalidConfig) {
		t.Errorf("openCache(memcached) error = %v", err)
	}
}

func TestRedisURLFromEnv(t *testing.T) {
	c, _ := newTestCLI(map[string]string{redisURLEnv: "redis://env:6379/0"})
	if got := c.redisURL(""); got != "redis://env:6379/0" {
		t.Errorf("redisURL() = %q", got)
	}
	if got := c.redisURL("redis://flag:6379/1"); got != "redis://flag:6379/1" {
		t.Errorf("redisURL(flag) = %q", got)
	}
}

// =============================================================================
// Commands
// =============================================================================

func TestUpdateCommand(t *testing.T) {
	srv := hyperGitHub(t)
	dir := t.TempDir()
	cfg := writeFile(t, dir, "deps.env", hyperConfig)
	out := writeFile(t, dir, "versions.env", `HYPER_VERSION="0.14.26"`+"\n")
	cargo := writeFile(t, dir, "Cargo.toml", "[dependencies]\nhyper = { version = \"0.14.26\" }\n")

	c, stdout := newTestCLI(map[string]string{tokenEnv: testToken})
	err := run(c, "update", cfg, out, "--api-url", srv.URL, "--cache", "none", "--target", cargo)
	if err != nil {
		t.Fatalf("update error: %v", err)
	}

	data, _ := os.ReadFile(out)
	if string(data) != "HYPER_VERSION=\"0.14.28\"\n" {
		t.Errorf("output = %q", data)
	}
	manifest, _ := os.ReadFile(cargo)
	if !strings.Contains(string(manifest), `"0.14.28"`) {
		t.Errorf("manifest = %s", manifest)
	}
	if !strings.Contains(stdout.String(), "Updated 2 files") {
		t.Errorf("stdout = %s", stdout)
	}
}

func TestUpdateCommandSeesNewReleases(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var mu sync.Mutex
	body := `[{"name":"v0.14.26"}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		io.WriteString(w, body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := writeFile(t, dir, "deps.env", hyperConfig)
	out := writeFile(t, dir, "versions.env", "")

	tests := []struct {
		tags string
		want string
	}{
		{`[{"name":"v0.14.26"}]`, "HYPER_VERSION=\"0.14.26\"\n"},
		{`[{"name":"v0.14.28"},{"name":"v0.14.26"}]`, "HYPER_VERSION=\"0.14.28\"\n"},
	}
	for i, tt := range tests {
		mu.Lock()
		body = tt.tags
		mu.Unlock()

		c, _ := newTestCLI(map[string]string{tokenEnv: testToken})
		if err := run(c, "update", cfg, out, "--api-url", srv.URL); err != nil {
			t.Fatalf("run %d: update error: %v", i+1, err)
		}
		data, _ := os.ReadFile(out)
		if string(data) != tt.want {
			t.Errorf("run %d: output = %q, want %q", i+1, data, tt.want)
		}
	}
}

func TestUpdateCommandDryRunDebug(t *testing.T) {
	srv := hyperGitHub(t)
	dir := t.TempDir()
	cfg := writeFile(t, dir, "deps.env", hyperConfig)
	before := `HYPER_VERSION="0.14.26"` + "\n"
	out := writeFile(t, dir, "versions.env", before)

	c, stdout := newTestCLI(map[string]string{tokenEnv: testToken})
	if err := run(c, "update", cfg, out, "--api-url", srv.URL, "--cache", "none", "--dry-run", "--debug"); err != nil {
		t.Fatalf("update error: %v", err)
	}
	if data, _ := os.ReadFile(out); string(data) != before {
		t.Errorf("dry run wrote %q", data)
	}
	if !strings.Contains(stdout.String(), "# with tags: v1.0.0, v0.14.28, v0.14.26") {
		t.Errorf("debug output missing tags:\n%s", stdout)
	}
}

func TestUpdateCommandErrors(t *testing.T) {
	srv := fakeGitHub(t, map[string]string{})
	dir := t.TempDir()
	cfg := writeFile(t, dir, "deps.env", hyperConfig)
	before := `HYPER_VERSION="0.14.26"` + "\n"
	out := writeFile(t, dir, "versions.env", before)

	tests := []struct {
		name string
		env  map[string]string
		args []string
		code apperr.Code
	}{
		{"missing token", nil, []string{"update", cfg, out, "--api-url", srv.URL, "--cache", "none"}, apperr.ErrCodeMissingCredential},
		{"unknown project", map[string]string{tokenEnv: testToken}, []string{"update", cfg, out, "--api-url", srv.URL, "--cache", "none"}, apperr.ErrCodeFetchFailed},
		{"bad cache", map[string]string{tokenEnv: testToken}, []string{"update", cfg, out, "--cache", "tape"}, apperr.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCLI(tt.env)
			if err := run(c, tt.args...); !apperr.Is(err, tt.code) {
				t.Errorf("update error = %v, want %s", err, tt.code)
			}
			if data, _ := os.ReadFile(out); string(data) != before {
				t.Errorf("failed update wrote %q", data)
			}
		})
	}
}

func TestUpdateCommandNeedsTwoFiles(t *testing.T) {
	c, _ := newTestCLI(map[string]string{tokenEnv: testToken})
	if err := run(c, "update", "only.env"); err == nil {
		t.Error("update with one file should fail")
	}
}

func TestResolveCommandJSON(t *testing.T) {
	srv := hyperGitHub(t)
	cfg := writeFile(t, t.TempDir(), "deps.env", hyperConfig)

	c, stdout := newTestCLI(map[string]string{tokenEnv: testToken})
	if err := run(c, "resolve", cfg, "--api-url", srv.URL, "--cache", "none", "--json"); err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("resolve --json output is not JSON: %v\n%s", err, stdout)
	}
	if len(got) != 1 || got[0]["name"] != "hyper" || got[0]["best_version"] != "0.14.28" {
		t.Errorf("resolve --json = %v", got)
	}
}

func TestResolveCommandTable(t *testing.T) {
	srv := hyperGitHub(t)
	cfg := writeFile(t, t.TempDir(), "deps.env", hyperConfig)

	c, stdout := newTestCLI(map[string]string{tokenEnv: testToken})
	if err := run(c, "resolve", cfg, "--api-url", srv.URL, "--cache", "none"); err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	for _, want := range []string{"hyper", "hyperium/hyper", "0.14.28", "1 dependencies"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("resolve output missing %q:\n%s", want, stdout)
		}
	}
}

func TestSyncCommand(t *testing.T) {
	dir := t.TempDir()
	crates := writeFile(t, dir, "crates.env", "HYPER_CRATE_NAME=\"hyper\"\n")
	versions := writeFile(t, dir, "versions.env", "HYPER_VERSION=\"1.4.1\"\n")
	cargo := writeFile(t, dir, "Cargo.toml", "[dependencies]\nhyper = { version = \"0.14\" }\n")

	c, stdout := newTestCLI(nil)
	if err := run(c, "sync", crates, versions, cargo); err != nil {
		t.Fatalf("sync error: %v", err)
	}
	if data, _ := os.ReadFile(cargo); !strings.Contains(string(data), `"1.4.1"`) {
		t.Errorf("manifest = %s", data)
	}
	if !strings.Contains(stdout.String(), "Updated 1 manifests") {
		t.Errorf("stdout = %s", stdout)
	}

	stdout.Reset()
	if err := run(c, "sync", crates, versions, cargo); err != nil {
		t.Fatalf("second sync error: %v", err)
	}
	if !strings.Contains(stdout.String(), "All manifests up to date") {
		t.Errorf("second sync stdout = %s", stdout)
	}
}

func TestCacheCommands(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	want := filepath.Join(xdg, appName)

	c, stdout := newTestCLI(nil)
	if err := run(c, "cache", "path"); err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != want {
		t.Errorf("cache path = %q, want %q", stdout, want)
	}

	fc, err := cache.NewFileCache(want)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	stdout.Reset()
	if err := run(c, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if _, hit, _ := fc.Get(context.Background(), "k"); hit {
		t.Error("cache clear left entries behind")
	}
	if !strings.Contains(stdout.String(), "Cleared tag cache") {
		t.Errorf("cache clear stdout = %s", stdout)
	}
}

func TestCompletionCommand(t *testing.T) {
	c, stdout := newTestCLI(nil)
	if err := run(c, "completion", "bash"); err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(stdout.String(), "ghdepup") {
		t.Error("bash completion should mention the command name")
	}
	if err := run(c, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestVerboseFlag(t *testing.T) {
	c, _ := newTestCLI(nil)
	if err := run(c, "cache", "path", "--verbose"); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}
