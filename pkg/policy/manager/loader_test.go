package manager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mercator-hq/saturn/pkg/policy"
)

const validPolicyYAML = `
id: team-policy
name: Team policy
version: 1.0.0
rules:
  - id: no-env-files
    name: Block env files
    severity: block
    kind: sensitive-file
    patterns:
      - '(^|/)\.env$'
  - id: big-changes
    name: Warn on big changes
    enabled: false
    severity: warn
    kind: large-change
    threshold: 500
`

// TestParse tests document decoding and the enabled default.
func TestParse(t *testing.T) {
	p, err := Parse([]byte(validPolicyYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if p.ID != "team-policy" || p.Version != "1.0.0" {
		t.Errorf("parsed metadata = %+v", p)
	}
	if len(p.Rules) != 2 {
		t.Fatalf("len(Rules) = %d, want 2", len(p.Rules))
	}

	// Omitted enabled defaults to true; explicit false is kept.
	if !p.Rules[0].Enabled {
		t.Error("rule with omitted enabled field parsed as disabled")
	}
	if p.Rules[1].Enabled {
		t.Error("rule with enabled: false parsed as enabled")
	}

	if p.Rules[0].Kind != policy.KindSensitiveFile || p.Rules[0].Severity != policy.SeverityBlock {
		t.Errorf("Rules[0] = %+v", p.Rules[0])
	}
	if p.Rules[1].Threshold != 500 {
		t.Errorf("Rules[1].Threshold = %d, want 500", p.Rules[1].Threshold)
	}
}

// TestParse_StructuralErrors tests that missing required fields fail.
func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "{{{"},
		{"missing id", "name: P\nversion: 1.0.0\nrules: []\n"},
		{"missing name", "id: p\nversion: 1.0.0\nrules: []\n"},
		{"missing version", "id: p\nname: P\nrules: []\n"},
		{"missing rules", "id: p\nname: P\nversion: 1.0.0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("Parse() error = nil, want structural error")
			}
		})
	}
}

// TestParse_EmptyRulesSequence tests that an explicit empty rules
// sequence is valid.
func TestParse_EmptyRulesSequence(t *testing.T) {
	p, err := Parse([]byte("id: p\nname: P\nversion: 1.0.0\nrules: []\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(p.Rules) != 0 {
		t.Errorf("len(Rules) = %d, want 0", len(p.Rules))
	}
}

// TestLoadFromFile tests loading a policy from disk.
func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte(validPolicyYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(nil)
	p, err := loader.LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if p.ID != "team-policy" {
		t.Errorf("loaded policy id = %q, want team-policy", p.ID)
	}
}

// TestLoadFromFile_Errors tests missing files, oversized files and
// invalid UTF-8.
func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(nil)

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.LoadFromFile(filepath.Join(dir, "nope.yaml"))
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			t.Fatalf("error = %v, want *LoadError", err)
		}
	})

	t.Run("oversized file", func(t *testing.T) {
		small := NewLoader(&LoaderConfig{
			MaxFileSize:       8,
			AllowedExtensions: []string{".yaml"},
		})
		path := filepath.Join(dir, "big.yaml")
		if err := os.WriteFile(path, []byte(validPolicyYAML), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := small.LoadFromFile(path); err == nil {
			t.Error("LoadFromFile() error = nil, want size error")
		}
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		path := filepath.Join(dir, "binary.yaml")
		if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := loader.LoadFromFile(path); err == nil {
			t.Error("LoadFromFile() error = nil, want encoding error")
		}
	})

	t.Run("parse error carries path", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		if err := os.WriteFile(path, []byte("{{{"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := loader.LoadFromFile(path)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("error = %v, want *ParseError", err)
		}
		if parseErr.FilePath != path {
			t.Errorf("ParseError.FilePath = %q, want %q", parseErr.FilePath, path)
		}
	})
}

// TestLoadFromDirectory tests recursive loading with partial failures.
func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "team")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(dir, "base.yaml"):   validPolicyYAML,
		filepath.Join(sub, "team.yml"):    "id: team\nname: Team\nversion: 1.0.0\nrules: []\n",
		filepath.Join(dir, "broken.yaml"): "{{{",
		filepath.Join(dir, "notes.txt"):   "not a policy",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	loader := NewLoader(nil)
	policies, err := loader.LoadFromDirectory(dir)

	if len(policies) != 2 {
		t.Errorf("loaded %d policies, want 2", len(policies))
	}

	// The broken file surfaces as a partial error.
	var errList *ErrorList
	if !errors.As(err, &errList) {
		t.Fatalf("error = %v, want *ErrorList", err)
	}
	if len(errList.Errors) != 1 {
		t.Errorf("len(ErrorList.Errors) = %d, want 1", len(errList.Errors))
	}
}

// TestLoadFromDirectory_Empty tests that a directory with no policy
// files is an error.
func TestLoadFromDirectory_Empty(t *testing.T) {
	loader := NewLoader(nil)
	if _, err := loader.LoadFromDirectory(t.TempDir()); err == nil {
		t.Error("LoadFromDirectory() error = nil, want no-files error")
	}
}
