package manager

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"mercator-hq/saturn/pkg/policy"
)

// LoaderConfig contains configuration for the policy loader.
type LoaderConfig struct {
	// MaxFileSize is the maximum policy file size in bytes (default: 10MB).
	MaxFileSize int64

	// AllowedExtensions is the list of allowed file extensions
	// (default: [".yaml", ".yml"]).
	AllowedExtensions []string

	// SkipHidden controls whether to skip hidden files and directories
	// (default: true).
	SkipHidden bool
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		MaxFileSize:       10 * 1024 * 1024,
		AllowedExtensions: []string{".yaml", ".yml"},
		SkipHidden:        true,
	}
}

// Loader loads policy documents from the file system. It supports
// single files and directory trees.
type Loader struct {
	config *LoaderConfig
}

// NewLoader creates a new policy loader with the given configuration.
func NewLoader(config *LoaderConfig) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	return &Loader{config: config}
}

// yamlRule mirrors policy.Rule for decoding. Enabled is a pointer so an
// omitted field defaults to true instead of false.
type yamlRule struct {
	ID             string           `yaml:"id"`
	Name           string           `yaml:"name"`
	Description    string           `yaml:"description"`
	Enabled        *bool            `yaml:"enabled"`
	Severity       policy.Severity  `yaml:"severity"`
	Kind           policy.Kind      `yaml:"kind"`
	Patterns       []string         `yaml:"patterns"`
	Keywords       []string         `yaml:"keywords"`
	Threshold      int              `yaml:"threshold"`
	MigrationPaths []string         `yaml:"migration_paths"`
	Pattern        string           `yaml:"pattern"`
	Mode           policy.PathMode  `yaml:"mode"`
	Scope          policy.LineScope `yaml:"scope"`
}

type yamlPolicy struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Version     string     `yaml:"version"`
	Rules       []yamlRule `yaml:"rules"`
}

// Parse decodes a single YAML policy document and checks its required
// structure: id, name, version and a rules sequence must all be
// present. Rules omitting the enabled field default to enabled.
func Parse(data []byte) (*policy.Policy, error) {
	var doc yamlPolicy
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Message: "YAML parsing failed", Cause: err}
	}

	if doc.ID == "" {
		return nil, &ParseError{Message: "missing policy id"}
	}
	if doc.Name == "" {
		return nil, &ParseError{Message: "missing policy name"}
	}
	if doc.Version == "" {
		return nil, &ParseError{Message: "missing policy version"}
	}
	if doc.Rules == nil {
		return nil, &ParseError{Message: "missing rules sequence"}
	}

	p := &policy.Policy{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		Version:     doc.Version,
		Rules:       make([]policy.Rule, 0, len(doc.Rules)),
	}
	for _, r := range doc.Rules {
		enabled := true
		if r.Enabled != nil {
			enabled = *r.Enabled
		}
		p.Rules = append(p.Rules, policy.Rule{
			ID:             r.ID,
			Name:           r.Name,
			Description:    r.Description,
			Enabled:        enabled,
			Severity:       r.Severity,
			Kind:           r.Kind,
			Patterns:       r.Patterns,
			Keywords:       r.Keywords,
			Threshold:      r.Threshold,
			MigrationPaths: r.MigrationPaths,
			Pattern:        r.Pattern,
			Mode:           r.Mode,
			Scope:          r.Scope,
		})
	}

	return p, nil
}

// LoadFromFile loads a single policy file from the given path.
// It performs file size validation, UTF-8 validation, and YAML parsing.
func (l *Loader) LoadFromFile(path string) (*policy.Policy, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{
				FilePath: path,
				Message:  "file not found",
				Cause:    err,
			}
		}
		if os.IsPermission(err) {
			return nil, &LoadError{
				FilePath: path,
				Message:  "permission denied",
				Cause:    err,
			}
		}
		return nil, &LoadError{
			FilePath: path,
			Message:  "failed to access file",
			Cause:    err,
		}
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, &LoadError{
			FilePath: path,
			Message:  "not a regular file",
		}
	}

	if fileInfo.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", fileInfo.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			FilePath: path,
			Message:  "failed to read file",
			Cause:    err,
		}
	}

	if !utf8.Valid(data) {
		return nil, &LoadError{
			FilePath: path,
			Message:  "file contains invalid UTF-8 encoding",
		}
	}

	p, err := Parse(data)
	if err != nil {
		var parseErr *ParseError
		if pe, ok := err.(*ParseError); ok {
			parseErr = pe
		} else {
			parseErr = &ParseError{Message: "parsing failed", Cause: err}
		}
		parseErr.FilePath = path
		return nil, parseErr
	}

	return p, nil
}

// LoadFromDirectory loads all policy files from the given directory
// recursively, in lexical walk order. It returns the successfully
// loaded policies and an ErrorList covering any files that failed.
func (l *Loader) LoadFromDirectory(dir string) ([]*policy.Policy, error) {
	fileInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{
				FilePath: dir,
				Message:  "directory not found",
				Cause:    err,
			}
		}
		return nil, &LoadError{
			FilePath: dir,
			Message:  "failed to access directory",
			Cause:    err,
		}
	}

	if !fileInfo.IsDir() {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "not a directory",
		}
	}

	policyFiles, err := l.collectPolicyFiles(dir)
	if err != nil {
		return nil, err
	}

	if len(policyFiles) == 0 {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "no policy files found in directory",
		}
	}

	var policies []*policy.Policy
	errList := &ErrorList{}

	for _, filePath := range policyFiles {
		p, err := l.LoadFromFile(filePath)
		if err != nil {
			errList.Add(err)
			continue
		}
		policies = append(policies, p)
	}

	if len(policies) == 0 && errList.HasErrors() {
		return nil, errList
	}
	if errList.HasErrors() {
		return policies, errList
	}

	return policies, nil
}

// collectPolicyFiles collects all policy file paths in the given
// directory, filtered by extension.
func (l *Loader) collectPolicyFiles(dir string) ([]string, error) {
	var policyFiles []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if l.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !l.hasValidExtension(path) {
			return nil
		}

		policyFiles = append(policyFiles, path)
		return nil
	})

	if err != nil {
		return nil, &LoadError{
			FilePath: dir,
			Message:  "failed to walk directory",
			Cause:    err,
		}
	}

	return policyFiles, nil
}

// hasValidExtension checks if the file has a valid policy file extension.
func (l *Loader) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, validExt := range l.config.AllowedExtensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}
