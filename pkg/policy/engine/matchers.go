package engine

import (
	"fmt"
	"regexp"
	"strings"

	"mercator-hq/saturn/pkg/diff"
	"mercator-hq/saturn/pkg/policy"
)

// previewLimit bounds how much matched content a violation message may
// carry. Messages never expose a full leaked secret.
const previewLimit = 24

// matcher is a compiled, kind-specific match condition. Each matcher
// produces at most one violation per file; multi-match kinds summarize
// occurrence counts in the message instead of emitting one violation per
// occurrence, which bounds violation volume on pathological inputs.
type matcher interface {
	match(f *diff.File) (bool, string)
}

// compileRule builds the matcher for a rule. It returns (nil, nil) for
// unknown kinds and an error when a configured pattern does not compile;
// both cases make the rule a no-op without affecting other rules.
func compileRule(rule policy.Rule) (matcher, error) {
	switch rule.Kind {
	case policy.KindSensitiveFile:
		patterns, err := compileAll(rule.Patterns, true)
		if err != nil {
			return nil, err
		}
		return &sensitiveFileMatcher{patterns: patterns}, nil

	case policy.KindLargeChange:
		return &largeChangeMatcher{threshold: rule.Threshold}, nil

	case policy.KindSuspiciousKeywords:
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			keywords = append(keywords, strings.ToLower(kw))
		}
		return &keywordMatcher{keywords: keywords}, nil

	case policy.KindPotentialSecret:
		patterns, err := compileAll(rule.Patterns, false)
		if err != nil {
			return nil, err
		}
		return &secretMatcher{patterns: patterns}, nil

	case policy.KindLargeMigration:
		paths, err := compileAll(rule.MigrationPaths, true)
		if err != nil {
			return nil, err
		}
		return &migrationMatcher{threshold: rule.Threshold, paths: paths}, nil

	case policy.KindPathPattern:
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, err
		}
		return &pathPatternMatcher{pattern: re, mode: rule.Mode}, nil

	case policy.KindLinePattern:
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, err
		}
		return &linePatternMatcher{pattern: re, scope: rule.Scope}, nil

	case policy.KindFileSize:
		return &fileSizeMatcher{threshold: rule.Threshold}, nil

	default:
		// Unknown kinds are no-ops, preserving forward compatibility with
		// policies written for newer builds.
		return nil, nil
	}
}

// compileAll compiles a pattern list, optionally case-insensitive.
func compileAll(patterns []string, caseInsensitive bool) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if caseInsensitive && !strings.HasPrefix(p, "(?i)") {
			p = "(?i)" + p
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// sensitiveFileMatcher matches the file path against path regexes.
type sensitiveFileMatcher struct {
	patterns []*regexp.Regexp
}

func (m *sensitiveFileMatcher) match(f *diff.File) (bool, string) {
	for _, re := range m.patterns {
		if re.MatchString(f.Path) {
			return true, fmt.Sprintf("path %q matches sensitive pattern %q", f.Path, re.String())
		}
	}
	return false, ""
}

// largeChangeMatcher matches files whose changed line count exceeds the
// threshold.
type largeChangeMatcher struct {
	threshold int
}

func (m *largeChangeMatcher) match(f *diff.File) (bool, string) {
	total := f.TotalChanged()
	if total <= m.threshold {
		return false, ""
	}
	return true, fmt.Sprintf("%d changed lines (%d added, %d removed) exceed threshold %d",
		total, f.AddedLines, f.RemovedLines, m.threshold)
}

// keywordMatcher matches literal substrings in added-line content,
// case-insensitive.
type keywordMatcher struct {
	keywords []string
}

func (m *keywordMatcher) match(f *diff.File) (bool, string) {
	found := make([]string, 0, len(m.keywords))
	occurrences := 0

	for _, line := range f.AddedContent() {
		lower := strings.ToLower(line)
		for _, kw := range m.keywords {
			if n := strings.Count(lower, kw); n > 0 {
				occurrences += n
				if !contains(found, kw) {
					found = append(found, kw)
				}
			}
		}
	}

	if occurrences == 0 {
		return false, ""
	}
	return true, fmt.Sprintf("suspicious keywords in added lines: %s (%d occurrence(s))",
		strings.Join(found, ", "), occurrences)
}

// secretMatcher matches content regexes against added-line content.
type secretMatcher struct {
	patterns []*regexp.Regexp
}

func (m *secretMatcher) match(f *diff.File) (bool, string) {
	matches := 0
	first := ""

	for _, line := range f.AddedContent() {
		for _, re := range m.patterns {
			hits := re.FindAllString(line, -1)
			if len(hits) == 0 {
				continue
			}
			matches += len(hits)
			if first == "" {
				first = hits[0]
			}
		}
	}

	if matches == 0 {
		return false, ""
	}
	return true, fmt.Sprintf("%d potential secret(s) in added lines (first match: %q)",
		matches, preview(first))
}

// migrationMatcher matches migration-path files whose total changed lines
// exceed the threshold.
type migrationMatcher struct {
	threshold int
	paths     []*regexp.Regexp
}

func (m *migrationMatcher) match(f *diff.File) (bool, string) {
	onMigrationPath := false
	for _, re := range m.paths {
		if re.MatchString(f.Path) {
			onMigrationPath = true
			break
		}
	}
	if !onMigrationPath {
		return false, ""
	}

	total := f.TotalChanged()
	if total <= m.threshold {
		return false, ""
	}
	return true, fmt.Sprintf("migration changes %d lines, exceeding threshold %d", total, m.threshold)
}

// pathPatternMatcher matches the file path against a single regex in
// include or exclude mode.
type pathPatternMatcher struct {
	pattern *regexp.Regexp
	mode    policy.PathMode
}

func (m *pathPatternMatcher) match(f *diff.File) (bool, string) {
	matched := m.pattern.MatchString(f.Path)

	switch m.mode {
	case policy.PathModeExclude:
		if !matched {
			return true, fmt.Sprintf("path %q does not match required pattern %q", f.Path, m.pattern.String())
		}
	default:
		if matched {
			return true, fmt.Sprintf("path %q matches pattern %q", f.Path, m.pattern.String())
		}
	}
	return false, ""
}

// linePatternMatcher matches a regex against lines in the configured scope.
type linePatternMatcher struct {
	pattern *regexp.Regexp
	scope   policy.LineScope
}

func (m *linePatternMatcher) match(f *diff.File) (bool, string) {
	var lines []string
	switch m.scope {
	case policy.ScopeRemoved:
		lines = f.RemovedContent()
	case policy.ScopeBoth:
		lines = append(f.AddedContent(), f.RemovedContent()...)
	default:
		lines = f.AddedContent()
	}

	hits := 0
	first := ""
	for _, line := range lines {
		if !m.pattern.MatchString(line) {
			continue
		}
		hits++
		if first == "" {
			first = m.pattern.FindString(line)
		}
	}

	if hits == 0 {
		return false, ""
	}
	return true, fmt.Sprintf("pattern %q matched %d line(s) (first match: %q)",
		m.pattern.String(), hits, preview(first))
}

// fileSizeMatcher matches files whose added content exceeds a byte
// threshold. Each added line contributes its content length plus one for
// the newline.
type fileSizeMatcher struct {
	threshold int
}

func (m *fileSizeMatcher) match(f *diff.File) (bool, string) {
	bytes := 0
	for _, line := range f.AddedContent() {
		bytes += len(line) + 1
	}

	if bytes <= m.threshold {
		return false, ""
	}
	return true, fmt.Sprintf("added content is %d bytes, exceeding threshold %d", bytes, m.threshold)
}

// preview truncates matched content so messages never leak full secrets.
func preview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit] + "..."
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
