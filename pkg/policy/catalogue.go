package policy

// DefaultPolicyID is the id of the built-in policy.
const DefaultPolicyID = "saturn-default"

// DefaultPolicy returns the built-in rule catalogue with one
// production-tuned rule per kind.
//
// The returned document is a fresh copy on every call: it is a replaceable
// configuration value owned by the caller, not shared state, and multiple
// policies may hold independent copies.
func DefaultPolicy() *Policy {
	return &Policy{
		ID:          DefaultPolicyID,
		Name:        "Saturn default policy",
		Description: "Baseline governance rules for reviewing code changes",
		Version:     "1.0.0",
		Rules: []Rule{
			{
				ID:          "sensitive-files",
				Name:        "Sensitive file paths",
				Description: "Credential stores, key material and environment files must not change without review",
				Enabled:     true,
				Severity:    SeverityBlock,
				Kind:        KindSensitiveFile,
				Patterns: []string{
					`(^|/)\.env(\.[^/]+)?$`,
					`\.(pem|key|p12|pfx|jks)$`,
					`(^|/)id_(rsa|ed25519|ecdsa)$`,
					`(^|/)(secrets?|credentials?)\.(ya?ml|json|toml)$`,
					`(^|/)\.(npmrc|pypirc|netrc)$`,
				},
			},
			{
				ID:          "large-change",
				Name:        "Large change set",
				Description: "Very large changes are hard to review and deserve a closer look",
				Enabled:     true,
				Severity:    SeverityWarn,
				Kind:        KindLargeChange,
				Threshold:   1000,
			},
			{
				ID:          "suspicious-keywords",
				Name:        "Suspicious API usage",
				Description: "Dynamic evaluation and shell execution primitives in new code",
				Enabled:     true,
				Severity:    SeverityWarn,
				Kind:        KindSuspiciousKeywords,
				Keywords: []string{
					"eval(",
					"exec(",
					"child_process",
					"os.system",
					"subprocess.popen",
					"dangerouslySetInnerHTML",
					"drop table",
				},
			},
			{
				ID:          "potential-secrets",
				Name:        "Potential secrets",
				Description: "Credential-shaped tokens in added lines",
				Enabled:     true,
				Severity:    SeverityBlock,
				Kind:        KindPotentialSecret,
				Patterns: []string{
					`AKIA[0-9A-Z]{16}`,
					`ghp_[A-Za-z0-9]{36}`,
					`xox[baprs]-[0-9A-Za-z-]{10,}`,
					`-----BEGIN (RSA |EC |OPENSSH |DSA )?PRIVATE KEY-----`,
					`(?i)(api[_-]?key|secret|password|token)\s*[:=]\s*['"][^'"]{8,}['"]`,
				},
			},
			{
				ID:          "large-migration",
				Name:        "Large schema migration",
				Description: "Bulk changes to database migrations carry rollback risk",
				Enabled:     true,
				Severity:    SeverityWarn,
				Kind:        KindLargeMigration,
				Threshold:   100,
				MigrationPaths: []string{
					`(^|/)migrations?/`,
					`\.sql$`,
				},
			},
			{
				ID:          "vendored-code",
				Name:        "Vendored code changes",
				Description: "Edits under vendor trees are usually generated and should come from tooling",
				Enabled:     true,
				Severity:    SeverityWarn,
				Kind:        KindPathPattern,
				Pattern:     `(^|/)(vendor|node_modules)/`,
				Mode:        PathModeInclude,
			},
			{
				ID:          "merge-blockers",
				Name:        "Do-not-merge markers",
				Description: "Explicit do-not-merge markers left in added lines",
				Enabled:     true,
				Severity:    SeverityBlock,
				Kind:        KindLinePattern,
				Pattern:     `(?i)do[ -]?not[ -]?merge|\bDONOTMERGE\b`,
				Scope:       ScopeAdded,
			},
			{
				ID:          "oversized-file",
				Name:        "Oversized added content",
				Description: "Files gaining very large amounts of content are likely generated or binary-ish",
				Enabled:     true,
				Severity:    SeverityWarn,
				Kind:        KindFileSize,
				Threshold:   512 * 1024,
			},
		},
	}
}
