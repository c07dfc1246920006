package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"lux/internal/logging"
	"lux/internal/source"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding. Path is the dotted config key.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

var fileKinds = map[string]bool{"csv": true, "tsv": true, "json": true, "html": true}

// Validate checks c and returns every issue found. Database kinds are checked
// against the backends registered at call time.
func Validate(c *Config) []Issue {
	var issues []Issue
	add := func(sev Severity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add(SeverityError, "log.level", "unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		add(SeverityError, "log.format", "must be console or json, got %q", c.Log.Format)
	}

	if c.Inference.NominalCardinality < 1 {
		add(SeverityError, "inference.nominal_cardinality", "must be at least 1, got %d", c.Inference.NominalCardinality)
	}

	kind := strings.ToLower(strings.TrimSpace(c.Source.Kind))
	switch {
	case kind == "" || fileKinds[kind]:
		if c.Source.DSN != "" || c.Source.Query != "" {
			add(SeverityWarning, "source.dsn", "dsn and query are ignored for file sources")
		}
	case contains(source.Registered(), kind):
		if strings.TrimSpace(c.Source.Query) == "" {
			add(SeverityError, "source.query", "required for kind %q", kind)
		}
		if c.Source.Path != "" {
			add(SeverityWarning, "source.path", "ignored for kind %q", kind)
		}
	default:
		add(SeverityError, "source.kind", "unknown kind %q (have csv, tsv, json, html, %s)",
			c.Source.Kind, strings.Join(source.Registered(), ", "))
	}
	if c.Source.MaxRows < 0 {
		add(SeverityError, "source.max_rows", "must not be negative, got %d", c.Source.MaxRows)
	}
	if d := c.Source.Delimiter; d != "" && d != "tab" && d != `\t` && utf8.RuneCountInString(d) != 1 {
		add(SeverityError, "source.delimiter", "must be a single character, got %q", d)
	}
	if c.Source.Timeout < 0 {
		add(SeverityError, "source.timeout", "must not be negative")
	}

	switch strings.ToLower(c.Output.Format) {
	case "text", "json":
	default:
		add(SeverityError, "output.format", "must be text or json, got %q", c.Output.Format)
	}

	switch strings.ToLower(c.Metrics.Backend) {
	case "", "none":
	case "datadog":
		if c.Metrics.FlushEvery <= 0 {
			add(SeverityWarning, "metrics.flush_every", "non-positive interval; the backend default applies")
		}
	default:
		add(SeverityError, "metrics.backend", "must be none or datadog, got %q", c.Metrics.Backend)
	}

	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
