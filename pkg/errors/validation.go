package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds dependency and crate names.
const maxNameLength = 128

// dependencyNameRegex matches names that render to valid bare keys
// (<NAME>_VERSION) in the declaration file.
var dependencyNameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateDependencyName checks that name can be written back as a
// declaration key.
func ValidateDependencyName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "dependency name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidConfig, "dependency name too long (max %d characters)", maxNameLength)
	}
	if !dependencyNameRegex.MatchString(name) {
		return New(ErrCodeInvalidConfig, "invalid dependency name %q: only letters, digits, '_' and '-' are allowed", name)
	}
	return nil
}

// cratesNameRegex matches valid crates.io package names.
var cratesNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateCrateName validates a crates.io package name.
func ValidateCrateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidConfig, "crate name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidConfig, "crate name too long (max %d characters)", maxNameLength)
	}
	if !cratesNameRegex.MatchString(name) {
		return New(ErrCodeInvalidConfig, "invalid crate name: %q", name)
	}
	return nil
}

// ValidateSection validates a dotted manifest section path such as
// "workspace.dependencies".
func ValidateSection(section string) error {
	if section == "" {
		return New(ErrCodeInvalidConfig, "section cannot be empty")
	}
	for _, r := range section {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "section contains invalid control characters")
		}
	}
	for _, part := range strings.Split(section, ".") {
		if strings.TrimSpace(part) == "" {
			return New(ErrCodeInvalidConfig, "section %q has an empty component", section)
		}
	}
	return nil
}

// ValidateURL ensures rawURL uses the http or https scheme.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidConfig, "URL must use http or https scheme: %q", rawURL)
	}
	return nil
}
