package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxZoneNameLen is firewalld's limit on zone names.
const MaxZoneNameLen = 17

var (
	// Valid firewalld object name: alphanumeric, dash, underscore
	identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// Single port or range, e.g. "8400" or "60000-61000"
	portRegex = regexp.MustCompile(`^([0-9]{1,5})(?:-([0-9]{1,5}))?$`)

	// Characters that can never be part of a command argument
	forbiddenArgChars = []string{"\x00"}
)

// ValidateIdentifier validates a service or zone name
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if len(id) > 255 {
		return fmt.Errorf("name too long (max 255 characters)")
	}

	if !identifierRegex.MatchString(id) {
		return fmt.Errorf("invalid name: %s (must be alphanumeric with -_)", id)
	}

	return nil
}

// ValidateZoneName applies ValidateIdentifier plus firewalld's zone length limit
func ValidateZoneName(name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	if len(name) > MaxZoneNameLen {
		return fmt.Errorf("zone name too long (max %d characters): %s", MaxZoneNameLen, name)
	}
	return nil
}

// ValidateFilePath checks a path that is handed to firewall-cmd as an argument
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("path contains control characters")
	}
	return nil
}

// ValidatePort validates a port ("8400") or port range ("8000-8010")
func ValidatePort(port string) error {
	m := portRegex.FindStringSubmatch(port)
	if m == nil {
		return fmt.Errorf("invalid port: %q (must be a number or range like 8000-8010)", port)
	}

	low, _ := strconv.Atoi(m[1])
	if err := ValidatePortNumber(low); err != nil {
		return err
	}
	if m[2] == "" {
		return nil
	}

	high, _ := strconv.Atoi(m[2])
	if err := ValidatePortNumber(high); err != nil {
		return err
	}
	if high < low {
		return fmt.Errorf("invalid port range: %s (end before start)", port)
	}
	return nil
}

// ValidatePortNumber validates a port number
func ValidatePortNumber(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be 1-65535)", port)
	}
	return nil
}

// ValidateAllowlist checks if a value is in an allowed list
func ValidateAllowlist(value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid value %q (choices: %s)", value, strings.Join(allowed, ", "))
}

// ValidateArgText checks free text (descriptions) passed as a command argument
func ValidateArgText(s string) error {
	for _, char := range forbiddenArgChars {
		if strings.Contains(s, char) {
			return fmt.Errorf("text contains a NUL byte")
		}
	}
	return nil
}
