package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"grimm.is/converge/internal/validation"
)

// ValidationError represents a desired-state precondition violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Err returns nil when there are no errors, so callers can return it directly.
func (e ValidationErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func fieldError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error()}
}

// Validate checks a zone spec.
func (z ZoneSpec) Validate() error {
	if err := validation.ValidateZoneName(z.Name); err != nil {
		return fieldError("zone", err)
	}
	if _, err := ParseState(string(z.State)); err != nil {
		return err
	}
	if z.File != "" {
		if err := validation.ValidateFilePath(z.File); err != nil {
			return fieldError("file", err)
		}
		// firewall-cmd names a zone created from a file after the file.
		if base := strings.TrimSuffix(filepath.Base(z.File), ".xml"); base != z.Name {
			return &ValidationError{
				Field:   "file",
				Message: fmt.Sprintf("file %s creates zone %q, not %q", z.File, base, z.Name),
			}
		}
	}
	return nil
}

// Validate checks a service spec. It runs before any command is issued.
func (s ServiceSpec) Validate() error {
	if err := validation.ValidateIdentifier(s.Name); err != nil {
		return fieldError("service", err)
	}
	state, err := ParseState(string(s.State))
	if err != nil {
		return err
	}

	if s.Protocol != "" {
		if err := validation.ValidateAllowlist(s.Protocol, []string{ProtocolTCP, ProtocolUDP}); err != nil {
			return fieldError("protocol", err)
		}
	}

	switch state {
	case StatePresent:
		if s.Port == "" {
			return &ValidationError{Field: "port", Message: "port and protocol are required when creating a service"}
		}
		if s.Protocol == "" {
			return &ValidationError{Field: "protocol", Message: "port and protocol are required when creating a service"}
		}
		if s.Port == PortAll {
			return &ValidationError{Field: "port", Message: "port can not be all when adding a service"}
		}
	case StateAbsent:
		if (s.Port == "") != (s.Protocol == "") {
			return &ValidationError{Field: "port", Message: "port and protocol must be given together, or both omitted to delete the service"}
		}
	}

	if s.Port != "" && s.Port != PortAll {
		if err := validation.ValidatePort(s.Port); err != nil {
			return fieldError("port", err)
		}
	}
	if err := validation.ValidateArgText(s.Description); err != nil {
		return fieldError("description", err)
	}
	if err := validation.ValidateArgText(s.ShortDescription); err != nil {
		return fieldError("short_description", err)
	}
	return nil
}

// Validate validates the entire document.
func (d *Document) Validate() ValidationErrors {
	var errs ValidationErrors

	if d.SchemaVersion != "" && d.SchemaVersion != CurrentSchemaVersion {
		errs = append(errs, &ValidationError{
			Field:   "schema_version",
			Message: fmt.Sprintf("unsupported schema version %s (supported: %s)", d.SchemaVersion, CurrentSchemaVersion),
		})
	}

	seen := make(map[string]bool)
	for i, z := range d.Zones {
		prefix := fmt.Sprintf("zone[%s]", z.Name)
		if z.Name == "" {
			prefix = fmt.Sprintf("zone[%d]", i)
		}
		if seen["zone/"+z.Name] {
			errs = append(errs, &ValidationError{Field: prefix, Message: "declared more than once"})
		}
		seen["zone/"+z.Name] = true
		errs = appendPrefixed(errs, prefix, z.Validate())
	}

	for i, s := range d.Services {
		prefix := fmt.Sprintf("service[%s]", s.Name)
		if s.Name == "" {
			prefix = fmt.Sprintf("service[%d]", i)
		}
		// A service may appear once per port/protocol pair.
		key := "service/" + s.Name + "/" + s.PortProto()
		if seen[key] {
			errs = append(errs, &ValidationError{Field: prefix, Message: "declared more than once with the same port/protocol"})
		}
		seen[key] = true
		errs = appendPrefixed(errs, prefix, s.Validate())
	}

	return errs
}

func appendPrefixed(errs ValidationErrors, prefix string, err error) ValidationErrors {
	if err == nil {
		return errs
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return append(errs, &ValidationError{Field: prefix + "." + ve.Field, Message: ve.Message})
	}
	return append(errs, &ValidationError{Field: prefix, Message: err.Error()})
}
