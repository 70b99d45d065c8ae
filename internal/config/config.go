package config

import (
	"fmt"
	"strings"

	"grimm.is/converge/internal/brand"
)

// CurrentSchemaVersion is the document schema this build understands.
const CurrentSchemaVersion = "1.0"

// State is the desired existence of a resource.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// ParseState parses a state name. The empty string means present.
func ParseState(s string) (State, error) {
	switch State(strings.ToLower(strings.TrimSpace(s))) {
	case StatePresent, "":
		return StatePresent, nil
	case StateAbsent:
		return StateAbsent, nil
	}
	return "", &ValidationError{Field: "state", Message: fmt.Sprintf("invalid state %q (choices: present, absent)", s)}
}

func (s State) String() string {
	return string(s)
}

// Protocols a service port can use.
const (
	ProtocolTCP = "tcp"
	ProtocolUDP = "udp"
)

// PortAll is reserved for removal and cannot be added to a service.
const PortAll = "all"

// Document is a desired-state file.
type Document struct {
	SchemaVersion   string        `hcl:"schema_version,optional" json:"schema_version,omitempty"`
	FirewallCmd     string        `hcl:"firewall_cmd,optional" json:"firewall_cmd,omitempty"`
	CheckMode       bool          `hcl:"check_mode,optional" json:"check_mode,omitempty"`
	AuditDB         string        `hcl:"audit_db,optional" json:"audit_db,omitempty"`
	MetricsTextfile string        `hcl:"metrics_textfile,optional" json:"metrics_textfile,omitempty"`
	Zones           []ZoneSpec    `hcl:"zone,block" json:"zones,omitempty"`
	Services        []ServiceSpec `hcl:"service,block" json:"services,omitempty"`
}

// ZoneSpec is the desired state of one zone.
type ZoneSpec struct {
	Name  string `hcl:"name,label" json:"name"`
	State State  `hcl:"state,optional" json:"state,omitempty"`
	// File is passed to --new-zone-from-file when the zone has to be created.
	File string `hcl:"file,optional" json:"file,omitempty"`
}

// ServiceSpec is the desired state of one service.
type ServiceSpec struct {
	Name             string `hcl:"name,label" json:"name"`
	State            State  `hcl:"state,optional" json:"state,omitempty"`
	Port             string `hcl:"port,optional" json:"port,omitempty"`
	Protocol         string `hcl:"protocol,optional" json:"protocol,omitempty"`
	Description      string `hcl:"description,optional" json:"description,omitempty"`
	ShortDescription string `hcl:"short_description,optional" json:"short_description,omitempty"`
}

// PortProto returns "port/protocol", or "" when either is unset.
func (s ServiceSpec) PortProto() string {
	if s.Port == "" || s.Protocol == "" {
		return ""
	}
	return s.Port + "/" + s.Protocol
}

// ApplyDefaults fills unset fields with their defaults and lower-cases
// enumerations.
func (d *Document) ApplyDefaults() {
	if d.SchemaVersion == "" {
		d.SchemaVersion = CurrentSchemaVersion
	}
	if d.FirewallCmd == "" {
		d.FirewallCmd = brand.DefaultFirewallCmd
	}
	for i := range d.Zones {
		d.Zones[i].ApplyDefaults()
	}
	for i := range d.Services {
		d.Services[i].ApplyDefaults()
	}
}

// ApplyDefaults sets State to present when unset.
func (z *ZoneSpec) ApplyDefaults() {
	if z.State == "" {
		z.State = StatePresent
	}
	z.State = State(strings.ToLower(string(z.State)))
}

// ApplyDefaults sets State to present when unset and normalizes Protocol.
func (s *ServiceSpec) ApplyDefaults() {
	if s.State == "" {
		s.State = StatePresent
	}
	s.State = State(strings.ToLower(string(s.State)))
	s.Protocol = strings.ToLower(s.Protocol)
}
