// Package config loads and validates desired-state documents.
//
// # Overview
//
// A document declares firewalld zones and services that should (or should
// not) exist in the permanent configuration. Documents are HCL (.hcl) or
// JSON (.json).
//
//	firewall_cmd = "firewall-cmd"
//
//	zone "clients" {
//	  file = "${env.CONFIG_DIR}/clients.xml"
//	}
//
//	service "test" {
//	  port              = "8400"
//	  protocol          = "tcp"
//	  description       = "Test Protocol"
//	  short_description = "Test"
//	}
//
//	service "legacy" {
//	  state = "absent"
//	}
//
// HCL expressions can read environment variables through the env object.
//
// # Key Types
//
//   - [Document]: the whole file
//   - [ZoneSpec], [ServiceSpec]: one desired resource each
//   - [State]: present or absent
//   - [ValidationError]: a precondition on one field was violated
package config
