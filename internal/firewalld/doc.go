// Package firewalld drives the firewall-cmd executable.
//
// # Overview
//
// Every interaction with firewalld's permanent configuration is a single
// firewall-cmd invocation. The package distinguishes two kinds of call:
//
//   - Probe: read-only, a non-zero exit is data ("does not exist", "no").
//   - Apply: mutating, a non-zero exit is a fatal [*CommandError].
//
// # Key Types
//
//   - [CommandRunner]: spawns one process and reports exit code and output
//   - [Client]: binds a runner to the firewall-cmd binary, logs and counts calls
//   - [CommandError]: carries args, exit code, stdout and stderr of a failed apply
//
// Argument builders such as [PathZone] and [QueryPort] produce the exact
// argument lists, always prefixed with --permanent.
//
// # Testing
//
// [MockCommandRunner] is a testify mock. [SimRunner] is an in-memory model of
// the permanent store that answers the same command surface.
package firewalld
