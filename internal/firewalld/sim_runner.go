package firewalld

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// firewall-cmd exit codes the simulator reproduces.
const (
	exitUsage          = 2
	exitQueryFalse     = 1
	exitNameConflict   = 26
	exitInvalidService = 101
	exitInvalidZone    = 112
)

// SimZone is the simulated permanent configuration of one zone.
type SimZone struct {
	Target     string
	Interfaces []string
	Sources    []string
	Services   []string
	Ports      []string
	RichRules  []string
}

// SimService is the simulated permanent configuration of one service.
type SimService struct {
	Ports       []string
	Description string
	Short       string
}

// SimRunner answers the --permanent command surface from memory. It is used
// by tests that need real state transitions (idempotence, dry-run).
type SimRunner struct {
	mu       sync.Mutex
	zones    map[string]*SimZone
	services map[string]*SimService
	calls    [][]string
	failures map[string]Result
}

// NewSimRunner returns an empty simulated store.
func NewSimRunner() *SimRunner {
	return &SimRunner{
		zones:    make(map[string]*SimZone),
		services: make(map[string]*SimService),
		failures: make(map[string]Result),
	}
}

// AddZone seeds a zone.
func (s *SimRunner) AddZone(name string, z SimZone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if z.Target == "" {
		z.Target = "default"
	}
	s.zones[name] = &z
}

// AddService seeds a service.
func (s *SimRunner) AddService(name string, svc SimService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc.Ports = append([]string(nil), svc.Ports...)
	s.services[name] = &svc
}

// HasZone reports whether the zone exists.
func (s *SimRunner) HasZone(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.zones[name]
	return ok
}

// Service returns a copy of a service's state.
func (s *SimRunner) Service(name string) (SimService, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[name]
	if !ok {
		return SimService{}, false
	}
	out := *svc
	out.Ports = append([]string(nil), svc.Ports...)
	return out, true
}

// FailOn makes the exact argument list return res instead of being simulated.
func (s *SimRunner) FailOn(args []string, res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[strings.Join(args, " ")] = res
}

// Calls returns every argument list received, in order.
func (s *SimRunner) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// Mutations returns the calls that change permanent state, joined with spaces.
func (s *SimRunner) Mutations() []string {
	var out []string
	for _, c := range s.Calls() {
		if isMutating(c) {
			out = append(out, strings.Join(c, " "))
		}
	}
	return out
}

// Snapshot renders the whole store deterministically, for before/after comparison.
func (s *SimRunner) Snapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for _, name := range sortedKeys(s.zones) {
		b.WriteString(renderZoneInfo(name, s.zones[name]))
	}
	for _, name := range sortedKeys(s.services) {
		svc := s.services[name]
		fmt.Fprintf(&b, "service %s ports=%q description=%q short=%q\n",
			name, strings.Join(svc.Ports, " "), svc.Description, svc.Short)
	}
	return b.String()
}

var mutatingOptions = map[string]bool{
	"--new-zone":           true,
	"--new-zone-from-file": true,
	"--delete-zone":        true,
	"--new-service":        true,
	"--delete-service":     true,
	"--add-port":           true,
	"--remove-port":        true,
	"--set-description":    true,
	"--set-short":          true,
}

func isMutating(args []string) bool {
	for _, a := range args {
		opt, _ := splitOption(a)
		if mutatingOptions[opt] {
			return true
		}
	}
	return false
}

func splitOption(arg string) (string, string) {
	opt, val, _ := strings.Cut(arg, "=")
	return opt, val
}

// Run implements CommandRunner.
func (s *SimRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, append([]string(nil), args...))
	if res, ok := s.failures[strings.Join(args, " ")]; ok {
		return res, nil
	}

	if len(args) == 0 || args[0] != Permanent {
		return Exit(exitUsage, "", "usage: only --permanent commands are simulated"), nil
	}
	rest := args[1:]

	if len(rest) == 2 && strings.HasPrefix(rest[0], "--service=") {
		_, svc := splitOption(rest[0])
		opt, val := splitOption(rest[1])
		return s.serviceOp(svc, opt, val), nil
	}
	if len(rest) != 1 {
		return Exit(exitUsage, "", "usage: unsupported argument list"), nil
	}

	opt, val := splitOption(rest[0])
	switch opt {
	case "--path-zone":
		if _, ok := s.zones[val]; !ok {
			return invalidZone(val), nil
		}
		return Exit(0, "/etc/firewalld/zones/"+val+".xml", ""), nil
	case "--info-zone":
		z, ok := s.zones[val]
		if !ok {
			return invalidZone(val), nil
		}
		return Exit(0, strings.TrimRight(renderZoneInfo(val, z), "\n"), ""), nil
	case "--new-zone":
		return s.newZone(val), nil
	case "--new-zone-from-file":
		if val == "" {
			return Exit(exitUsage, "", "Error: INVALID_FILENAME"), nil
		}
		return s.newZone(strings.TrimSuffix(filepath.Base(val), ".xml")), nil
	case "--delete-zone":
		if _, ok := s.zones[val]; !ok {
			return invalidZone(val), nil
		}
		delete(s.zones, val)
		return Exit(0, "success", ""), nil
	case "--path-service":
		if _, ok := s.services[val]; !ok {
			return invalidService(val), nil
		}
		return Exit(0, "/etc/firewalld/services/"+val+".xml", ""), nil
	case "--new-service":
		if _, ok := s.services[val]; ok {
			return Exit(exitNameConflict, "", "Error: NAME_CONFLICT: new_service(): '"+val+"'"), nil
		}
		s.services[val] = &SimService{}
		return Exit(0, "success", ""), nil
	case "--delete-service":
		if _, ok := s.services[val]; !ok {
			return invalidService(val), nil
		}
		delete(s.services, val)
		return Exit(0, "success", ""), nil
	}
	return Exit(exitUsage, "", "usage: unrecognized option "+opt), nil
}

func (s *SimRunner) newZone(name string) Result {
	if _, ok := s.zones[name]; ok {
		return Exit(exitNameConflict, "", "Error: NAME_CONFLICT: new_zone(): '"+name+"'")
	}
	s.zones[name] = &SimZone{Target: "default"}
	return Exit(0, "success", "")
}

func (s *SimRunner) serviceOp(name, opt, val string) Result {
	svc, ok := s.services[name]
	if !ok {
		return invalidService(name)
	}

	switch opt {
	case "--query-port":
		if indexOf(svc.Ports, val) >= 0 {
			return Exit(0, "yes", "")
		}
		return Exit(exitQueryFalse, "no", "")
	case "--add-port":
		if indexOf(svc.Ports, val) >= 0 {
			return Exit(0, "success", "Warning: ALREADY_ENABLED: "+val)
		}
		svc.Ports = append(svc.Ports, val)
		return Exit(0, "success", "")
	case "--remove-port":
		i := indexOf(svc.Ports, val)
		if i < 0 {
			return Exit(0, "success", "Warning: NOT_ENABLED: "+val)
		}
		svc.Ports = append(svc.Ports[:i], svc.Ports[i+1:]...)
		return Exit(0, "success", "")
	case "--get-ports":
		return Exit(0, strings.Join(svc.Ports, " "), "")
	case "--get-description":
		return Exit(0, svc.Description, "")
	case "--set-description":
		svc.Description = val
		return Exit(0, "success", "")
	case "--get-short":
		return Exit(0, svc.Short, "")
	case "--set-short":
		svc.Short = val
		return Exit(0, "success", "")
	}
	return Exit(exitUsage, "", "usage: unrecognized service option "+opt)
}

func invalidZone(name string) Result {
	return Exit(exitInvalidZone, "", "Error: INVALID_ZONE: "+name)
}

func invalidService(name string) Result {
	return Exit(exitInvalidService, "", "Error: INVALID_SERVICE: "+name)
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderZoneInfo produces --info-zone output in firewall-cmd's layout.
func renderZoneInfo(name string, z *SimZone) string {
	var b strings.Builder
	b.WriteString(name)
	if len(z.Interfaces) > 0 || len(z.Sources) > 0 {
		b.WriteString(" (active)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  target: %s\n", z.Target)
	b.WriteString("  icmp-block-inversion: no\n")
	fmt.Fprintf(&b, "  interfaces: %s\n", strings.Join(z.Interfaces, " "))
	fmt.Fprintf(&b, "  sources: %s\n", strings.Join(z.Sources, " "))
	fmt.Fprintf(&b, "  services: %s\n", strings.Join(z.Services, " "))
	fmt.Fprintf(&b, "  ports: %s\n", strings.Join(z.Ports, " "))
	b.WriteString("  protocols: \n")
	b.WriteString("  masquerade: no\n")
	b.WriteString("  forward-ports: \n")
	b.WriteString("  source-ports: \n")
	b.WriteString("  icmp-blocks: \n")
	b.WriteString("  rich rules: \n")
	for _, r := range z.RichRules {
		b.WriteString("\t" + r + "\n")
	}
	return b.String()
}
