package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"grimm.is/converge/cmd"
	"grimm.is/converge/internal/brand"
	"grimm.is/converge/internal/i18n"
)

var printer = i18n.NewCLIPrinter()

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := cmd.DefaultEnv()
	args := os.Args[2:]

	var err error
	switch os.Args[1] {
	case "zone":
		err = cmd.RunZone(ctx, args, env)
	case "service":
		err = cmd.RunService(ctx, args, env)
	case "apply":
		err = cmd.RunApply(ctx, args, env)
	case "check":
		err = cmd.RunCheck(ctx, args, env)
	case "zone-info":
		err = cmd.RunZoneInfo(ctx, args, env)
	case "zone-diff":
		err = cmd.RunZoneDiff(ctx, args, env)
	case "history":
		err = cmd.RunHistory(ctx, args, env)
	case "version", "-v", "--version":
		cmd.RunVersion(env)
	case "help", "-h", "--help":
		printUsage()
	default:
		printer.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		stop()
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		printer.Fprintf(os.Stderr, "%s %s: %v\n", brand.BinaryName, os.Args[1], err)
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %s <command> [options]

Resource Commands:
  zone        Converge one permanent zone
              Options: --zone (-z) <name>, --state present|absent, --file <xml>, --check (-n)
  service     Converge one permanent service
              Options: --service (-s) <name>, --state present|absent, --port <port>,
                       --protocol tcp|udp, --description <text>, --short-description <text>,
                       --check (-n)
  apply       Converge every zone and service in a desired-state file
              Options: --check (-n) [file]

Utility Commands:
  check       Validate a desired-state file
              Options: --verbose (-v) [file]
  zone-info   Print a zone's permanent configuration as json, yaml or hcl
              Options: --zone (-z) <name> | --input <file|->, --output (-o)
  zone-diff   Compare a saved zone snapshot with the live zone
              Options: --snapshot <file|-> [zone]
  history     List recorded reconciliations
              Options: --audit-db <path>, --kind, --name, --run, --limit (-n), --since, --prune
  version     Print version information

Common Options:
  --firewall-cmd <path>    firewall-cmd executable (default %s)
  --output (-o) json|yaml  Result format
  --quiet (-q)             No summary on stderr
  --log-level <level>      debug, info, warn, error
  --log-json               JSON logs
  --audit-db <path>        Record results in a history database
  --metrics-textfile <p>   Write Prometheus metrics for node_exporter

Examples:
  %s zone --zone clients --file /etc/%s/zones/clients.xml
  %s service --service test --port 8400 --protocol tcp --description "Test Protocol"
  %s service --service test --state absent --port 8400 --protocol tcp --check
  %s apply %s
  %s zone-info --zone public --output yaml
`,
		brand.Name, brand.Description,
		brand.LowerName,
		brand.DefaultFirewallCmd,
		brand.LowerName, brand.LowerName,
		brand.LowerName,
		brand.LowerName,
		brand.LowerName, brand.DefaultConfigPath(),
		brand.LowerName)
}
