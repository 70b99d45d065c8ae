package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"grimm.is/converge/internal/firewalld"
	"grimm.is/converge/internal/reconcile"
	"grimm.is/converge/internal/zoneinfo"
)

// RunZoneInfo prints the parsed permanent configuration of a zone, either
// fetched live or read from saved --info-zone / --list-all-zones output.
func RunZoneInfo(ctx context.Context, args []string, env *Env) error {
	fs := newFlagSet(env, "zone-info")
	var cf commonFlags
	cf.register(fs)
	zone := fs.String("zone", "", "Fetch this zone from firewalld")
	fs.StringVar(zone, "z", "", "Zone (short)")
	input := fs.String("input", "", "Parse saved output from this file (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var records []*zoneinfo.Record
	switch {
	case *input != "":
		raw, err := readInput(env, *input)
		if err != nil {
			return err
		}
		records, err = zoneinfo.ParseZones(raw)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("%s: no zone found", *input)
		}
	case *zone != "":
		rec, err := env.fetchZone(ctx, &cf, *zone)
		if err != nil {
			return err
		}
		records = []*zoneinfo.Record{rec}
	default:
		return fmt.Errorf("one of --zone or --input is required")
	}

	return writeRecords(env.Stdout, cf.output, records)
}

func (env *Env) fetchZone(ctx context.Context, cf *commonFlags, name string) (*zoneinfo.Record, error) {
	logger, err := cf.logger(env)
	if err != nil {
		return nil, err
	}
	client := firewalld.NewClient(env.Runner,
		firewalld.WithBinary(cf.firewallCmd),
		firewalld.WithLogger(logger),
		firewalld.WithMetrics(env.Metrics),
	)
	return reconcile.NewZoneReconciler(client, reconcile.WithLogger(logger)).Info(ctx, name)
}

func readInput(env *Env, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(env.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read zone info: %w", err)
	}
	return string(data), nil
}

func writeRecords(w io.Writer, format string, records []*zoneinfo.Record) error {
	if format == "hcl" {
		_, err := w.Write(recordsHCL(records))
		return err
	}

	if len(records) == 1 {
		return writeOutput(w, format, records[0].Map())
	}
	maps := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		maps = append(maps, rec.Map())
	}
	return writeOutput(w, format, maps)
}

// recordsHCL renders records as zone blocks with sorted attributes.
func recordsHCL(records []*zoneinfo.Record) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, rec := range records {
		if i > 0 {
			body.AppendNewline()
		}
		block := body.AppendNewBlock("zone", []string{rec.Name}).Body()
		block.SetAttributeValue("active", cty.BoolVal(rec.Active))
		for _, key := range rec.Keys() {
			v := rec.Fields[key]
			if v.IsList {
				block.SetAttributeValue(key, stringList(v.List))
			} else {
				block.SetAttributeValue(key, cty.StringVal(v.Scalar))
			}
		}
		block.SetAttributeValue("rich_rules", stringList(rec.RichRules))
	}
	return f.Bytes()
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, 0, len(items))
	for _, item := range items {
		vals = append(vals, cty.StringVal(item))
	}
	return cty.ListVal(vals)
}
