package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// LoadOptions controls how documents are loaded
type LoadOptions struct {
	// Validate runs Document.Validate and fails on any error
	Validate bool

	// Env supplies the variables visible as env.NAME in HCL expressions.
	// Nil means the process environment.
	Env map[string]string
}

// DefaultLoadOptions returns sensible defaults for loading documents
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Validate: true,
	}
}

// LoadFile loads a document file (HCL or JSON)
func LoadFile(path string) (*Document, error) {
	return LoadFileWithOptions(path, DefaultLoadOptions())
}

// LoadFileWithOptions loads a document file with explicit options
func LoadFileWithOptions(path string, opts LoadOptions) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read desired state file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSONWithOptions(data, opts)
	default:
		return LoadHCLWithOptions(data, path, opts)
	}
}

// LoadHCL loads a document from HCL bytes
func LoadHCL(data []byte, filename string) (*Document, error) {
	return LoadHCLWithOptions(data, filename, DefaultLoadOptions())
}

// LoadHCLWithOptions loads HCL with explicit options
func LoadHCLWithOptions(data []byte, filename string, opts LoadOptions) (*Document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("HCL parse error: %s", diags.Error())
	}

	var doc Document
	diags = gohcl.DecodeBody(file.Body, evalContext(opts.Env), &doc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("HCL decode error: %s", diags.Error())
	}

	return finish(&doc, opts)
}

// LoadJSON loads a document from JSON bytes
func LoadJSON(data []byte) (*Document, error) {
	return LoadJSONWithOptions(data, DefaultLoadOptions())
}

// LoadJSONWithOptions loads JSON with explicit options
func LoadJSONWithOptions(data []byte, opts LoadOptions) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	return finish(&doc, opts)
}

func finish(doc *Document, opts LoadOptions) (*Document, error) {
	doc.ApplyDefaults()
	if opts.Validate {
		if errs := doc.Validate(); errs.HasErrors() {
			return nil, errs
		}
	}
	return doc, nil
}

// evalContext exposes environment variables as the env object.
func evalContext(env map[string]string) *hcl.EvalContext {
	if env == nil {
		env = make(map[string]string)
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				env[k] = v
			}
		}
	}

	vals := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vals[k] = cty.StringVal(v)
	}

	envVal := cty.EmptyObjectVal
	if len(vals) > 0 {
		envVal = cty.ObjectVal(vals)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envVal,
		},
	}
}
