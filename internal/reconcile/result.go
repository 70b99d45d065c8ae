package reconcile

import (
	"encoding/json"
	"errors"

	"grimm.is/converge/internal/config"
	"grimm.is/converge/internal/firewalld"
	"grimm.is/converge/internal/zoneinfo"
)

// ErrorKind classifies a reconciliation failure.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindCommand    ErrorKind = "command"
	KindParse      ErrorKind = "parse"
	KindInternal   ErrorKind = "internal"
)

// Classify returns the kind of the first typed error in err's chain.
func Classify(err error) ErrorKind {
	var (
		ve  *config.ValidationError
		ves config.ValidationErrors
		ce  *firewalld.CommandError
		pe  *zoneinfo.ParseError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ves):
		return KindValidation
	case errors.As(err, &ce):
		return KindCommand
	case errors.As(err, &pe):
		return KindParse
	}
	return KindInternal
}

// FailureTrace is the structured detail of a failed reconciliation.
type FailureTrace struct {
	Kind  ErrorKind `json:"kind" yaml:"kind"`
	Chain []string  `json:"chain" yaml:"chain"`

	Field string `json:"field,omitempty" yaml:"field,omitempty"`

	Args   []string `json:"args,omitempty" yaml:"args,omitempty"`
	RC     *int     `json:"rc,omitempty" yaml:"rc,omitempty"`
	Stdout string   `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr string   `json:"stderr,omitempty" yaml:"stderr,omitempty"`

	Line int `json:"line,omitempty" yaml:"line,omitempty"`
}

// NewFailureTrace unwraps err into a trace.
func NewFailureTrace(err error) *FailureTrace {
	if err == nil {
		return nil
	}
	t := &FailureTrace{Kind: Classify(err)}
	for e := err; e != nil; e = errors.Unwrap(e) {
		t.Chain = append(t.Chain, e.Error())
	}

	var (
		ve *config.ValidationError
		ce *firewalld.CommandError
		pe *zoneinfo.ParseError
	)
	if errors.As(err, &ve) {
		t.Field = ve.Field
	}
	if errors.As(err, &ce) {
		rc := ce.ExitCode
		t.Args = ce.Args
		t.RC = &rc
		t.Stdout = ce.Stdout
		t.Stderr = ce.Stderr
	}
	if errors.As(err, &pe) {
		t.Line = pe.Line
	}
	return t
}

// Result is the outward report of one reconciliation.
type Result struct {
	State        config.State
	Name         string
	Kind         ResourceKind
	Changed      bool
	Commands     []string
	Msg          string
	FailureTrace *FailureTrace
	Failed       bool
}

// Succeeded converts an outcome into a result.
func Succeeded(o Outcome) Result {
	return Result{
		State:    o.State,
		Name:     o.Name,
		Kind:     o.Kind,
		Changed:  o.Changed,
		Commands: o.Commands,
	}
}

// Failed builds the result of a reconciliation that returned err. A failed
// result never reports a change.
func Failed(state config.State, name string, kind ResourceKind, err error) Result {
	r := Result{
		State:        state,
		Name:         name,
		Kind:         kind,
		Failed:       true,
		FailureTrace: NewFailureTrace(err),
	}
	if err != nil {
		r.Msg = err.Error()
	}
	return r
}

// resultView is the serialized form: the resource name is keyed by its kind.
type resultView struct {
	Changed      bool          `json:"changed" yaml:"changed"`
	Commands     []string      `json:"commands,omitempty" yaml:"commands,omitempty"`
	Failed       bool          `json:"failed,omitempty" yaml:"failed,omitempty"`
	FailureTrace *FailureTrace `json:"failure_trace,omitempty" yaml:"failure_trace,omitempty"`
	Msg          string        `json:"msg,omitempty" yaml:"msg,omitempty"`
	Service      string        `json:"service,omitempty" yaml:"service,omitempty"`
	State        string        `json:"state" yaml:"state"`
	Zone         string        `json:"zone,omitempty" yaml:"zone,omitempty"`
}

func (r Result) view() resultView {
	v := resultView{
		Changed:      r.Changed,
		Commands:     r.Commands,
		Failed:       r.Failed,
		FailureTrace: r.FailureTrace,
		Msg:          r.Msg,
		State:        string(r.State),
	}
	switch r.Kind {
	case ResourceZone:
		v.Zone = r.Name
	case ResourceService:
		v.Service = r.Name
	}
	return v
}

// MarshalJSON renders {state, zone|service, changed} plus failure detail.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.view())
}

// MarshalYAML implements yaml.Marshaler.
func (r Result) MarshalYAML() (interface{}, error) {
	return r.view(), nil
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var v resultView
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Result{
		State:        config.State(v.State),
		Changed:      v.Changed,
		Commands:     v.Commands,
		Failed:       v.Failed,
		FailureTrace: v.FailureTrace,
		Msg:          v.Msg,
	}
	switch {
	case v.Zone != "":
		r.Kind, r.Name = ResourceZone, v.Zone
	case v.Service != "":
		r.Kind, r.Name = ResourceService, v.Service
	}
	return nil
}
