package zoneinfo

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// lineRe matches "  key: value" and the two-word "  rich rules:" header.
var lineRe = regexp.MustCompile(`^  (\S+|rich rules):\s*(.*)$`)

const richRulesKey = "rich_rules"

// ParseError identifies the line that did not match the zone info format.
type ParseError struct {
	Line int // 1-based
	Text string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return "zone info: empty input"
	}
	return fmt.Sprintf("zone info line %d: unable to parse %q", e.Line, e.Text)
}

// Parse converts --info-zone output into a Record. Lines that do not follow
// the format are an error; nothing is skipped or guessed.
func Parse(raw string) (*Record, error) {
	lines := splitLines(raw)
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, &ParseError{}
	}

	header := lines[0]
	name, _, _ := strings.Cut(header, " ")
	rec := &Record{
		Name:      name,
		Active:    strings.HasSuffix(header, ActiveMarker),
		Fields:    make(map[string]Value),
		RichRules: []string{},
	}

	for i := 1; i < len(lines); i++ {
		m := lineRe.FindStringSubmatch(lines[i])
		if m == nil {
			return nil, &ParseError{Line: i + 1, Text: lines[i]}
		}
		key := NormalizeKey(m[1])
		value := m[2]

		switch {
		case key == richRulesKey:
			var block []string
			for i+1 < len(lines) && strings.HasPrefix(lines[i+1], "\t") {
				i++
				block = append(block, strings.TrimPrefix(lines[i], "\t"))
			}
			if len(block) > 0 {
				rec.RichRules = append(rec.RichRules, strings.Join(block, "\n"))
			}
		case IsListKey(key):
			rec.Fields[key] = ListValue(splitList(value))
		default:
			rec.Fields[key] = ScalarValue(value)
		}
	}

	return rec, nil
}

// ParseZones parses output holding several zones separated by blank lines,
// as printed by --list-all-zones.
func ParseZones(raw string) ([]*Record, error) {
	var (
		records []*Record
		block   []string
		offset  int
	)

	flush := func(start int) error {
		if len(block) == 0 {
			return nil
		}
		rec, err := Parse(strings.Join(block, "\n"))
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) && pe.Line > 0 {
				pe.Line += start
			}
			return err
		}
		records = append(records, rec)
		block = nil
		return nil
	}

	for i, line := range splitLines(raw) {
		if strings.TrimSpace(line) == "" {
			if err := flush(offset); err != nil {
				return nil, err
			}
			offset = i + 1
			continue
		}
		block = append(block, line)
	}
	if err := flush(offset); err != nil {
		return nil, err
	}
	return records, nil
}

// splitList splits on single spaces; an empty value is an empty list.
func splitList(value string) []string {
	if value == "" {
		return []string{}
	}
	return strings.Split(value, " ")
}

func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.TrimSuffix(raw, "\n")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}
