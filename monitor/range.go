// Package monitor exposes aggregated timing statistics to external tooling:
// a named monitor republishes the current per-tag statistic values as
// readable attributes, raises notifications when configured acceptable
// ranges are violated, and registers under a process-wide registry.
package monitor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/timewatch/internal/sentinel"
)

// rangeKind discriminates the three acceptable range forms.
type rangeKind int

const (
	rangeLessThan rangeKind = iota
	rangeGreaterThan
	rangeBetween
)

// rangePattern matches attrName(<value), attrName(>value) and attrName(min-max).
var rangePattern = regexp.MustCompile(`^([A-Za-z_][\w.]*)\(\s*(?:(<|>)\s*(-?\d+(?:\.\d+)?)|(-?\d+(?:\.\d+)?)\s*-\s*(-?\d+(?:\.\d+)?))\s*\)$`)

// AcceptableRange defines the bounds within which a statistic attribute is
// considered healthy. Values outside the range trigger a notification.
// Immutable once parsed.
type AcceptableRange struct {
	attribute string
	kind      rangeKind
	low       float64
	high      float64
}

// ParseAcceptableRange parses a single range specification of the form
// attrName(<value), attrName(>value) or attrName(min-max).
func ParseAcceptableRange(spec string) (AcceptableRange, error) {
	match := rangePattern.FindStringSubmatch(strings.TrimSpace(spec))
	if match == nil {
		return AcceptableRange{}, ewrap.Wrap(sentinel.ErrMalformedRange, spec)
	}

	attribute, op, single, low, high := match[1], match[2], match[3], match[4], match[5]

	if op != "" {
		value, err := strconv.ParseFloat(single, 64)
		if err != nil {
			return AcceptableRange{}, ewrap.Wrap(sentinel.ErrMalformedRange, spec)
		}

		if op == "<" {
			return AcceptableRange{attribute: attribute, kind: rangeLessThan, high: value}, nil
		}

		return AcceptableRange{attribute: attribute, kind: rangeGreaterThan, low: value}, nil
	}

	lowValue, err := strconv.ParseFloat(low, 64)
	if err != nil {
		return AcceptableRange{}, ewrap.Wrap(sentinel.ErrMalformedRange, spec)
	}

	highValue, err := strconv.ParseFloat(high, 64)
	if err != nil {
		return AcceptableRange{}, ewrap.Wrap(sentinel.ErrMalformedRange, spec)
	}

	if highValue < lowValue {
		return AcceptableRange{}, ewrap.Wrap(sentinel.ErrMalformedRange, spec)
	}

	return AcceptableRange{attribute: attribute, kind: rangeBetween, low: lowValue, high: highValue}, nil
}

// ParseThresholds parses a comma-separated list of range specifications.
// Empty entries are skipped, malformed entries fail the whole parse.
func ParseThresholds(thresholds string) ([]AcceptableRange, error) {
	var ranges []AcceptableRange

	for _, spec := range splitAndTrim(thresholds) {
		parsed, err := ParseAcceptableRange(spec)
		if err != nil {
			return nil, err
		}

		ranges = append(ranges, parsed)
	}

	return ranges, nil
}

// splitAndTrim splits a comma-separated list, trimming whitespace and
// dropping empty entries.
func splitAndTrim(list string) []string {
	var out []string

	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}

	return out
}

// Attribute returns the statistic attribute name the range applies to,
// e.g. "dbCallMean".
func (r AcceptableRange) Attribute() string {
	return r.attribute
}

// InRange reports whether the given value is acceptable. The <value form
// accepts values strictly below the bound, the >value form strictly above,
// the min-max form is inclusive on both ends.
func (r AcceptableRange) InRange(value float64) bool {
	switch r.kind {
	case rangeLessThan:
		return value < r.high
	case rangeGreaterThan:
		return value > r.low
	default:
		return value >= r.low && value <= r.high
	}
}

// String re-renders the specification the range was parsed from.
func (r AcceptableRange) String() string {
	switch r.kind {
	case rangeLessThan:
		return fmt.Sprintf("%s(<%s)", r.attribute, formatBound(r.high))
	case rangeGreaterThan:
		return fmt.Sprintf("%s(>%s)", r.attribute, formatBound(r.low))
	default:
		return fmt.Sprintf("%s(%s-%s)", r.attribute, formatBound(r.low), formatBound(r.high))
	}
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
