// =============================================================================
// Payroll to Batch Transfer Converter - Transformation Engine
// =============================================================================
//
// This module applies optional, config-driven rewrites to payroll columns
// before records are extracted and grouped.
//
// Grouping compares names and currencies exactly, so by default NO rules are
// configured and the payroll data is used as exported. An operator who knows
// their export has, say, lowercase currency codes or stray whitespace in
// names can opt in:
//
//   transformation_rules:
//     - field: "Currency"
//       actions:
//         - type: "trim"
//         - type: "uppercase"
//     - field: "Currency"
//       actions:
//         - type: "lookup"
//           lookup_table:
//             "R$": "BRL"
//
// TRANSFORMATION TYPES:
//   - trim, trim_left, trim_right   (trim_* take an optional cutset in value)
//   - uppercase, lowercase
//   - replace, regex_replace        (find -> value)
//   - prepend_string, append_string
//   - lookup                        (unknown values pass through)
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/payroll-batch-converter/internal/config"
	"github.com/ginjaninja78/payroll-batch-converter/internal/types"
)

// whitespace is the default cutset of trim_left and trim_right.
const whitespace = " \t\n\r"

// actionTypes lists the supported transformation types.
var actionTypes = map[string]bool{
	"trim":           true,
	"trim_left":      true,
	"trim_right":     true,
	"uppercase":      true,
	"lowercase":      true,
	"replace":        true,
	"regex_replace":  true,
	"prepend_string": true,
	"append_string":  true,
	"lookup":         true,
}

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer handles column value transformations.
type Transformer struct {
	rules []config.TransformationRule

	// patterns caches compiled regex_replace patterns by source.
	patterns map[string]*regexp.Regexp
}

// NewTransformer creates a Transformer with the given rules. Action types
// are checked and regex_replace patterns compiled up front, so a bad rule
// fails before any data is touched.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{
		rules:    rules,
		patterns: make(map[string]*regexp.Regexp),
	}

	for _, rule := range rules {
		for _, action := range rule.Actions {
			if !actionTypes[action.Type] {
				return nil, fmt.Errorf("rule for %q: unknown transformation type: %s", rule.Field, action.Type)
			}
			if action.Type != "regex_replace" || action.Find == "" {
				continue
			}
			if _, ok := t.patterns[action.Find]; ok {
				continue
			}
			re, err := regexp.Compile(action.Find)
			if err != nil {
				return nil, fmt.Errorf("rule for %q: invalid regex pattern %q: %w", rule.Field, action.Find, err)
			}
			t.patterns[action.Find] = re
		}
	}

	return t, nil
}

// Empty reports whether the transformer has no rules.
func (t *Transformer) Empty() bool {
	return len(t.rules) == 0
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Transform applies every rule for fieldName to value, in configuration order.
func (t *Transformer) Transform(fieldName, value string) (string, error) {
	result := value
	for _, rule := range t.rules {
		if rule.Field != fieldName {
			continue
		}
		for _, action := range rule.Actions {
			var err error
			result, err = t.apply(result, action)
			if err != nil {
				return "", fmt.Errorf("transformation '%s' failed: %w", action.Type, err)
			}
		}
	}
	return result, nil
}

// apply applies a single transformation action.
func (t *Transformer) apply(value string, action config.TransformationAction) (string, error) {
	switch action.Type {

	// =========================================================================
	// WHITESPACE AND CASE
	// =========================================================================

	case "trim":
		return strings.TrimSpace(value), nil

	case "trim_left":
		if action.Value != "" {
			return strings.TrimLeft(value, action.Value), nil
		}
		return strings.TrimLeft(value, whitespace), nil

	case "trim_right":
		if action.Value != "" {
			return strings.TrimRight(value, action.Value), nil
		}
		return strings.TrimRight(value, whitespace), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	// =========================================================================
	// REPLACEMENTS
	// =========================================================================

	case "replace":
		// EXAMPLE: "1.234,56" with find "." and value "" -> "1234,56"
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		// EXAMPLE: "R$ 1,200" with find `R\$\s*` and value "" -> "1,200"
		if action.Find == "" {
			return value, nil
		}
		re, ok := t.patterns[action.Find]
		if !ok {
			var err error
			if re, err = regexp.Compile(action.Find); err != nil {
				return "", fmt.Errorf("invalid regex pattern: %w", err)
			}
		}
		return re.ReplaceAllString(value, action.Value), nil

	case "prepend_string":
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	// =========================================================================
	// LOOKUP TABLE REPLACEMENTS
	// =========================================================================

	case "lookup":
		// EXAMPLE: "R$" with lookup_table {"R$": "BRL"} -> "BRL"
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return value, nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}

// =============================================================================
// TABLE TRANSFORMATION
// =============================================================================

// TransformTable applies all rules to every row of table, in place.
// Rules naming a column the table does not have are ignored.
func (t *Transformer) TransformTable(table *types.Table) error {
	if t.Empty() {
		return nil
	}

	for i, row := range table.Rows {
		for _, header := range table.Headers {
			value, ok := row[header]
			if !ok {
				continue
			}
			transformed, err := t.Transform(header, value)
			if err != nil {
				return fmt.Errorf("row %d, column '%s': %w", table.RowNumber(i), header, err)
			}
			row[header] = transformed
		}
	}

	return nil
}
