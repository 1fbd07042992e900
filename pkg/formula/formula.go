// Package formula evaluates the restricted arithmetic expressions
// carried by Formula columns. A formula references column names
// verbatim; evaluation substitutes each reference with the row's
// current value, validates the substituted expression against a strict
// character whitelist and then evaluates it with a small recursive
// descent parser. Nothing outside the whitelisted grammar is ever
// executed, so cell contents cannot smuggle code into the evaluator.
//
// Evaluation never fails hard: any problem resolves to an
// "Error: ..." string value so one bad row cannot block a view.
package formula

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/gridbase/gridbase/pkg/coltype"
	"github.com/gridbase/gridbase/pkg/model"
)

// ErrInvalidFormula is the value returned when the substituted
// expression contains anything outside the whitelisted grammar.
const ErrInvalidFormula = "Error: Invalid formula"

// IsErrorValue reports whether a computed cell holds an evaluation
// error rather than a result.
func IsErrorValue(v interface{}) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, "Error: ")
}

// Calculate evaluates a formula against one row's data. The result is
// a float64, a string, or an "Error: ..." string value.
func Calculate(formula string, rowData map[string]interface{}, columns []model.Column) interface{} {
	// A blank expression is an unconfigured column, not a malformed one.
	if strings.TrimSpace(formula) == "" {
		return ""
	}

	expr := substitute(formula, rowData, columns)

	if !whitelisted(expr) {
		return ErrInvalidFormula
	}

	result, err := evaluate(expr)
	if err != nil {
		return "Error: " + err.Error()
	}

	if !result.isStr {
		if math.IsNaN(result.num) || math.IsInf(result.num, 0) {
			return "Error: result is not a finite number"
		}
		return result.num
	}
	return result.str
}

// substitute replaces column name references with the row's values.
// Numeric columns substitute as bare numbers; every other type
// substitutes as a quoted string literal. Longer names replace first so
// a column named "Score" cannot clobber a reference to "Score Total".
func substitute(formula string, rowData map[string]interface{}, columns []model.Column) string {
	ordered := make([]model.Column, len(columns))
	copy(ordered, columns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Name) > len(ordered[j].Name)
	})

	expr := formula
	for _, col := range ordered {
		if col.Name == "" || !strings.Contains(expr, col.Name) {
			continue
		}

		value := rowData[col.ID]
		var literal string
		if col.Type == coltype.TypeNumber {
			n, ok := coltype.AsNumber(value)
			if !ok {
				n = 0
			}
			literal = strconv.FormatFloat(n, 'f', -1, 64)
		} else {
			literal = quote(coltype.AsString(value))
		}
		expr = strings.ReplaceAll(expr, col.Name, literal)
	}
	return expr
}

// quote builds a string literal with quote and backslash escapes so the
// whitelist scanner can walk over arbitrary cell contents safely.
func quote(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// whitelisted checks the substituted expression. Outside string
// literals only digits, whitespace, the arithmetic operators, dot,
// parentheses and the quote marker are allowed. Inside literals any
// rune is inert; a backslash escapes the next rune.
func whitelisted(expr string) bool {
	inString := false
	escaped := false
	for _, r := range expr {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch {
		case r == '"':
			inString = true
		case r >= '0' && r <= '9':
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		case r == '+' || r == '-' || r == '*' || r == '/':
		case r == '.' || r == '(' || r == ')':
		default:
			return false
		}
	}
	// An unterminated literal means the escaping above was subverted.
	return !inString
}
