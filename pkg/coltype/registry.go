package coltype

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// definition is the per-type contract. Adding a column type means adding
// one entry to the registry map below; no other component branches on the
// type tag.
type definition struct {
	defaultValue func() interface{}
	operators    []Operator
	compare      func(a, b interface{}) int
	display      func(v interface{}, cfg Config) string
	evaluate     func(v interface{}, op Operator, condition interface{}, now time.Time) bool
}

var registry = map[Type]definition{
	TypeText:         textDefinition(),
	TypeURL:          textDefinition(),
	TypeEmail:        textDefinition(),
	TypePhone:        textDefinition(),
	TypeCreatedBy:    textDefinition(),
	TypeLastEditedBy: textDefinition(),
	TypeFormula: {
		defaultValue: func() interface{} { return "" },
		operators:    textOperators,
		compare:      compareFormula,
		display:      displayDefault,
		evaluate:     evaluateText,
	},
	TypeNumber: {
		defaultValue: func() interface{} { return float64(0) },
		operators: []Operator{
			OpEquals, OpDoesNotEqual,
			OpGreaterThan, OpLessThan, OpGreaterThanOrEqual, OpLessThanOrEqual,
			OpIsEmpty, OpIsNotEmpty,
		},
		compare:  compareNumber,
		display:  displayNumber,
		evaluate: evaluateNumber,
	},
	TypeSelect: {
		defaultValue: func() interface{} { return "" },
		operators:    []Operator{OpEquals, OpDoesNotEqual, OpIsEmpty, OpIsNotEmpty},
		compare:      compareText,
		display:      displayDefault,
		evaluate:     evaluateSelect,
	},
	TypeMultiSelect: {
		defaultValue: func() interface{} { return []string{} },
		operators:    []Operator{OpContains, OpDoesNotContain, OpIsEmpty, OpIsNotEmpty},
		compare:      compareStringSet,
		display:      displayStringSet,
		evaluate:     evaluateStringSet,
	},
	TypeFile: {
		defaultValue: func() interface{} { return []string{} },
		operators:    []Operator{OpContains, OpDoesNotContain, OpIsEmpty, OpIsNotEmpty},
		compare:      compareStringSet,
		display:      displayStringSet,
		evaluate:     evaluateStringSet,
	},
	TypeRelation: {
		defaultValue: func() interface{} { return []string{} },
		operators:    []Operator{OpContains, OpDoesNotContain, OpIsEmpty, OpIsNotEmpty},
		compare:      compareStringSet,
		display:      displayStringSet,
		evaluate:     evaluateStringSet,
	},
	TypeDate:           dateDefinition(),
	TypeCreatedTime:    dateDefinition(),
	TypeLastEditedTime: dateDefinition(),
	TypeCheckbox: {
		defaultValue: func() interface{} { return false },
		operators:    []Operator{OpChecked, OpUnchecked},
		compare:      compareCheckbox,
		display:      displayCheckbox,
		evaluate:     evaluateCheckbox,
	},
}

var textOperators = []Operator{
	OpEquals, OpDoesNotEqual,
	OpContains, OpDoesNotContain,
	OpStartsWith, OpEndsWith,
	OpIsEmpty, OpIsNotEmpty,
}

var dateOperators = []Operator{
	OpEquals, OpBefore, OpAfter, OpOnOrBefore, OpOnOrAfter,
	OpPastWeek, OpPastMonth, OpPastYear,
	OpNextWeek, OpNextMonth, OpNextYear,
	OpIsEmpty, OpIsNotEmpty,
}

func textDefinition() definition {
	return definition{
		defaultValue: func() interface{} { return "" },
		operators:    textOperators,
		compare:      compareText,
		display:      displayDefault,
		evaluate:     evaluateText,
	}
}

func dateDefinition() definition {
	return definition{
		defaultValue: func() interface{} { return "" },
		operators:    dateOperators,
		compare:      compareDate,
		display:      displayDate,
		evaluate:     evaluateDate,
	}
}

// lookup resolves a type tag. The tag set is closed; an unknown tag is a
// programmer error, not a recoverable condition.
func lookup(t Type) definition {
	def, ok := registry[t]
	if !ok {
		panic(fmt.Sprintf("coltype: unknown column type %q", t))
	}
	return def
}

// Known reports whether t is a registered column type. Callers handling
// external input should check this before using the panicking accessors.
func Known(t Type) bool {
	_, ok := registry[t]
	return ok
}

// All returns every registered column type.
func All() []Type {
	out := make([]Type, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	return out
}

// DefaultValue returns the zero value cells of this type are backfilled
// with when a column is created or a coercion fails.
func DefaultValue(t Type) interface{} {
	return lookup(t).defaultValue()
}

// Operators returns the filter operators a column of this type accepts.
func Operators(t Type) []Operator {
	ops := lookup(t).operators
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// AllowsOperator reports whether op is valid for columns of type t.
func AllowsOperator(t Type, op Operator) bool {
	for _, candidate := range lookup(t).operators {
		if candidate == op {
			return true
		}
	}
	return false
}

// Compare orders two non-null cell values of type t, returning -1, 0 or 1.
// Null handling is the sort engine's responsibility.
func Compare(t Type, a, b interface{}) int {
	return lookup(t).compare(a, b)
}

// DisplayValue renders a cell value the way the UI shows it. Search and
// non-typed grouping key it off this form.
func DisplayValue(t Type, v interface{}, cfg Config) string {
	return lookup(t).display(v, cfg)
}

// Evaluate applies a typed filter predicate to a non-empty cell value.
// Emptiness operators are resolved by the filter engine before dispatch.
// now anchors the relative date operators so evaluation stays
// deterministic under test.
func Evaluate(t Type, v interface{}, op Operator, condition interface{}, now time.Time) bool {
	return lookup(t).evaluate(v, op, condition, now)
}

// --- comparators ---

func compareText(a, b interface{}) int {
	sa, sb := AsString(a), AsString(b)
	if c := strings.Compare(strings.ToLower(sa), strings.ToLower(sb)); c != 0 {
		return c
	}
	return strings.Compare(sa, sb)
}

func compareNumber(a, b interface{}) int {
	na, aok := AsNumber(a)
	nb, bok := AsNumber(b)
	if !aok || !bok {
		// Unparseable numbers order as text so the sort stays total.
		return compareText(a, b)
	}
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}

func compareDate(a, b interface{}) int {
	ta, aok := AsTime(a)
	tb, bok := AsTime(b)
	if !aok || !bok {
		return compareText(a, b)
	}
	switch {
	case ta.Before(tb):
		return -1
	case ta.After(tb):
		return 1
	default:
		return 0
	}
}

func compareCheckbox(a, b interface{}) int {
	ba, bb := AsBool(a), AsBool(b)
	switch {
	case !ba && bb:
		return -1
	case ba && !bb:
		return 1
	default:
		return 0
	}
}

func compareStringSet(a, b interface{}) int {
	return compareText(strings.Join(AsStrings(a), ", "), strings.Join(AsStrings(b), ", "))
}

// compareFormula orders computed values numerically when both sides are
// numbers and textually otherwise.
func compareFormula(a, b interface{}) int {
	na, aok := AsNumber(a)
	nb, bok := AsNumber(b)
	if aok && bok {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return compareText(a, b)
}

// --- display coercions ---

func displayDefault(v interface{}, _ Config) string {
	return AsString(v)
}

func displayNumber(v interface{}, cfg Config) string {
	n, ok := AsNumber(v)
	if !ok {
		return AsString(v)
	}
	if cfg.Format == "integer" {
		return strconv.FormatFloat(n, 'f', 0, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func displayDate(v interface{}, cfg Config) string {
	t, ok := AsTime(v)
	if !ok {
		return AsString(v)
	}
	if cfg.Format == "iso" {
		if cfg.IncludeTime {
			return t.Format(time.RFC3339)
		}
		return t.Format("2006-01-02")
	}
	if cfg.IncludeTime {
		return t.Format("Jan 2, 2006 3:04 PM")
	}
	return t.Format("Jan 2, 2006")
}

func displayCheckbox(v interface{}, _ Config) string {
	if AsBool(v) {
		return "Yes"
	}
	return "No"
}

func displayStringSet(v interface{}, _ Config) string {
	return strings.Join(AsStrings(v), ", ")
}

// --- filter predicates ---

func evaluateText(v interface{}, op Operator, condition interface{}, _ time.Time) bool {
	s := AsString(v)
	c := AsString(condition)
	lower := strings.ToLower(s)
	lowerCond := strings.ToLower(c)

	switch op {
	case OpEquals:
		return s == c
	case OpDoesNotEqual:
		return s != c
	case OpContains:
		return strings.Contains(lower, lowerCond)
	case OpDoesNotContain:
		return !strings.Contains(lower, lowerCond)
	case OpStartsWith:
		return strings.HasPrefix(lower, lowerCond)
	case OpEndsWith:
		return strings.HasSuffix(lower, lowerCond)
	default:
		return false
	}
}

func evaluateNumber(v interface{}, op Operator, condition interface{}, _ time.Time) bool {
	n, ok := AsNumber(v)
	if !ok {
		return false
	}
	c, ok := AsNumber(condition)
	if !ok {
		return false
	}

	switch op {
	case OpEquals:
		return n == c
	case OpDoesNotEqual:
		return n != c
	case OpGreaterThan:
		return n > c
	case OpLessThan:
		return n < c
	case OpGreaterThanOrEqual:
		return n >= c
	case OpLessThanOrEqual:
		return n <= c
	default:
		return false
	}
}

func evaluateSelect(v interface{}, op Operator, condition interface{}, _ time.Time) bool {
	switch op {
	case OpEquals:
		return AsString(v) == AsString(condition)
	case OpDoesNotEqual:
		return AsString(v) != AsString(condition)
	default:
		return false
	}
}

func evaluateStringSet(v interface{}, op Operator, condition interface{}, _ time.Time) bool {
	members := AsStrings(v)
	c := AsString(condition)

	found := false
	for _, member := range members {
		if member == c {
			found = true
			break
		}
	}

	switch op {
	case OpContains:
		return found
	case OpDoesNotContain:
		return !found
	default:
		return false
	}
}

func evaluateDate(v interface{}, op Operator, condition interface{}, now time.Time) bool {
	t, ok := AsTime(v)
	if !ok {
		return false
	}
	day := CalendarDay(t)

	switch op {
	case OpEquals, OpBefore, OpAfter, OpOnOrBefore, OpOnOrAfter:
		ct, ok := AsTime(condition)
		if !ok {
			return false
		}
		cday := CalendarDay(ct)
		switch op {
		case OpEquals:
			return day.Equal(cday)
		case OpBefore:
			return day.Before(cday)
		case OpAfter:
			return day.After(cday)
		case OpOnOrBefore:
			return !day.After(cday)
		case OpOnOrAfter:
			return !day.Before(cday)
		}
		return false
	case OpPastWeek:
		return inWindow(day, now.AddDate(0, 0, -7), now)
	case OpPastMonth:
		return inWindow(day, now.AddDate(0, -1, 0), now)
	case OpPastYear:
		return inWindow(day, now.AddDate(-1, 0, 0), now)
	case OpNextWeek:
		return inWindow(day, now, now.AddDate(0, 0, 7))
	case OpNextMonth:
		return inWindow(day, now, now.AddDate(0, 1, 0))
	case OpNextYear:
		return inWindow(day, now, now.AddDate(1, 0, 0))
	default:
		return false
	}
}

// inWindow reports whether day falls within [from, to], inclusive at
// calendar-day granularity.
func inWindow(day, from, to time.Time) bool {
	fromDay := CalendarDay(from)
	toDay := CalendarDay(to)
	return !day.Before(fromDay) && !day.After(toDay)
}

func evaluateCheckbox(v interface{}, op Operator, _ interface{}, _ time.Time) bool {
	switch op {
	case OpChecked:
		return AsBool(v)
	case OpUnchecked:
		return !AsBool(v)
	default:
		return false
	}
}
