// Package coltype defines the closed set of column types for gridbase
// databases and the per-type contract every other component consults:
// default value, allowed filter operators, comparator, display coercion
// and type-change coercion. The set is closed and known at compile time;
// looking up an unknown tag is a programmer error and panics.
package coltype

// Type is the tag identifying a column's type.
type Type string

const (
	// TypeText holds free-form text.
	TypeText Type = "text"
	// TypeNumber holds a numeric value.
	TypeNumber Type = "number"
	// TypeSelect holds a single option chosen from Config.Options.
	TypeSelect Type = "select"
	// TypeMultiSelect holds zero or more options chosen from Config.Options.
	TypeMultiSelect Type = "multi_select"
	// TypeDate holds an ISO timestamp string.
	TypeDate Type = "date"
	// TypeCheckbox holds a boolean.
	TypeCheckbox Type = "checkbox"
	// TypeURL holds a URL string.
	TypeURL Type = "url"
	// TypeEmail holds an email address string.
	TypeEmail Type = "email"
	// TypePhone holds a phone number string.
	TypePhone Type = "phone"
	// TypeFile holds a list of attachment names.
	TypeFile Type = "file"
	// TypeRelation holds references to rows in another database.
	TypeRelation Type = "relation"
	// TypeFormula holds a computed value; Config.Formula is the expression.
	TypeFormula Type = "formula"
	// TypeCreatedTime mirrors the row's creation timestamp.
	TypeCreatedTime Type = "created_time"
	// TypeLastEditedTime mirrors the row's last modification timestamp.
	TypeLastEditedTime Type = "last_edited_time"
	// TypeCreatedBy holds the identity that created the row.
	TypeCreatedBy Type = "created_by"
	// TypeLastEditedBy holds the identity that last edited the row.
	TypeLastEditedBy Type = "last_edited_by"
)

// Config carries the type-specific column configuration. Only the fields
// relevant to the column's type are meaningful; the rest stay zero.
type Config struct {
	// Options lists the selectable values for Select and MultiSelect.
	Options []string `json:"options,omitempty"`
	// Format selects a display format for Number ("integer") and
	// Date ("iso") columns.
	Format string `json:"format,omitempty"`
	// IncludeTime displays the time of day for Date columns.
	IncludeTime bool `json:"include_time,omitempty"`
	// Formula is the expression for Formula columns.
	Formula string `json:"formula,omitempty"`
	// DatabaseID is the target database for Relation columns.
	DatabaseID string `json:"database_id,omitempty"`
	// Multiple allows more than one reference in a Relation column.
	Multiple bool `json:"multiple,omitempty"`
}

// Operator identifies a filter predicate.
type Operator string

const (
	OpIsEmpty    Operator = "is_empty"
	OpIsNotEmpty Operator = "is_not_empty"

	OpEquals         Operator = "equals"
	OpDoesNotEqual   Operator = "does_not_equal"
	OpContains       Operator = "contains"
	OpDoesNotContain Operator = "does_not_contain"
	OpStartsWith     Operator = "starts_with"
	OpEndsWith       Operator = "ends_with"

	OpGreaterThan        Operator = "greater_than"
	OpLessThan           Operator = "less_than"
	OpGreaterThanOrEqual Operator = "greater_than_or_equal_to"
	OpLessThanOrEqual    Operator = "less_than_or_equal_to"

	OpBefore     Operator = "before"
	OpAfter      Operator = "after"
	OpOnOrBefore Operator = "on_or_before"
	OpOnOrAfter  Operator = "on_or_after"
	OpPastWeek   Operator = "past_week"
	OpPastMonth  Operator = "past_month"
	OpPastYear   Operator = "past_year"
	OpNextWeek   Operator = "next_week"
	OpNextMonth  Operator = "next_month"
	OpNextYear   Operator = "next_year"

	OpChecked   Operator = "checked"
	OpUnchecked Operator = "unchecked"
)
