package coltype

import "time"

// Coerce converts a stored cell value from one column type to another,
// as when a column's type is changed in place. Conversion is best
// effort: anything that cannot be represented in the target type falls
// back to the target's default value so a type change never fails a
// mutation.
func Coerce(v interface{}, from, to Type) interface{} {
	// Both tags must be registered; consult them up front so the
	// closed-set invariant still trips on programmer error.
	lookup(from)
	toDef := lookup(to)

	if from == to {
		return v
	}
	if IsEmpty(v) {
		return toDef.defaultValue()
	}

	switch to {
	case TypeText, TypeURL, TypeEmail, TypePhone, TypeCreatedBy, TypeLastEditedBy:
		// The string form shown to the user is the natural text rendering.
		return DisplayValue(from, v, Config{})

	case TypeNumber:
		if n, ok := AsNumber(v); ok {
			return n
		}
		return toDef.defaultValue()

	case TypeCheckbox:
		return AsBool(v)

	case TypeSelect:
		if members := AsStrings(v); len(members) > 0 {
			return members[0]
		}
		return AsString(v)

	case TypeMultiSelect, TypeFile, TypeRelation:
		if members := AsStrings(v); members != nil {
			out := make([]string, len(members))
			copy(out, members)
			return out
		}
		return toDef.defaultValue()

	case TypeDate, TypeCreatedTime, TypeLastEditedTime:
		if t, ok := AsTime(v); ok {
			return t.Format(time.RFC3339)
		}
		return toDef.defaultValue()

	case TypeFormula:
		// Formula cells are recomputed from the expression, not carried over.
		return toDef.defaultValue()

	default:
		return toDef.defaultValue()
	}
}
