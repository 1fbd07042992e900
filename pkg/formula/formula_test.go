package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridbase/gridbase/pkg/coltype"
	"github.com/gridbase/gridbase/pkg/model"
)

func scoreColumns() []model.Column {
	return []model.Column{
		{ID: "col-name", Name: "Name", Type: coltype.TypeText},
		{ID: "col-score", Name: "Score", Type: coltype.TypeNumber},
		{ID: "col-bonus", Name: "Bonus", Type: coltype.TypeNumber},
		{ID: "col-total", Name: "Score Total", Type: coltype.TypeNumber},
	}
}

func scoreRow() map[string]interface{} {
	return map[string]interface{}{
		"col-name":  "Widget",
		"col-score": float64(7),
		"col-bonus": float64(3),
		"col-total": float64(100),
	}
}

func TestCalculateArithmetic(t *testing.T) {
	columns := scoreColumns()
	row := scoreRow()

	tests := []struct {
		name    string
		formula string
		want    interface{}
	}{
		{"addition", "Score + Bonus", float64(10)},
		{"subtraction", "Score - Bonus", float64(4)},
		{"multiplication", "Score * Bonus", float64(21)},
		{"division", "Score / Bonus", float64(7) / float64(3)},
		{"precedence", "Score + Bonus * 2", float64(13)},
		{"parentheses", "(Score + Bonus) * 2", float64(20)},
		{"unary minus", "-Score + 10", float64(3)},
		{"plain constant", "42", float64(42)},
		{"decimal constant", "2.5 * 2", float64(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.formula, row, columns))
		})
	}
}

func TestCalculateSubstitution(t *testing.T) {
	columns := scoreColumns()
	row := scoreRow()

	t.Run("longer names substitute first", func(t *testing.T) {
		// "Score Total" must not be clobbered by the shorter "Score".
		assert.Equal(t, float64(107), Calculate("Score Total + Score", row, columns))
	})

	t.Run("text columns substitute as strings", func(t *testing.T) {
		assert.Equal(t, "Widget!", Calculate(`Name + "!"`, row, columns))
	})

	t.Run("missing cell value substitutes as zero", func(t *testing.T) {
		bare := map[string]interface{}{}
		assert.Equal(t, float64(5), Calculate("Score + 5", bare, columns))
	})

	t.Run("blank expression yields an empty string", func(t *testing.T) {
		assert.Equal(t, "", Calculate("", row, columns))
		assert.Equal(t, "", Calculate("   ", row, columns))
	})
}

func TestCalculateConcatenation(t *testing.T) {
	columns := scoreColumns()
	row := scoreRow()

	// A string on either side of + turns the operation into concatenation.
	assert.Equal(t, "Widget7", Calculate("Name + Score", row, columns))
	assert.Equal(t, "7Widget", Calculate("Score + Name", row, columns))
}

func TestCalculateErrors(t *testing.T) {
	columns := scoreColumns()
	row := scoreRow()

	tests := []struct {
		name    string
		formula string
		want    string
	}{
		{"division by zero", "Score / 0", "Error: division by zero"},
		{"string subtraction", "Name - Score", "Error: cannot subtract strings"},
		{"string multiplication", "Name * 2", "Error: cannot multiply strings"},
		{"unbalanced parens", "(Score + 1", "Error: missing closing parenthesis"},
		{"dangling operator", "Score +", "Error: unexpected token"},
		{"unknown identifier", "Score + Widgets", ErrInvalidFormula},
		{"empty operands", "+ *", "Error: unexpected token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.formula, row, columns)
			require.IsType(t, "", got)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsErrorValue(got))
		})
	}
}

func TestCalculateRejectsInjection(t *testing.T) {
	columns := scoreColumns()

	t.Run("hostile cell value stays inside its literal", func(t *testing.T) {
		row := map[string]interface{}{
			"col-name": `1); require('fs').rm('/'); (1`,
		}
		got := Calculate(`Name + "!"`, row, columns)
		// The payload is inert: it just concatenates like any other text.
		assert.Equal(t, `1); require('fs').rm('/'); (1!`, got)
	})

	t.Run("hostile cell with quotes cannot escape the literal", func(t *testing.T) {
		row := map[string]interface{}{
			"col-name": `"); system("`,
		}
		got := Calculate(`Name + "x"`, row, columns)
		assert.Equal(t, `"); system("x`, got)
	})

	t.Run("letters in the formula itself are rejected", func(t *testing.T) {
		assert.Equal(t, ErrInvalidFormula, Calculate("system('ls')", map[string]interface{}{}, columns))
		assert.Equal(t, ErrInvalidFormula, Calculate("1 + eval", map[string]interface{}{}, columns))
	})

	t.Run("stray quote in the formula is rejected", func(t *testing.T) {
		assert.Equal(t, ErrInvalidFormula, Calculate(`1 + "unterminated`, map[string]interface{}{}, columns))
	})
}

func TestCalculateNonFinite(t *testing.T) {
	columns := scoreColumns()
	got := Calculate("99999999999999999999999999999999999999 * 99999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999", map[string]interface{}{}, columns)
	assert.True(t, IsErrorValue(got))
}

func TestIsErrorValue(t *testing.T) {
	assert.True(t, IsErrorValue("Error: something"))
	assert.False(t, IsErrorValue("Errors happen"))
	assert.False(t, IsErrorValue(float64(3)))
	assert.False(t, IsErrorValue(nil))
}
