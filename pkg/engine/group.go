package engine

import (
	"github.com/gridbase/gridbase/pkg/coltype"
	"github.com/gridbase/gridbase/pkg/model"
)

// Sentinel group keys.
const (
	// GroupAll is the single group when no group column is set.
	GroupAll = "all"
	// GroupNoSelection buckets rows with no Select/MultiSelect value.
	GroupNoSelection = "No selection"
	// GroupNoDate buckets rows with no Date value.
	GroupNoDate = "No date"
	// GroupChecked and GroupUnchecked are the two Checkbox buckets.
	GroupChecked   = "Checked"
	GroupUnchecked = "Unchecked"
	// GroupEmpty buckets empty values of any other type.
	GroupEmpty = "Empty"
)

// dateGroupLayout formats Date group keys.
const dateGroupLayout = "Jan 2, 2006"

// GroupRows partitions rows into named buckets by the given column.
// Group key order is first-seen order over the input rows. A
// MultiSelect column fans out: a row with N tags lands in all N groups,
// so the sum of group sizes can exceed the row count. An empty
// groupByColumnID, or one no longer present in the schema, yields the
// single "all" group.
func GroupRows(rows []model.Row, columns []model.Column, groupByColumnID string) *model.RowGroups {
	groups := model.NewRowGroups()

	var groupCol *model.Column
	for i := range columns {
		if columns[i].ID == groupByColumnID {
			groupCol = &columns[i]
			break
		}
	}
	if groupByColumnID == "" || groupCol == nil {
		groups.AddKey(GroupAll)
		for _, row := range rows {
			groups.Add(GroupAll, row)
		}
		return groups
	}

	for _, row := range rows {
		value := row.Data[groupCol.ID]
		switch groupCol.Type {
		case coltype.TypeSelect:
			key := coltype.AsString(value)
			if key == "" {
				key = GroupNoSelection
			}
			groups.Add(key, row)

		case coltype.TypeMultiSelect:
			tags := coltype.AsStrings(value)
			if len(tags) == 0 {
				groups.Add(GroupNoSelection, row)
				continue
			}
			for _, tag := range tags {
				groups.Add(tag, row)
			}

		case coltype.TypeCheckbox:
			if coltype.AsBool(value) {
				groups.Add(GroupChecked, row)
			} else {
				groups.Add(GroupUnchecked, row)
			}

		case coltype.TypeDate, coltype.TypeCreatedTime, coltype.TypeLastEditedTime:
			if t, ok := coltype.AsTime(value); ok {
				groups.Add(t.Format(dateGroupLayout), row)
			} else {
				groups.Add(GroupNoDate, row)
			}

		default:
			key := coltype.DisplayValue(groupCol.Type, value, groupCol.Config)
			if key == "" {
				key = GroupEmpty
			}
			groups.Add(key, row)
		}
	}

	return groups
}
