package dashboard

import (
	"context"
	"fmt"

	"github.com/spf13/cast"

	"analyticsadmin/internal/table"
)

// GroupedTable aggregates the rows of a parent table by one component, summing
// the integer components listed in sums.
type GroupedTable struct {
	parent    table.DataSource
	groupBy   string
	sums      []string
	structure *table.Structure
}

func NewGroupedTable(parent table.DataSource, groupBy string, sums ...string) (*GroupedTable, error) {
	parentStructure := parent.Structure()
	groupBy, err := parentStructure.ResolveComponentID(groupBy)
	if err != nil {
		return nil, err
	}

	ids := append([]string{groupBy}, sums...)
	resolved := make([]string, 0, len(sums))
	var columns []table.Column
	positions := map[string]int{}
	for i, id := range ids {
		full, err := parentStructure.ResolveComponentID(id)
		if err != nil {
			return nil, err
		}
		field, _ := parentStructure.Component(full)
		if i > 0 {
			if field.Type != table.Int {
				return nil, fmt.Errorf("cannot sum %s: %s is not an int component", full, field.Type)
			}
			resolved = append(resolved, full)
		}

		columnName, _ := table.SplitComponentID(full)
		if pos, ok := positions[columnName]; ok {
			columns[pos].Components = append(columns[pos].Components, field)
			continue
		}
		column, _ := parentStructure.Column(columnName)
		positions[columnName] = len(columns)
		columns = append(columns, table.NewColumn(column.Name, column.Label, field))
	}

	structure, err := table.NewStructure(columns...)
	if err != nil {
		return nil, err
	}

	return &GroupedTable{parent: parent, groupBy: groupBy, sums: resolved, structure: structure}, nil
}

func (g *GroupedTable) Structure() *table.Structure {
	return g.structure
}

func (g *GroupedTable) Load(ctx context.Context, query *table.RowQuery) ([]table.Row, error) {
	rows, err := g.group(ctx)
	if err != nil {
		return nil, err
	}
	return table.NewMemorySource(g.structure, rows).Load(ctx, query)
}

func (g *GroupedTable) Count(ctx context.Context, query *table.RowQuery) (int, error) {
	rows, err := g.group(ctx)
	if err != nil {
		return 0, err
	}
	return table.NewMemorySource(g.structure, rows).Count(ctx, query)
}

func (g *GroupedTable) group(ctx context.Context) ([]table.Row, error) {
	parentRows, err := g.parent.Load(ctx, nil)
	if err != nil {
		return nil, err
	}

	var grouped []table.Row
	index := map[string]int{}
	for _, row := range parentRows {
		value := row.Get(g.groupBy)
		key := fmt.Sprintf("%T:%v", value, value)

		i, ok := index[key]
		if !ok {
			i = len(grouped)
			index[key] = i
			groupRow := table.Row{}
			groupRow.Set(g.groupBy, value)
			for _, id := range g.sums {
				groupRow.Set(id, int64(0))
			}
			grouped = append(grouped, groupRow)
		}

		for _, id := range g.sums {
			n, err := cast.ToInt64E(row.Get(id))
			if err != nil {
				return nil, fmt.Errorf("failed to sum %s: %w", id, err)
			}
			grouped[i].Set(id, grouped[i].Get(id).(int64)+n)
		}
	}
	return grouped, nil
}
