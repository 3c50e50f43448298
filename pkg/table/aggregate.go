package table

import (
	"math"
	"sort"

	"github.com/panbanda/defectset/pkg/dataset"
	"github.com/panbanda/defectset/pkg/entity"
	"github.com/panbanda/defectset/pkg/stats"
)

// StatColumn names the aggregate column of one feature and statistic.
func StatColumn(feature string, s stats.Stat) string {
	return feature + "_" + string(s)
}

// Aggregate rolls the method table up to one row per outermost class. Every numeric
// or boolean column except labels and the excluded ones becomes eight columns, one
// per descriptive statistic. Missing cells are skipped; a statistic that is undefined
// for the group (std of a single value) is left missing.
func Aggregate(methods *Table, exclude ...string) *Table {
	skip := make(map[string]bool, len(exclude))
	for _, c := range exclude {
		skip[c] = true
	}
	var feats []string
	for _, c := range methods.columns {
		if IsLabel(c.Name) || skip[c.Name] {
			continue
		}
		if c.Kind == dataset.KindNumber || c.Kind == dataset.KindBool {
			feats = append(feats, c.Name)
		}
	}
	sort.Strings(feats)

	groups := make(map[entity.ID][]int)
	var order []entity.ID
	for i, id := range methods.ids {
		cls := id.ClassID()
		if _, ok := groups[cls]; !ok {
			order = append(order, cls)
		}
		groups[cls] = append(groups[cls], i)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Less(order[j]) })

	cols := make([]dataset.Column, 0, len(feats)*len(stats.All))
	for _, f := range feats {
		for _, s := range stats.All {
			cols = append(cols, dataset.Column{Name: StatColumn(f, s), Kind: dataset.KindNumber})
		}
	}

	out := newTable(cols)
	values := make([]float64, 0, 16)
	for _, cls := range order {
		row := make(dataset.Row, len(cols))
		for _, f := range feats {
			values = values[:0]
			for _, i := range groups[cls] {
				v, ok := methods.rows[i][f]
				if !ok {
					continue
				}
				if x, ok := v.Float(); ok {
					values = append(values, x)
				}
			}
			sum := stats.Describe(values)
			for _, s := range stats.All {
				if x, ok := sum.Get(s); ok && !math.IsNaN(x) {
					row[StatColumn(f, s)] = dataset.Number(x)
				}
			}
		}
		out.appendRow(cls, row)
	}
	return out
}
