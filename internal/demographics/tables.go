package demographics

import (
	"math"
	"strings"

	"github.com/sells-group/bizmapper/internal/model"
	"github.com/sells-group/bizmapper/pkg/singstat"
)

const subzoneTotalSuffix = " - Total"

type areaRow struct {
	area    string
	columns []singstat.Column
}

// areaRows drops the national "Total" row. Tables broken down by subzone
// carry one "<Area> - Total" row per planning area; only those are kept.
func areaRows(rows []singstat.Row, bySubzone bool) []areaRow {
	out := make([]areaRow, 0, len(rows))
	for _, r := range rows {
		if r.RowText == "Total" {
			continue
		}
		text := r.RowText
		if bySubzone {
			if !strings.HasSuffix(text, subzoneTotalSuffix) {
				continue
			}
			text = strings.TrimSuffix(text, subzoneTotalSuffix)
		}
		out = append(out, areaRow{area: Normalize(text), columns: r.Columns})
	}
	return out
}

// populationByArea reads Total/Total for each planning area.
func populationByArea(t *singstat.Table) map[string]int {
	out := make(map[string]int)
	for _, r := range areaRows(t.Rows, true) {
		g, ok := singstat.Find(r.columns, "Total")
		if !ok {
			continue
		}
		c, ok := g.Find("Total")
		if !ok {
			continue
		}
		out[r.area] = int(c.Number())
	}
	return out
}

type ageStats struct {
	groups    model.AgeGroups
	medianAge int
	hasMedian bool
}

// ageByArea buckets the Total group's five-year brackets into bands and
// estimates the median age. Areas with a zero total are skipped.
func ageByArea(t *singstat.Table) map[string]ageStats {
	out := make(map[string]ageStats)
	for _, r := range areaRows(t.Rows, true) {
		g, ok := singstat.Find(r.columns, "Total")
		if !ok || len(g.Columns) == 0 {
			continue
		}
		counts := make(map[string]float64, len(g.Columns))
		var total float64
		for _, c := range g.Columns {
			if c.Key == "Total" {
				total = c.Number()
				continue
			}
			counts[c.Key] = c.Number()
		}
		if total <= 0 {
			continue
		}
		st := ageStats{
			groups: model.AgeGroups{
				Young:   percent(sumKeys(counts, youngKeys), total),
				Working: percent(sumKeys(counts, workingKeys), total),
				Senior:  percent(sumKeys(counts, seniorKeys), total),
			},
		}
		if m, ok := GroupedMedian(counts, ageBrackets, total); ok {
			st.medianAge = int(math.Round(m))
			st.hasMedian = true
		}
		out[r.area] = st
	}
	return out
}

// dwellingsByArea converts household counts by dwelling type into shares.
// HDB is read from the nested column whose key starts with "Total".
func dwellingsByArea(t *singstat.Table) map[string]model.Dwellings {
	out := make(map[string]model.Dwellings)
	for _, r := range areaRows(t.Rows, false) {
		var total, hdb, condo, landed, other float64
		for _, c := range r.columns {
			switch c.Key {
			case "Total":
				total = c.Number()
			case "HDB Dwellings":
				if sub, ok := c.FindPrefix("Total"); ok {
					hdb = sub.Number()
				}
			case "Condominiums and Other Apartments":
				condo = c.Number()
			case "Landed Properties":
				landed = c.Number()
			case "Others":
				other = c.Number()
			}
		}
		if total <= 0 {
			continue
		}
		out[r.area] = model.Dwellings{
			HDB:    percent(hdb, total),
			Condo:  percent(condo, total),
			Landed: percent(landed, total),
			Other:  percent(other, total),
		}
	}
	return out
}

// incomeByArea estimates median monthly household income from income
// brackets, ignoring households with no employed person.
func incomeByArea(t *singstat.Table) map[string]int {
	out := make(map[string]int)
	for _, r := range areaRows(t.Rows, false) {
		counts := make(map[string]float64, len(r.columns))
		var total float64
		for _, c := range r.columns {
			if c.Key == "Total" || c.Key == "No Employed Person" {
				continue
			}
			v := c.Number()
			counts[c.Key] = v
			total += v
		}
		if m, ok := GroupedMedian(counts, incomeBrackets, total); ok {
			out[r.area] = int(math.Round(m))
		}
	}
	return out
}
