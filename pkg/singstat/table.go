package singstat

import (
	"strconv"
	"strings"
)

// Table is the Data payload of a tabledata response.
type Table struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	TableType       string `json:"tableType"`
	DataLastUpdated string `json:"dataLastUpdated"`
	Rows            []Row  `json:"row"`
}

// Row is one table row; for planning-area tables RowText is the area label.
type Row struct {
	RowText string   `json:"rowText"`
	Columns []Column `json:"columns"`
}

// Column is a keyed cell. Grouped columns carry nested Columns instead of a
// Value.
type Column struct {
	Key     string   `json:"key"`
	Value   string   `json:"value"`
	Columns []Column `json:"columns"`
}

// Find returns the first column with the given key.
func Find(cols []Column, key string) (Column, bool) {
	for _, c := range cols {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// FindPrefix returns the first column whose key starts with prefix.
func FindPrefix(cols []Column, prefix string) (Column, bool) {
	for _, c := range cols {
		if strings.HasPrefix(c.Key, prefix) {
			return c, true
		}
	}
	return Column{}, false
}

// Find looks up a nested column.
func (c Column) Find(key string) (Column, bool) {
	return Find(c.Columns, key)
}

// FindPrefix looks up a nested column by key prefix.
func (c Column) FindPrefix(prefix string) (Column, bool) {
	return FindPrefix(c.Columns, prefix)
}

// Number parses the column value with ParseValue.
func (c Column) Number() float64 {
	return ParseValue(c.Value)
}

// ParseValue reads a published cell. Blank cells, "-" and "na" are zero,
// thousands separators are ignored and anything unparseable is zero.
func ParseValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "na") {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}
