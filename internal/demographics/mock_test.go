package demographics

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/bizmapper/pkg/singstat"
)

// --- SingStat Mock ---

type mockTableClient struct {
	mock.Mock
}

func (m *mockTableClient) TableData(ctx context.Context, tableID string) (*singstat.Table, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*singstat.Table), args.Error(1)
}

// --- Fixtures ---

func val(key, value string) singstat.Column {
	return singstat.Column{Key: key, Value: value}
}

func group(key string, cols ...singstat.Column) singstat.Column {
	return singstat.Column{Key: key, Columns: cols}
}

func populationFixture() *singstat.Table {
	return &singstat.Table{
		ID: singstat.TablePopulation, TableType: "Census of Population 2020", DataLastUpdated: "16/06/2021",
		Rows: []singstat.Row{
			{RowText: "Total", Columns: []singstat.Column{group("Total", val("Total", "4,044,210"))}},
			{RowText: "Bishan - Total", Columns: []singstat.Column{group("Total", val("Total", "88,000"))}},
			{RowText: "Bishan East", Columns: []singstat.Column{group("Total", val("Total", "30,000"))}},
			{RowText: "Seletar - Total", Columns: []singstat.Column{group("Total", val("Total", "400"))}},
		},
	}
}

// bishanAge is 25% young, 60% working, 15% senior with a median of 41.67.
func bishanAge() []singstat.Column {
	cols := []singstat.Column{val("Total", "20,000")}
	for _, k := range youngKeys {
		cols = append(cols, val(k, "1,000"))
	}
	for _, k := range workingKeys {
		cols = append(cols, val(k, "1,500"))
	}
	for _, k := range seniorKeys {
		cols = append(cols, val(k, "500"))
	}
	return cols
}

func ageFixture() *singstat.Table {
	return &singstat.Table{
		ID: singstat.TableAge, TableType: "Census of Population 2020", DataLastUpdated: "18/06/2021",
		Rows: []singstat.Row{
			{RowText: "Total", Columns: []singstat.Column{group("Total", val("Total", "4,044,210"))}},
			{RowText: "Bishan - Total", Columns: []singstat.Column{group("Total", bishanAge()...)}},
			{RowText: "Seletar - Total", Columns: []singstat.Column{group("Total", val("Total", "0"))}},
		},
	}
}

func dwellingFixture() *singstat.Table {
	return &singstat.Table{
		ID: singstat.TableDwelling,
		Rows: []singstat.Row{
			{RowText: "Total", Columns: []singstat.Column{val("Total", "1,000,000")}},
			{RowText: "Bishan", Columns: []singstat.Column{
				val("Total", "30,000"),
				group("HDB Dwellings", val("1- and 2-Room Flats", "1,000"), val("Total HDB Dwellings", "18,000")),
				val("Condominiums and Other Apartments", "9,000"),
				val("Landed Properties", "2,400"),
				val("Others", "600"),
			}},
			{RowText: "Seletar", Columns: []singstat.Column{val("Total", "-")}},
		},
	}
}

func incomeFixture() *singstat.Table {
	return &singstat.Table{
		ID: singstat.TableIncome,
		Rows: []singstat.Row{
			{RowText: "Total", Columns: []singstat.Column{val("Total", "1,000,000")}},
			{RowText: "Bishan", Columns: []singstat.Column{
				val("Total", "12,000"),
				val("No Employed Person", "2,000"),
				val("Below $1,000", "2,000"),
				val("$5,000 - $5,999", "4,000"),
				val("$10,000 - $10,999", "4,000"),
			}},
		},
	}
}
