package handler

import "github.com/sqlpipe/mywire/pkg/proto"

// Row is one decoded result row. A nil entry is the NULL marker for that
// position; rows always have one entry per column.
type Row []any

// ResultSet accumulates the rows of one exchange together with the column
// metadata snapshot taken when the definition phase finished. Text and
// binary decoding paths converge here.
type ResultSet struct {
	Columns []*proto.ColumnDefinition
	Rows    []Row
}

func NewResultSet(columns []*proto.ColumnDefinition) *ResultSet {
	return &ResultSet{Columns: columns}
}

func (rs *ResultSet) Append(row Row) {
	rs.Rows = append(rs.Rows, row)
}

func (rs *ResultSet) ColumnNames() []string {
	names := make([]string, 0, len(rs.Columns))
	for _, col := range rs.Columns {
		names = append(names, col.Name)
	}
	return names
}
