package handler

import "github.com/sqlpipe/mywire/pkg/proto"

// exchange is the transient state of one in-flight query, prepare or
// execute cycle. It is created lazily at the first collected definition and
// swapped out as a whole at every terminating ok/error/eof, so no field of a
// finished exchange can leak into the next one.
type exchange struct {
	// definitions in arrival order
	columns []*proto.ColumnDefinition
	params  []*proto.ColumnDefinition

	// exists iff the exchange is between its column-definition-finished
	// marker and its terminating ok/error/eof
	resultSet *ResultSet
}
