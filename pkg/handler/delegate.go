package handler

import "github.com/sqlpipe/mywire/pkg/proto"

//go:generate mockgen -source=pkg/handler/delegate.go -destination=pkg/mock/handler/mock_delegate.go -package=mock_handler

// Delegate is the primary consumer of protocol events. All callbacks are
// invoked synchronously on the dispatch goroutine, in dispatch order: the
// handshake always precedes query events, and OnResultSet fires only after
// every row of that exchange has arrived.
type Delegate interface {
	// OnHandshake delivers the server greeting. The implementation is
	// expected to answer it through SendHandshakeResponse.
	OnHandshake(msg *proto.Handshake)

	// OnOK delivers a completed non-result exchange.
	OnOK(msg *proto.OKPacket)

	// OnError delivers a server-reported error. The connection stays usable.
	OnError(msg *proto.ErrPacket)

	// OnEOF delivers a terminating EOF that carried no result set.
	OnEOF(msg *proto.EOFPacket)

	// OnResultSet delivers the assembled result of one exchange exactly
	// once, paired with the status metadata of its terminating EOF.
	OnResultSet(rs *ResultSet, eof *proto.EOFPacket)

	// Connected is invoked once the transport reports activity.
	Connected()

	// ExceptionCaught delivers the unwrapped cause of every transport or
	// codec failure, regardless of the connect outcome's state.
	ExceptionCaught(err error)
}
