// Package handler implements the protocol engine of one MySQL connection:
// the dispatch state machine that sequences inbound server messages into
// result sets, the prepared-statement executor with its text-keyed cache,
// and the exception coordinator guarding the single-assignment connect
// outcome.
//
// Inbound dispatch runs on a single goroutine per connection, which is what
// makes the unsynchronized mutation of exchange state and the statement
// cache safe. Callers must serialize exchanges themselves: the handler
// offers no internal queuing, and overlapping exchanges or concurrent
// prepares corrupt shared state by contract.
package handler

import (
	"github.com/pkg/errors"
	"github.com/sqlpipe/mywire/pkg/config"
	"github.com/sqlpipe/mywire/pkg/conn"
	"github.com/sqlpipe/mywire/pkg/decode"
	"github.com/sqlpipe/mywire/pkg/future"
	"github.com/sqlpipe/mywire/pkg/mywireerror"
	"github.com/sqlpipe/mywire/pkg/mywirelog"
	"github.com/sqlpipe/mywire/pkg/prepstatement"
	"github.com/sqlpipe/mywire/pkg/proto"
	"go.uber.org/atomic"
)

// pendingPrepare is the "currently preparing" marker: the statement text
// that triggered the outstanding prepare, the bound values of the deferred
// execute, and the holder under construction once the prepare response
// arrived.
type pendingPrepare struct {
	query  string
	values []any
	def    *prepstatement.PreparedStatementDefinition
}

type outboundWrite struct {
	msg proto.ClientMessage
	fut *future.Future
}

type Handler struct {
	cfg      *config.MywireConfig
	delegate Delegate

	instance   conn.DBInstance
	rowDecoder decode.RowDecoder
	charset    byte

	outcome   *future.Future
	stmtCache *prepstatement.Cache

	// mutated on the dispatch goroutine only
	ex             *exchange
	pendingPrepare *pendingPrepare

	writeq chan outboundWrite
	done   chan struct{}
	closed atomic.Bool
}

func NewHandler(cfg *config.MywireConfig, delegate Delegate) *Handler {
	return &Handler{
		cfg:        cfg,
		delegate:   delegate,
		rowDecoder: decode.BinaryRowDecoder{},
		charset:    cfg.Charset(),
		outcome:    future.New(),
		stmtCache:  prepstatement.NewCache(),
		writeq:     make(chan outboundWrite, 32),
		done:       make(chan struct{}),
	}
}

// NewHandlerWithInstance wires the engine onto an already-open transport and
// starts its dispatch and write loops. Callers that own their own dial (and
// tests) use this instead of Connect.
func NewHandlerWithInstance(cfg *config.MywireConfig, delegate Delegate, instance conn.DBInstance) *Handler {
	h := NewHandler(cfg, delegate)
	h.instance = instance
	h.delegate.Connected()
	go h.writeLoop()
	go h.serve()
	return h
}

// Outcome is the single-assignment connect outcome. The handler fails it on
// transport failure; fulfilling it on the success path is the delegate's
// job once the handshake has been accepted.
func (h *Handler) Outcome() *future.Future {
	return h.outcome
}

// Connect opens the transport to the configured endpoint with keep-alive
// enabled and starts the dispatch and write loops. The returned outcome is
// failed immediately on a transport-level connect failure.
func (h *Handler) Connect() *future.Future {
	instance, err := conn.NewInstanceConn(h.cfg.Addr(), h.cfg.ConnectTimeout(), h.cfg.KeepAlive())
	if err != nil {
		h.outcome.Fail(errors.Cause(err))
		return h.outcome
	}
	h.instance = instance
	h.delegate.Connected()
	go h.writeLoop()
	go h.serve()
	return h.outcome
}

// IsConnected reports whether the transport handle exists and is active.
func (h *Handler) IsConnected() bool {
	return h.instance != nil && h.instance.IsActive()
}

// Disconnect closes the transport. The returned future completes once the
// close finished. Outstanding futures of the connection fail through the
// exception path.
func (h *Handler) Disconnect() *future.Future {
	f := future.New()
	if h.instance == nil {
		f.Complete(nil)
		return f
	}
	if h.closed.CompareAndSwap(false, true) {
		// best effort; the server may already be gone
		_ = h.instance.Send(&proto.Quit{})
		close(h.done)
	}
	if err := h.instance.Close(); err != nil {
		f.Fail(err)
	} else {
		f.Complete(nil)
	}
	return f
}

// WriteQuery issues a text-protocol query.
func (h *Handler) WriteQuery(q string) *future.Future {
	mywirelog.Zero.Debug().
		Uint("handler", mywirelog.GetPointer(h)).
		Str("query", q).
		Msg("write query")
	return h.asyncSend(&proto.Query{String: q})
}

// WritePrepared executes a prepared statement. On a cache hit the execute is
// issued immediately with the cached identifier; on a miss the statement
// text is remembered as currently preparing and the execute is deferred
// until the prepare response and its definitions arrive.
//
// Only one prepare may be outstanding per connection; callers serialize.
func (h *Handler) WritePrepared(query string, values []any) *future.Future {
	if def, ok := h.stmtCache.Get(query); ok {
		mywirelog.Zero.Debug().
			Uint("handler", mywirelog.GetPointer(h)).
			Uint32("stmt-hash", def.Hash()).
			Msg("prepared statement cache hit")
		return h.executeStatement(def, values)
	}

	if h.pendingPrepare != nil {
		mywirelog.Zero.Warn().
			Uint("handler", mywirelog.GetPointer(h)).
			Str("query", query).
			Msg("second prepare issued while one is outstanding, behavior is undefined")
	}
	h.pendingPrepare = &pendingPrepare{query: query, values: values}
	return h.asyncSend(&proto.StmtPrepare{Query: query})
}

// SendHandshakeResponse forwards the delegate's answer to the greeting.
func (h *Handler) SendHandshakeResponse(resp *proto.HandshakeResponse) *future.Future {
	return h.asyncSend(resp)
}

// executeStatement clears the exchange accumulators and issues an execute
// with the cached statement identifier and the supplied bound values.
func (h *Handler) executeStatement(def *prepstatement.PreparedStatementDefinition, values []any) *future.Future {
	if h.ex != nil {
		h.ex.columns = nil
		h.ex.params = nil
	}
	return h.asyncSend(&proto.StmtExecute{
		StatementID: def.StatementID,
		Values:      values,
	})
}

func (h *Handler) asyncSend(msg proto.ClientMessage) *future.Future {
	if h.closed.Load() {
		err := mywireerror.New(mywireerror.MYWIRE_CONNECTION_ERROR, "connection is closed")
		h.HandleException(err)
		return future.Failed(err)
	}
	f := future.New()
	select {
	case h.writeq <- outboundWrite{msg: msg, fut: f}:
	case <-h.done:
		err := mywireerror.New(mywireerror.MYWIRE_CONNECTION_ERROR, "connection is closed")
		f.Fail(err)
		h.HandleException(err)
	}
	return f
}

// writeLoop resolves write futures off the caller's goroutine; a failed
// write is routed through the exception coordinator, not reported on a
// separate channel.
func (h *Handler) writeLoop() {
	for {
		select {
		case <-h.done:
			return
		case w := <-h.writeq:
			if err := h.instance.Send(w.msg); err != nil {
				w.fut.Fail(errors.Cause(err))
				h.HandleException(err)
				continue
			}
			w.fut.Complete(nil)
		}
	}
}

// serve is the dispatch loop: the single logical thread of execution that
// owns all inbound protocol state.
func (h *Handler) serve() {
	for {
		msg, err := h.instance.Receive()
		if err != nil {
			if h.closed.Load() {
				return
			}
			h.HandleException(err)
			h.shutdown()
			return
		}
		h.dispatch(msg)
	}
}

func (h *Handler) shutdown() {
	if h.closed.CompareAndSwap(false, true) {
		close(h.done)
	}
	_ = h.instance.Close()
}

// dispatch classifies one inbound message and drives the cache, the result
// assembler and the delegate.
func (h *Handler) dispatch(msg proto.ServerMessage) {
	switch v := msg.(type) {
	case *proto.Handshake:
		h.delegate.OnHandshake(v)

	case *proto.OKPacket:
		h.ex = nil
		h.delegate.OnOK(v)

	case *proto.ErrPacket:
		h.ex = nil
		h.delegate.OnError(v)

	case *proto.EOFPacket:
		var rs *ResultSet
		if h.ex != nil {
			rs = h.ex.resultSet
		}
		h.ex = nil
		if rs != nil {
			h.delegate.OnResultSet(rs, v)
		} else {
			h.delegate.OnEOF(v)
		}

	case *proto.ColumnDefinition:
		ex := h.exchange()
		if pp := h.pendingPrepare; pp != nil && pp.def != nil && pp.def.Expects() {
			if pp.def.Add(v) {
				ex.params = append(ex.params, v)
			}
		}
		ex.columns = append(ex.columns, v)

	case *proto.PrepareOK:
		if h.pendingPrepare == nil {
			h.HandleException(mywireerror.New(mywireerror.MYWIRE_EXCHANGE_ERROR,
				"prepare response without an outstanding prepare"))
			return
		}
		h.pendingPrepare.def = prepstatement.NewDefinition(h.pendingPrepare.query, v)

	case *proto.ParamProcessingFinished:
		// definitions keep coming; wait for the column phase

	case *proto.ColumnProcessingFinished:
		h.finalizeColumns()

	case *proto.ParamAndColumnProcessingFinished:
		h.finalizeColumns()

	case *proto.TextRow:
		h.appendTextRow(v)

	case *proto.BinaryRow:
		h.appendBinaryRow(v)

	default:
		mywirelog.Zero.Warn().
			Uint("handler", mywirelog.GetPointer(h)).
			Type("msg", msg).
			Msg("unhandled message kind")
	}
}

// finalizeColumns ends the definition phase of the exchange: the result set
// is built from the holder's columns when a prepare just finished, else from
// the exchange's own accumulator. A freshly completed holder is cached and
// its deferred execute issued before the currently-preparing marker clears.
func (h *Handler) finalizeColumns() {
	if pp := h.pendingPrepare; pp != nil && pp.def != nil {
		h.exchange().resultSet = NewResultSet(pp.def.ColumnDefs)
		h.stmtCache.Store(pp.def)
		mywirelog.Zero.Debug().
			Uint("handler", mywirelog.GetPointer(h)).
			Uint32("stmt-hash", pp.def.Hash()).
			Uint32("stmt-id", pp.def.StatementID).
			Msg("prepared statement cached")
		h.executeStatement(pp.def, pp.values)
		h.pendingPrepare = nil
		return
	}
	ex := h.exchange()
	ex.resultSet = NewResultSet(append([]*proto.ColumnDefinition{}, ex.columns...))
}

func (h *Handler) appendTextRow(msg *proto.TextRow) {
	ex := h.ex
	if ex == nil || ex.resultSet == nil {
		h.HandleException(mywireerror.New(mywireerror.MYWIRE_EXCHANGE_ERROR, "text row outside of a result set"))
		return
	}
	cols := ex.resultSet.Columns
	if len(msg.Values) > len(cols) {
		h.HandleException(mywireerror.Newf(mywireerror.MYWIRE_EXCHANGE_ERROR,
			"text row with %d values for %d columns", len(msg.Values), len(cols)))
		return
	}
	row := make(Row, len(cols))
	for i, raw := range msg.Values {
		if raw == nil {
			continue
		}
		val, err := decode.DecodeText(cols[i], raw, h.charset)
		if err != nil {
			h.HandleException(err)
			return
		}
		row[i] = val
	}
	ex.resultSet.Append(row)
}

func (h *Handler) appendBinaryRow(msg *proto.BinaryRow) {
	ex := h.ex
	if ex == nil || ex.resultSet == nil {
		h.HandleException(mywireerror.New(mywireerror.MYWIRE_EXCHANGE_ERROR, "binary row outside of a result set"))
		return
	}
	values, err := h.rowDecoder.Decode(msg.Payload, ex.resultSet.Columns)
	if err != nil {
		h.HandleException(err)
		return
	}
	ex.resultSet.Append(Row(values))
}

func (h *Handler) exchange() *exchange {
	if h.ex == nil {
		h.ex = &exchange{}
	}
	return h.ex
}

// HandleException is the exception coordinator: it unwraps any framing-layer
// wrapper to expose the underlying cause, fails the connect outcome if it is
// still pending, and always notifies the delegate so post-handshake failures
// stay observable.
func (h *Handler) HandleException(err error) {
	cause := errors.Cause(err)
	if h.outcome.Fail(cause) {
		mywirelog.Zero.Debug().
			Uint("handler", mywirelog.GetPointer(h)).
			Err(cause).
			Msg("connect outcome failed")
	}
	h.delegate.ExceptionCaught(cause)
}
