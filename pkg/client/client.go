// Package client offers a synchronous session on top of the asynchronous
// protocol engine. Connection is the handler's delegate: it answers the
// server greeting, fulfils the connect outcome on the first post-auth OK,
// and turns delegate callbacks into return values for Query and Execute.
package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/sqlpipe/mywire/pkg/auth"
	"github.com/sqlpipe/mywire/pkg/config"
	"github.com/sqlpipe/mywire/pkg/handler"
	"github.com/sqlpipe/mywire/pkg/mywireerror"
	"github.com/sqlpipe/mywire/pkg/mywirelog"
	"github.com/sqlpipe/mywire/pkg/proto"
	"go.uber.org/atomic"
)

// Result is the outcome of one exchange: a result set for row-returning
// statements, an OK packet otherwise.
type Result struct {
	ResultSet *handler.ResultSet
	OK        *proto.OKPacket
	EOF       *proto.EOFPacket
}

type Connection struct {
	id  uuid.UUID
	cfg *config.MywireConfig

	engine *handler.Handler

	ready atomic.Bool

	// one exchange in flight at a time; guarded by the engine's contract,
	// not by a lock
	pending chan outcome
}

type outcome struct {
	res Result
	err error
}

func NewConnection(cfg *config.MywireConfig) *Connection {
	c := &Connection{
		id:      uuid.New(),
		cfg:     cfg,
		pending: make(chan outcome, 1),
	}
	c.engine = handler.NewHandler(cfg, c)
	return c
}

func (c *Connection) ID() uuid.UUID {
	return c.id
}

// Connect dials the server and blocks until the handshake is accepted, the
// connect outcome fails, or ctx expires.
func (c *Connection) Connect(ctx context.Context) error {
	_, err := c.engine.Connect().Wait(ctx)
	return err
}

// Query runs a text-protocol query and waits for its terminating event.
func (c *Connection) Query(ctx context.Context, sql string) (*handler.ResultSet, error) {
	c.drainPending()
	c.engine.WriteQuery(sql)
	res, err := c.await(ctx)
	if err != nil {
		return nil, err
	}
	return res.ResultSet, nil
}

// Execute runs sql as a prepared statement with the given bound values.
// Identical statement text reuses the server-side prepared handle.
func (c *Connection) Execute(ctx context.Context, sql string, args ...any) (*Result, error) {
	c.drainPending()
	c.engine.WritePrepared(sql, args)
	res, err := c.await(ctx)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Close sends a quit and tears the transport down.
func (c *Connection) Close(ctx context.Context) error {
	_, err := c.engine.Disconnect().Wait(ctx)
	return err
}

func (c *Connection) IsConnected() bool {
	return c.engine.IsConnected()
}

func (c *Connection) await(ctx context.Context) (Result, error) {
	select {
	case out := <-c.pending:
		return out.res, out.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (c *Connection) drainPending() {
	select {
	case <-c.pending:
	default:
	}
}

func (c *Connection) deliver(out outcome) {
	select {
	case c.pending <- out:
	default:
		// nobody waiting; event belongs to no tracked exchange
	}
}

// OnHandshake answers the greeting with the configured credentials.
func (c *Connection) OnHandshake(msg *proto.Handshake) {
	mywirelog.Zero.Debug().
		Str("connection", c.id.String()).
		Str("server-version", msg.ServerVersion).
		Uint32("connection-id", msg.ConnectionID).
		Msg("server greeting")

	resp, err := auth.BuildHandshakeResponse(msg, c.cfg.User, c.cfg.Password, c.cfg.Database, c.cfg.Charset())
	if err != nil {
		c.engine.HandleException(err)
		return
	}
	c.engine.SendHandshakeResponse(resp)
}

// OnOK fulfils the connect outcome on the first OK after the handshake;
// later OKs terminate ordinary exchanges.
func (c *Connection) OnOK(msg *proto.OKPacket) {
	if c.ready.CompareAndSwap(false, true) {
		c.engine.Outcome().Complete(c)
		return
	}
	c.deliver(outcome{res: Result{OK: msg}})
}

func (c *Connection) OnError(msg *proto.ErrPacket) {
	err := mywireerror.Newf(mywireerror.MYWIRE_SERVER_ERROR, "%d (%s): %s", msg.Code, msg.SQLState, msg.Message)
	if !c.ready.Load() {
		c.engine.Outcome().Fail(err)
		return
	}
	c.deliver(outcome{err: err})
}

func (c *Connection) OnEOF(msg *proto.EOFPacket) {
	c.deliver(outcome{res: Result{EOF: msg}})
}

func (c *Connection) OnResultSet(rs *handler.ResultSet, eof *proto.EOFPacket) {
	c.deliver(outcome{res: Result{ResultSet: rs, EOF: eof}})
}

func (c *Connection) Connected() {
	mywirelog.Zero.Info().
		Str("connection", c.id.String()).
		Str("host", c.cfg.Addr()).
		Msg("transport active")
}

func (c *Connection) ExceptionCaught(err error) {
	mywirelog.Zero.Error().
		Str("connection", c.id.String()).
		Err(err).
		Msg("connection exception")
	c.deliver(outcome{err: err})
}

var _ handler.Delegate = &Connection{}
