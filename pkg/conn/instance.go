package conn

import (
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/sqlpipe/mywire/pkg/mywirelog"
	"github.com/sqlpipe/mywire/pkg/netutil"
	"github.com/sqlpipe/mywire/pkg/proto"
	"go.uber.org/atomic"
)

type InstanceStatus string

const NotInitialized = InstanceStatus("NOT_INITIALIZED")
const ACQUIRED = InstanceStatus("ACQUIRED")
const CLOSED = InstanceStatus("CLOSED")

// DBInstance is the transport handle the protocol engine drives: typed
// message send/receive over one MySQL server connection.
type DBInstance interface {
	Send(msg proto.ClientMessage) error
	Receive() (proto.ServerMessage, error)

	Hostname() string

	Close() error
	IsActive() bool
	Status() InstanceStatus
	SetStatus(status InstanceStatus)
}

type MySQLInstance struct {
	conn     RawConn
	frontend *proto.Frontend

	hostname string
	status   InstanceStatus
	active   atomic.Bool
}

var _ DBInstance = &MySQLInstance{}

func (mi *MySQLInstance) SetStatus(status InstanceStatus) {
	mi.status = status
}

func (mi *MySQLInstance) Status() InstanceStatus {
	return mi.status
}

func (mi *MySQLInstance) Hostname() string {
	return mi.hostname
}

func (mi *MySQLInstance) IsActive() bool {
	return mi.active.Load() && netutil.TCPAlive(mi.conn)
}

func (mi *MySQLInstance) Close() error {
	if !mi.active.CompareAndSwap(true, false) {
		return nil
	}
	mi.status = CLOSED
	return mi.conn.Close()
}

func (mi *MySQLInstance) Send(msg proto.ClientMessage) error {
	mywirelog.Zero.Debug().
		Uint("instance", mywirelog.GetPointer(mi)).
		Type("msg", msg).
		Msg("instance send message")
	if err := mi.frontend.Send(msg); err != nil {
		return errors.Wrapf(err, "send to %s", mi.hostname)
	}
	return nil
}

func (mi *MySQLInstance) Receive() (proto.ServerMessage, error) {
	msg, err := mi.frontend.Receive()
	if err != nil {
		return nil, errors.Wrapf(err, "receive from %s", mi.hostname)
	}
	mywirelog.Zero.Debug().
		Uint("instance", mywirelog.GetPointer(mi)).
		Type("msg", msg).
		Msg("instance received message")
	return msg, nil
}

// NewInstanceConn dials host over TCP with keep-alive enabled and attaches
// the frame codec. The caller owns the handshake exchange that follows.
func NewInstanceConn(host string, connectTimeout, keepAlive time.Duration) (DBInstance, error) {
	mywirelog.Zero.Debug().
		Str("host", host).
		Msg("init new mysql instance connection")

	dialer := net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: keepAlive,
	}
	netconn, err := dialer.Dial("tcp", host)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", host)
	}

	instance := &MySQLInstance{
		hostname: host,
		conn:     netconn,
		status:   NotInitialized,
		frontend: proto.NewFrontend(netconn, netconn),
	}
	instance.active.Store(true)
	return instance, nil
}
