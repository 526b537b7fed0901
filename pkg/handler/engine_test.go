package handler_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sqlpipe/mywire/pkg/config"
	"github.com/sqlpipe/mywire/pkg/conn"
	"github.com/sqlpipe/mywire/pkg/handler"
	mockhandler "github.com/sqlpipe/mywire/pkg/mock/handler"
	"github.com/sqlpipe/mywire/pkg/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/mock/gomock"
)

// scriptedInstance replays a fixed server-side conversation: inbound messages
// are fed through a channel and every outbound message is captured.
type scriptedInstance struct {
	incoming chan proto.ServerMessage
	sent     chan proto.ClientMessage
	closed   atomic.Bool
	status   conn.InstanceStatus
}

func newScriptedInstance() *scriptedInstance {
	return &scriptedInstance{
		incoming: make(chan proto.ServerMessage, 16),
		sent:     make(chan proto.ClientMessage, 16),
		status:   conn.ACQUIRED,
	}
}

func (si *scriptedInstance) Send(msg proto.ClientMessage) error {
	si.sent <- msg
	return nil
}

func (si *scriptedInstance) Receive() (proto.ServerMessage, error) {
	msg, ok := <-si.incoming
	if !ok {
		return nil, io.EOF
	}
	return msg, nil
}

func (si *scriptedInstance) Hostname() string { return "scripted" }

func (si *scriptedInstance) Close() error {
	if si.closed.CompareAndSwap(false, true) {
		close(si.incoming)
	}
	return nil
}

func (si *scriptedInstance) IsActive() bool { return !si.closed.Load() }

func (si *scriptedInstance) Status() conn.InstanceStatus { return si.status }

func (si *scriptedInstance) SetStatus(status conn.InstanceStatus) { si.status = status }

var _ conn.DBInstance = &scriptedInstance{}

func awaitSent(t *testing.T, si *scriptedInstance) proto.ClientMessage {
	t.Helper()
	select {
	case msg := <-si.sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no outbound message within deadline")
		return nil
	}
}

func TestEngineQueryRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	si := newScriptedInstance()
	delegate := mockhandler.NewMockDelegate(ctrl)

	resultSeen := make(chan *handler.ResultSet, 1)
	gomock.InOrder(
		delegate.EXPECT().Connected(),
		delegate.EXPECT().OnResultSet(gomock.Any(), gomock.Any()).
			Do(func(rs *handler.ResultSet, eof *proto.EOFPacket) {
				resultSeen <- rs
			}),
	)
	delegate.EXPECT().ExceptionCaught(gomock.Any()).AnyTimes()

	h := handler.NewHandlerWithInstance(&config.MywireConfig{Host: "scripted"}, delegate, si)
	defer h.Disconnect()

	fut := h.WriteQuery("SELECT 1")
	sent := awaitSent(t, si)
	q, ok := sent.(*proto.Query)
	require.True(t, ok, "expected a text query, got %T", sent)
	assert.Equal(t, "SELECT 1", q.String)
	_, err := fut.Wait(context.Background())
	require.NoError(t, err)

	col := &proto.ColumnDefinition{Name: "1", Type: proto.TypeLongLong}
	si.incoming <- col
	si.incoming <- &proto.ColumnProcessingFinished{}
	si.incoming <- &proto.TextRow{Values: [][]byte{[]byte("1")}}
	si.incoming <- &proto.EOFPacket{}

	select {
	case rs := <-resultSeen:
		require.Equal(t, []handler.Row{{int64(1)}}, rs.Rows)
	case <-time.After(2 * time.Second):
		t.Fatal("result set not delivered")
	}
}

func TestEngineTransportFailureFailsOutcome(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	si := newScriptedInstance()
	delegate := mockhandler.NewMockDelegate(ctrl)

	caught := make(chan error, 1)
	delegate.EXPECT().Connected()
	delegate.EXPECT().ExceptionCaught(gomock.Any()).Do(func(err error) {
		caught <- err
	})

	h := handler.NewHandlerWithInstance(&config.MywireConfig{Host: "scripted"}, delegate, si)

	// closing the scripted transport makes the read loop observe EOF
	require.NoError(t, si.Close())

	select {
	case err := <-caught:
		assert.Equal(t, io.EOF, err)
	case <-time.After(2 * time.Second):
		t.Fatal("exception not delivered")
	}

	_, err := h.Outcome().Wait(context.Background())
	assert.Equal(t, io.EOF, err)
	assert.False(t, h.IsConnected())
}

func TestEngineDisconnectSendsQuit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	si := newScriptedInstance()
	delegate := mockhandler.NewMockDelegate(ctrl)
	delegate.EXPECT().Connected()
	delegate.EXPECT().ExceptionCaught(gomock.Any()).AnyTimes()

	h := handler.NewHandlerWithInstance(&config.MywireConfig{Host: "scripted"}, delegate, si)

	fut := h.Disconnect()
	_, err := fut.Wait(context.Background())
	require.NoError(t, err)

	sent := awaitSent(t, si)
	assert.IsType(t, &proto.Quit{}, sent)
	assert.False(t, h.IsConnected())
}
