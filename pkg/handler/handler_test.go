package handler

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/sqlpipe/mywire/pkg/config"
	"github.com/sqlpipe/mywire/pkg/mywireerror"
	"github.com/sqlpipe/mywire/pkg/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDelegate struct {
	handshakes []*proto.Handshake
	oks        []*proto.OKPacket
	errs       []*proto.ErrPacket
	eofs       []*proto.EOFPacket
	resultSets []*ResultSet
	resultEOFs []*proto.EOFPacket
	connected  int
	exceptions []error
}

func (d *recordingDelegate) OnHandshake(msg *proto.Handshake) { d.handshakes = append(d.handshakes, msg) }
func (d *recordingDelegate) OnOK(msg *proto.OKPacket)         { d.oks = append(d.oks, msg) }
func (d *recordingDelegate) OnError(msg *proto.ErrPacket)     { d.errs = append(d.errs, msg) }
func (d *recordingDelegate) OnEOF(msg *proto.EOFPacket)       { d.eofs = append(d.eofs, msg) }
func (d *recordingDelegate) OnResultSet(rs *ResultSet, eof *proto.EOFPacket) {
	d.resultSets = append(d.resultSets, rs)
	d.resultEOFs = append(d.resultEOFs, eof)
}
func (d *recordingDelegate) Connected()               { d.connected++ }
func (d *recordingDelegate) ExceptionCaught(err error) { d.exceptions = append(d.exceptions, err) }

func newTestHandler() (*Handler, *recordingDelegate) {
	delegate := &recordingDelegate{}
	h := NewHandler(&config.MywireConfig{Host: "localhost"}, delegate)
	return h, delegate
}

func takeWrite(t *testing.T, h *Handler) proto.ClientMessage {
	t.Helper()
	select {
	case w := <-h.writeq:
		return w.msg
	default:
		t.Fatal("no outbound write issued")
		return nil
	}
}

func assertNoWrite(t *testing.T, h *Handler) {
	t.Helper()
	select {
	case w := <-h.writeq:
		t.Fatalf("unexpected outbound write %T", w.msg)
	default:
	}
}

func colDef(name string, columnType byte) *proto.ColumnDefinition {
	return &proto.ColumnDefinition{
		Name:         name,
		Type:         columnType,
		CharacterSet: uint16(proto.CharsetUTF8MB4),
	}
}

func TestTextQueryResultDispatch(t *testing.T) {
	require := require.New(t)

	h, delegate := newTestHandler()

	h.dispatch(colDef("1", proto.TypeLongLong))
	h.dispatch(&proto.ColumnProcessingFinished{})
	h.dispatch(&proto.TextRow{Values: [][]byte{[]byte("1")}})
	h.dispatch(&proto.EOFPacket{})

	require.Len(delegate.resultSets, 1)
	rs := delegate.resultSets[0]
	require.Equal([]string{"1"}, rs.ColumnNames())
	require.Equal([]Row{{int64(1)}}, rs.Rows)
	require.Empty(delegate.eofs, "result-bearing EOF must go to OnResultSet, not OnEOF")

	// nothing leaks into the next exchange
	require.Nil(h.ex)
}

func TestColumnOrderFollowsArrivalOrder(t *testing.T) {
	h, delegate := newTestHandler()

	for _, name := range []string{"z", "a", "m"} {
		h.dispatch(colDef(name, proto.TypeLong))
	}
	h.dispatch(&proto.ColumnProcessingFinished{})
	h.dispatch(&proto.EOFPacket{})

	require.Len(t, delegate.resultSets, 1)
	assert.Equal(t, []string{"z", "a", "m"}, delegate.resultSets[0].ColumnNames())
}

func TestTextRowNullMarkerIsPositional(t *testing.T) {
	require := require.New(t)

	h, delegate := newTestHandler()

	h.dispatch(colDef("a", proto.TypeVarString))
	h.dispatch(colDef("b", proto.TypeLong))
	h.dispatch(&proto.ColumnProcessingFinished{})
	h.dispatch(&proto.TextRow{Values: [][]byte{nil, []byte("2")}})
	h.dispatch(&proto.EOFPacket{})

	require.Len(delegate.resultSets, 1)
	require.Equal([]Row{{nil, int64(2)}}, delegate.resultSets[0].Rows)
}

func TestBinaryRowsPreserveArrivalOrder(t *testing.T) {
	require := require.New(t)

	h, delegate := newTestHandler()

	rowPayload := func(v byte) []byte {
		return []byte{0x00, 0x00, v, 0, 0, 0, 0, 0, 0, 0}
	}

	h.dispatch(colDef("v", proto.TypeLongLong))
	h.dispatch(&proto.ColumnProcessingFinished{})
	h.dispatch(&proto.BinaryRow{Payload: rowPayload(7)})
	h.dispatch(&proto.BinaryRow{Payload: rowPayload(8)})
	h.dispatch(&proto.EOFPacket{})

	require.Len(delegate.resultSets, 1)
	require.Equal([]Row{{int64(7)}, {int64(8)}}, delegate.resultSets[0].Rows)
}

func TestExchangeClearedAtEveryTerminal(t *testing.T) {
	assert := assert.New(t)

	h, delegate := newTestHandler()

	h.dispatch(colDef("a", proto.TypeLong))
	h.dispatch(&proto.OKPacket{})
	assert.Nil(h.ex)
	assert.Len(delegate.oks, 1)

	h.dispatch(colDef("b", proto.TypeLong))
	h.dispatch(&proto.ErrPacket{Code: 1064})
	assert.Nil(h.ex)
	assert.Len(delegate.errs, 1)

	// EOF with no in-progress result set goes to OnEOF
	h.dispatch(&proto.EOFPacket{StatusFlags: proto.StatusInAutocommit})
	assert.Nil(h.ex)
	assert.Len(delegate.eofs, 1)
	assert.Empty(delegate.resultSets)
}

func TestPrepareFlowCachesAndIssuesDeferredExecute(t *testing.T) {
	require := require.New(t)

	h, _ := newTestHandler()

	h.WritePrepared("SELECT ?", []any{7})
	prep, ok := takeWrite(t, h).(*proto.StmtPrepare)
	require.True(ok)
	require.Equal("SELECT ?", prep.Query)
	require.NotNil(h.pendingPrepare)

	h.dispatch(&proto.PrepareOK{StatementID: 9, ParamCount: 1, ColumnCount: 1})
	h.dispatch(colDef("?", proto.TypeLongLong)) // parameter definition
	h.dispatch(&proto.ParamProcessingFinished{})
	h.dispatch(colDef("v", proto.TypeLongLong)) // result column definition
	h.dispatch(&proto.ColumnProcessingFinished{})

	// holder cached under the statement text
	def, ok := h.stmtCache.Get("SELECT ?")
	require.True(ok)
	require.Equal(uint32(9), def.StatementID)
	require.Len(def.ParamDefs, 1)
	require.Len(def.ColumnDefs, 1)

	// the deferred execute went out with the originally supplied value
	exec, ok := takeWrite(t, h).(*proto.StmtExecute)
	require.True(ok)
	require.Equal(uint32(9), exec.StatementID)
	require.Equal([]any{7}, exec.Values)

	// currently-preparing marker cleared
	require.Nil(h.pendingPrepare)
}

func TestSecondWriteOfSameTextExecutesFromCache(t *testing.T) {
	require := require.New(t)

	h, _ := newTestHandler()

	// first write prepares
	h.WritePrepared("SELECT ?", []any{7})
	require.IsType(&proto.StmtPrepare{}, takeWrite(t, h))

	h.dispatch(&proto.PrepareOK{StatementID: 9, ParamCount: 1, ColumnCount: 1})
	h.dispatch(colDef("?", proto.TypeLongLong))
	h.dispatch(colDef("v", proto.TypeLongLong))
	h.dispatch(&proto.ColumnProcessingFinished{})
	require.IsType(&proto.StmtExecute{}, takeWrite(t, h))

	// terminate the execute exchange
	h.dispatch(&proto.EOFPacket{})

	// second write goes straight to execute with the cached identifier
	h.WritePrepared("SELECT ?", []any{8})
	exec, ok := takeWrite(t, h).(*proto.StmtExecute)
	require.True(ok)
	require.Equal(uint32(9), exec.StatementID)
	require.Equal([]any{8}, exec.Values)
	assertNoWrite(t, h)
}

func TestParamAndColumnMarkerFinalizesHolder(t *testing.T) {
	require := require.New(t)

	h, _ := newTestHandler()

	h.WritePrepared("DO 1", nil)
	require.IsType(&proto.StmtPrepare{}, takeWrite(t, h))

	h.dispatch(&proto.PrepareOK{StatementID: 4})
	h.dispatch(&proto.ParamAndColumnProcessingFinished{})

	_, ok := h.stmtCache.Get("DO 1")
	require.True(ok)
	require.IsType(&proto.StmtExecute{}, takeWrite(t, h))
}

func TestRowOutsideResultSetIsAnException(t *testing.T) {
	h, delegate := newTestHandler()

	h.dispatch(&proto.TextRow{Values: [][]byte{[]byte("1")}})
	assert.Len(t, delegate.exceptions, 1)

	h.dispatch(&proto.BinaryRow{Payload: []byte{0x00, 0x00}})
	assert.Len(t, delegate.exceptions, 2)
}

func TestExceptionFailsOutcomeOnceAndAlwaysNotifies(t *testing.T) {
	require := require.New(t)

	h, delegate := newTestHandler()

	rootCause := errors.New("connection reset")
	h.HandleException(errors.Wrap(rootCause, "read packet header"))
	h.HandleException(errors.New("second failure"))
	h.HandleException(errors.New("third failure"))

	// the delegate hears every failure
	require.Len(delegate.exceptions, 3)
	require.Equal(rootCause, delegate.exceptions[0], "wrapper must be unwrapped to its cause")

	// the outcome keeps the first cause only
	require.True(h.Outcome().Completed())
	select {
	case <-h.Outcome().Done():
	default:
		t.Fatal("outcome not resolved")
	}
	_, err := h.Outcome().Wait(context.Background())
	require.Equal(rootCause, err)
}

func TestWriteAfterCloseRaisesException(t *testing.T) {
	require := require.New(t)

	h, delegate := newTestHandler()
	h.closed.Store(true)

	fut := h.WriteQuery("SELECT 1")
	require.True(fut.Completed())
	_, err := fut.Wait(context.Background())
	require.Error(err)

	// the failure also reaches the delegate so callers that never look at
	// the write future still hear about it
	require.Len(delegate.exceptions, 1)
	var me *mywireerror.MywireError
	require.ErrorAs(delegate.exceptions[0], &me)
	require.Equal(mywireerror.MYWIRE_CONNECTION_ERROR, me.ErrorCode)
}

func TestShortTextRowKeepsOneSlotPerColumn(t *testing.T) {
	require := require.New(t)

	h, delegate := newTestHandler()

	h.dispatch(colDef("a", proto.TypeLong))
	h.dispatch(colDef("b", proto.TypeVarString))
	h.dispatch(&proto.ColumnProcessingFinished{})
	h.dispatch(&proto.TextRow{Values: [][]byte{[]byte("1")}})
	h.dispatch(&proto.EOFPacket{})

	require.Len(delegate.resultSets, 1)
	require.Equal([]Row{{int64(1), nil}}, delegate.resultSets[0].Rows)
}

func TestHandshakeForwardedToDelegate(t *testing.T) {
	h, delegate := newTestHandler()

	hs := &proto.Handshake{ServerVersion: "8.0.32"}
	h.dispatch(hs)

	require.Len(t, delegate.handshakes, 1)
	assert.Same(t, hs, delegate.handshakes[0])
}
