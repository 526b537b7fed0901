package proto

import (
	"bufio"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/sqlpipe/mywire/pkg/mywireerror"
)

type phase int

const (
	phaseHandshake phase = iota
	phaseAuthResult
	phaseIdle
	phaseColumnCount
	phaseColumnDefs
	phaseTextRows
	phaseBinaryRows
	phasePrepareFirst
	phaseParamDefs
	phaseBindColumnDefs
)

// Frontend frames outbound client messages and turns the inbound byte stream
// into typed server messages. Column counts, column definitions and binary
// rows carry no distinguishing tag byte on the wire, so the Frontend tracks
// the current response phase from the commands it sends; the dispatcher above
// it only ever sees fully classified messages.
//
// Send and Receive may run on different goroutines: the codec state they
// share is mutex-guarded, and the blocking socket reads happen outside the
// lock. Exchanges themselves must still be serialized by the caller; the
// wire protocol has no way to pair overlapping commands with responses.
type Frontend struct {
	r *bufio.Reader
	w io.Writer

	// mu guards seq and the phase fields across the reader and writer
	// goroutines.
	mu  sync.Mutex
	seq uint8

	phase       phase
	binaryRows  bool
	prepareCols int

	// synthesized messages delivered before reading the next packet
	pending []ServerMessage
}

func NewFrontend(r io.Reader, w io.Writer) *Frontend {
	return &Frontend{
		r:     bufio.NewReader(r),
		w:     w,
		phase: phaseHandshake,
	}
}

// readPacket reads one framed packet, reassembling payloads split across
// continuation packets. Only the header's sequence bookkeeping takes the
// lock; the reads themselves block without it.
func (f *Frontend) readPacket() ([]byte, error) {
	var payload []byte
	for {
		header := make([]byte, PacketHeaderSize)
		if _, err := io.ReadFull(f.r, header); err != nil {
			return nil, errors.Wrap(err, "read packet header")
		}
		length := int(header[0]) | int(header[1])<<8 | int(header[2])<<16
		f.mu.Lock()
		f.seq = header[3] + 1
		f.mu.Unlock()

		chunk := make([]byte, length)
		if _, err := io.ReadFull(f.r, chunk); err != nil {
			return nil, errors.Wrap(err, "read packet payload")
		}
		payload = append(payload, chunk...)
		if length < MaxPayloadSize {
			return payload, nil
		}
	}
}

// writePacket frames payload, splitting it when it exceeds the maximum
// packet size. Callers hold f.mu.
func (f *Frontend) writePacket(payload []byte) error {
	for {
		chunk := payload
		if len(chunk) >= MaxPayloadSize {
			chunk = chunk[:MaxPayloadSize]
		}
		header := []byte{
			byte(len(chunk)), byte(len(chunk) >> 8), byte(len(chunk) >> 16),
			f.seq,
		}
		if _, err := f.w.Write(append(header, chunk...)); err != nil {
			return errors.Wrap(err, "write packet")
		}
		f.seq++
		payload = payload[len(chunk):]
		if len(payload) == 0 && len(chunk) < MaxPayloadSize {
			return nil
		}
	}
}

// Send encodes and writes one client message. Commands reset the packet
// sequence and arm the phase the response will be decoded under; the arming
// happens under the lock so a reader parked on the socket observes it by the
// time the response arrives.
func (f *Frontend) Send(msg ClientMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch msg.(type) {
	case *HandshakeResponse:
		// continues the handshake sequence, no reset
	case *Query:
		f.seq = 0
		f.phase = phaseColumnCount
		f.binaryRows = false
	case *StmtPrepare:
		f.seq = 0
		f.phase = phasePrepareFirst
	case *StmtExecute:
		f.seq = 0
		f.phase = phaseColumnCount
		f.binaryRows = true
	default:
		f.seq = 0
	}
	return f.writePacket(msg.Encode(nil))
}

// Receive reads and classifies the next server message.
func (f *Frontend) Receive() (ServerMessage, error) {
	f.mu.Lock()
	if len(f.pending) > 0 {
		msg := f.pending[0]
		f.pending = f.pending[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()

	for {
		payload, err := f.readPacket()
		if err != nil {
			return nil, err
		}
		if len(payload) == 0 {
			return nil, mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "empty packet")
		}

		msg, err := f.classify(payload)
		if err != nil {
			return nil, err
		}
		if msg == nil {
			// protocol plumbing swallowed by the codec; read on
			continue
		}
		return msg, nil
	}
}

// classify turns one payload into a typed message under the current phase.
// A nil, nil return means the packet was codec-internal plumbing.
func (f *Frontend) classify(payload []byte) (ServerMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.phase {
	case phaseHandshake:
		if payload[0] == headerERR {
			f.phase = phaseIdle
			return f.decode(&ErrPacket{}, payload)
		}
		msg := &Handshake{}
		if err := msg.Decode(payload); err != nil {
			return nil, err
		}
		f.phase = phaseAuthResult
		return msg, nil

	case phaseAuthResult:
		switch payload[0] {
		case headerOK:
			f.phase = phaseIdle
			return f.decode(&OKPacket{}, payload)
		case headerERR:
			f.phase = phaseIdle
			return f.decode(&ErrPacket{}, payload)
		default:
			return nil, mywireerror.New(mywireerror.MYWIRE_AUTH_ERROR,
				"authentication method switch requested, only native password is supported")
		}

	case phaseColumnCount:
		switch payload[0] {
		case headerOK:
			f.phase = phaseIdle
			return f.decode(&OKPacket{}, payload)
		case headerERR:
			f.phase = phaseIdle
			return f.decode(&ErrPacket{}, payload)
		case headerLocalInfile:
			f.phase = phaseIdle
			return nil, mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "LOCAL INFILE is not supported")
		}
		if _, _, n := ReadLenEncInt(payload); n == 0 {
			return nil, mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "malformed column count")
		}
		f.phase = phaseColumnDefs
		return nil, nil

	case phaseColumnDefs:
		if isEOFPayload(payload) {
			if f.binaryRows {
				f.phase = phaseBinaryRows
			} else {
				f.phase = phaseTextRows
			}
			return f.decode(&ColumnProcessingFinished{}, payload)
		}
		return f.decode(&ColumnDefinition{}, payload)

	case phaseTextRows:
		if isEOFPayload(payload) {
			f.phase = phaseIdle
			return f.decode(&EOFPacket{}, payload)
		}
		if payload[0] == headerERR {
			f.phase = phaseIdle
			return f.decode(&ErrPacket{}, payload)
		}
		return f.decode(&TextRow{}, payload)

	case phaseBinaryRows:
		if isEOFPayload(payload) {
			f.phase = phaseIdle
			return f.decode(&EOFPacket{}, payload)
		}
		if payload[0] == headerERR {
			f.phase = phaseIdle
			return f.decode(&ErrPacket{}, payload)
		}
		return f.decode(&BinaryRow{}, payload)

	case phasePrepareFirst:
		if payload[0] == headerERR {
			f.phase = phaseIdle
			return f.decode(&ErrPacket{}, payload)
		}
		msg := &PrepareOK{}
		if err := msg.Decode(payload); err != nil {
			return nil, err
		}
		f.prepareCols = int(msg.ColumnCount)
		switch {
		case msg.ParamCount > 0:
			f.phase = phaseParamDefs
		case msg.ColumnCount > 0:
			f.phase = phaseBindColumnDefs
		default:
			// No definitions follow at all; synthesize the combined
			// marker so the finalize step above still runs.
			f.phase = phaseIdle
			f.pending = append(f.pending, &ParamAndColumnProcessingFinished{})
		}
		return msg, nil

	case phaseParamDefs:
		if isEOFPayload(payload) {
			if f.prepareCols > 0 {
				f.phase = phaseBindColumnDefs
				return f.decode(&ParamProcessingFinished{}, payload)
			}
			f.phase = phaseIdle
			return f.decode(&ParamAndColumnProcessingFinished{}, payload)
		}
		return f.decode(&ColumnDefinition{}, payload)

	case phaseBindColumnDefs:
		if isEOFPayload(payload) {
			f.phase = phaseIdle
			return f.decode(&ColumnProcessingFinished{}, payload)
		}
		return f.decode(&ColumnDefinition{}, payload)

	default: // phaseIdle
		switch payload[0] {
		case headerOK:
			return f.decode(&OKPacket{}, payload)
		case headerERR:
			return f.decode(&ErrPacket{}, payload)
		case headerEOF:
			if isEOFPayload(payload) {
				return f.decode(&EOFPacket{}, payload)
			}
		}
		return nil, mywireerror.Newf(mywireerror.MYWIRE_PROTOCOL_ERROR,
			"unexpected packet outside of an exchange: 0x%02x", payload[0])
	}
}

func (f *Frontend) decode(msg ServerMessage, payload []byte) (ServerMessage, error) {
	if err := msg.Decode(payload); err != nil {
		return nil, err
	}
	return msg, nil
}
