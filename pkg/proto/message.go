package proto

import (
	"encoding/binary"

	"github.com/sqlpipe/mywire/pkg/mywireerror"
)

// ServerMessage is a typed protocol message originated by the server.
type ServerMessage interface {
	Server()
	Decode(payload []byte) error
}

// ClientMessage is a typed protocol message sent by the client.
// Encode appends the packet payload (without the framing header) to dst.
type ClientMessage interface {
	Client()
	Encode(dst []byte) []byte
}

// Handshake is the initial server greeting (protocol V10).
type Handshake struct {
	ProtocolVersion byte
	ServerVersion   string
	ConnectionID    uint32
	AuthPluginData  []byte
	CapabilityFlags CapabilityFlag
	CharacterSet    byte
	StatusFlags     StatusFlag
	AuthPluginName  string
}

func (*Handshake) Server() {}

func (m *Handshake) Decode(payload []byte) error {
	if len(payload) < 1 {
		return mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "empty handshake packet")
	}
	m.ProtocolVersion = payload[0]
	pos := 1

	version, n := readNullTermString(payload[pos:])
	m.ServerVersion = version
	pos += n

	if len(payload) < pos+4+8+1+2 {
		return mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "short handshake packet")
	}
	m.ConnectionID = binary.LittleEndian.Uint32(payload[pos:])
	pos += 4

	m.AuthPluginData = append([]byte{}, payload[pos:pos+8]...)
	pos += 8 + 1 // plus filler byte

	m.CapabilityFlags = CapabilityFlag(binary.LittleEndian.Uint16(payload[pos:]))
	pos += 2

	if len(payload) > pos {
		m.CharacterSet = payload[pos]
		pos++
		m.StatusFlags = StatusFlag(binary.LittleEndian.Uint16(payload[pos:]))
		pos += 2
		m.CapabilityFlags |= CapabilityFlag(binary.LittleEndian.Uint16(payload[pos:])) << 16
		pos += 2

		authDataLen := int(payload[pos])
		pos += 1 + 10 // plus reserved bytes

		if m.CapabilityFlags&ClientSecureConn != 0 {
			// Part two of the scramble, trailing NUL excluded.
			rest := max(13, authDataLen-8) - 1
			if len(payload) < pos+rest {
				return mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "short handshake auth data")
			}
			m.AuthPluginData = append(m.AuthPluginData, payload[pos:pos+rest]...)
			pos += rest + 1
		}

		if m.CapabilityFlags&ClientPluginAuth != 0 && pos < len(payload) {
			m.AuthPluginName, _ = readNullTermString(payload[pos:])
		}
	}
	return nil
}

// OKPacket reports successful completion of a command.
type OKPacket struct {
	AffectedRows uint64
	LastInsertID uint64
	StatusFlags  StatusFlag
	Warnings     uint16
	Info         string
}

func (*OKPacket) Server() {}

func (m *OKPacket) Decode(payload []byte) error {
	if len(payload) < 1 || payload[0] != headerOK {
		return mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "malformed OK packet")
	}
	pos := 1
	affected, _, n := ReadLenEncInt(payload[pos:])
	if n == 0 {
		return mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "truncated OK packet")
	}
	m.AffectedRows = affected
	pos += n
	insertID, _, n := ReadLenEncInt(payload[pos:])
	if n == 0 {
		return mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "truncated OK packet")
	}
	m.LastInsertID = insertID
	pos += n
	if len(payload) >= pos+4 {
		m.StatusFlags = StatusFlag(binary.LittleEndian.Uint16(payload[pos:]))
		m.Warnings = binary.LittleEndian.Uint16(payload[pos+2:])
		pos += 4
	}
	if pos < len(payload) {
		m.Info = string(payload[pos:])
	}
	return nil
}

// ErrPacket reports a server-side error. The connection stays usable.
type ErrPacket struct {
	Code     uint16
	SQLState string
	Message  string
}

func (*ErrPacket) Server() {}

func (m *ErrPacket) Decode(payload []byte) error {
	if len(payload) < 3 || payload[0] != headerERR {
		return mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "malformed ERR packet")
	}
	m.Code = binary.LittleEndian.Uint16(payload[1:3])
	pos := 3
	if pos < len(payload) && payload[pos] == '#' {
		if len(payload) < pos+6 {
			return mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "truncated ERR packet")
		}
		m.SQLState = string(payload[pos+1 : pos+6])
		pos += 6
	}
	m.Message = string(payload[pos:])
	return nil
}

// EOFPacket terminates a result-returning exchange.
type EOFPacket struct {
	Warnings    uint16
	StatusFlags StatusFlag
}

func (*EOFPacket) Server() {}

func (m *EOFPacket) Decode(payload []byte) error {
	if len(payload) < 1 || payload[0] != headerEOF {
		return mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "malformed EOF packet")
	}
	if len(payload) >= 5 {
		m.Warnings = binary.LittleEndian.Uint16(payload[1:3])
		m.StatusFlags = StatusFlag(binary.LittleEndian.Uint16(payload[3:5]))
	}
	return nil
}

// isEOFPayload reports whether payload is an EOF marker rather than a row
// that happens to start with 0xfe.
func isEOFPayload(payload []byte) bool {
	return len(payload) > 0 && payload[0] == headerEOF && len(payload) < 9
}

// ColumnDefinition describes one result or parameter column
// (Protocol::ColumnDefinition41).
type ColumnDefinition struct {
	Catalog      string
	Schema       string
	Table        string
	OrgTable     string
	Name         string
	OrgName      string
	CharacterSet uint16
	ColumnLength uint32
	Type         byte
	Flags        FieldFlag
	Decimals     byte
}

func (*ColumnDefinition) Server() {}

func (m *ColumnDefinition) Decode(payload []byte) error {
	pos := 0
	for _, dst := range []*string{&m.Catalog, &m.Schema, &m.Table, &m.OrgTable, &m.Name, &m.OrgName} {
		s, _, n, err := ReadLenEncBytes(payload[pos:])
		if err != nil {
			return err
		}
		*dst = string(s)
		pos += n
	}
	// Fixed-length tail: its own length prefix, then the typed fields.
	fixLen, _, n := ReadLenEncInt(payload[pos:])
	if n == 0 || fixLen < 0x0a || len(payload) < pos+n+int(fixLen) {
		return mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "malformed column definition")
	}
	pos += n
	m.CharacterSet = binary.LittleEndian.Uint16(payload[pos:])
	m.ColumnLength = binary.LittleEndian.Uint32(payload[pos+2:])
	m.Type = payload[pos+6]
	m.Flags = FieldFlag(binary.LittleEndian.Uint16(payload[pos+7:]))
	m.Decimals = payload[pos+9]
	return nil
}

// PrepareOK is the first packet of a COM_STMT_PREPARE response.
type PrepareOK struct {
	StatementID  uint32
	ColumnCount  uint16
	ParamCount   uint16
	WarningCount uint16
}

func (*PrepareOK) Server() {}

func (m *PrepareOK) Decode(payload []byte) error {
	if len(payload) < 12 || payload[0] != headerOK {
		return mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "malformed prepare response")
	}
	m.StatementID = binary.LittleEndian.Uint32(payload[1:5])
	m.ColumnCount = binary.LittleEndian.Uint16(payload[5:7])
	m.ParamCount = binary.LittleEndian.Uint16(payload[7:9])
	m.WarningCount = binary.LittleEndian.Uint16(payload[10:12])
	return nil
}

// TextRow is one result row in the text protocol.
// A nil entry in Values is the NULL marker for that position.
type TextRow struct {
	Values [][]byte
}

func (*TextRow) Server() {}

func (m *TextRow) Decode(payload []byte) error {
	pos := 0
	for pos < len(payload) {
		v, isNull, n, err := ReadLenEncBytes(payload[pos:])
		if err != nil {
			return err
		}
		if isNull {
			m.Values = append(m.Values, nil)
		} else {
			m.Values = append(m.Values, append([]byte{}, v...))
		}
		pos += n
	}
	return nil
}

// BinaryRow is one result row in the binary protocol. The payload is kept
// raw: decoding requires the column definitions of the exchange and is done
// by the binary row decoder collaborator.
type BinaryRow struct {
	Payload []byte
}

func (*BinaryRow) Server() {}

func (m *BinaryRow) Decode(payload []byte) error {
	m.Payload = append([]byte{}, payload...)
	return nil
}

// ParamProcessingFinished marks the end of the parameter definitions of a
// prepare response.
type ParamProcessingFinished struct {
	EOF EOFPacket
}

func (*ParamProcessingFinished) Server() {}

func (m *ParamProcessingFinished) Decode(payload []byte) error {
	return m.EOF.Decode(payload)
}

// ColumnProcessingFinished marks the end of the column definitions of an
// exchange.
type ColumnProcessingFinished struct {
	EOF EOFPacket
}

func (*ColumnProcessingFinished) Server() {}

func (m *ColumnProcessingFinished) Decode(payload []byte) error {
	return m.EOF.Decode(payload)
}

// ParamAndColumnProcessingFinished marks the end of both definition phases
// at once. It is also synthesized by the codec when a prepare response
// declares neither parameters nor columns, in which case the server sends no
// markers at all.
type ParamAndColumnProcessingFinished struct {
	EOF EOFPacket
}

func (*ParamAndColumnProcessingFinished) Server() {}

func (m *ParamAndColumnProcessingFinished) Decode(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	return m.EOF.Decode(payload)
}
