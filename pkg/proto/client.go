package proto

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// HandshakeResponse is the client reply to the server greeting
// (HandshakeResponse41).
type HandshakeResponse struct {
	CapabilityFlags CapabilityFlag
	MaxPacketSize   uint32
	CharacterSet    byte
	Username        string
	AuthResponse    []byte
	Database        string
	AuthPluginName  string
}

func (*HandshakeResponse) Client() {}

func (m *HandshakeResponse) Encode(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(m.CapabilityFlags))
	dst = binary.LittleEndian.AppendUint32(dst, m.MaxPacketSize)
	dst = append(dst, m.CharacterSet)
	dst = append(dst, make([]byte, 23)...)
	dst = append(dst, m.Username...)
	dst = append(dst, 0)
	if m.CapabilityFlags&ClientSecureConn != 0 {
		dst = append(dst, byte(len(m.AuthResponse)))
		dst = append(dst, m.AuthResponse...)
	} else {
		dst = append(dst, m.AuthResponse...)
		dst = append(dst, 0)
	}
	if m.CapabilityFlags&ClientConnectWithDB != 0 {
		dst = append(dst, m.Database...)
		dst = append(dst, 0)
	}
	if m.CapabilityFlags&ClientPluginAuth != 0 {
		dst = append(dst, m.AuthPluginName...)
		dst = append(dst, 0)
	}
	return dst
}

// Query is a COM_QUERY text-protocol request.
type Query struct {
	String string
}

func (*Query) Client() {}

func (m *Query) Encode(dst []byte) []byte {
	dst = append(dst, ComQuery)
	return append(dst, m.String...)
}

// StmtPrepare is a COM_STMT_PREPARE request carrying the raw statement text.
type StmtPrepare struct {
	Query string
}

func (*StmtPrepare) Client() {}

func (m *StmtPrepare) Encode(dst []byte) []byte {
	dst = append(dst, ComStmtPrepare)
	return append(dst, m.Query...)
}

// StmtExecute is a COM_STMT_EXECUTE request. Values are encoded with the
// binary protocol; nil entries become NULL parameters.
type StmtExecute struct {
	StatementID uint32
	Flags       byte
	Values      []any
}

func (*StmtExecute) Client() {}

func (m *StmtExecute) Encode(dst []byte) []byte {
	dst = append(dst, ComStmtExecute)
	dst = binary.LittleEndian.AppendUint32(dst, m.StatementID)
	dst = append(dst, m.Flags)
	dst = binary.LittleEndian.AppendUint32(dst, 1) // iteration count

	n := len(m.Values)
	if n == 0 {
		return dst
	}

	nullBitmap := make([]byte, (n+7)/8)
	for i, v := range m.Values {
		if v == nil {
			nullBitmap[i/8] |= 1 << (uint(i) % 8)
		}
	}
	dst = append(dst, nullBitmap...)
	dst = append(dst, 1) // new-params-bound flag

	for _, v := range m.Values {
		t, unsigned := binaryParamType(v)
		dst = append(dst, t)
		if unsigned {
			dst = append(dst, 0x80)
		} else {
			dst = append(dst, 0)
		}
	}
	for _, v := range m.Values {
		dst = appendBinaryParamValue(dst, v)
	}
	return dst
}

// Quit is a COM_QUIT request.
type Quit struct{}

func (*Quit) Client() {}

func (m *Quit) Encode(dst []byte) []byte {
	return append(dst, ComQuit)
}

func binaryParamType(v any) (byte, bool) {
	switch v.(type) {
	case nil:
		return TypeNull, false
	case bool, int8:
		return TypeTiny, false
	case int16:
		return TypeShort, false
	case int32:
		return TypeLong, false
	case int, int64:
		return TypeLongLong, false
	case uint, uint64, uint32, uint16, uint8:
		return TypeLongLong, true
	case float32:
		return TypeFloat, false
	case float64:
		return TypeDouble, false
	case time.Time:
		return TypeDatetime, false
	case []byte:
		return TypeLongBlob, false
	default:
		return TypeVarString, false
	}
}

func appendBinaryParamValue(dst []byte, v any) []byte {
	switch val := v.(type) {
	case nil:
		return dst
	case bool:
		if val {
			return append(dst, 1)
		}
		return append(dst, 0)
	case int8:
		return append(dst, byte(val))
	case int16:
		return binary.LittleEndian.AppendUint16(dst, uint16(val))
	case int32:
		return binary.LittleEndian.AppendUint32(dst, uint32(val))
	case int:
		return binary.LittleEndian.AppendUint64(dst, uint64(val))
	case int64:
		return binary.LittleEndian.AppendUint64(dst, uint64(val))
	case uint8:
		return binary.LittleEndian.AppendUint64(dst, uint64(val))
	case uint16:
		return binary.LittleEndian.AppendUint64(dst, uint64(val))
	case uint32:
		return binary.LittleEndian.AppendUint64(dst, uint64(val))
	case uint:
		return binary.LittleEndian.AppendUint64(dst, uint64(val))
	case uint64:
		return binary.LittleEndian.AppendUint64(dst, val)
	case float32:
		return binary.LittleEndian.AppendUint32(dst, math.Float32bits(val))
	case float64:
		return binary.LittleEndian.AppendUint64(dst, math.Float64bits(val))
	case time.Time:
		return appendBinaryDatetime(dst, val)
	case []byte:
		return AppendLenEncBytes(dst, val)
	case string:
		return AppendLenEncBytes(dst, []byte(val))
	default:
		return AppendLenEncBytes(dst, []byte(fmt.Sprint(val)))
	}
}

func appendBinaryDatetime(dst []byte, t time.Time) []byte {
	micro := t.Nanosecond() / 1000
	if micro > 0 {
		dst = append(dst, 11)
	} else {
		dst = append(dst, 7)
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(t.Year()))
	dst = append(dst, byte(t.Month()), byte(t.Day()),
		byte(t.Hour()), byte(t.Minute()), byte(t.Second()))
	if micro > 0 {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(micro))
	}
	return dst
}
