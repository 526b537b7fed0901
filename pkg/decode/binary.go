package decode

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/sqlpipe/mywire/pkg/mywireerror"
	"github.com/sqlpipe/mywire/pkg/proto"
)

// RowDecoder turns a raw binary-protocol row into ordered typed values.
type RowDecoder interface {
	Decode(payload []byte, columns []*proto.ColumnDefinition) ([]any, error)
}

// BinaryRowDecoder decodes binary-protocol rows: a 0x00 header, a null
// bitmap with a two-bit offset, then the non-null values in column order
// encoded by declared type.
type BinaryRowDecoder struct{}

var _ RowDecoder = BinaryRowDecoder{}

func (BinaryRowDecoder) Decode(payload []byte, columns []*proto.ColumnDefinition) ([]any, error) {
	if len(payload) == 0 || payload[0] != 0x00 {
		return nil, mywireerror.New(mywireerror.MYWIRE_DECODE_ERROR, "malformed binary row header")
	}
	bitmapLen := (len(columns) + 7 + 2) / 8
	if len(payload) < 1+bitmapLen {
		return nil, mywireerror.New(mywireerror.MYWIRE_DECODE_ERROR, "binary row shorter than null bitmap")
	}
	bitmap := payload[1 : 1+bitmapLen]
	pos := 1 + bitmapLen

	values := make([]any, len(columns))
	for i, col := range columns {
		bit := uint(i) + 2
		if bitmap[bit/8]&(1<<(bit%8)) != 0 {
			values[i] = nil
			continue
		}
		v, n, err := decodeBinaryValue(payload[pos:], col)
		if err != nil {
			return nil, err
		}
		values[i] = v
		pos += n
	}
	return values, nil
}

func decodeBinaryValue(b []byte, col *proto.ColumnDefinition) (any, int, error) {
	unsigned := col.Flags&proto.FlagUnsigned != 0

	switch col.Type {
	case proto.TypeNull:
		return nil, 0, nil

	case proto.TypeTiny:
		if len(b) < 1 {
			return nil, 0, truncated(col)
		}
		if unsigned {
			return uint64(b[0]), 1, nil
		}
		return int64(int8(b[0])), 1, nil

	case proto.TypeShort, proto.TypeYear:
		if len(b) < 2 {
			return nil, 0, truncated(col)
		}
		v := binary.LittleEndian.Uint16(b)
		if unsigned {
			return uint64(v), 2, nil
		}
		return int64(int16(v)), 2, nil

	case proto.TypeLong, proto.TypeInt24:
		if len(b) < 4 {
			return nil, 0, truncated(col)
		}
		v := binary.LittleEndian.Uint32(b)
		if unsigned {
			return uint64(v), 4, nil
		}
		return int64(int32(v)), 4, nil

	case proto.TypeLongLong:
		if len(b) < 8 {
			return nil, 0, truncated(col)
		}
		v := binary.LittleEndian.Uint64(b)
		if unsigned {
			return v, 8, nil
		}
		return int64(v), 8, nil

	case proto.TypeFloat:
		if len(b) < 4 {
			return nil, 0, truncated(col)
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), 4, nil

	case proto.TypeDouble:
		if len(b) < 8 {
			return nil, 0, truncated(col)
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), 8, nil

	case proto.TypeDate, proto.TypeDatetime, proto.TypeTimestamp, proto.TypeNewDate:
		return decodeBinaryDatetime(b, col)

	case proto.TypeTime:
		return decodeBinaryTime(b, col)

	default:
		// Strings, decimals, blobs, enums, sets, bit, JSON, geometry:
		// all length-encoded byte strings on the wire.
		s, isNull, n, err := proto.ReadLenEncBytes(b)
		if err != nil {
			return nil, 0, err
		}
		if isNull {
			return nil, n, nil
		}
		if col.CharacterSet == uint16(proto.CharsetBinary) {
			return append([]byte{}, s...), n, nil
		}
		return string(s), n, nil
	}
}

func decodeBinaryDatetime(b []byte, col *proto.ColumnDefinition) (any, int, error) {
	if len(b) < 1 {
		return nil, 0, truncated(col)
	}
	size := int(b[0])
	if len(b) < 1+size {
		return nil, 0, truncated(col)
	}
	var year, micro int
	var month time.Month
	var day, hour, minute, sec int
	switch size {
	case 0:
	case 4:
		year = int(binary.LittleEndian.Uint16(b[1:]))
		month = time.Month(b[3])
		day = int(b[4])
	case 7, 11:
		year = int(binary.LittleEndian.Uint16(b[1:]))
		month = time.Month(b[3])
		day = int(b[4])
		hour = int(b[5])
		minute = int(b[6])
		sec = int(b[7])
		if size == 11 {
			micro = int(binary.LittleEndian.Uint32(b[8:]))
		}
	default:
		return nil, 0, mywireerror.Newf(mywireerror.MYWIRE_DECODE_ERROR,
			"column %q: bad temporal length %d", col.Name, size)
	}
	return time.Date(year, month, day, hour, minute, sec, micro*1000, time.UTC), 1 + size, nil
}

func decodeBinaryTime(b []byte, col *proto.ColumnDefinition) (any, int, error) {
	if len(b) < 1 {
		return nil, 0, truncated(col)
	}
	size := int(b[0])
	if len(b) < 1+size {
		return nil, 0, truncated(col)
	}
	var d time.Duration
	switch size {
	case 0:
	case 8, 12:
		days := binary.LittleEndian.Uint32(b[2:])
		d = time.Duration(days)*24*time.Hour +
			time.Duration(b[6])*time.Hour +
			time.Duration(b[7])*time.Minute +
			time.Duration(b[8])*time.Second
		if size == 12 {
			d += time.Duration(binary.LittleEndian.Uint32(b[9:])) * time.Microsecond
		}
		if b[1] == 1 {
			d = -d
		}
	default:
		return nil, 0, mywireerror.Newf(mywireerror.MYWIRE_DECODE_ERROR,
			"column %q: bad time length %d", col.Name, size)
	}
	return d, 1 + size, nil
}

func truncated(col *proto.ColumnDefinition) error {
	return mywireerror.Newf(mywireerror.MYWIRE_DECODE_ERROR, "column %q: truncated binary value", col.Name)
}
