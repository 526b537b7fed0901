package decode

import (
	"strconv"
	"time"

	"github.com/sqlpipe/mywire/pkg/mywireerror"
	"github.com/sqlpipe/mywire/pkg/proto"
)

// TextDecoder decodes one text-protocol value of a specific SQL type.
type TextDecoder func(col *proto.ColumnDefinition, value []byte, charset byte) (any, error)

var textDecoders = map[byte]TextDecoder{
	proto.TypeTiny:       decodeTextInt,
	proto.TypeShort:      decodeTextInt,
	proto.TypeLong:       decodeTextInt,
	proto.TypeInt24:      decodeTextInt,
	proto.TypeLongLong:   decodeTextInt,
	proto.TypeYear:       decodeTextInt,
	proto.TypeFloat:      decodeTextFloat,
	proto.TypeDouble:     decodeTextFloat,
	proto.TypeDate:       decodeTextDate,
	proto.TypeDatetime:   decodeTextDatetime,
	proto.TypeTimestamp:  decodeTextDatetime,
	proto.TypeNull:       func(*proto.ColumnDefinition, []byte, byte) (any, error) { return nil, nil },
}

// TextDecoderFor returns the decoder registered for the column's declared
// type. Types without a dedicated decoder fall back to string or raw bytes
// depending on the column charset.
func TextDecoderFor(columnType byte) TextDecoder {
	if d, ok := textDecoders[columnType]; ok {
		return d
	}
	return decodeTextString
}

// DecodeText decodes one text-protocol value. A nil value is the NULL marker
// and passes through untouched.
func DecodeText(col *proto.ColumnDefinition, value []byte, charset byte) (any, error) {
	if value == nil {
		return nil, nil
	}
	return TextDecoderFor(col.Type)(col, value, charset)
}

func decodeTextInt(col *proto.ColumnDefinition, value []byte, _ byte) (any, error) {
	if col.Flags&proto.FlagUnsigned != 0 {
		v, err := strconv.ParseUint(string(value), 10, 64)
		if err != nil {
			return nil, mywireerror.Newf(mywireerror.MYWIRE_DECODE_ERROR, "column %q: %v", col.Name, err)
		}
		return v, nil
	}
	v, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return nil, mywireerror.Newf(mywireerror.MYWIRE_DECODE_ERROR, "column %q: %v", col.Name, err)
	}
	return v, nil
}

func decodeTextFloat(col *proto.ColumnDefinition, value []byte, _ byte) (any, error) {
	v, err := strconv.ParseFloat(string(value), 64)
	if err != nil {
		return nil, mywireerror.Newf(mywireerror.MYWIRE_DECODE_ERROR, "column %q: %v", col.Name, err)
	}
	return v, nil
}

func decodeTextDate(col *proto.ColumnDefinition, value []byte, _ byte) (any, error) {
	t, err := time.Parse(time.DateOnly, string(value))
	if err != nil {
		return nil, mywireerror.Newf(mywireerror.MYWIRE_DECODE_ERROR, "column %q: %v", col.Name, err)
	}
	return t, nil
}

func decodeTextDatetime(col *proto.ColumnDefinition, value []byte, _ byte) (any, error) {
	s := string(value)
	layout := time.DateTime
	if len(s) > len(time.DateTime) {
		layout = "2006-01-02 15:04:05.999999"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return nil, mywireerror.Newf(mywireerror.MYWIRE_DECODE_ERROR, "column %q: %v", col.Name, err)
	}
	return t, nil
}

// decodeTextString converts byte payloads to Go strings for character
// columns and keeps raw bytes for binary ones. The engine only negotiates
// UTF-8 compatible character sets, so no transcoding is needed.
func decodeTextString(col *proto.ColumnDefinition, value []byte, _ byte) (any, error) {
	if col.CharacterSet == uint16(proto.CharsetBinary) {
		return append([]byte{}, value...), nil
	}
	return string(value), nil
}
