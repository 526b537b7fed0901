package decode

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/sqlpipe/mywire/pkg/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryRowDecode(t *testing.T) {
	require := require.New(t)

	columns := []*proto.ColumnDefinition{
		col(proto.TypeLongLong, 0),
		col(proto.TypeVarString, 0),
		col(proto.TypeDouble, 0), // NULL in this row
		col(proto.TypeLong, proto.FlagUnsigned),
	}

	payload := []byte{0x00}
	// four columns: bitmap is one byte, column 2 null -> bit 4
	payload = append(payload, 1<<4)
	payload = binary.LittleEndian.AppendUint64(payload, uint64(7))
	payload = proto.AppendLenEncBytes(payload, []byte("abc"))
	payload = binary.LittleEndian.AppendUint32(payload, 4000000000)

	values, err := BinaryRowDecoder{}.Decode(payload, columns)
	require.NoError(err)
	require.Equal([]any{int64(7), "abc", nil, uint64(4000000000)}, values)
}

func TestBinaryRowDecodeTemporal(t *testing.T) {
	require := require.New(t)

	columns := []*proto.ColumnDefinition{
		col(proto.TypeDatetime, 0),
		col(proto.TypeDate, 0),
		col(proto.TypeTime, 0),
	}

	payload := []byte{0x00, 0x00}

	// datetime 2024-02-29 13:37:05.250000
	payload = append(payload, 11)
	payload = binary.LittleEndian.AppendUint16(payload, 2024)
	payload = append(payload, 2, 29, 13, 37, 5)
	payload = binary.LittleEndian.AppendUint32(payload, 250000)

	// date 1999-12-31
	payload = append(payload, 4)
	payload = binary.LittleEndian.AppendUint16(payload, 1999)
	payload = append(payload, 12, 31)

	// negative time -1d 02:03:04
	payload = append(payload, 8, 1)
	payload = binary.LittleEndian.AppendUint32(payload, 1)
	payload = append(payload, 2, 3, 4)

	values, err := BinaryRowDecoder{}.Decode(payload, columns)
	require.NoError(err)
	require.Equal(time.Date(2024, 2, 29, 13, 37, 5, 250000000, time.UTC), values[0])
	require.Equal(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC), values[1])
	require.Equal(-(26*time.Hour + 3*time.Minute + 4*time.Second), values[2])
}

func TestBinaryRowDecodeFloat(t *testing.T) {
	columns := []*proto.ColumnDefinition{col(proto.TypeFloat, 0)}

	payload := []byte{0x00, 0x00}
	payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(1.5))

	values, err := BinaryRowDecoder{}.Decode(payload, columns)
	require.NoError(t, err)
	assert.Equal(t, 1.5, values[0])
}

func TestBinaryRowDecodeRejectsBadHeader(t *testing.T) {
	_, err := BinaryRowDecoder{}.Decode([]byte{0x01, 0x00}, nil)
	assert.Error(t, err)
}

func TestBinaryRowDecodeTruncated(t *testing.T) {
	columns := []*proto.ColumnDefinition{col(proto.TypeLongLong, 0)}
	_, err := BinaryRowDecoder{}.Decode([]byte{0x00, 0x00, 0x07}, columns)
	assert.Error(t, err)
}
