package decode

import (
	"testing"
	"time"

	"github.com/sqlpipe/mywire/pkg/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func col(columnType byte, flags proto.FieldFlag) *proto.ColumnDefinition {
	return &proto.ColumnDefinition{
		Name:         "c",
		Type:         columnType,
		Flags:        flags,
		CharacterSet: uint16(proto.CharsetUTF8MB4),
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name     string
		col      *proto.ColumnDefinition
		value    []byte
		expected any
	}{
		{"null passes through", col(proto.TypeLong, 0), nil, nil},
		{"tiny", col(proto.TypeTiny, 0), []byte("-3"), int64(-3)},
		{"long", col(proto.TypeLong, 0), []byte("1"), int64(1)},
		{"longlong", col(proto.TypeLongLong, 0), []byte("-9000000000"), int64(-9000000000)},
		{"unsigned longlong", col(proto.TypeLongLong, proto.FlagUnsigned), []byte("18446744073709551615"), uint64(18446744073709551615)},
		{"year", col(proto.TypeYear, 0), []byte("2024"), int64(2024)},
		{"float", col(proto.TypeFloat, 0), []byte("1.5"), 1.5},
		{"double", col(proto.TypeDouble, 0), []byte("-2.25"), -2.25},
		{"decimal stays textual", col(proto.TypeNewDecimal, 0), []byte("3.140"), "3.140"},
		{"varchar", col(proto.TypeVarString, 0), []byte("hello"), "hello"},
		{"date", col(proto.TypeDate, 0), []byte("2024-02-29"), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"datetime", col(proto.TypeDatetime, 0), []byte("2024-02-29 13:37:00"), time.Date(2024, 2, 29, 13, 37, 0, 0, time.UTC)},
		{"datetime with micros", col(proto.TypeTimestamp, 0), []byte("2024-02-29 13:37:00.250000"), time.Date(2024, 2, 29, 13, 37, 0, 250000000, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.col, tt.value, proto.CharsetUTF8MB4)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeTextBinaryColumnKeepsBytes(t *testing.T) {
	binCol := col(proto.TypeBlob, proto.FlagBinary)
	binCol.CharacterSet = uint16(proto.CharsetBinary)

	got, err := DecodeText(binCol, []byte{0x01, 0x02}, proto.CharsetUTF8MB4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, got)
}

func TestDecodeTextBadInt(t *testing.T) {
	_, err := DecodeText(col(proto.TypeLong, 0), []byte("not-a-number"), proto.CharsetUTF8MB4)
	assert.Error(t, err)
}
