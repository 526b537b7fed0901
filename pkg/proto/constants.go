package proto

const (
	// MaxPayloadSize is the largest payload a single packet can carry.
	// Larger payloads continue in follow-up packets.
	MaxPayloadSize = 1<<24 - 1

	PacketHeaderSize = 4
)

// First payload bytes that identify server packets inside a command phase.
const (
	headerOK           byte = 0x00
	headerAuthMoreData byte = 0x01
	headerLocalInfile  byte = 0xfb
	headerEOF          byte = 0xfe
	headerERR          byte = 0xff
)

// Client commands.
// https://dev.mysql.com/doc/internals/en/command-phase.html
const (
	ComQuit        byte = 0x01
	ComInitDB      byte = 0x02
	ComQuery       byte = 0x03
	ComPing        byte = 0x0e
	ComStmtPrepare byte = 0x16
	ComStmtExecute byte = 0x17
	ComStmtClose   byte = 0x19
	ComStmtReset   byte = 0x1a
)

// Capability flags.
// https://dev.mysql.com/doc/internals/en/capability-flags.html
type CapabilityFlag uint32

const (
	ClientLongPassword CapabilityFlag = 1 << iota
	ClientFoundRows
	ClientLongFlag
	ClientConnectWithDB
	ClientNoSchema
	ClientCompress
	ClientODBC
	ClientLocalFiles
	ClientIgnoreSpace
	ClientProtocol41
	ClientInteractive
	ClientSSL
	ClientIgnoreSIGPIPE
	ClientTransactions
	ClientReserved
	ClientSecureConn
	ClientMultiStatements
	ClientMultiResults
	ClientPSMultiResults
	ClientPluginAuth
	ClientConnectAttrs
	ClientPluginAuthLenEncClientData
	ClientCanHandleExpiredPasswords
	ClientSessionTrack
	ClientDeprecateEOF
)

// Server status flags carried by OK and EOF packets.
type StatusFlag uint16

const (
	StatusInTrans StatusFlag = 1 << iota
	StatusInAutocommit
	statusReserved
	StatusMoreResultsExists
	StatusNoGoodIndexUsed
	StatusNoIndexUsed
	StatusCursorExists
	StatusLastRowSent
	StatusDbDropped
	StatusNoBackslashEscapes
	StatusMetadataChanged
	StatusQueryWasSlow
	StatusPsOutParams
	StatusInTransReadonly
	StatusSessionStateChanged
)

// Column field types.
// https://dev.mysql.com/doc/internals/en/com-query-response.html#column-type
const (
	TypeDecimal    byte = 0x00
	TypeTiny       byte = 0x01
	TypeShort      byte = 0x02
	TypeLong       byte = 0x03
	TypeFloat      byte = 0x04
	TypeDouble     byte = 0x05
	TypeNull       byte = 0x06
	TypeTimestamp  byte = 0x07
	TypeLongLong   byte = 0x08
	TypeInt24      byte = 0x09
	TypeDate       byte = 0x0a
	TypeTime       byte = 0x0b
	TypeDatetime   byte = 0x0c
	TypeYear       byte = 0x0d
	TypeNewDate    byte = 0x0e
	TypeVarchar    byte = 0x0f
	TypeBit        byte = 0x10
	TypeJSON       byte = 0xf5
	TypeNewDecimal byte = 0xf6
	TypeEnum       byte = 0xf7
	TypeSet        byte = 0xf8
	TypeTinyBlob   byte = 0xf9
	TypeMediumBlob byte = 0xfa
	TypeLongBlob   byte = 0xfb
	TypeBlob       byte = 0xfc
	TypeVarString  byte = 0xfd
	TypeString     byte = 0xfe
	TypeGeometry   byte = 0xff
)

// Column definition flags.
type FieldFlag uint16

const (
	FlagNotNull  FieldFlag = 1 << 0
	FlagPriKey   FieldFlag = 1 << 1
	FlagUnsigned FieldFlag = 1 << 5
	FlagBinary   FieldFlag = 1 << 7
)

// Collation ids the engine cares about.
const (
	CharsetUTF8    byte = 33 // utf8_general_ci
	CharsetBinary  byte = 63
	CharsetUTF8MB4 byte = 45 // utf8mb4_general_ci
)

const AuthNativePassword = "mysql_native_password"
