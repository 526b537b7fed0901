package auth

import (
	"crypto/sha1"

	"github.com/sqlpipe/mywire/pkg/mywireerror"
	"github.com/sqlpipe/mywire/pkg/proto"
)

// ScramblePassword computes the mysql_native_password auth response:
// SHA1(password) XOR SHA1(scramble + SHA1(SHA1(password))).
func ScramblePassword(scramble []byte, password string) []byte {
	if password == "" {
		return nil
	}

	h := sha1.New()
	h.Write([]byte(password))
	stage1 := h.Sum(nil)

	h.Reset()
	h.Write(stage1)
	stage2 := h.Sum(nil)

	h.Reset()
	h.Write(scramble)
	h.Write(stage2)
	token := h.Sum(nil)

	for i := range token {
		token[i] ^= stage1[i]
	}
	return token
}

// BuildHandshakeResponse constructs the client reply to the server greeting,
// negotiating only the capabilities the engine actually speaks. In
// particular CLIENT_DEPRECATE_EOF stays off: the dispatcher keys its result
// boundaries on EOF markers.
func BuildHandshakeResponse(hs *proto.Handshake, user, password, database string, charset byte) (*proto.HandshakeResponse, error) {
	if hs.CapabilityFlags&proto.ClientProtocol41 == 0 {
		return nil, mywireerror.New(mywireerror.MYWIRE_AUTH_ERROR, "server does not speak protocol 4.1")
	}
	if hs.AuthPluginName != "" && hs.AuthPluginName != proto.AuthNativePassword {
		return nil, mywireerror.Newf(mywireerror.MYWIRE_AUTH_ERROR,
			"unsupported auth plugin %q", hs.AuthPluginName)
	}

	capabilities := proto.ClientProtocol41 |
		proto.ClientSecureConn |
		proto.ClientLongPassword |
		proto.ClientLongFlag |
		proto.ClientTransactions |
		proto.ClientPluginAuth
	if database != "" {
		capabilities |= proto.ClientConnectWithDB
	}

	scramble := hs.AuthPluginData
	if len(scramble) > 20 {
		scramble = scramble[:20]
	}

	return &proto.HandshakeResponse{
		CapabilityFlags: capabilities,
		MaxPacketSize:   proto.MaxPayloadSize,
		CharacterSet:    charset,
		Username:        user,
		AuthResponse:    ScramblePassword(scramble, password),
		Database:        database,
		AuthPluginName:  proto.AuthNativePassword,
	}, nil
}
