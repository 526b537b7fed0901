package mywireerror

import "fmt"

const (
	MYWIRE_UNEXPECTED       = "MYWU"
	MYWIRE_CONNECTION_ERROR = "MYWO"
	MYWIRE_PROTOCOL_ERROR   = "MYWP"
	MYWIRE_DECODE_ERROR     = "MYWD"
	MYWIRE_SERVER_ERROR     = "MYWS"
	MYWIRE_AUTH_ERROR       = "MYWA"
	MYWIRE_EXCHANGE_ERROR   = "MYWX"
)

var existingErrorCodeMap = map[string]string{
	MYWIRE_CONNECTION_ERROR: "Connection error",
	MYWIRE_PROTOCOL_ERROR:   "Protocol violation",
	MYWIRE_DECODE_ERROR:     "Value decode error",
	MYWIRE_SERVER_ERROR:     "Server reported error",
	MYWIRE_AUTH_ERROR:       "Authentication error",
	MYWIRE_EXCHANGE_ERROR:   "Exchange sequencing error",
}

func GetMessageByCode(errorCode string) string {
	rep, ok := existingErrorCodeMap[errorCode]
	if ok {
		return rep
	}
	return "Unexpected error"
}

var _ error = &MywireError{}

type MywireError struct {
	Err error

	ErrorCode string
}

func New(errorCode string, errorMsg string) *MywireError {
	err := &MywireError{
		Err:       fmt.Errorf("%s", errorMsg),
		ErrorCode: errorCode,
	}
	return err
}

func Newf(errorCode string, format string, a ...any) *MywireError {
	err := &MywireError{
		Err:       fmt.Errorf(format, a...),
		ErrorCode: errorCode,
	}
	return err
}

func (er *MywireError) Error() string {
	return fmt.Sprintf("Code: %s. Name: %s. Description: %s.",
		er.ErrorCode, GetMessageByCode(er.ErrorCode), er.Err)
}

func (er *MywireError) Unwrap() error {
	return er.Err
}
