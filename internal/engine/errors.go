package engine

import "fmt"

// ErrorCode enumerates the engine's fixed error taxonomy: an integer code
// paired with a fixed message, rather than a free-form error string, so
// Error.Error() is a total function over the enum instead of an indexed
// lookup into a process-wide string table.
type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrUSBInitFailed
	ErrDeviceNotFound
	ErrCantSetConfig
	ErrCantClaimInterface
	ErrCantSetAltSetting
	ErrCantClearEndpoint
	ErrCantPrepareTransfer
	ErrMissingReadSpace
	ErrMissingWriteSpace
	ErrMissingRead
	ErrMissingWrite
	ErrMissingO2PAudio
	ErrMissingP2OAudio
	ErrMissingGetTime
	ErrMissingO2PMIDI
	ErrMissingP2OMIDI
	ErrThreadCreateFailed
	ErrGeneric
)

var errorMessages = map[ErrorCode]string{
	ErrNone: "no error",
	ErrUSBInitFailed: "USB subsystem initialisation failed",
	ErrDeviceNotFound: "device not found",
	ErrCantSetConfig: "cannot set USB configuration",
	ErrCantClaimInterface: "cannot claim USB interface",
	ErrCantSetAltSetting: "cannot set USB alternate setting",
	ErrCantClearEndpoint: "cannot clear USB endpoint halt",
	ErrCantPrepareTransfer: "cannot prepare USB transfer",
	ErrMissingReadSpace: "collaborator missing read_space hook",
	ErrMissingWriteSpace: "collaborator missing write_space hook",
	ErrMissingRead: "collaborator missing read hook",
	ErrMissingWrite: "collaborator missing write hook",
	ErrMissingO2PAudio: "collaborator missing o2p_audio ring",
	ErrMissingP2OAudio: "collaborator missing p2o_audio ring",
	ErrMissingGetTime: "collaborator missing get_time hook",
	ErrMissingO2PMIDI: "collaborator missing o2p_midi ring",
	ErrMissingP2OMIDI: "collaborator missing p2o_midi ring",
	ErrThreadCreateFailed: "failed to start engine thread",
	ErrGeneric: "generic engine error",
}

// String maps an error code to its fixed message as a total function over
// the enum, so an unrecognised code still prints something sensible.
func (c ErrorCode) String() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "unknown error"
}

// Error is the engine's structured error type.
type Error struct {
	Code ErrorCode
	Details string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("usbridge: [%d] %s: %s", e.Code, e.Code.String(), e.Details)
	}
	return fmt.Sprintf("usbridge: [%d] %s", e.Code, e.Code.String())
}

// NewError builds an *Error for the given code, with optional details.
func NewError(code ErrorCode, details ...string) error {
	e := &Error{Code: code}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}
