// Package coreerr defines the small, shared error taxonomy used across the
// emulator core so that cartridge parsing, CPU decoding, and the public
// facade can all produce and recognize the same fatal error kinds without
// introducing an import cycle back to the facade package.
package coreerr

import "fmt"

// Kind classifies a fatal core error. It is not meant to be compared for
// equality against arbitrary errors; callers should use errors.As against
// *Error and switch on Kind.
type Kind int

const (
	// MalformedHeader means the ROM was too short to contain a header, or
	// its ROM/RAM size code fell outside the supported table.
	MalformedHeader Kind = iota
	// UnimplementedMbc means the header declared a controller variant this
	// core does not handle.
	UnimplementedMbc
	// IllegalOpcode means the decoder fetched one of the eleven officially
	// undefined opcode bytes.
	IllegalOpcode
)

func (k Kind) String() string {
	switch k {
	case MalformedHeader:
		return "malformed header"
	case UnimplementedMbc:
		return "unimplemented mbc"
	case IllegalOpcode:
		return "illegal opcode"
	default:
		return "unknown"
	}
}

// Error is a fatal core error, tagged with a Kind so callers can branch on
// the failure category without parsing strings.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// New builds a *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}
