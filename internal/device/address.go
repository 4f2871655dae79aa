package device

import (
	"errors"
	"fmt"
	"strings"
)

// addressBytes is the number of bytes in a Bluetooth MAC address.
const addressBytes = 6

// MacAddress represents a Bluetooth device address in display order,
// so MacAddress{0x11, 0x22, 0x33, 0xAA, 0xBB, 0xCC} prints as
// "11:22:33:AA:BB:CC". The zero value means "no device".
type MacAddress [addressBytes]byte

// ErrInvalidAddress reports a string that cannot be parsed as a Bluetooth address.
var ErrInvalidAddress = errors.New("invalid bluetooth address")

// ParseMAC parses an address in 11:22:33:AA:BB:CC form.
func ParseMAC(s string) (MacAddress, error) {
	var mac MacAddress

	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != addressBytes {
		return mac, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	for i, part := range parts {
		if len(part) != 2 {
			return MacAddress{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		hi, ok := hexNibble(part[0])
		if !ok {
			return MacAddress{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		lo, ok := hexNibble(part[1])
		if !ok {
			return MacAddress{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
		}
		mac[i] = hi<<4 | lo
	}
	return mac, nil
}

// MustParseMAC parses an address and panics on failure. Intended for tests
// and package-level constants.
func MustParseMAC(s string) MacAddress {
	mac, err := ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}

// String returns the human-readable form, such as 11:22:33:AA:BB:CC.
func (m MacAddress) String() string {
	const digits = "0123456789AB" + "CDEF"
	buf := make([]byte, 0, addressBytes*3-1)
	for i, b := range m {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = append(buf, digits[b>>4], digits[b&0x0F])
	}
	return string(buf)
}

// IsNil reports whether the address is the zero value.
func (m MacAddress) IsNil() bool {
	return m == MacAddress{}
}

// MarshalText implements encoding.TextMarshaler.
func (m MacAddress) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MacAddress) UnmarshalText(data []byte) error {
	mac, err := ParseMAC(string(data))
	if err != nil {
		return err
	}
	*m = mac
	return nil
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
