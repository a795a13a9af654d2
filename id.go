// Package snowflake - id.go provides the ID value type.
//
// An ID is an immutable, validated wrapper over the base-10 digit string
// that is persisted and transmitted everywhere outside the generator. The
// string form is the contract: it stays safe in runtimes and document stores
// without native 64-bit integers. The bit layout behind it is private.
//
// # Interface Implementations
//
//   - fmt.Stringer
//   - json.Marshaler/Unmarshaler: always a JSON string; a bare JSON number is
//     also accepted on input
//   - encoding.TextMarshaler/Unmarshaler: for YAML, TOML, XML and map keys
//   - sql.Scanner/driver.Valuer: stored as a decimal TEXT value
//
// Example:
//
//	id, err := snowflake.Parse(row.ID)
//	if err != nil {
//	    return err // snowflake.IsFormatError(err) == true
//	}
//	fmt.Println(id.String())

package snowflake

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ID is a unique, time-ordered identifier in its decimal string form.
//
// The zero value is the absent ID; it is never returned by a Generator.
type ID struct {
	s string
}

// Parse validates s and wraps it as an ID. s must be a non-empty string of
// ASCII digits (^\d+$); anything else fails with a *FormatError wrapping
// ErrInvalidFormat. Use it when rehydrating IDs from storage or requests.
func Parse(s string) (ID, error) {
	if s == "" {
		return ID{}, &FormatError{Input: s, Reason: "empty"}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return ID{}, &FormatError{Input: s, Reason: "non-digit character at offset " + strconv.Itoa(i)}
		}
	}
	return ID{s: s}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the decimal representation.
func (id ID) String() string {
	return id.s
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id.s == ""
}

// Equal reports whether both IDs have the same string representation.
func (id ID) Equal(other ID) bool {
	return id.s == other.s
}

// Compare orders IDs by numeric value and returns -1, 0 or 1. Leading zeros
// are ignored, so IDs of any length compare correctly without conversion to
// an integer type. The zero ID sorts first.
func (id ID) Compare(other ID) int {
	a, b := trimLeadingZeros(id.s), trimLeadingZeros(other.s)
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return strings.Compare(a, b)
}

func trimLeadingZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" && s != "" {
		return "0"
	}
	return t
}

// MarshalJSON encodes the ID as a JSON string, or null for the zero ID.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(id.s)
}

// UnmarshalJSON accepts a JSON string or number. null leaves the zero ID.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}

	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "unmarshal id")
		}
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Scan implements sql.Scanner. TEXT, BLOB and non-negative INTEGER columns
// are accepted; NULL yields the zero ID.
func (id *ID) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		*id = ID{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		if v < 0 {
			return &FormatError{Input: strconv.FormatInt(v, 10), Reason: "negative"}
		}
		s = strconv.FormatInt(v, 10)
	default:
		return errors.Newf("cannot scan %T into snowflake.ID", value)
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value implements driver.Valuer. The ID is stored as its decimal string;
// the zero ID is stored as NULL.
func (id ID) Value() (driver.Value, error) {
	if id.IsZero() {
		return nil, nil
	}
	return id.s, nil
}
