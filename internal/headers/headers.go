package headers

import (
	"errors"
	"io"
)

var ErrInvalidField = errors.New("invalid header field")

// Field is a single header line.
type Field struct {
	Name  string
	Value string
}

// Headers is an ordered set of response header fields. Order of insertion is
// the order on the wire.
type Headers []Field

func NewHeaders() Headers {
	return Headers{}
}

// Set adds or overwrites a header. An overwritten field keeps its position.
func (h *Headers) Set(name, value string) {
	for i := range *h {
		if (*h)[i].Name == name {
			(*h)[i].Value = value
			return
		}
	}
	*h = append(*h, Field{Name: name, Value: value})
}

func (h Headers) Get(name string) (string, error) {
	for _, f := range h {
		if f.Name == name {
			return f.Value, nil
		}
	}
	return "", errors.New("key not found")
}

func (h Headers) Len() int {
	return len(h)
}

// WriteTo writes every field as "Name: Value\n" followed by the blank line
// that ends the header block.
func (h Headers) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, f := range h {
		if !validName(f.Name) || !validValue(f.Value) {
			return total, ErrInvalidField
		}
		n, err := io.WriteString(w, f.Name+": "+f.Value+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	// the empty line
	n, err := io.WriteString(w, "\n")
	total += int64(n)
	return total, err
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		b := name[i]
		isLetter := (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
		isDigit := b >= '0' && b <= '9'
		isSpecial := b == '-' || b == '_'
		if !isLetter && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}

// values must not split the header block
func validValue(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] == '\n' || value[i] == '\r' {
			return false
		}
	}
	return true
}
