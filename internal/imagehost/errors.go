package imagehost

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ErrorKind classifies a failed upload
type ErrorKind string

const (
	KindTimeout   ErrorKind = "timeout"
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindBody      ErrorKind = "body"
)

// Error is returned by Client.Upload when the host could not be used
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("image host returned status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("image host %s error: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// flexInt decodes a JSON number or a numeric string.
// Hosts are inconsistent about quoting dimensions.
type flexInt struct {
	value *int64
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// non-numeric strings are treated as absent
			return nil
		}
		f.value = &n
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	n, err := num.Int64()
	if err != nil {
		fl, ferr := num.Float64()
		if ferr != nil {
			return nil
		}
		n = int64(fl)
	}
	f.value = &n
	return nil
}

func (f flexInt) intPtr() *int {
	if f.value == nil {
		return nil
	}
	n := int(*f.value)
	return &n
}

// flexString decodes a JSON string or number as text.
// Some hosts send numeric image ids.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		// objects and booleans are treated as absent
		return nil
	}
	*f = flexString(num.String())
	return nil
}
