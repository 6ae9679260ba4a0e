package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The storefront API is loosely typed: ids and amounts arrive as JSON numbers
// or numeric strings depending on the endpoint, and timestamps use either
// the MySQL datetime layout or RFC 3339. The types below normalise that at
// the decoding boundary.

var jsonNull = []byte("null")

// flexString decodes a JSON string or number into a string.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = flexString(n.String())
	return nil
}

// flexInt64 decodes a JSON number or numeric string into an int64. Decimal
// amounts such as "15000.00" are truncated to whole rupiah.
type flexInt64 int64

func (n *flexInt64) UnmarshalJSON(b []byte) error {
	v, err := parseNumber(b)
	if err != nil {
		return err
	}
	*n = flexInt64(v)
	return nil
}

// flexFloat decodes a JSON number or numeric string into a float64.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	raw, empty, err := numberText(b)
	if err != nil || empty {
		*f = 0
		return err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse %q as number: %w", raw, err)
	}
	*f = flexFloat(v)
	return nil
}

func parseNumber(b []byte) (int64, error) {
	raw, empty, err := numberText(b)
	if err != nil || empty {
		return 0, err
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q as number: %w", raw, err)
	}
	return int64(f), nil
}

// numberText returns the textual number in b, unquoting strings. Null and
// empty strings report empty.
func numberText(b []byte) (string, bool, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		return "", true, nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return "", false, err
		}
		v = strings.TrimSpace(v)
		return v, v == "", nil
	}
	return string(b), false, nil
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// flexTime decodes the timestamp layouts the API emits. Unknown layouts
// decode to the zero time.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), jsonNull) {
		*t = flexTime{}
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("expected timestamp string, got %s", b)
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, v); err == nil {
			*t = flexTime(parsed)
			return nil
		}
	}
	*t = flexTime{}
	return nil
}

func (t flexTime) Time() time.Time {
	return time.Time(t)
}

// decodeList decodes data that is either a bare JSON array or an object
// holding the array under key.
func decodeList[T any](data json.RawMessage, key string) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil, nil
	}
	if data[0] == '[' {
		var out []T
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	inner, ok := wrapper[key]
	if !ok {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(inner, &out); err != nil {
		return nil, err
	}
	return out, nil
}
