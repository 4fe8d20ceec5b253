package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNullBody is returned when the backend answers with a literal JSON null,
// which has no fields to read.
var ErrNullBody = errors.New("cannot read property 'response' of null")

// Reply is the response field of an /ask body. It is kept untyped: any JSON
// value is rendered, and a missing field renders as "undefined".
type Reply struct {
	value   interface{}
	present bool
}

// TextReply builds a Reply carrying a plain string.
func TextReply(text string) Reply {
	return Reply{value: text, present: true}
}

// ParseReply decodes an /ask body. Only an invalid document or a null body is
// an error; any other JSON value yields a Reply, possibly undefined.
func ParseReply(body []byte) (Reply, error) {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return Reply{}, fmt.Errorf("invalid JSON in ask response: %w", err)
	}

	switch v := data.(type) {
	case nil:
		return Reply{}, ErrNullBody
	case map[string]interface{}:
		value, ok := v["response"]
		return Reply{value: value, present: ok}, nil
	default:
		return Reply{}, nil
	}
}

// Defined reports whether the body carried a response field.
func (r Reply) Defined() bool {
	return r.present
}

func (r Reply) String() string {
	if !r.present {
		return "undefined"
	}
	return stringify(r.value)
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return formatNumber(t)
	case []interface{}:
		parts := make([]string, len(t))
		for i, elem := range t {
			if elem == nil {
				continue
			}
			parts[i] = stringify(elem)
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// formatNumber prints the shortest representation, switching to exponent
// notation below 1e-6 and from 1e21 up.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
