package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// tagged marshals body and prepends "kind":kind to the resulting object.
func tagged(kind string, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	if len(raw) < 2 || raw[0] != '{' {
		return nil, fmt.Errorf("ir: %s body is not an object", kind)
	}
	var buf bytes.Buffer
	buf.Grow(len(raw) + len(kind) + 10)
	buf.WriteString(`{"kind":`)
	buf.WriteString(strconv.Quote(kind))
	if len(raw) > 2 {
		buf.WriteByte(',')
	}
	buf.Write(raw[1:])
	return buf.Bytes(), nil
}

// ByteList marshals as a JSON array of numbers instead of base64.
type ByteList []byte

func (b ByteList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(b)*4 + 2)
	buf.WriteByte('[')
	for i, c := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Itoa(int(c)))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
