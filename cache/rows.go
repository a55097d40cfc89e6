package cache

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeRows serializes query result rows.
func EncodeRows(rows []map[string]any) ([]byte, error) {
	b, err := msgpack.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("cache: encode rows: %w", err)
	}
	return b, nil
}

// DecodeRows deserializes rows written by EncodeRows. Integers decode as
// int64 (uint64 for unsigned values) and floats as float64.
func DecodeRows(b []byte) ([]map[string]any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("cache: decode rows: %w", err)
	}
	if rows == nil {
		rows = make([]map[string]any, 0)
	}
	return rows, nil
}
