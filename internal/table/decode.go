package table

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Decode reads an .axc file back into its schema and row set. It performs
// only structural decoding (magic check, header parse, fixed/variable
// width column reads); schema conformance and null-rejection are the
// validator's job (ValidateRows), not Decode's — matching the spec's split
// between "decode" and "schema-check on read".
func Decode(data []byte) (Schema, []Row, error) {
	if len(data) < len(magic) || !bytes.Equal(data[:len(magic)], magic[:]) {
		return Schema{}, nil, fmt.Errorf("table: bad magic bytes")
	}
	rest := data[len(magic):]

	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 {
		return Schema{}, nil, fmt.Errorf("table: missing header terminator")
	}
	var hdr header
	if err := json.Unmarshal(rest[:nl], &hdr); err != nil {
		return Schema{}, nil, fmt.Errorf("table: bad header: %w", err)
	}
	body := rest[nl+1:]

	schema := Schema{Columns: hdr.Columns}
	columns := make([][]interface{}, len(hdr.Columns))

	offset := 0
	for ci, col := range hdr.Columns {
		values := make([]interface{}, hdr.RowCount)
		switch col.Type {
		case ColumnUint64:
			for ri := 0; ri < hdr.RowCount; ri++ {
				if offset+8 > len(body) {
					return Schema{}, nil, fmt.Errorf("table: truncated uint64 column %s", col.Name)
				}
				values[ri] = binary.BigEndian.Uint64(body[offset : offset+8])
				offset += 8
			}
		case ColumnString:
			for ri := 0; ri < hdr.RowCount; ri++ {
				if offset+4 > len(body) {
					return Schema{}, nil, fmt.Errorf("table: truncated string length in column %s", col.Name)
				}
				l := int(binary.BigEndian.Uint32(body[offset : offset+4]))
				offset += 4
				if offset+l > len(body) {
					return Schema{}, nil, fmt.Errorf("table: truncated string value in column %s", col.Name)
				}
				values[ri] = string(body[offset : offset+l])
				offset += l
			}
		default:
			return Schema{}, nil, fmt.Errorf("table: unknown column type %q", col.Type)
		}
		columns[ci] = values
	}

	rows := make([]Row, hdr.RowCount)
	for ri := 0; ri < hdr.RowCount; ri++ {
		row := make(Row, len(hdr.Columns))
		for ci, col := range hdr.Columns {
			row[col.Name] = columns[ci][ri]
		}
		rows[ri] = row
	}
	return schema, rows, nil
}
