package baseline

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Format selects the baseline row encoding.
type Format string

const (
	// FormatDelimitedTable encodes rows as "coordinate,value".
	FormatDelimitedTable Format = "delimited-table"
	// FormatKeyValue encodes rows as "coordinate=value".
	FormatKeyValue Format = "key-value"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatDelimitedTable, FormatKeyValue:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown baseline format %q (expected delimited-table or key-value)", s)
	}
}

func (f Format) separator() string {
	if f == FormatKeyValue {
		return "="
	}
	return ","
}

// ChecksumExt returns the file extension the checksum baseline uses for
// this format. The trust baseline extension is fixed (.list).
func (f Format) ChecksumExt() string {
	if f == FormatKeyValue {
		return "properties"
	}
	return "csv"
}

// Encode renders rows in this format. Rows are written exactly as given;
// callers are responsible for presenting them in sorted order.
func (f Format) Encode(rows []Row) []byte {
	var buf bytes.Buffer
	sep := f.separator()
	for _, row := range rows {
		buf.WriteString(row.Coordinate)
		buf.WriteString(sep)
		buf.WriteString(row.Value)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Decode parses baseline rows back into a coordinate→value map, rejecting
// duplicate coordinates.
func (f Format) Decode(data []byte) (map[string]string, error) {
	sep := f.separator()
	out := make(map[string]string)

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		coord, value, ok := strings.Cut(line, sep)
		if !ok || coord == "" || value == "" {
			return nil, fmt.Errorf("malformed baseline row at line %d: %q", lineNo, line)
		}
		if _, dup := out[coord]; dup {
			return nil, fmt.Errorf("duplicate coordinate %q at line %d", coord, lineNo)
		}
		out[coord] = value
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading baseline rows: %w", err)
	}
	return out, nil
}
