package core

import (
	"encoding/csv"
	"errors"
	"io"
)

// Row is one CSV data record keyed by header name. Values are the cell
// text exactly as the CSV reader produced it.
type Row struct {
	Index  int // 1-based data row, header excluded
	Line   int // file line where the record starts
	Fields map[string]string
}

// RowParser reads CSV records one at a time. Memory use is bounded by the
// largest single record, not the file.
type RowParser struct {
	reader *csv.Reader
	header HeaderIndex
	index  int
	done   bool
}

// NewRowParser reads the header record from r. An empty input is not an
// error; the parser simply yields no rows.
func NewRowParser(r io.Reader) (*RowParser, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // short and long records are judged by validation
	cr.ReuseRecord = true

	p := &RowParser{reader: cr, header: HeaderIndex{}}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		p.done = true
		return p, nil
	}
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	p.header = MakeHeaderIndex(header)
	return p, nil
}

// Header returns the column index built from the header record.
func (p *RowParser) Header() HeaderIndex {
	return p.header
}

// Next returns the next data row, or io.EOF after the last one. Malformed
// CSV is reported as a *ParseError.
func (p *RowParser) Next() (Row, error) {
	if p.done {
		return Row{}, io.EOF
	}

	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		p.done = true
		return Row{}, io.EOF
	}
	if err != nil {
		p.done = true
		return Row{}, &ParseError{Row: p.index + 1, Err: err}
	}

	p.index++
	line, _ := p.reader.FieldPos(0)

	fields := make(map[string]string, len(p.header))
	for key, pos := range p.header {
		if pos < len(record) {
			fields[key] = record[pos]
		} else {
			fields[key] = ""
		}
	}

	return Row{Index: p.index, Line: line, Fields: fields}, nil
}
