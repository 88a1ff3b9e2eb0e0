// Package bc3 parses FIEBDC-3 (".bc3") construction-budget files into the
// flat record collections the tree engine consumes. Records start with
// "~X|" and are pipe-delimited; the interesting ones are ~V (file version),
// ~K (generator), ~C (concepts), ~D (decompositions) and ~M (measurements).
//
// The parser is deliberately forgiving: a malformed record is counted and
// skipped, never fatal. Structural problems are the tree engine's job.
package bc3

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmoralo/bc3tree/internal/records"
)

const fieldSep = "|"

// FileMeta is the header information of one BC3 file.
type FileMeta struct {
	SourceFile  string `json:"source_file"`
	Version     string `json:"version,omitempty"`
	Generator   string `json:"generator,omitempty"`
	GeneratedAt string `json:"generated_at,omitempty"`
}

// File is the fully parsed content of one BC3 file.
type File struct {
	Meta           FileMeta
	Concepts       []records.Concept
	Decompositions []records.Decomposition
	Measurements   []records.Measurement
	Texts          map[string]string // long descriptions (~T), keyed by concept code

	// Malformed counts records that were skipped during parsing.
	Malformed int
}

// Parser reads BC3 files. Encoding names the code page to try first;
// cp1252 is the format's de-facto default.
type Parser struct {
	Encoding string
}

// Parse reads and decodes the whole stream, splits it into records and
// dispatches by record type. Unknown record types are ignored.
func (p *Parser) Parse(r io.Reader, filename string) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bc3: %w", err)
	}
	content, err := decode(raw, p.Encoding)
	if err != nil {
		return nil, fmt.Errorf("decode bc3: %w", err)
	}

	f := &File{
		Meta:  FileMeta{SourceFile: filename},
		Texts: make(map[string]string),
	}

	for _, rec := range splitRecords(content) {
		p.processRecord(f, rec)
	}

	for i := range f.Measurements {
		f.Measurements[i].ComputeLines()
	}

	return f, nil
}

// splitRecords divides the content into individual "~X|..." records.
// Records may span line breaks; a record ends where the next one begins.
func splitRecords(content string) []string {
	parts := strings.Split(content, "~")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) < 2 || part[0] < 'A' || part[0] > 'Z' {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (p *Parser) processRecord(f *File, rec string) {
	switch rec[0] {
	case 'V':
		fields := strings.Split(rec, fieldSep)
		if len(fields) > 1 {
			f.Meta.Version = cleanField(fields[1])
		}
	case 'K':
		fields := strings.Split(rec, fieldSep)
		if len(fields) > 1 {
			f.Meta.Generator = cleanField(fields[1])
		}
		if len(fields) > 3 {
			f.Meta.GeneratedAt = cleanField(fields[3])
		}
	case 'C':
		if c, ok := parseConcept(rec); ok {
			f.Concepts = append(f.Concepts, c)
		} else {
			f.Malformed++
		}
	case 'D':
		if d, ok := parseDecomposition(rec); ok {
			f.Decompositions = append(f.Decompositions, d)
		} else {
			f.Malformed++
		}
	case 'M':
		if m, ok := parseMeasurement(rec); ok {
			f.Measurements = append(f.Measurements, m)
		} else {
			f.Malformed++
		}
	case 'T':
		fields := strings.Split(rec, fieldSep)
		if len(fields) > 2 {
			code := cleanField(fields[1])
			if code != "" {
				f.Texts[code] = cleanField(fields[2])
			}
		}
	}
}
