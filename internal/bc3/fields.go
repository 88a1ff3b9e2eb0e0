package bc3

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jmoralo/bc3tree/internal/records"
)

// parseConcept handles a ~C record:
//
//	C|CODE|UNIT|SUMMARY|PRICE|DATE|TYPE|
func parseConcept(rec string) (records.Concept, bool) {
	fields := strings.Split(rec, fieldSep)
	if len(fields) < 3 {
		return records.Concept{}, false
	}
	c := records.Concept{
		Code: cleanField(fields[1]),
		Unit: cleanField(fields[2]),
	}
	if c.Code == "" {
		return records.Concept{}, false
	}
	if len(fields) > 3 {
		c.Summary = cleanField(fields[3])
	}
	if len(fields) > 4 {
		c.Price = parseDecimal(fields[4])
	}
	if len(fields) > 5 {
		c.Date = cleanField(fields[5])
	}
	if len(fields) > 6 {
		c.Type = cleanField(fields[6])
	}
	return c, true
}

// parseDecomposition handles a ~D record: the parent code followed by
// (child, factor, yield) triplets.
//
//	D|PARENT|CHILD1|FACTOR1|YIELD1|CHILD2|FACTOR2|YIELD2|...
func parseDecomposition(rec string) (records.Decomposition, bool) {
	fields := strings.Split(rec, fieldSep)
	if len(fields) < 3 {
		return records.Decomposition{}, false
	}
	d := records.Decomposition{ParentCode: cleanField(fields[1])}
	if d.ParentCode == "" {
		return records.Decomposition{}, false
	}

	for i := 2; i < len(fields); i += 3 {
		code := cleanField(fields[i])
		if code == "" {
			break
		}
		comp := records.Component{
			Code:   code,
			Factor: decimal.NewFromInt(1),
			Yield:  decimal.NewFromInt(1),
		}
		if i+1 < len(fields) && fields[i+1] != "" {
			comp.Factor = parseDecimal(fields[i+1])
		}
		if i+2 < len(fields) && fields[i+2] != "" {
			comp.Yield = parseDecimal(fields[i+2])
		}
		d.Components = append(d.Components, comp)
	}
	return d, true
}

// parseMeasurement handles a ~M record. The lines field packs groups of six
// backslash-separated subfields:
//
//	M|PARENT|CHILD|POSITION|TYPE\COMMENT\UNITS\LENGTH\WIDTH\HEIGHT\...|
func parseMeasurement(rec string) (records.Measurement, bool) {
	fields := strings.Split(rec, fieldSep)
	if len(fields) < 4 {
		return records.Measurement{}, false
	}
	m := records.Measurement{
		ParentCode: cleanField(fields[1]),
		ChildCode:  cleanField(fields[2]),
	}
	if m.ChildCode == "" {
		return records.Measurement{}, false
	}
	if fields[3] != "" {
		if pos, err := strconv.Atoi(strings.TrimSpace(fields[3])); err == nil {
			m.Position = pos
		}
	}
	if len(fields) > 4 && fields[4] != "" {
		m.Lines = parseMeasureLines(fields[4])
	}
	return m, true
}

func parseMeasureLines(raw string) []records.MeasureLine {
	sub := strings.Split(raw, "\\")
	var lines []records.MeasureLine
	for i := 0; i < len(sub); i += 6 {
		get := func(off int) string {
			if i+off < len(sub) {
				return strings.TrimSpace(sub[i+off])
			}
			return ""
		}
		empty := true
		for off := 0; off < 6; off++ {
			if get(off) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		ln := records.MeasureLine{Kind: records.LineKindNormal}
		if k := get(0); k != "" {
			if kind, err := strconv.Atoi(k); err == nil {
				ln.Kind = kind
			}
		}
		ln.Comment = get(1)
		ln.Units = parseDecimal(get(2))
		ln.Length = parseDecimal(get(3))
		ln.Width = parseDecimal(get(4))
		ln.Height = parseDecimal(get(5))
		lines = append(lines, ln)
	}
	return lines
}

// parseDecimal reads a BC3 numeric field. Spanish generators write decimal
// commas; zero is returned for anything unreadable.
func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func cleanField(s string) string {
	return strings.TrimSpace(s)
}
