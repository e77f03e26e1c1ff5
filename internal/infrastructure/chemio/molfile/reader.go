// Package molfile reads MDL V2000 molfiles and SD files into connection
// tables.
package molfile

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/molsmarts/internal/domain/molecule"
	"github.com/turtacn/molsmarts/pkg/errors"
	mtypes "github.com/turtacn/molsmarts/pkg/types/molecule"
)

const (
	recordSeparator = "$$$$"
	endOfBlock      = "M  END"
)

// nominalMass holds the mass number the atom block mass difference is
// relative to.
var nominalMass = map[string]int{
	"H": 1, "B": 11, "C": 12, "N": 14, "O": 16, "F": 19, "Si": 28, "P": 31,
	"S": 32, "Cl": 35, "Se": 80, "Br": 79, "I": 127,
}

// queryBonds maps query bond types to SMARTS bond primitives.
var queryBonds = map[int]string{
	5: "-,=",
	6: "-,:",
	7: "=,:",
	8: "~",
}

// Record is one entry of an SD file.
type Record struct {
	Structure *molecule.Structure
	// Data holds the "> <name>" data items that follow the molfile.
	Data map[string]string
	// Molfile is the raw molfile text of the record.
	Molfile string
}

// Read parses a single molfile.
func Read(r io.Reader) (*molecule.Structure, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	s, _, err := parseBlock(lines, 0)
	return s, err
}

// ReadString parses a single molfile held in a string.
func ReadString(text string) (*molecule.Structure, error) {
	return Read(strings.NewReader(text))
}

// ReadSDF parses every record of an SD file.
func ReadSDF(r io.Reader) ([]*molecule.Structure, error) {
	records, err := ReadSDFRecords(r)
	if err != nil {
		return nil, err
	}
	out := make([]*molecule.Structure, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Structure)
	}
	return out, nil
}

// ReadSDFRecords parses every record of an SD file, keeping data items and
// the raw molfile text.  Blank records are skipped.
func ReadSDFRecords(r io.Reader) ([]*Record, error) {
	var records []*Record
	err := ScanSDF(r, func(_ int, rec *Record, err error) error {
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ScanSDF calls fn for every non-blank record in file order.  A record that
// fails to parse is passed with a nil Record and its error, so one bad record
// does not hide the rest.  The scan stops at the first error fn returns.
func ScanSDF(r io.Reader, fn func(index int, rec *Record, err error) error) error {
	lines, err := readLines(r)
	if err != nil {
		return err
	}
	index := 0
	start := 0
	for start < len(lines) {
		end := start
		for end < len(lines) && strings.TrimSpace(lines[end]) != recordSeparator {
			end++
		}
		if !blank(lines[start:end]) {
			rec, perr := parseRecord(lines[start:end], start)
			if err := fn(index, rec, perr); err != nil {
				return err
			}
			index++
		}
		start = end + 1
	}
	return nil
}

func parseRecord(lines []string, offset int) (*Record, error) {
	s, next, err := parseBlock(lines, offset)
	if err != nil {
		return nil, err
	}
	rec := &Record{
		Structure: s,
		Data:      make(map[string]string),
		Molfile:   strings.Join(lines[:next], "\n") + "\n",
	}
	var name string
	var value []string
	flush := func() {
		if name != "" {
			rec.Data[name] = strings.Join(value, "\n")
		}
		name, value = "", nil
	}
	for _, line := range lines[next:] {
		switch {
		case strings.HasPrefix(line, ">"):
			flush()
			if open := strings.Index(line, "<"); open >= 0 {
				if end := strings.Index(line[open:], ">"); end > 0 {
					name = line[open+1 : open+end]
				}
			}
		case strings.TrimSpace(line) == "":
			flush()
		case name != "":
			value = append(value, line)
		}
	}
	flush()
	return rec, nil
}

// parseBlock parses the molfile starting at lines[0] and returns the index
// of the first line after "M  END".  offset is added to line numbers in
// error messages.
func parseBlock(lines []string, offset int) (*molecule.Structure, int, error) {
	p := &parser{lines: lines, offset: offset}
	s, err := p.parse()
	if err != nil {
		return nil, 0, err
	}
	return s, p.pos, nil
}

type parser struct {
	lines  []string
	pos    int
	offset int
}

func (p *parser) fail(format string, args ...interface{}) error {
	return errors.Newf(errors.ErrCodeMolfileParseFailed, "line %d: "+format,
		append([]interface{}{p.offset + p.pos + 1}, args...)...)
}

func (p *parser) parse() (*molecule.Structure, error) {
	if len(p.lines) < 4 {
		p.pos = len(p.lines)
		return nil, p.fail("molfile needs a three line header and a counts line")
	}
	s := molecule.NewStructure(strings.TrimSpace(p.lines[0]))

	p.pos = 3
	counts := p.lines[3]
	if strings.Contains(counts, "V3000") {
		return nil, p.fail("V3000 molfiles are not supported")
	}
	atomCount, err := p.intField(counts, 0, 3)
	if err != nil {
		return nil, err
	}
	bondCount, err := p.intField(counts, 3, 6)
	if err != nil {
		return nil, err
	}
	if len(p.lines) < 4+atomCount+bondCount {
		p.pos = len(p.lines)
		return nil, p.fail("expected %d atom and %d bond lines", atomCount, bondCount)
	}

	for i := 0; i < atomCount; i++ {
		p.pos++
		atom, err := p.atom(p.lines[p.pos])
		if err != nil {
			return nil, err
		}
		s.AddAtom(atom)
	}
	derive := make(map[int]bool)
	for i := 0; i < bondCount; i++ {
		p.pos++
		bond, stereo, err := p.bond(p.lines[p.pos], atomCount)
		if err != nil {
			return nil, err
		}
		b := s.AddBond(bond)
		if b.Order == mtypes.BondOrderDouble && b.Kind == mtypes.BondStandard && stereo != 3 {
			derive[b.Index] = true
		}
	}
	p.pos++
	if err := p.properties(s); err != nil {
		return nil, err
	}
	assignBondParities(s, derive)
	return s, nil
}

func (p *parser) atom(line string) (*molecule.Atom, error) {
	if len(line) < 34 {
		return nil, p.fail("atom line too short")
	}
	x, err := p.floatField(line, 0, 10)
	if err != nil {
		return nil, err
	}
	y, err := p.floatField(line, 10, 20)
	if err != nil {
		return nil, err
	}
	a := &molecule.Atom{X: x, Y: y}
	symbol := field(line, 31, 34)
	switch symbol {
	case "":
		return nil, p.fail("atom symbol missing")
	case "*", "A", "R#", "L":
		a.Kind = mtypes.AtomWildcard
	case "Q":
		a.Kind = mtypes.AtomPattern
		a.Pattern = "[!#6;!#1]"
	case "D":
		a.Symbol, a.MassNumber = "H", 2
	case "T":
		a.Symbol, a.MassNumber = "H", 3
	default:
		if molecule.AtomicNumber(symbol) == 0 {
			return nil, p.fail("unknown element %q", symbol)
		}
		a.Symbol = symbol
	}

	massDiff, err := p.intField(line, 34, 36)
	if err != nil {
		return nil, err
	}
	if massDiff != 0 {
		if base, ok := nominalMass[a.Symbol]; ok {
			a.MassNumber = base + massDiff
		}
	}
	code, err := p.intField(line, 36, 39)
	if err != nil {
		return nil, err
	}
	switch code {
	case 0:
	case 1, 2, 3:
		a.Charge = 4 - code
	case 4:
		a.Radical = 1
	case 5, 6, 7:
		a.Charge = 4 - code
	default:
		return nil, p.fail("invalid charge code %d", code)
	}
	parity, err := p.intField(line, 39, 42)
	if err != nil {
		return nil, err
	}
	switch parity {
	case 1:
		a.Parity = mtypes.ParityOdd
	case 2:
		a.Parity = mtypes.ParityEven
	case 3:
		a.Parity = mtypes.ParityUnknown
	}
	return a, nil
}

func (p *parser) bond(line string, atomCount int) (*molecule.Bond, int, error) {
	if len(line) < 9 {
		return nil, 0, p.fail("bond line too short")
	}
	a1, err := p.intField(line, 0, 3)
	if err != nil {
		return nil, 0, err
	}
	a2, err := p.intField(line, 3, 6)
	if err != nil {
		return nil, 0, err
	}
	if a1 < 1 || a1 > atomCount || a2 < 1 || a2 > atomCount {
		return nil, 0, p.fail("bond references atom outside 1..%d", atomCount)
	}
	kind, err := p.intField(line, 6, 9)
	if err != nil {
		return nil, 0, err
	}
	stereo, err := p.intField(line, 9, 12)
	if err != nil {
		return nil, 0, err
	}
	b := &molecule.Bond{Atom1: a1 - 1, Atom2: a2 - 1}
	switch kind {
	case 1:
		b.Order = mtypes.BondOrderSingle
	case 2:
		b.Order = mtypes.BondOrderDouble
	case 3:
		b.Order = mtypes.BondOrderTriple
	case 4:
		b.Order = mtypes.BondOrderAromatic
	default:
		pattern, ok := queryBonds[kind]
		if !ok {
			return nil, 0, p.fail("invalid bond type %d", kind)
		}
		b.Kind = mtypes.BondPattern
		b.Pattern = pattern
	}
	return b, stereo, nil
}

// properties reads the property block up to "M  END".  The first CHG or RAD
// line clears charges and radicals set in the atom block, the first ISO line
// clears mass numbers.
func (p *parser) properties(s *molecule.Structure) error {
	var chargesReset, isotopesReset bool
	for ; p.pos < len(p.lines); p.pos++ {
		line := p.lines[p.pos]
		if strings.HasPrefix(line, endOfBlock) {
			p.pos++
			return nil
		}
		if strings.HasPrefix(line, "A  ") {
			// atom alias: the alias text follows on the next line
			p.pos++
			continue
		}
		if !strings.HasPrefix(line, "M  ") || len(line) < 6 {
			continue
		}
		tag := line[3:6]
		if tag != "CHG" && tag != "RAD" && tag != "ISO" {
			continue
		}
		pairs, err := p.pairs(line, len(s.Atoms))
		if err != nil {
			return err
		}
		switch tag {
		case "CHG", "RAD":
			if !chargesReset {
				for _, a := range s.Atoms {
					a.Charge, a.Radical = 0, 0
				}
				chargesReset = true
			}
		case "ISO":
			if !isotopesReset {
				for _, a := range s.Atoms {
					a.MassNumber = 0
				}
				isotopesReset = true
			}
		}
		for _, pr := range pairs {
			a := s.Atoms[pr[0]-1]
			switch tag {
			case "CHG":
				a.Charge = pr[1]
			case "ISO":
				a.MassNumber = pr[1]
			case "RAD":
				switch pr[1] {
				case 2:
					a.Radical = 1
				case 1, 3:
					a.Radical = 2
				default:
					a.Radical = 0
				}
			}
		}
	}
	// A missing "M  END" is tolerated at the end of input.
	return nil
}

// pairs decodes "M  XXXnn8 aaa vvv ..." into (atom, value) pairs.
func (p *parser) pairs(line string, atomCount int) ([][2]int, error) {
	fields := strings.Fields(line[6:])
	if len(fields) == 0 {
		return nil, p.fail("property line without entry count")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 || len(fields) < 1+2*n {
		return nil, p.fail("malformed property line %q", strings.TrimSpace(line))
	}
	out := make([][2]int, 0, n)
	for i := 0; i < n; i++ {
		atom, err1 := strconv.Atoi(fields[1+2*i])
		value, err2 := strconv.Atoi(fields[2+2*i])
		if err1 != nil || err2 != nil {
			return nil, p.fail("malformed property entry in %q", strings.TrimSpace(line))
		}
		if atom < 1 || atom > atomCount {
			return nil, p.fail("property references atom %d outside 1..%d", atom, atomCount)
		}
		out = append(out, [2]int{atom, value})
	}
	return out, nil
}

func (p *parser) intField(line string, from, to int) (int, error) {
	f := field(line, from, to)
	if f == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(f)
	if err != nil {
		return 0, p.fail("invalid integer %q in columns %d-%d", f, from+1, to)
	}
	return n, nil
}

func (p *parser) floatField(line string, from, to int) (float64, error) {
	f := field(line, from, to)
	if f == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		return 0, p.fail("invalid number %q in columns %d-%d", f, from+1, to)
	}
	return v, nil
}

// field returns the trimmed fixed-column slice [from, to) of line, clipped to
// the line length.
func field(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMolfileParseFailed, "reading molfile")
	}
	return lines, nil
}

func blank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
