package initializer

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/operator"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// FlatFile parses one or more delimited files of variable (and,
// optionally, objective/constraint) columns, marking fully-populated
// rows Evaluated so the Evaluator can skip them. Any shortfall against
// requestedSize is delegated to a RandomUnique fallback.
type FlatFile struct {
	h   operator.Handle
	log jlog.Logger

	// Files lists the paths to read, in order.
	Files []string
	// Delimiter forces a column delimiter; empty triggers autodetection
	// (tab, then comma, then a run of whitespace).
	Delimiter string

	fallback *RandomUnique
}

// NewFlatFile constructs a FlatFile initializer bound to h.
func NewFlatFile(h operator.Handle) *FlatFile {
	f := &FlatFile{
		h:        h,
		log:      h.Logger().ForOperator(string(operator.FamilyInitializer), "flat_file"),
		fallback: NewRandomUnique(h),
	}
	f.log.OperatorConstructed()
	return f
}

func (f *FlatFile) Name() string           { return "flat_file" }
func (f *FlatFile) Family() operator.Family { return operator.FamilyInitializer }
func (f *FlatFile) Finalize() error        { f.log.OperatorFinalized(); return nil }

func (f *FlatFile) Clone(h operator.Handle) (operator.Operator, error) {
	c := NewFlatFile(h)
	c.Files = append([]string(nil), f.Files...)
	c.Delimiter = f.Delimiter
	c.log.OperatorCloned()
	return c, nil
}

func (f *FlatFile) PollForParameters(db *paramdb.DB) error {
	if files, err := db.Strings(paramdb.KeyFlatFiles, nil); err != nil {
		return err
	} else if files != nil {
		f.Files = files
	} else if one, err := db.String(paramdb.KeyFlatFile, ""); err != nil {
		return err
	} else if one != "" {
		f.Files = []string{one}
	}

	delim, err := db.String(paramdb.KeyInitializerDelimiter, "")
	if err != nil {
		return err
	}
	f.Delimiter = delim
	return nil
}

// Initialize reads f.Files into into, then tops up with RandomUnique
// until requestedSize is reached.
func (f *FlatFile) Initialize(into *design.Group, requestedSize int) error {
	target := f.h.Target()
	ndv, nof, ncn := target.NDV(), target.NOF(), target.NCN()

	for _, path := range f.Files {
		rows, delim, err := readDelimited(path, f.Delimiter)
		if err != nil {
			f.log.Quiet("flat file unreadable", "path", path, "error", err)
			continue
		}
		f.log.Debug("flat file parsed", "path", path, "delimiter", delim, "rows", len(rows))

		for _, row := range rows {
			if into.Size() >= requestedSize {
				break
			}
			d := f.h.NewDesign()
			ok := fillRow(row, d.Variables[:ndv])
			if ok && len(row) == ndv+nof+ncn {
				ok = fillRow(row[ndv:ndv+nof], d.Objectives) && fillRow(row[ndv+nof:ndv+nof+ncn], d.Constraints)
				if ok {
					d.SetFlag(design.FlagEvaluated, true)
				}
			}
			if !ok {
				f.log.Quiet("flat file row discarded: too few columns or unparseable value", "path", path, "row", row)
				target.TakeDesign(d)
				continue
			}
			if into.BeginDV().FindEqual(d) != nil {
				target.TakeDesign(d)
				continue
			}
			if err := into.Insert(d); err != nil {
				target.TakeDesign(d)
			}
		}
	}

	if into.Size() < requestedSize {
		remaining := requestedSize - into.Size()
		f.log.Quiet("flat file initializer below requested size, delegating remainder", "have", into.Size(), "remaining", remaining)
		return f.fallback.Initialize(into, requestedSize)
	}
	f.log.PopulationSize(into.Size())
	return nil
}

func fillRow(cols []string, out []float64) bool {
	if len(cols) < len(out) {
		return false
	}
	for i := range out {
		v, err := strconv.ParseFloat(strings.TrimSpace(cols[i]), 64)
		if err != nil {
			return false
		}
		out[i] = v
	}
	return true
}

// readDelimited reads path and splits every line by delim. If delim is
// empty, it is autodetected in priority order tab > comma > whitespace
// run, choosing the first delimiter that yields a consistent column
// count across all non-empty lines.
func readDelimited(path, delim string) ([][]string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	var lines []string
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, "", err
	}
	if len(lines) == 0 {
		return nil, "", fmt.Errorf("jega/initializer: %s: empty file", path)
	}

	if delim != "" {
		rows, ok := splitConsistent(lines, delim)
		if !ok {
			return nil, "", fmt.Errorf("jega/initializer: %s: cannot parse with delimiter %q", path, delim)
		}
		return rows, delim, nil
	}

	for _, candidate := range []string{"\t", ","} {
		if rows, ok := splitConsistent(lines, candidate); ok {
			return rows, candidate, nil
		}
	}
	if rows, ok := splitWhitespace(lines); ok {
		return rows, "whitespace", nil
	}
	return nil, "", fmt.Errorf("jega/initializer: %s: cannot parse: no consistent delimiter found", path)
}

func splitConsistent(lines []string, delim string) ([][]string, bool) {
	rows := make([][]string, len(lines))
	width := -1
	for i, line := range lines {
		cols := strings.Split(line, delim)
		if width == -1 {
			width = len(cols)
		} else if len(cols) != width {
			return nil, false
		}
		rows[i] = cols
	}
	return rows, width > 1
}

func splitWhitespace(lines []string) ([][]string, bool) {
	rows := make([][]string, len(lines))
	width := -1
	for i, line := range lines {
		cols := whitespaceRun.Split(strings.TrimSpace(line), -1)
		if width == -1 {
			width = len(cols)
		} else if len(cols) != width {
			return nil, false
		}
		rows[i] = cols
	}
	return rows, width > 0
}
