// Package phenotype loads the ABIDE phenotype table and exposes the
// population filters used to build experiments.
package phenotype

import (
	"encoding/csv"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

// Diagnostic labels.
const (
	LabelControl = 0
	LabelAutism  = 1
)

// MeanFDThreshold is the head-motion cut-off of the "threshold" population.
const MeanFDThreshold = 0.2

var siteSuffix = regexp.MustCompile(`_[0-9]$`)

// Subject is one row of the phenotype table.
type Subject struct {
	FileID   string
	SubID    string
	Site     string
	Label    int
	Sex      string // "M" or "F"
	MeanFD   float64
	HasFD    bool // func_mean_fd was present
	InSample bool
}

// Strat is the stratification key (site and diagnosis).
func (s Subject) Strat() string {
	return s.Site + "_" + strconv.Itoa(s.Label)
}

// Table is the phenotype table keyed by FILE_ID, in file order.
type Table struct {
	subjects []Subject
	index    map[string]int
}

var requiredColumns = []string{"FILE_ID", "SUB_ID", "SITE_ID", "DX_GROUP", "SEX"}

// Load reads a phenotype CSV file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open phenotype file %s", path)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load phenotype file %s", path)
	}
	return t, nil
}

// Read parses a phenotype CSV stream. Rows without an image
// (FILE_ID "no_filename") are dropped.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(errors.ErrEmptyData, "phenotype header")
		}
		return nil, errors.Wrap(err, "phenotype header")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, errors.Wrapf(errors.ErrMalformedInput, "missing column %s", name)
		}
	}

	t := &Table{index: make(map[string]int)}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		s, keep, err := parseRow(rec, cols)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if !keep {
			continue
		}
		if _, dup := t.index[s.FileID]; dup {
			return nil, errors.Wrapf(errors.ErrMalformedInput, "line %d: duplicate FILE_ID %s", line, s.FileID)
		}
		t.index[s.FileID] = len(t.subjects)
		t.subjects = append(t.subjects, s)
	}
	return t, nil
}

func parseRow(rec []string, cols map[string]int) (Subject, bool, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	s := Subject{FileID: get("FILE_ID"), SubID: get("SUB_ID")}
	if s.FileID == "" || s.FileID == "no_filename" {
		return s, false, nil
	}
	s.Site = siteSuffix.ReplaceAllString(get("SITE_ID"), "")

	switch get("DX_GROUP") {
	case "1":
		s.Label = LabelAutism
	case "2":
		s.Label = LabelControl
	default:
		return s, false, errors.Wrapf(errors.ErrMalformedInput, "DX_GROUP %q", get("DX_GROUP"))
	}

	switch get("SEX") {
	case "1":
		s.Sex = "M"
	case "2":
		s.Sex = "F"
	default:
		return s, false, errors.Wrapf(errors.ErrMalformedInput, "SEX %q", get("SEX"))
	}

	if fd := get("func_mean_fd"); fd != "" {
		v, err := strconv.ParseFloat(fd, 64)
		if err != nil {
			return s, false, errors.Wrapf(errors.ErrMalformedInput, "func_mean_fd %q", fd)
		}
		s.MeanFD = v
		s.HasFD = true
	}
	s.InSample = get("SUB_IN_SMP") == "1"
	return s, true, nil
}

// Len returns the number of subjects.
func (t *Table) Len() int {
	return len(t.subjects)
}

// Subjects returns a copy of the rows.
func (t *Table) Subjects() []Subject {
	out := make([]Subject, len(t.subjects))
	copy(out, t.subjects)
	return out
}

// Lookup finds a subject by FILE_ID.
func (t *Table) Lookup(fileID string) (Subject, error) {
	i, ok := t.index[fileID]
	if !ok {
		return Subject{}, errors.NewNotFoundError("subject", fileID)
	}
	return t.subjects[i], nil
}

// Sites returns the distinct site identifiers, sorted.
func (t *Table) Sites() []string {
	seen := make(map[string]struct{})
	for _, s := range t.subjects {
		seen[s.Site] = struct{}{}
	}
	sites := make([]string, 0, len(seen))
	for site := range seen {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

// Filter returns a table with the subjects for which keep is true.
func (t *Table) Filter(keep func(Subject) bool) *Table {
	out := &Table{index: make(map[string]int)}
	for _, s := range t.subjects {
		if keep(s) {
			out.index[s.FileID] = len(out.subjects)
			out.subjects = append(out.subjects, s)
		}
	}
	return out
}

// Whole keeps every subject.
func Whole(Subject) bool { return true }

// Male keeps male subjects.
func Male(s Subject) bool { return s.Sex == "M" }

// Threshold keeps subjects with mean framewise displacement at or below
// MeanFDThreshold. Subjects without a recorded value are dropped.
func Threshold(s Subject) bool { return s.HasFD && s.MeanFD <= MeanFDThreshold }

// AtSite keeps subjects scanned at site.
func AtSite(site string) func(Subject) bool {
	return func(s Subject) bool { return s.Site == site }
}
