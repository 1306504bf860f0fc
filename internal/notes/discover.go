// Package notes finds recently touched Markdown notes and prepares their
// content for task extraction.
package notes

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/djherbis/times"
	"go.uber.org/zap"

	"github.com/ppiankov/notetasks/internal/dates"
)

// DiscoverOptions selects notes by location and time window
type DiscoverOptions struct {
	Root      string
	Exclude   []string
	Extension string // defaults to .md
	Start     time.Time
	End       time.Time

	// DateParser interprets free-form frontmatter dates; optional
	DateParser dates.FallbackParser
	Logger     *zap.SugaredLogger
}

// Discover returns the notes under Root that were modified, created, or
// dated (via frontmatter) within [Start, End], sorted by path.
func Discover(opts DiscoverOptions) ([]string, error) {
	ext := opts.Extension
	if ext == "" {
		ext = ".md"
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	exclude := make([]string, 0, len(opts.Exclude))
	for _, e := range opts.Exclude {
		if e = strings.TrimSpace(e); e != "" {
			exclude = append(exclude, filepath.Clean(e))
		}
	}

	log.Infof("Searching for files modified between %s and %s", opts.Start.Format("2006-01-02"), opts.End.Format("2006-01-02"))

	var found []string
	err := filepath.WalkDir(opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debugf("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() && path != opts.Root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if isExcluded(path, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ext) {
			return nil
		}

		match, err := inWindow(path, opts)
		if err != nil {
			log.Debugf("Error checking file dates for %s: %v", d.Name(), err)
			return nil
		}
		if match {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(found)

	if len(found) == 0 {
		log.Warn("No files found matching the date criteria")
	} else {
		log.Infof("Found %d files modified in the target period", len(found))
		for _, p := range found {
			log.Infof("  - %s", filepath.Base(p))
		}
	}
	return found, nil
}

func isExcluded(path string, exclude []string) bool {
	for _, e := range exclude {
		if strings.HasPrefix(path, e) {
			return true
		}
	}
	return false
}

// touchedWithin reports whether the modification, change or birth time falls
// in [start, end]. Every timestamp the platform records is checked.
func touchedWithin(ts times.Timespec, start, end time.Time) bool {
	within := func(t time.Time) bool {
		return !t.Before(start) && !t.After(end)
	}

	if within(ts.ModTime()) {
		return true
	}
	if ts.HasChangeTime() && within(ts.ChangeTime()) {
		return true
	}
	return ts.HasBirthTime() && within(ts.BirthTime())
}

func inWindow(path string, opts DiscoverOptions) (bool, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return false, err
	}

	if touchedWithin(ts, opts.Start, opts.End) {
		return true, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	fm, _ := SplitFrontmatter(string(content))
	startDay, endDay := dayOf(opts.Start), dayOf(opts.End)
	for _, t := range FrontmatterDates(fm, opts.DateParser, opts.End) {
		d := dayOf(t)
		if !d.Before(startDay) && !d.After(endDay) {
			return true, nil
		}
	}
	return false, nil
}

// dayOf compares calendar dates regardless of time zone offset
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
