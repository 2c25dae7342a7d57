// Package check runs the download, decode and diff pipeline for every
// configured data file and collects the outcome.
package check

import (
	"fmt"

	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/geodata"
)

// Status is the terminal state of one file.
type Status int

const (
	StatusOK Status = iota
	StatusDownloadFailed
	StatusParseFailed
	StatusMissingTags
)

// Statuses lists every status in declaration order.
var Statuses = []Status{StatusOK, StatusDownloadFailed, StatusParseFailed, StatusMissingTags}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDownloadFailed:
		return "download_failed"
	case StatusParseFailed:
		return "parse_failed"
	case StatusMissingTags:
		return "missing_tags"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the outcome for one configured file.
type Result struct {
	Filename  string
	Kind      geodata.Kind
	URL       string
	Status    Status
	Err       error
	Found     geodata.TagSet
	Missing   geodata.TagSet
	Available int
	Size      int64
	Path      string
}

// OK reports whether the file passed.
func (r *Result) OK() bool {
	return r.Status == StatusOK
}

// FailureLines renders the reasons the file failed, one line per reason.
func (r *Result) FailureLines() []string {
	switch r.Status {
	case StatusDownloadFailed, StatusParseFailed:
		return []string{fmt.Sprintf("❌ FAILED to download/parse %s: %v", r.Filename, r.Err)}
	case StatusMissingTags:
		missing := r.Missing.Sorted()
		lines := make([]string, 0, len(missing))
		for _, tag := range missing {
			lines = append(lines, fmt.Sprintf("%s: missing tag '%s'", r.Filename, tag))
		}
		return lines
	default:
		return nil
	}
}

// Report collects the results of a run in processing order.
type Report struct {
	Results []*Result
}

// AllOK reports whether every file passed. An empty report passes.
func (r *Report) AllOK() bool {
	for _, res := range r.Results {
		if !res.OK() {
			return false
		}
	}
	return true
}

// Failures returns the failure lines of every result in order.
func (r *Report) Failures() []string {
	var lines []string
	for _, res := range r.Results {
		lines = append(lines, res.FailureLines()...)
	}
	return lines
}

// Count returns how many results ended in status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}
