// Package report renders check progress and outcomes for people and CI.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/check"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/config"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/storage"
)

const megabyte = 1024 * 1024

var separator = strings.Repeat("=", 60)

// Reporter prints a human readable log of a run. It implements check.Observer.
type Reporter struct {
	out  io.Writer
	sink Sink
	log  *slog.Logger
}

// NewReporter creates a Reporter writing to out. sink may be nil.
func NewReporter(out io.Writer, sink Sink, log *slog.Logger) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{out: out, sink: sink, log: log}
}

// FileStarted prints the file banner.
func (r *Reporter) FileStarted(spec config.FileSpec) {
	r.printf("\n%s\n", separator)
	r.printf("📄 Checking %s: %s\n", spec.Kind, spec.Name)
	r.printf("%s\n", separator)
}

// DownloadStarted prints the source URL.
func (r *Reporter) DownloadStarted(spec config.FileSpec) {
	r.printf("  ⬇  Downloading %s\n", spec.URL)
}

// DownloadFinished prints where the file was saved and its size.
func (r *Reporter) DownloadFinished(_ config.FileSpec, path string, size int64, _ time.Duration) {
	r.printf("     Saved %s (%.1f MB)\n", path, float64(size)/megabyte)
}

// FileFinished prints the tag count and per-tag outcome, or the failure.
func (r *Reporter) FileFinished(res *check.Result) {
	switch res.Status {
	case check.StatusDownloadFailed, check.StatusParseFailed:
		for _, line := range res.FailureLines() {
			r.printf("%s\n", line)
		}
		return
	}

	r.printf("  📊 Total tags in file: %d\n", res.Available)
	for _, tag := range res.Found.Sorted() {
		r.printf("  ✅ %s\n", tag)
	}
	for _, tag := range res.Missing.Sorted() {
		r.printf("  ❌ MISSING: %s\n", tag)
	}
}

// Summary prints the closing banner. On success it lists the accepted
// artifacts; on failure it lists every failure line and forwards them to the
// sink.
func (r *Reporter) Summary(rep *check.Report, artifacts []storage.Artifact, publishDir string) {
	r.printf("\n%s\n", separator)
	if rep.AllOK() {
		if publishDir != "" {
			r.printf("🎉 ALL CHECKS PASSED — files saved to %s\n", publishDir)
			r.printf("   Files ready for release:\n")
		} else {
			r.printf("🎉 ALL CHECKS PASSED\n")
			r.printf("   Files validated:\n")
		}
		sorted := slices.Clone(artifacts)
		slices.SortFunc(sorted, func(a, b storage.Artifact) int {
			return strings.Compare(a.Name, b.Name)
		})
		for _, a := range sorted {
			r.printf("   📦 %s (%.1f MB)\n", a.Name, a.SizeMB())
		}
	} else {
		failures := rep.Failures()
		r.printf("🚨 CHECKS FAILED — missing tags detected:\n")
		for _, line := range failures {
			r.printf("   • %s\n", line)
		}
		if r.sink != nil {
			if err := r.sink.WriteFailures(failures); err != nil {
				r.log.Warn("failed to write step summary", "error", err)
			}
		}
	}
	r.printf("%s\n", separator)
}

func (r *Reporter) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(r.out, format, args...); err != nil {
		r.log.Debug("failed to write report line", "error", err)
	}
}
