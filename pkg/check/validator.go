package check

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/config"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/geodata"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/storage"
)

// Fetcher downloads a URL to a path and returns the bytes written.
type Fetcher interface {
	Download(ctx context.Context, url, dest string) (int64, error)
}

// Store decides where downloads go and what survives a run.
type Store interface {
	Fs() afero.Fs
	StagingPath(name string) string
	Publish(name string) (storage.Artifact, error)
	Discard(name string) error
}

// Observer is notified as each file moves through the pipeline.
type Observer interface {
	FileStarted(spec config.FileSpec)
	DownloadStarted(spec config.FileSpec)
	DownloadFinished(spec config.FileSpec, path string, size int64, elapsed time.Duration)
	FileFinished(result *Result)
}

// Validator checks configured files one after another.
type Validator struct {
	fetcher   Fetcher
	store     Store
	observers []Observer
	log       *slog.Logger
}

// NewValidator creates a Validator.
func NewValidator(fetcher Fetcher, store Store, log *slog.Logger, observers ...Observer) *Validator {
	if log == nil {
		log = slog.Default()
	}
	return &Validator{
		fetcher:   fetcher,
		store:     store,
		observers: observers,
		log:       log,
	}
}

// Run checks every file of rules in order. A failing file never stops the
// files after it.
func (v *Validator) Run(ctx context.Context, rules *config.Rules) *Report {
	report := &Report{}
	for _, spec := range rules.Files {
		report.Results = append(report.Results, v.Check(ctx, spec))
	}
	v.log.Info("check run finished",
		"files", len(report.Results),
		"ok", report.Count(StatusOK),
		"failed", len(report.Results)-report.Count(StatusOK),
	)
	return report
}

// Check runs the pipeline for a single file.
func (v *Validator) Check(ctx context.Context, spec config.FileSpec) *Result {
	res := &Result{
		Filename: spec.Name,
		Kind:     spec.Kind,
		URL:      spec.URL,
	}
	v.each(func(o Observer) { o.FileStarted(spec) })
	v.process(ctx, spec, res)
	if !res.OK() {
		if err := v.store.Discard(spec.Name); err != nil {
			v.log.Warn("failed to discard file", "file", spec.Name, "error", err)
		}
	}
	v.each(func(o Observer) { o.FileFinished(res) })
	return res
}

func (v *Validator) process(ctx context.Context, spec config.FileSpec, res *Result) {
	dest := v.store.StagingPath(spec.Name)

	v.each(func(o Observer) { o.DownloadStarted(spec) })
	start := time.Now()
	size, err := v.fetcher.Download(ctx, spec.URL, dest)
	if err != nil {
		v.log.Error("download failed", "file", spec.Name, "url", spec.URL, "error", err)
		res.Status = StatusDownloadFailed
		res.Err = err
		return
	}
	res.Size = size
	res.Path = dest
	v.each(func(o Observer) { o.DownloadFinished(spec, dest, size, time.Since(start)) })

	available, stats, err := geodata.DecodeFile(v.store.Fs(), spec.Kind, dest)
	if err != nil {
		v.log.Error("decode failed", "file", spec.Name, "error", err)
		res.Status = StatusParseFailed
		res.Err = err
		return
	}
	if stats.Empty > 0 {
		v.log.Debug("entries with an empty code", "file", spec.Name, "count", stats.Empty)
	}

	required := spec.Required()
	res.Available = available.Len()
	res.Found = required.Intersection(available)
	res.Missing = required.Difference(available)
	if res.Missing.Len() > 0 {
		res.Status = StatusMissingTags
		return
	}

	artifact, err := v.store.Publish(spec.Name)
	if err != nil {
		v.log.Error("failed to keep validated file", "file", spec.Name, "error", err)
		res.Status = StatusDownloadFailed
		res.Err = err
		return
	}
	res.Path = artifact.Path
	res.Status = StatusOK
}

func (v *Validator) each(fn func(Observer)) {
	for _, o := range v.observers {
		fn(o)
	}
}
