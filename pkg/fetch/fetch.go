// Package fetch downloads data files over HTTP(S) onto a filesystem.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/afero"

	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/version"
)

const (
	// DefaultTimeout bounds one request including the body transfer.
	DefaultTimeout = 120 * time.Second
	chunkSize      = 64 * 1024
)

// ErrDownloadFailed wraps every network, status and write failure.
var ErrDownloadFailed = errors.New("download failed")

// Options configures a Downloader. Zero values select the defaults.
type Options struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
	Retries   int
	Fs        afero.Fs
	Log       *slog.Logger
}

// Downloader streams URLs to files.
type Downloader struct {
	client    *http.Client
	userAgent string
	retries   int
	fs        afero.Fs
	log       *slog.Logger
	policy    func() backoff.BackOff
}

// DefaultUserAgent returns the client identifier sent with every request.
func DefaultUserAgent() string {
	return "geodata-checker/" + version.Version
}

// New creates a Downloader from opts.
func New(opts Options) *Downloader {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent()
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	return &Downloader{
		client:    client,
		userAgent: userAgent,
		retries:   retries,
		fs:        fs,
		log:       log,
		policy: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Download fetches url into dest and returns the number of bytes written.
// A failed download never leaves a partial file behind.
func (d *Downloader) Download(ctx context.Context, url, dest string) (int64, error) {
	var written int64
	attempt := 0
	op := func() error {
		attempt++
		n, err := d.fetch(ctx, url, dest)
		written = n
		return err
	}
	notify := func(err error, wait time.Duration) {
		d.log.Warn("download attempt failed, retrying", "url", url, "attempt", attempt, "wait", wait, "error", err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(d.policy(), uint64(d.retries)), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrDownloadFailed, url, err)
	}
	return written, nil
}

func (d *Downloader) fetch(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			d.log.Warn("failed to close response body", "url", url, "error", err)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
			return 0, backoff.Permanent(err)
		}
		return 0, err
	}

	written, err := d.save(resp.Body, dest)
	if err != nil {
		if rmErr := d.fs.Remove(dest); rmErr != nil && !os.IsNotExist(rmErr) {
			d.log.Warn("failed to remove partial download", "path", dest, "error", rmErr)
		}
		return 0, err
	}
	d.log.Debug("download complete", "url", url, "path", dest, "bytes", written)
	return written, nil
}

func (d *Downloader) save(body io.Reader, dest string) (int64, error) {
	file, err := d.fs.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dest, err)
	}

	var written int64
	buf := make([]byte, chunkSize)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				_ = file.Close()
				return written, fmt.Errorf("write %s: %w", dest, err)
			}
			written += int64(n)
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			_ = file.Close()
			return written, fmt.Errorf("read body: %w", readErr)
		}
	}

	if err := file.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", dest, err)
	}
	return written, nil
}
