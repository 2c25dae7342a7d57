package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/check"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/config"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/geodata"
)

func TestRecorderCountsOutcomes(t *testing.T) {
	r := NewRecorder()
	spec := config.FileSpec{Name: "geoip.dat", Kind: geodata.KindIP}

	r.DownloadFinished(spec, "/tmp/geoip.dat", 4096, 2*time.Second)
	r.FileFinished(&check.Result{
		Filename:  "geoip.dat",
		Kind:      geodata.KindIP,
		Status:    check.StatusMissingTags,
		Missing:   geodata.NewTagSet("cn", "ir"),
		Available: 250,
	})
	r.FileFinished(&check.Result{
		Filename: "geosite.dat",
		Kind:     geodata.KindSite,
		Status:   check.StatusDownloadFailed,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.files.WithLabelValues("geoip", "missing_tags")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.files.WithLabelValues("geosite", "download_failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.missingTags.WithLabelValues("geoip.dat")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.missingTags.WithLabelValues("geosite.dat")))
	assert.Equal(t, 250.0, testutil.ToFloat64(r.availableTags.WithLabelValues("geoip.dat")))
	assert.Equal(t, 4096.0, testutil.ToFloat64(r.downloadBytes.WithLabelValues("geoip.dat")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.downloadDuration))
}

func TestRecorderStartsEveryOutcomeAtZero(t *testing.T) {
	r := NewRecorder()

	count, err := testutil.GatherAndCount(r.Registry(), "geodata_check_files_total")
	require.NoError(t, err)
	assert.Equal(t, len(geodata.Kinds)*len(check.Statuses), count)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.files.WithLabelValues("geoip", "parse_failed")))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.FileFinished(&check.Result{Filename: "geosite.dat", Kind: geodata.KindSite, Status: check.StatusOK, Available: 10})

	path := filepath.Join(t.TempDir(), "geodata.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `geodata_check_files_total{kind="geosite",status="ok"} 1`), text)
	assert.Contains(t, text, "geodata_check_last_run_timestamp_seconds")
}

func TestWriteTextfileBadPath(t *testing.T) {
	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "geodata.prom"))
	assert.Error(t, err)
}
