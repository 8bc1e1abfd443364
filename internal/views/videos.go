package views

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/dekarrin/vadm/internal/blob"
	"github.com/dekarrin/vadm/internal/i18n"
	"github.com/dekarrin/vadm/internal/model"
	"github.com/dekarrin/vadm/internal/serr"
	"github.com/dustin/go-humanize"
)

// VideoAPI is the part of the backend the video table needs.
type VideoAPI interface {
	ListVideos(ctx context.Context) ([]model.RawVideo, error)
	DeleteVideo(ctx context.Context, id string) error
	GetVideoReport(ctx context.Context, id string) (json.RawMessage, error)
}

// VideoTable is the video list of the admin shell.
type VideoTable struct {
	api   VideoAPI
	saver blob.Saver
	deps  Deps

	// now gives the upload date of videos that have none.
	now func() time.Time

	videos  []model.Video
	loading bool
}

// NewVideoTable creates an empty VideoTable. Downloaded reports are stored
// through saver. Call Load to fill it.
func NewVideoTable(api VideoAPI, saver blob.Saver, d Deps) *VideoTable {
	return &VideoTable{
		api:   api,
		saver: saver,
		deps:  d.withDefaults(),
		now:   time.Now,
	}
}

// Load replaces the list with the videos on the backend. Records are decoded
// with DecodeVideo; records without an ID are skipped. If the fetch fails the
// list is emptied and a single failure notification is sent.
func (vt *VideoTable) Load(ctx context.Context) error {
	vt.loading = true
	defer func() { vt.loading = false }()

	raws, err := vt.api.ListVideos(ctx)
	if err != nil {
		vt.videos = nil
		vt.deps.failure(err, i18n.VideosFetchFailed)
		return err
	}

	opts := model.DecodeOptions{
		Untitled: vt.deps.Texts.T(i18n.Untitled),
		Now:      vt.now,
	}

	videos := make([]model.Video, 0, len(raws))
	for i := range raws {
		v, defaulted, err := model.DecodeVideo(raws[i], opts)
		if err != nil {
			vt.deps.Log.Warn().Err(err).Int("index", i).Msg("skipping video record")
			continue
		}
		if len(defaulted) > 0 {
			vt.deps.Log.Debug().Str("video", v.ID).Strs("defaulted", defaulted).Msg("video record is missing fields")
		}
		videos = append(videos, v)
	}

	vt.videos = videos
	return nil
}

// Loading returns whether a Load is in progress.
func (vt *VideoTable) Loading() bool {
	return vt.loading
}

// Rows returns the videos as currently displayed.
func (vt *VideoTable) Rows() []model.Video {
	rows := make([]model.Video, len(vt.videos))
	copy(rows, vt.videos)
	return rows
}

// Find returns the displayed video with the given ID.
func (vt *VideoTable) Find(id string) (model.Video, bool) {
	if idx := vt.indexOf(id); idx >= 0 {
		return vt.videos[idx], true
	}
	return model.Video{}, false
}

func (vt *VideoTable) indexOf(id string) int {
	for i := range vt.videos {
		if vt.videos[i].ID == id {
			return i
		}
	}
	return -1
}

// Remove deletes the video with the given ID after confirmation. If the user
// declines, nothing is sent and false is returned.
func (vt *VideoTable) Remove(ctx context.Context, id string) (bool, error) {
	if vt.indexOf(id) < 0 {
		return false, serr.New(fmt.Sprintf("no video with ID %q", id), serr.ErrNotFound)
	}
	if !vt.deps.confirm(i18n.DeleteConfirmation) {
		return false, nil
	}

	if err := vt.api.DeleteVideo(ctx, id); err != nil {
		vt.deps.failure(err, i18n.VideoDeleteFailed)
		return false, err
	}

	if idx := vt.indexOf(id); idx >= 0 {
		vt.videos = append(vt.videos[:idx], vt.videos[idx+1:]...)
	}
	vt.deps.success(i18n.VideoDeleted)
	return true, nil
}

// CanDownloadReport returns whether the report of the video with the given ID
// can be downloaded, which is only once its processing has completed.
func (vt *VideoTable) CanDownloadReport(id string) bool {
	v, ok := vt.Find(id)
	return ok && v.ReportReady()
}

// DownloadReport fetches the report of a video and saves it, pretty-printed,
// under the name given by ReportFileName. It returns where the report was
// saved. Videos whose processing is not complete give an error matching
// serr.ErrNotReady without contacting the backend.
func (vt *VideoTable) DownloadReport(ctx context.Context, id string) (string, error) {
	v, ok := vt.Find(id)
	if !ok {
		return "", serr.New(fmt.Sprintf("no video with ID %q", id), serr.ErrNotFound)
	}
	if !v.ReportReady() {
		return "", serr.New(fmt.Sprintf("video %q has status %q", id, v.Status), serr.ErrNotReady)
	}

	report, err := vt.api.GetVideoReport(ctx, id)
	if err != nil {
		vt.deps.failure(err, i18n.ReportDownloadFailed)
		return "", err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, report, "", "  "); err != nil {
		err = serr.New("report is not JSON", err, serr.ErrBodyUnmarshal)
		vt.deps.failure(err, i18n.ReportDownloadFailed)
		return "", err
	}

	saved, err := vt.saver.Save(ReportFileName(v.Title), pretty.Bytes())
	if err != nil {
		vt.deps.failure(err, i18n.ReportDownloadFailed)
		return "", err
	}

	vt.deps.success(i18n.ReportDownloaded, saved)
	return saved, nil
}

// runs of whitespace or path separators
var fileNameBreaks = regexp.MustCompile(`[\s/\\]+`)

// ReportFileName gives the file name a report of the video with the given
// title is saved under.
func ReportFileName(title string) string {
	return fileNameBreaks.ReplaceAllString(title, "_") + "_report.json"
}

// FormatDuration formats a duration in seconds as m:ss, or h:mm:ss once it is
// an hour or longer. Fractions of a second are dropped.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatSize formats a file size in bytes for display.
func FormatSize(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.Bytes(uint64(size))
}
