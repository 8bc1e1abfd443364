package views

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/dekarrin/vadm/internal/blob"
	"github.com/dekarrin/vadm/internal/client"
	"github.com/dekarrin/vadm/internal/i18n"
	"github.com/dekarrin/vadm/internal/model"
	"github.com/dekarrin/vadm/internal/prefs"
	"github.com/dekarrin/vadm/internal/serr"
	"golang.org/x/sync/errgroup"
)

// HistoryFetcher gets the logged-in user's processed videos.
type HistoryFetcher interface {
	GetHistory(ctx context.Context) ([]model.HistoryVideo, error)
	GetProcessedVideo(ctx context.Context, id string) (client.Blob, error)
	GetHistoryReport(ctx context.Context, id string) (json.RawMessage, error)
}

// TokenRefresher exchanges the current access token for a new one.
type TokenRefresher interface {
	RefreshToken(ctx context.Context) (string, error)
	SetToken(tok string)
}

// HistoryAPI is the part of the backend the history sidebar needs.
type HistoryAPI interface {
	HistoryFetcher
	TokenRefresher
}

// SelectFunc receives a selected video. videoURL and reportURL are file:// URLs
// of local copies that stay valid until the next selection or until the
// sidebar is closed.
type SelectFunc func(videoURL string, report json.RawMessage, reportURL string)

// Selection is the video currently selected in the sidebar.
type Selection struct {
	ID        string
	Title     string
	VideoURL  string
	ReportURL string
	Report    json.RawMessage
}

// HistorySidebar is the panel listing the user's previously processed videos.
// It owns the local files of the current selection.
type HistorySidebar struct {
	api   HistoryAPI
	files *blob.Registry
	store prefs.Store
	deps  Deps

	onSelect SelectFunc

	videos  []model.HistoryVideo
	loading bool
	err     error
	open    bool

	selected *Selection
	held     []*blob.Handle
}

// NewHistorySidebar creates a closed, empty sidebar. Local copies of selected
// videos are created in files, and refreshed tokens are persisted to store.
func NewHistorySidebar(api HistoryAPI, files *blob.Registry, store prefs.Store, d Deps) *HistorySidebar {
	return &HistorySidebar{
		api:   api,
		files: files,
		store: store,
		deps:  d.withDefaults(),
	}
}

// OnSelect registers the function called when a video has been selected. It
// replaces any previously registered function.
func (hs *HistorySidebar) OnSelect(f SelectFunc) {
	hs.onSelect = f
}

// Load replaces the list with the user's history. On failure the list is
// emptied, the error is kept for display in Err, and a single failure
// notification is sent.
func (hs *HistorySidebar) Load(ctx context.Context) error {
	if err := hs.fetch(ctx); err != nil {
		hs.deps.failure(err, i18n.HistoryFetchFailed)
		return err
	}
	return nil
}

// fetch is Load without the notification.
func (hs *HistorySidebar) fetch(ctx context.Context) error {
	hs.loading = true
	hs.err = nil
	defer func() { hs.loading = false }()

	videos, err := hs.api.GetHistory(ctx)
	if err != nil {
		hs.videos = nil
		hs.err = err
		return err
	}

	hs.videos = videos
	return nil
}

// Loading returns whether a Load is in progress.
func (hs *HistorySidebar) Loading() bool {
	return hs.loading
}

// Err returns the error of the last Load, or nil if it succeeded.
func (hs *HistorySidebar) Err() error {
	return hs.err
}

// Videos returns the history as currently displayed.
func (hs *HistorySidebar) Videos() []model.HistoryVideo {
	videos := make([]model.HistoryVideo, len(hs.videos))
	copy(videos, hs.videos)
	return videos
}

// Selected returns the current selection, if there is one.
func (hs *HistorySidebar) Selected() (Selection, bool) {
	if hs.selected == nil {
		return Selection{}, false
	}
	return *hs.selected, true
}

// SelectVideo downloads the processed file and the report of a video at the
// same time. Only once both have arrived are they written to local files, the
// previous selection released, and the OnSelect function called; the panel is
// then closed. If either download fails nothing is kept, the OnSelect function
// is not called, and a single failure notification is sent.
func (hs *HistorySidebar) SelectVideo(ctx context.Context, id, title string) error {
	var video client.Blob
	var report json.RawMessage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		video, err = hs.api.GetProcessedVideo(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		report, err = hs.api.GetHistoryReport(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		hs.deps.failure(err, i18n.VideoLoadFailed)
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, report, "", "  "); err != nil {
		err = serr.New("report is not JSON", err, serr.ErrBodyUnmarshal)
		hs.deps.failure(err, i18n.VideoLoadFailed)
		return err
	}

	videoFile, err := hs.files.Create(video.Data, video.ContentType)
	if err != nil {
		hs.deps.failure(err, i18n.VideoLoadFailed)
		return err
	}
	reportFile, err := hs.files.Create(pretty.Bytes(), "application/json")
	if err != nil {
		if relErr := videoFile.Release(); relErr != nil {
			hs.deps.Log.Warn().Err(relErr).Msg("could not release video file")
		}
		hs.deps.failure(err, i18n.VideoLoadFailed)
		return err
	}

	if err := hs.release(); err != nil {
		hs.deps.Log.Warn().Err(err).Msg("could not release previous selection")
	}
	hs.held = []*blob.Handle{videoFile, reportFile}
	hs.selected = &Selection{
		ID:        id,
		Title:     title,
		VideoURL:  videoFile.URL(),
		ReportURL: reportFile.URL(),
		Report:    json.RawMessage(pretty.Bytes()),
	}

	if hs.onSelect != nil {
		hs.onSelect(videoFile.URL(), hs.selected.Report, reportFile.URL())
	}
	hs.deps.success(i18n.VideoLoaded)
	hs.open = false
	return nil
}

// RefreshAuth gets a new access token, persists it, makes the client use it,
// and reloads the history. A single notification reports the outcome.
func (hs *HistorySidebar) RefreshAuth(ctx context.Context) error {
	tok, err := hs.api.RefreshToken(ctx)
	if err != nil {
		hs.deps.failure(err, i18n.HistoryUpdateFailed)
		return err
	}

	if err := hs.store.Set(prefs.TokenKey, tok); err != nil {
		hs.deps.failure(err, i18n.HistoryUpdateFailed)
		return err
	}
	hs.api.SetToken(tok)

	if err := hs.fetch(ctx); err != nil {
		hs.deps.failure(err, i18n.HistoryUpdateFailed)
		return err
	}

	hs.deps.success(i18n.HistoryUpdated)
	return nil
}

// Open shows the panel.
func (hs *HistorySidebar) Open() {
	hs.open = true
}

// Hide hides the panel.
func (hs *HistorySidebar) Hide() {
	hs.open = false
}

// Toggle shows the panel if it is hidden and hides it if it is shown.
func (hs *HistorySidebar) Toggle() {
	hs.open = !hs.open
}

// IsOpen returns whether the panel is shown.
func (hs *HistorySidebar) IsOpen() bool {
	return hs.open
}

// Close releases the local files of the current selection. The sidebar can
// still be used afterwards.
func (hs *HistorySidebar) Close() error {
	err := hs.release()
	hs.selected = nil
	return err
}

func (hs *HistorySidebar) release() error {
	var firstErr error
	for _, h := range hs.held {
		if err := h.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	hs.held = nil
	return firstErr
}
