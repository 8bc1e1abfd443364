package views

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/dekarrin/vadm/internal/apitest"
	"github.com/dekarrin/vadm/internal/blob"
	"github.com/dekarrin/vadm/internal/notify"
	"github.com/dekarrin/vadm/internal/prefs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var historyList = []map[string]string{
	{"id": "h1", "title": "first.mp4", "upload_date": "2024-05-01T12:00:00Z"},
	{"id": "h2", "title": "second.mp4", "upload_date": "2024-05-02T12:00:00Z"},
}

type selectCall struct {
	videoURL  string
	report    json.RawMessage
	reportURL string
}

func newSidebar(t *testing.T, env testEnv) (*HistorySidebar, *blob.Registry, *[]selectCall) {
	reg := blob.NewRegistry(t.TempDir())
	hs := NewHistorySidebar(env.client, reg, prefs.NewMemoryStore(), env.deps)

	var calls []selectCall
	hs.OnSelect(func(videoURL string, report json.RawMessage, reportURL string) {
		calls = append(calls, selectCall{videoURL, report, reportURL})
	})
	return hs, reg, &calls
}

func pathOf(t *testing.T, fileURL string) string {
	u, err := url.Parse(fileURL)
	require.NoError(t, err)
	require.Equal(t, "file", u.Scheme)
	return u.Path
}

func Test_HistorySidebar_Load(t *testing.T) {
	testCases := []struct {
		name         string
		handler      http.HandlerFunc
		expectVideos int
		expectErr    bool
	}{
		{name: "list", handler: apitest.JSON(http.StatusOK, historyList), expectVideos: 2},
		{name: "empty", handler: apitest.JSON(http.StatusOK, []string{}), expectVideos: 0},
		{name: "unauthorized", handler: apitest.Error(http.StatusUnauthorized, "expired"), expectErr: true},
		{name: "server error", handler: apitest.Error(http.StatusInternalServerError, "boom"), expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			env := newTestEnv(t, true)
			env.backend.On(http.MethodGet, "/videos/history", tc.handler)
			hs, _, _ := newSidebar(t, env)

			err := hs.Load(context.Background())
			assert.False(hs.Loading())
			assert.Len(hs.Videos(), tc.expectVideos)
			if tc.expectErr {
				assert.Error(err)
				assert.Equal(err, hs.Err())
				assert.Equal(1, env.notes.Count(notify.Error))
				if notes := env.notes.All(); assert.Len(notes, 1) {
					assert.Equal(notify.Notification{Level: notify.Error, Message: "Failed to load history"}, notes[0])
				}
			} else {
				assert.NoError(err)
				assert.NoError(hs.Err())
				assert.Empty(env.notes.All())
			}
		})
	}
}

func Test_HistorySidebar_Load_FailureEmptiesList(t *testing.T) {
	assert := assert.New(t)

	env := newTestEnv(t, true)
	failing := false
	env.backend.On(http.MethodGet, "/videos/history", func(w http.ResponseWriter, req *http.Request) {
		if failing {
			apitest.Error(http.StatusInternalServerError, "boom")(w, req)
			return
		}
		apitest.JSON(http.StatusOK, historyList)(w, req)
	})
	hs, _, _ := newSidebar(t, env)

	require.NoError(t, hs.Load(context.Background()))
	require.Len(t, hs.Videos(), 2)

	failing = true
	err := hs.Load(context.Background())

	assert.Error(err)
	assert.Empty(hs.Videos())
	assert.Equal(1, env.notes.Count(notify.Error))
}

func Test_HistorySidebar_SelectVideo(t *testing.T) {
	assert := assert.New(t)

	env := newTestEnv(t, true)
	env.backend.On(http.MethodGet, "/videos/{id}/processed", apitest.Raw(http.StatusOK, "video/mp4", []byte("VIDEO")))
	env.backend.On(http.MethodGet, "/videos/{id}/report", apitest.Raw(http.StatusOK, "application/json", []byte(`{"ok":true}`)))
	hs, reg, calls := newSidebar(t, env)
	hs.Open()

	require.NoError(t, hs.SelectVideo(context.Background(), "h1", "first.mp4"))

	require.Len(t, *calls, 1)
	first := (*calls)[0]
	assert.Equal("{\n  \"ok\": true\n}", string(first.report))

	data, err := os.ReadFile(pathOf(t, first.videoURL))
	assert.NoError(err)
	assert.Equal("VIDEO", string(data))
	data, err = os.ReadFile(pathOf(t, first.reportURL))
	assert.NoError(err)
	assert.Equal(string(first.report), string(data))

	assert.False(hs.IsOpen())
	assert.Equal(2, reg.Live())
	sel, ok := hs.Selected()
	assert.True(ok)
	assert.Equal("h1", sel.ID)
	assert.Equal(1, env.backend.Count(http.MethodGet, "/videos/h1/processed"))
	assert.Equal(1, env.backend.Count(http.MethodGet, "/videos/h1/report"))

	notes := env.notes.All()
	if assert.Len(notes, 1) {
		assert.Equal(notify.Notification{Level: notify.Success, Message: "Video loaded successfully"}, notes[0])
	}

	// the next selection releases the previous files
	require.NoError(t, hs.SelectVideo(context.Background(), "h2", "second.mp4"))
	assert.Equal(2, reg.Live())
	_, err = os.Stat(pathOf(t, first.videoURL))
	assert.True(os.IsNotExist(err))
	_, err = os.Stat(pathOf(t, first.reportURL))
	assert.True(os.IsNotExist(err))

	assert.NoError(hs.Close())
	assert.Equal(0, reg.Live())
	_, ok = hs.Selected()
	assert.False(ok)
}

func Test_HistorySidebar_SelectVideo_Failure(t *testing.T) {
	testCases := []struct {
		name      string
		processed http.HandlerFunc
		report    http.HandlerFunc
	}{
		{
			name:      "processed fails",
			processed: apitest.Error(http.StatusNotFound, "gone"),
			report:    apitest.Raw(http.StatusOK, "application/json", []byte(`{}`)),
		},
		{
			name:      "report fails",
			processed: apitest.Raw(http.StatusOK, "video/mp4", []byte("VIDEO")),
			report:    apitest.Error(http.StatusInternalServerError, "boom"),
		},
		{
			name:      "both fail",
			processed: apitest.Error(http.StatusInternalServerError, "boom"),
			report:    apitest.Error(http.StatusInternalServerError, "boom"),
		},
		{
			name:      "report is not json",
			processed: apitest.Raw(http.StatusOK, "video/mp4", []byte("VIDEO")),
			report:    apitest.Raw(http.StatusOK, "text/plain", []byte("nope")),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			env := newTestEnv(t, true)
			env.backend.On(http.MethodGet, "/videos/{id}/processed", tc.processed)
			env.backend.On(http.MethodGet, "/videos/{id}/report", tc.report)
			hs, reg, calls := newSidebar(t, env)
			hs.Open()

			assert.Error(hs.SelectVideo(context.Background(), "h1", "first.mp4"))

			assert.Empty(*calls)
			assert.Equal(0, reg.Live())
			assert.True(hs.IsOpen())
			_, ok := hs.Selected()
			assert.False(ok)

			notes := env.notes.All()
			if assert.Len(notes, 1) {
				assert.Equal(notify.Notification{Level: notify.Error, Message: "Failed to load video"}, notes[0])
			}
		})
	}
}

func Test_HistorySidebar_SelectVideo_LogsStuckRelease(t *testing.T) {
	assert := assert.New(t)

	env := newTestEnv(t, true)
	var logBuf bytes.Buffer
	log := zerolog.New(&logBuf)
	env.deps.Log = &log
	env.backend.On(http.MethodGet, "/videos/{id}/processed", apitest.Raw(http.StatusOK, "video/mp4", []byte("VIDEO")))
	env.backend.On(http.MethodGet, "/videos/{id}/report", apitest.Raw(http.StatusOK, "application/json", []byte(`{}`)))
	hs, _, calls := newSidebar(t, env)

	require.NoError(t, hs.SelectVideo(context.Background(), "h1", "first.mp4"))
	stuck := pathOf(t, (*calls)[0].videoURL)

	// a non-empty directory in place of the file cannot be removed
	require.NoError(t, os.Remove(stuck))
	require.NoError(t, os.Mkdir(stuck, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(stuck, "keep"), []byte("x"), 0644))
	t.Cleanup(func() { os.RemoveAll(stuck) })

	require.NoError(t, hs.SelectVideo(context.Background(), "h2", "second.mp4"))

	sel, ok := hs.Selected()
	assert.True(ok)
	assert.Equal("h2", sel.ID)
	assert.Contains(logBuf.String(), "could not release previous selection")
	assert.Equal(0, env.notes.Count(notify.Error))
}

func Test_HistorySidebar_RefreshAuth(t *testing.T) {
	testCases := []struct {
		name        string
		refresh     http.HandlerFunc
		history     http.HandlerFunc
		expectErr   bool
		expectToken string
		expectNote  notify.Notification
	}{
		{
			name:        "refreshed",
			refresh:     apitest.JSON(http.StatusOK, map[string]string{"token": "new-token"}),
			history:     apitest.JSON(http.StatusOK, historyList),
			expectToken: "new-token",
			expectNote:  notify.Notification{Level: notify.Success, Message: "History updated successfully"},
		},
		{
			name:       "refresh refused",
			refresh:    apitest.Error(http.StatusUnauthorized, "expired"),
			history:    apitest.JSON(http.StatusOK, historyList),
			expectErr:  true,
			expectNote: notify.Notification{Level: notify.Error, Message: "Failed to update history"},
		},
		{
			name:        "reload fails",
			refresh:     apitest.JSON(http.StatusOK, map[string]string{"token": "new-token"}),
			history:     apitest.Error(http.StatusInternalServerError, "boom"),
			expectErr:   true,
			expectToken: "new-token",
			expectNote:  notify.Notification{Level: notify.Error, Message: "Failed to update history"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			env := newTestEnv(t, true)
			env.backend.On(http.MethodPost, "/auth/refresh", tc.refresh)
			env.backend.On(http.MethodGet, "/videos/history", tc.history)
			env.client.SetToken("old-token")

			store := prefs.NewMemoryStore()
			hs := NewHistorySidebar(env.client, blob.NewRegistry(t.TempDir()), store, env.deps)

			err := hs.RefreshAuth(context.Background())
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
				assert.Len(hs.Videos(), 2)
			}

			tok, ok := store.Get(prefs.TokenKey)
			if tc.expectToken == "" {
				assert.False(ok)
				assert.Equal("old-token", env.client.Token())
			} else {
				assert.Equal(tc.expectToken, tok)
				assert.Equal(tc.expectToken, env.client.Token())
				if req, ok := env.backend.Last(http.MethodGet, "/videos/history"); assert.True(ok) {
					assert.Equal("Bearer "+tc.expectToken, req.Header.Get("Authorization"))
				}
			}

			notes := env.notes.All()
			if assert.Len(notes, 1) {
				assert.Equal(tc.expectNote, notes[0])
			}
		})
	}
}

func Test_HistorySidebar_Visibility(t *testing.T) {
	assert := assert.New(t)

	env := newTestEnv(t, true)
	hs, _, _ := newSidebar(t, env)

	assert.False(hs.IsOpen())
	hs.Toggle()
	assert.True(hs.IsOpen())
	hs.Toggle()
	assert.False(hs.IsOpen())
	hs.Open()
	hs.Open()
	assert.True(hs.IsOpen())
	hs.Hide()
	assert.False(hs.IsOpen())
}
