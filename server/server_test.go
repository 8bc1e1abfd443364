package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dekarrin/vadm/server/dao"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	srv, err := New(Config{UnauthDelayMillis: -1}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, srv.Seed(context.Background()))
	t.Cleanup(func() { srv.Close() })
	return srv
}

func call(t *testing.T, srv *Server, method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req := httptest.NewRequest(method, path, &reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, srv *Server, username string) string {
	w := call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": "password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func Test_Config_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		cfg       Config
		expectErr bool
	}{
		{name: "defaults", cfg: Config{}.FillDefaults()},
		{name: "short secret", cfg: Config{TokenSecret: []byte("short")}, expectErr: true},
		{name: "stretched secret", cfg: Config{TokenSecret: StretchSecret([]byte("short"))}},
		{name: "long secret", cfg: Config{TokenSecret: bytes.Repeat([]byte("x"), 65)}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			err := tc.cfg.Validate()
			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func Test_Login(t *testing.T) {
	testCases := []struct {
		name         string
		username     string
		password     string
		expectStatus int
	}{
		{name: "admin", username: "admin", password: "password", expectStatus: http.StatusOK},
		{name: "wrong password", username: "admin", password: "hunter2", expectStatus: http.StatusUnauthorized},
		{name: "unknown user", username: "nobody", password: "password", expectStatus: http.StatusUnauthorized},
		{name: "empty password", username: "admin", password: "", expectStatus: http.StatusBadRequest},
	}

	srv := newTestServer(t)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			w := call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{"username": tc.username, "password": tc.password})
			assert.Equal(tc.expectStatus, w.Code)

			if tc.expectStatus != http.StatusOK {
				var errResp struct {
					Error  string `json:"error"`
					Status int    `json:"status"`
				}
				assert.NoError(json.Unmarshal(w.Body.Bytes(), &errResp))
				assert.Equal(tc.expectStatus, errResp.Status)
				assert.NotEmpty(errResp.Error)
			}
		})
	}
}

func Test_Endpoints_RequireAdmin(t *testing.T) {
	testCases := []struct {
		name   string
		method string
		path   string
	}{
		{name: "list users", method: http.MethodGet, path: "/api/users"},
		{name: "list videos", method: http.MethodGet, path: "/api/dashboard/videos"},
	}

	srv := newTestServer(t)
	demoTok := login(t, srv, "demo")
	adminTok := login(t, srv, "admin")

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(http.StatusUnauthorized, call(t, srv, tc.method, tc.path, "", nil).Code)
			assert.Equal(http.StatusForbidden, call(t, srv, tc.method, tc.path, demoTok, nil).Code)
			assert.Equal(http.StatusOK, call(t, srv, tc.method, tc.path, adminTok, nil).Code)
		})
	}
}

func Test_DashboardVideos_OmitZeroFields(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	w := call(t, srv, http.MethodGet, "/api/dashboard/videos", login(t, srv, "admin"), nil)
	if !assert.Equal(http.StatusOK, w.Code) {
		return
	}

	var videos []map[string]interface{}
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &videos))
	assert.Len(videos, 4)

	var bare int
	for _, v := range videos {
		assert.Contains(v, "id")
		if _, ok := v["original_filename"]; !ok {
			bare++
			assert.NotContains(v, "status")
			assert.NotContains(v, "tags")
		}
	}
	assert.Equal(1, bare)
}

func Test_Report_OnlyWhenCompleted(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	adminTok := login(t, srv, "admin")

	videos, err := srv.Videos().GetAll(ctx)
	require.NoError(t, err)

	for _, v := range videos {
		v := v
		t.Run(v.Status, func(t *testing.T) {
			assert := assert.New(t)

			w := call(t, srv, http.MethodGet, "/api/dashboard/videos/"+v.ID.String()+"/report", adminTok, nil)
			if v.Status == "completed" {
				assert.Equal(http.StatusOK, w.Code)
				assert.True(json.Valid(w.Body.Bytes()))
			} else {
				assert.Equal(http.StatusConflict, w.Code)
			}
		})
	}
}

func Test_History_OnlyOwnVideos(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)
	ctx := context.Background()

	other, err := srv.CreateUser(ctx, "other", "password", "other@example.com", dao.Normal)
	require.NoError(t, err)
	otherVid, err := srv.AddVideo(ctx, dao.Video{UserID: other.ID, OriginalFilename: "mine.mp4", Status: "completed", Content: []byte("x"), Report: []byte(`{}`)})
	require.NoError(t, err)

	demoTok := login(t, srv, "demo")

	w := call(t, srv, http.MethodGet, "/api/videos/history", demoTok, nil)
	assert.Equal(http.StatusOK, w.Code)
	var hist []map[string]interface{}
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &hist))
	assert.Len(hist, 4)
	for _, h := range hist {
		assert.NotEqual(otherVid.ID.String(), h["id"])
	}

	assert.Equal(http.StatusNotFound, call(t, srv, http.MethodGet, "/api/videos/"+otherVid.ID.String()+"/processed", demoTok, nil).Code)
	assert.Equal(http.StatusOK, call(t, srv, http.MethodGet, "/api/videos/"+otherVid.ID.String()+"/processed", login(t, srv, "other"), nil).Code)
}

func Test_Logout_InvalidatesToken(t *testing.T) {
	assert := assert.New(t)
	srv := newTestServer(t)

	tok := login(t, srv, "demo")
	assert.Equal(http.StatusOK, call(t, srv, http.MethodGet, "/api/videos/history", tok, nil).Code)
	assert.Equal(http.StatusNoContent, call(t, srv, http.MethodPost, "/api/auth/logout", tok, nil).Code)
	assert.Equal(http.StatusUnauthorized, call(t, srv, http.MethodGet, "/api/videos/history", tok, nil).Code)
}

func Test_Register(t *testing.T) {
	testCases := []struct {
		name         string
		asAdmin      bool
		body         map[string]string
		expectStatus int
		expectToken  bool
	}{
		{
			name:         "self registration",
			body:         map[string]string{"username": "new", "email": "new@example.com", "password": "secret1"},
			expectStatus: http.StatusCreated,
			expectToken:  true,
		},
		{
			name:         "short password",
			body:         map[string]string{"username": "new", "email": "new@example.com", "password": "abc"},
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "bad email",
			body:         map[string]string{"username": "new", "email": "not-an-email", "password": "secret1"},
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "taken username",
			body:         map[string]string{"username": "demo", "email": "d@example.com", "password": "secret1"},
			expectStatus: http.StatusConflict,
		},
		{
			name:         "admin without admin session",
			body:         map[string]string{"username": "boss", "email": "b@example.com", "password": "secret1", "role": "admin"},
			expectStatus: http.StatusForbidden,
		},
		{
			name:         "admin created by admin",
			asAdmin:      true,
			body:         map[string]string{"username": "boss", "email": "b@example.com", "password": "secret1", "role": "admin"},
			expectStatus: http.StatusCreated,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			srv := newTestServer(t)

			var tok string
			if tc.asAdmin {
				tok = login(t, srv, "admin")
			}

			w := call(t, srv, http.MethodPost, "/api/auth/register", tok, tc.body)
			if !assert.Equal(tc.expectStatus, w.Code, w.Body.String()) {
				return
			}
			if tc.expectStatus != http.StatusCreated {
				return
			}

			var resp struct {
				Token string            `json:"token"`
				User  map[string]string `json:"user"`
			}
			assert.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(tc.body["username"], resp.User["username"])
			assert.Equal(tc.expectToken, resp.Token != "")
		})
	}
}
