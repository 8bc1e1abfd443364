package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dekarrin/vadm/internal/model"
	"github.com/dekarrin/vadm/internal/serr"
)

// LoginRequest is the body sent to log in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by the login, register and refresh endpoints. Not
// every endpoint fills in every field.
type AuthResponse struct {
	Token string     `json:"token,omitempty"`
	User  model.User `json:"user"`
}

// Blob is binary content together with its media type.
type Blob struct {
	Data        []byte
	ContentType string
}

// Login exchanges a username and password for an access token. The token is
// not applied to the Client; callers decide whether to keep it.
func (c *Client) Login(ctx context.Context, username, password string) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return AuthResponse{}, err
	}
	if resp.Token == "" {
		return AuthResponse{}, serr.New("POST /auth/login: no token in response", serr.ErrBodyUnmarshal)
	}
	return resp, nil
}

// Register creates a new user account from the draft and returns the created
// user.
func (c *Client) Register(ctx context.Context, draft model.NewUserDraft) (model.User, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", draft, &resp); err != nil {
		return model.User{}, err
	}
	return resp.User, nil
}

// RefreshToken asks the backend for a new access token for the current one.
// The new token is not applied to the Client.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", serr.New("POST /auth/refresh: no token in response", serr.ErrBodyUnmarshal)
	}
	return resp.Token, nil
}

// Logout invalidates every token the backend has issued to the logged-in user.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// ListUsers gets every user account.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser replaces the editable fields of a user and returns the user as
// the server now has it.
func (c *Client) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPut, idPath("/users", id), upd, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, idPath("/users", id), nil, nil)
}

// ListVideos gets every video record of the admin dashboard, undecoded.
func (c *Client) ListVideos(ctx context.Context) ([]model.RawVideo, error) {
	var videos []model.RawVideo
	if err := c.do(ctx, http.MethodGet, "/dashboard/videos", nil, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// DeleteVideo removes a video from the admin dashboard.
func (c *Client) DeleteVideo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, idPath("/dashboard/videos", id), nil, nil)
}

// GetVideoReport gets the processing report of a video through the admin
// dashboard. The report is returned as the JSON document the server sent.
func (c *Client) GetVideoReport(ctx context.Context, id string) (json.RawMessage, error) {
	return c.getJSONDocument(ctx, idPath("/dashboard/videos", id, "report"))
}

// GetHistory gets the logged-in user's previously processed videos.
func (c *Client) GetHistory(ctx context.Context) ([]model.HistoryVideo, error) {
	var videos []model.HistoryVideo
	if err := c.do(ctx, http.MethodGet, "/videos/history", nil, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// GetProcessedVideo downloads the processed video file.
func (c *Client) GetProcessedVideo(ctx context.Context, id string) (Blob, error) {
	data, contentType, err := c.send(ctx, http.MethodGet, idPath("/videos", id, "processed"), nil)
	if err != nil {
		return Blob{}, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return Blob{Data: data, ContentType: contentType}, nil
}

// GetHistoryReport gets the processing report of one of the logged-in user's
// videos.
func (c *Client) GetHistoryReport(ctx context.Context, id string) (json.RawMessage, error) {
	return c.getJSONDocument(ctx, idPath("/videos", id, "report"))
}

func (c *Client) getJSONDocument(ctx context.Context, path string) (json.RawMessage, error) {
	data, _, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, serr.New("GET "+path+": report is not JSON", serr.ErrBodyUnmarshal)
	}
	return json.RawMessage(data), nil
}
