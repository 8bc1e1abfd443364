package api

import (
	"time"

	"github.com/dekarrin/vadm/server/dao"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// AuthResponse is sent by every endpoint under /auth that issues a token.
type AuthResponse struct {
	Token string     `json:"token,omitempty"`
	User  *UserModel `json:"user,omitempty"`
}

type UserModel struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UserUpdateRequest replaces the editable fields of a user. Fields left empty
// keep their current value.
type UserUpdateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type HistoryModel struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	UploadDate time.Time `json:"upload_date"`
}

type InfoModel struct {
	Version struct {
		Server  string `json:"server"`
		Console string `json:"console"`
	} `json:"version"`
}

func userModel(u dao.User) UserModel {
	return UserModel{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role.String(),
	}
}

// videoModel builds the dashboard record for v. Zero-valued fields are left out
// entirely; clients are expected to fill in their own defaults.
func videoModel(v dao.Video) map[string]interface{} {
	m := map[string]interface{}{
		"id": v.ID.String(),
	}

	if v.OriginalFilename != "" {
		m["original_filename"] = v.OriginalFilename
	}
	if v.Duration != 0 {
		m["duration"] = v.Duration
	}
	if v.Status != "" {
		m["status"] = v.Status
	}
	if v.StoragePath != "" {
		m["storage_path"] = v.StoragePath
	}
	if v.ThumbnailURL != "" {
		m["thumbnail_url"] = v.ThumbnailURL
	}
	if !v.UploadedAt.IsZero() {
		m["uploaded_at"] = v.UploadedAt.Format(time.RFC3339)
	}
	if v.Resolution != "" {
		m["resolution"] = v.Resolution
	}
	if v.FPS != 0 {
		m["fps"] = v.FPS
	}
	if v.FileSize != 0 {
		m["file_size"] = v.FileSize
	}
	if len(v.Tags) > 0 {
		m["tags"] = v.Tags
	}
	if v.UserID != [16]byte{} {
		m["user_id"] = v.UserID.String()
	}

	return m
}
