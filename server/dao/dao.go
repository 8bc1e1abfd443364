// Package dao provides data access objects for use in the VidAdmin reference
// backend.
package dao

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store holds all the repositories.
type Store interface {
	Users() UserRepository
	Videos() VideoRepository
	Close() error
}

type UserRepository interface {

	// Create creates a new User. All attributes except for auto-generated
	// fields are taken from the provided User.
	Create(ctx context.Context, user User) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)
	Close() error
}

type VideoRepository interface {

	// Create creates a new Video. All attributes except for the ID are taken
	// from the provided Video.
	Create(ctx context.Context, video Video) (Video, error)
	GetAll(ctx context.Context) ([]Video, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]Video, error)
	GetByID(ctx context.Context, id uuid.UUID) (Video, error)
	Delete(ctx context.Context, id uuid.UUID) (Video, error)
	Close() error
}

type Role int

const (
	Normal Role = iota

	Admin Role = 100
)

func (r Role) String() string {
	switch r {
	case Normal:
		return "user"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

func ParseRole(s string) (Role, error) {
	check := strings.ToLower(s)
	switch check {
	case "user":
		return Normal, nil
	case "admin":
		return Admin, nil
	default:
		return Normal, fmt.Errorf("must be one of 'user' or 'admin'")
	}
}

type User struct {
	ID             uuid.UUID
	Username       string
	Password       string
	Email          string
	Role           Role
	Created        time.Time
	Modified       time.Time
	LastLogoutTime time.Time
}

// Video is a processed video along with the artifacts processing produced.
// Fields left at their zero value are omitted from API payloads, which is how
// the backend exercises the client's defaulting of missing data.
type Video struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	OriginalFilename string
	Duration         float64
	Status           string
	StoragePath      string
	ThumbnailURL     string
	UploadedAt       time.Time
	Resolution       string
	FPS              float64
	FileSize         int64
	Tags             []string

	// Content is the processed video file.
	Content     []byte
	ContentType string

	// Report is the JSON processing report. It is nil until processing has
	// completed.
	Report []byte
}
