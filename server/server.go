// Package server is an in-memory reference implementation of the VidAdmin
// backend REST API. It backs the console's tests and can be run on its own
// with cmd/vadmfake for trying out the console.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dekarrin/vadm/internal/serr"
	"github.com/dekarrin/vadm/server/api"
	"github.com/dekarrin/vadm/server/dao"
	"github.com/dekarrin/vadm/server/dao/inmem"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Server is an HTTP REST server that provides the VidAdmin backend API. The
// zero-value of a Server should not be used directly; call New() to get one
// ready for use.
type Server struct {
	router chi.Router
	api    api.API
	db     dao.Store
	log    zerolog.Logger
}

// New creates a new Server from cfg. Unset values in cfg are given their
// defaults.
func New(cfg Config, log zerolog.Logger) (*Server, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db := inmem.NewDatastore()

	s := &Server{
		db:  db,
		log: log,
		api: api.API{
			Store:       db,
			UnauthDelay: cfg.UnauthDelay(),
			Secret:      cfg.TokenSecret,
			Log:         log,
		},
	}

	s.router = chi.NewRouter()
	s.router.Mount(api.PathPrefix, s.api.Router())

	return s, nil
}

// Handler returns the root handler of the server. All API routes are under
// api.PathPrefix.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store.
func (s *Server) Close() error {
	return s.db.Close()
}

// ServeForever begins listening on the given address for HTTP REST client
// requests. If address is "", it defaults to "localhost:8080". It only returns
// once the server has stopped.
func (s *Server) ServeForever(address string) error {
	if address == "" {
		address = "localhost:8080"
	}

	s.log.Info().Str("address", address).Msg("listening")
	return http.ListenAndServe(address, s.router)
}

// CreateUser creates a new user directly in the store.
//
// The returned error matches serr.ErrAlreadyExists if the username is taken
// and serr.ErrBadArgument if any of the arguments are invalid.
func (s *Server) CreateUser(ctx context.Context, username, password, email string, role dao.Role) (dao.User, error) {
	return s.api.CreateUser(ctx, username, password, email, role)
}

// AddVideo stores a video. Its ID is assigned by the store.
func (s *Server) AddVideo(ctx context.Context, v dao.Video) (dao.Video, error) {
	return s.db.Videos().Create(ctx, v)
}

// Users gives direct access to the user repository.
func (s *Server) Users() dao.UserRepository {
	return s.db.Users()
}

// Videos gives direct access to the video repository.
func (s *Server) Videos() dao.VideoRepository {
	return s.db.Videos()
}

// Seed creates an admin user with password "password", a normal user "demo"
// with password "password", and a handful of videos owned by demo in every
// status. Some videos are deliberately missing data. Seeding an already seeded
// server is an error matching serr.ErrAlreadyExists.
func (s *Server) Seed(ctx context.Context) error {
	if _, err := s.CreateUser(ctx, "admin", "password", "admin@example.com", dao.Admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	demo, err := s.CreateUser(ctx, "demo", "password", "demo@example.com", dao.Normal)
	if err != nil {
		return fmt.Errorf("create demo user: %w", err)
	}

	now := time.Now().Truncate(time.Second)
	videos := []dao.Video{
		{
			OriginalFilename: "Quarterly Review.mp4",
			Duration:         754.2,
			Status:           api.StatusCompleted,
			StoragePath:      "/storage/quarterly_review.mp4",
			ThumbnailURL:     "/storage/quarterly_review.jpg",
			UploadedAt:       now.Add(-48 * time.Hour),
			Resolution:       "1920x1080",
			FPS:              29.97,
			FileSize:         187_452_112,
			Tags:             []string{"meeting", "finance"},
		},
		{
			OriginalFilename: "drone flyover.mov",
			Duration:         3725,
			Status:           "pending",
			UploadedAt:       now.Add(-2 * time.Hour),
			Resolution:       "3840x2160",
			FPS:              60,
			FileSize:         2_104_882_233,
		},
		{
			OriginalFilename: "corrupt upload.avi",
			Status:           "error",
			UploadedAt:       now.Add(-30 * time.Minute),
		},
		{
			// nothing but an owner; exercises client-side defaults
		},
	}

	for i := range videos {
		videos[i].UserID = demo.ID
		if videos[i].Status == api.StatusCompleted {
			report := map[string]interface{}{
				"video":      videos[i].OriginalFilename,
				"duration":   videos[i].Duration,
				"resolution": videos[i].Resolution,
				"fps":        videos[i].FPS,
				"scenes":     12,
				"faces":      []string{"speaker-1", "speaker-2"},
			}
			videos[i].Report, err = json.Marshal(report)
			if err != nil {
				return fmt.Errorf("marshal report: %w", err)
			}
			videos[i].Content = []byte("processed:" + videos[i].OriginalFilename)
			videos[i].ContentType = "video/mp4"
		}
		if _, err := s.AddVideo(ctx, videos[i]); err != nil {
			return fmt.Errorf("add video %d: %w", i, err)
		}
	}

	return nil
}

// SeedAdmin creates only the admin user, with password "password". It is not
// an error if the admin already exists.
func (s *Server) SeedAdmin(ctx context.Context) error {
	_, err := s.CreateUser(ctx, "admin", "password", "admin@example.com", dao.Admin)
	if err != nil && !errors.Is(err, serr.ErrAlreadyExists) {
		return err
	}
	return nil
}
