package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dekarrin/vadm/server/dao"
	"github.com/google/uuid"
)

func NewVideosRepository() *InMemoryVideosRepository {
	return &InMemoryVideosRepository{
		videos: make(map[uuid.UUID]dao.Video),
	}
}

type InMemoryVideosRepository struct {
	mtx    sync.RWMutex
	videos map[uuid.UUID]dao.Video
}

func (imvr *InMemoryVideosRepository) Close() error {
	return nil
}

func (imvr *InMemoryVideosRepository) Create(ctx context.Context, video dao.Video) (dao.Video, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Video{}, fmt.Errorf("could not generate ID: %w", err)
	}

	imvr.mtx.Lock()
	defer imvr.mtx.Unlock()

	video.ID = newUUID
	imvr.videos[video.ID] = video

	return video, nil
}

// GetAll returns all videos, most recently uploaded first.
func (imvr *InMemoryVideosRepository) GetAll(ctx context.Context) ([]dao.Video, error) {
	return imvr.filter(func(dao.Video) bool { return true }), nil
}

// GetAllByUser returns the videos uploaded by a user, most recently uploaded
// first.
func (imvr *InMemoryVideosRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Video, error) {
	return imvr.filter(func(v dao.Video) bool { return v.UserID == userID }), nil
}

func (imvr *InMemoryVideosRepository) filter(keep func(dao.Video) bool) []dao.Video {
	imvr.mtx.RLock()
	defer imvr.mtx.RUnlock()

	var matched []dao.Video
	for k := range imvr.videos {
		if keep(imvr.videos[k]) {
			matched = append(matched, imvr.videos[k])
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].UploadedAt.Equal(matched[j].UploadedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].UploadedAt.After(matched[j].UploadedAt)
	})

	return matched
}

func (imvr *InMemoryVideosRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Video, error) {
	imvr.mtx.RLock()
	defer imvr.mtx.RUnlock()

	video, ok := imvr.videos[id]
	if !ok {
		return dao.Video{}, dao.ErrNotFound
	}

	return video, nil
}

func (imvr *InMemoryVideosRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Video, error) {
	imvr.mtx.Lock()
	defer imvr.mtx.Unlock()

	video, ok := imvr.videos[id]
	if !ok {
		return dao.Video{}, dao.ErrNotFound
	}

	delete(imvr.videos, id)

	return video, nil
}
