// Package inmem is an in-memory implementation of the dao repositories. It is
// safe for concurrent use.
package inmem

import (
	"fmt"

	"github.com/dekarrin/vadm/server/dao"
)

type store struct {
	users  *InMemoryUsersRepository
	videos *InMemoryVideosRepository
}

func NewDatastore() dao.Store {
	return &store{
		users:  NewUsersRepository(),
		videos: NewVideosRepository(),
	}
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Videos() dao.VideoRepository {
	return s.videos
}

func (s *store) Close() error {
	var err error

	if nextErr := s.users.Close(); nextErr != nil {
		err = nextErr
	}
	if nextErr := s.videos.Close(); nextErr != nil {
		if err != nil {
			err = fmt.Errorf("%s\nadditionally, %w", err, nextErr)
		} else {
			err = nextErr
		}
	}

	return err
}
