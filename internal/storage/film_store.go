// Package storage holds the in-memory film and user stores.
//
// Stores are not safe for concurrent use. The HTTP layer serializes access
// with a process-wide read/write lock, see middleware.Serialize.
package storage

import (
	"github.com/rs/zerolog"

	"github.com/iliyamo/filmorate/internal/model"
)

// FilmStore keeps films in insertion order and allocates their ids.
type FilmStore struct {
	log   zerolog.Logger
	films map[int64]*model.Film
	order []int64
}

// NewFilmStore returns an empty store.
func NewFilmStore(log zerolog.Logger) *FilmStore {
	return &FilmStore{
		log:   log.With().Str("component", "film_store").Logger(),
		films: make(map[int64]*model.Film),
	}
}

// FindAll returns a copy of every film in insertion order.
func (s *FilmStore) FindAll() []model.Film {
	out := make([]model.Film, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.films[id].Clone())
	}
	return out
}

// FindByID returns a copy of the film with the given id.
func (s *FilmStore) FindByID(id int64) (model.Film, bool) {
	f, ok := s.films[id]
	if !ok {
		return model.Film{}, false
	}
	return f.Clone(), true
}

// Exists reports whether a film with the given id is stored.
func (s *FilmStore) Exists(id int64) bool {
	_, ok := s.films[id]
	return ok
}

// Add validates film, assigns it a fresh id and stores it with no likes.
// Any id or likes supplied by the caller are ignored.
func (s *FilmStore) Add(film model.Film) (model.Film, error) {
	if err := film.Validate(); err != nil {
		s.log.Warn().Err(err).Str("name", film.Name).Msg("film rejected")
		return model.Film{}, err
	}
	film.ID = s.nextID()
	film.Likes = model.NewIDSet()

	stored := film.Clone()
	s.films[film.ID] = &stored
	s.order = append(s.order, film.ID)

	s.log.Info().Int64("film_id", film.ID).Str("name", film.Name).Msg("film added")
	s.log.Debug().Interface("film", film).Msg("added film details")
	return film, nil
}

// Update merges the fields present in patch into the stored film. A field
// is applied only when it differs from the stored value, and every such
// field is validated before anything is written. Likes are never touched.
func (s *FilmStore) Update(patch model.FilmPatch) (model.Film, error) {
	if patch.ID == nil {
		s.log.Error().Msg("film update without id")
		return model.Film{}, model.NewValidationError("ID фильма должен быть указан")
	}
	id := *patch.ID
	current, ok := s.films[id]
	if !ok {
		s.log.Warn().Int64("film_id", id).Msg("film not found")
		return model.Film{}, model.NewNotFoundError("Фильм с id %d не найден", id)
	}

	next := current.Clone()
	changes := map[string]any{}

	if patch.Name != nil && *patch.Name != current.Name {
		if err := model.ValidateFilmName(*patch.Name); err != nil {
			return model.Film{}, err
		}
		changes["name"] = *patch.Name
		next.Name = *patch.Name
	}
	if patch.Description != nil && *patch.Description != current.Description {
		if err := model.ValidateFilmDescription(*patch.Description); err != nil {
			return model.Film{}, err
		}
		changes["description"] = *patch.Description
		next.Description = *patch.Description
	}
	if patch.ReleaseDate != nil && !patch.ReleaseDate.Equal(current.ReleaseDate.Time) {
		if err := model.ValidateReleaseDate(*patch.ReleaseDate); err != nil {
			return model.Film{}, err
		}
		changes["release_date"] = patch.ReleaseDate.String()
		next.ReleaseDate = *patch.ReleaseDate
	}
	if patch.Duration != nil && *patch.Duration != current.Duration {
		if err := model.ValidateDuration(*patch.Duration); err != nil {
			return model.Film{}, err
		}
		changes["duration"] = patch.Duration.String()
		next.Duration = *patch.Duration
	}

	if len(changes) == 0 {
		s.log.Info().Int64("film_id", id).Msg("film unchanged")
		return current.Clone(), nil
	}
	*current = next
	s.log.Info().Int64("film_id", id).Fields(changes).Msg("film updated")
	return current.Clone(), nil
}

// AddLike records that userID likes filmID. Callers check that the user
// exists; the store only knows films.
func (s *FilmStore) AddLike(filmID, userID int64) error {
	f, ok := s.films[filmID]
	if !ok {
		return model.NewNotFoundError("Фильм с id %d не найден", filmID)
	}
	f.Likes.Add(userID)
	return nil
}

// RemoveLike drops userID from the likes of filmID.
func (s *FilmStore) RemoveLike(filmID, userID int64) error {
	f, ok := s.films[filmID]
	if !ok {
		return model.NewNotFoundError("Фильм с id %d не найден", filmID)
	}
	f.Likes.Remove(userID)
	return nil
}

// nextID returns max(ids)+1, or 1 for an empty store.
func (s *FilmStore) nextID() int64 {
	var maxID int64
	for _, id := range s.order {
		if id > maxID {
			maxID = id
		}
	}
	s.log.Debug().Int64("film_id", maxID+1).Msg("allocated film id")
	return maxID + 1
}
