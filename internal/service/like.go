package service

import (
	"github.com/rs/zerolog"

	"github.com/iliyamo/filmorate/internal/model"
)

// LikeService manages likes. Every like is stored twice: in Film.Likes and
// in User.LikedFilms, and both sides are always written together.
type LikeService struct {
	films filmStore
	users userStore
	log   zerolog.Logger
}

// NewLikeService creates a LikeService backed by films and users.
func NewLikeService(films filmStore, users userStore, log zerolog.Logger) *LikeService {
	return &LikeService{films: films, users: users, log: log.With().Str("component", "like_service").Logger()}
}

// AddLike records that userID likes filmID. A user may like a film once.
func (s *LikeService) AddLike(filmID, userID int64) error {
	f, err := filmByID(s.films, filmID)
	if err != nil {
		return err
	}
	if _, err := userByID(s.users, userID); err != nil {
		return err
	}
	if f.Likes.Has(userID) {
		return model.NewAlreadyExistsError("Пользователь %d уже поставил лайк фильму %d", userID, filmID)
	}

	if err := s.films.AddLike(filmID, userID); err != nil {
		return err
	}
	if err := s.users.AddLikedFilm(userID, filmID); err != nil {
		_ = s.films.RemoveLike(filmID, userID)
		return err
	}
	s.log.Info().Int64("film_id", filmID).Int64("user_id", userID).Msg("like added")
	return nil
}

// RemoveLike withdraws the like of userID from filmID.
func (s *LikeService) RemoveLike(filmID, userID int64) error {
	f, err := filmByID(s.films, filmID)
	if err != nil {
		return err
	}
	if _, err := userByID(s.users, userID); err != nil {
		return err
	}
	if !f.Likes.Has(userID) {
		return model.NewNotFoundError("Пользователь %d не ставил лайк фильму %d", userID, filmID)
	}

	if err := s.films.RemoveLike(filmID, userID); err != nil {
		return err
	}
	if err := s.users.RemoveLikedFilm(userID, filmID); err != nil {
		_ = s.films.AddLike(filmID, userID)
		return err
	}
	s.log.Info().Int64("film_id", filmID).Int64("user_id", userID).Msg("like removed")
	return nil
}
