package service

import (
	"cmp"
	"slices"

	"github.com/rs/zerolog"

	"github.com/iliyamo/filmorate/internal/model"
)

// DefaultPopularCount is the ranking size used when the client sets none.
const DefaultPopularCount = 10

// RankingService answers popularity queries over the film catalog.
type RankingService struct {
	films filmStore
	log   zerolog.Logger
}

// NewRankingService creates a RankingService backed by films.
func NewRankingService(films filmStore, log zerolog.Logger) *RankingService {
	return &RankingService{films: films, log: log.With().Str("component", "ranking_service").Logger()}
}

// PopularFilms returns at most count films ordered by number of likes,
// most liked first. Films with equal likes keep their insertion order.
func (s *RankingService) PopularFilms(count int) ([]model.Film, error) {
	if count <= 0 {
		return nil, model.NewValidationError("count должен быть больше 0: count=%d", count)
	}
	films := s.films.FindAll()
	slices.SortStableFunc(films, func(a, b model.Film) int {
		return cmp.Compare(b.Likes.Len(), a.Likes.Len())
	})
	if len(films) > count {
		films = films[:count]
	}
	s.log.Debug().Int("count", count).Int("returned", len(films)).Msg("popular films ranked")
	return films, nil
}
