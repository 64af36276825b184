package service

import (
	"github.com/rs/zerolog"

	"github.com/iliyamo/filmorate/internal/model"
)

// SocialService manages the symmetric friendship graph between users.
type SocialService struct {
	users userStore
	log   zerolog.Logger
}

// NewSocialService creates a SocialService backed by users.
func NewSocialService(users userStore, log zerolog.Logger) *SocialService {
	return &SocialService{users: users, log: log.With().Str("component", "social_service").Logger()}
}

// AddFriend makes userID and friendID friends of each other. Adding an
// existing friendship is a no-op.
func (s *SocialService) AddFriend(userID, friendID int64) error {
	if userID == friendID {
		return model.NewValidationError("Нельзя добавить себя в друзья")
	}
	if _, err := userByID(s.users, userID); err != nil {
		return err
	}
	if _, err := userByID(s.users, friendID); err != nil {
		return err
	}
	if err := s.users.AddFriendship(userID, friendID); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", userID).Int64("friend_id", friendID).Msg("friend added")
	return nil
}

// RemoveFriend ends the friendship between userID and friendID. Removing a
// friendship that does not exist is a no-op.
func (s *SocialService) RemoveFriend(userID, friendID int64) error {
	if _, err := userByID(s.users, userID); err != nil {
		return err
	}
	if _, err := userByID(s.users, friendID); err != nil {
		return err
	}
	if err := s.users.RemoveFriendship(userID, friendID); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", userID).Int64("friend_id", friendID).Msg("friend removed")
	return nil
}

// ListFriends returns the friends of userID ordered by id.
func (s *SocialService) ListFriends(userID int64) ([]model.User, error) {
	u, err := userByID(s.users, userID)
	if err != nil {
		return nil, err
	}
	friends, err := s.resolve(u.Friends.Sorted())
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int64("user_id", userID).Int("count", len(friends)).Msg("friends listed")
	return friends, nil
}

// CommonFriends returns the users who are friends of both a and b, ordered
// by id.
func (s *SocialService) CommonFriends(a, b int64) ([]model.User, error) {
	ua, err := userByID(s.users, a)
	if err != nil {
		return nil, err
	}
	ub, err := userByID(s.users, b)
	if err != nil {
		return nil, err
	}

	var ids []int64
	for _, id := range ua.Friends.Sorted() {
		if ub.Friends.Has(id) {
			ids = append(ids, id)
		}
	}
	common, err := s.resolve(ids)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int64("user_id", a).Int64("other_id", b).Int("count", len(common)).Msg("common friends listed")
	return common, nil
}

func (s *SocialService) resolve(ids []int64) ([]model.User, error) {
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		u, err := userByID(s.users, id)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
