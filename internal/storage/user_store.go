package storage

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/filmorate/internal/model"
)

// UserStore keeps users in insertion order and allocates their ids. It also
// owns the friendship edges, which it always writes on both endpoints.
type UserStore struct {
	log   zerolog.Logger
	now   func() time.Time
	users map[int64]*model.User
	order []int64
}

// NewUserStore returns an empty store. now supplies the clock used to
// validate birthdays; nil means time.Now.
func NewUserStore(log zerolog.Logger, now func() time.Time) *UserStore {
	if now == nil {
		now = time.Now
	}
	return &UserStore{
		log:   log.With().Str("component", "user_store").Logger(),
		now:   now,
		users: make(map[int64]*model.User),
	}
}

// FindAll returns a copy of every user in insertion order.
func (s *UserStore) FindAll() []model.User {
	out := make([]model.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.users[id].Clone())
	}
	return out
}

// FindByID returns a copy of the user with the given id.
func (s *UserStore) FindByID(id int64) (model.User, bool) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, false
	}
	return u.Clone(), true
}

// Exists reports whether a user with the given id is stored.
func (s *UserStore) Exists(id int64) bool {
	_, ok := s.users[id]
	return ok
}

// Create validates user, assigns it a fresh id and stores it with no
// friends and no liked films. A blank name is replaced with the login.
func (s *UserStore) Create(user model.User) (model.User, error) {
	if err := user.Validate(model.Today(s.now())); err != nil {
		s.log.Warn().Err(err).Str("login", user.Login).Msg("user rejected")
		return model.User{}, err
	}
	if name := model.DisplayName(user.Name, user.Login); name != user.Name {
		s.log.Info().Str("login", user.Login).Msg("user name not set, using login")
		user.Name = name
	}
	user.ID = s.nextID()
	user.Friends = model.NewIDSet()
	user.LikedFilms = model.NewIDSet()

	stored := user.Clone()
	s.users[user.ID] = &stored
	s.order = append(s.order, user.ID)

	s.log.Info().Int64("user_id", user.ID).Str("login", user.Login).Msg("user created")
	s.log.Debug().Interface("user", user).Msg("created user details")
	return user, nil
}

// Update merges the fields present in patch into the stored user. Changed
// fields are validated before any of them is written. A blank name falls
// back to the resulting login. Friends and liked films are never touched.
func (s *UserStore) Update(patch model.UserPatch) (model.User, error) {
	if patch.ID == nil {
		s.log.Error().Msg("user update without id")
		return model.User{}, model.NewValidationError("ID пользователя должен быть указан")
	}
	id := *patch.ID
	current, ok := s.users[id]
	if !ok {
		s.log.Warn().Int64("user_id", id).Msg("user not found")
		return model.User{}, model.NewNotFoundError("Пользователь с id %d не найден", id)
	}

	next := current.Clone()
	changes := map[string]any{}

	if patch.Email != nil && *patch.Email != current.Email {
		if err := model.ValidateEmail(*patch.Email); err != nil {
			return model.User{}, err
		}
		changes["email"] = *patch.Email
		next.Email = *patch.Email
	}
	if patch.Login != nil && *patch.Login != current.Login {
		if err := model.ValidateLogin(*patch.Login); err != nil {
			return model.User{}, err
		}
		changes["login"] = *patch.Login
		next.Login = *patch.Login
	}
	if patch.Name != nil {
		if name := model.DisplayName(*patch.Name, next.Login); name != current.Name {
			changes["name"] = name
			next.Name = name
		}
	}
	if patch.Birthday != nil && !patch.Birthday.Equal(current.Birthday.Time) {
		if err := model.ValidateBirthday(*patch.Birthday, model.Today(s.now())); err != nil {
			return model.User{}, err
		}
		changes["birthday"] = patch.Birthday.String()
		next.Birthday = *patch.Birthday
	}

	if len(changes) == 0 {
		s.log.Info().Int64("user_id", id).Msg("user unchanged")
		return current.Clone(), nil
	}
	*current = next
	s.log.Info().Int64("user_id", id).Fields(changes).Msg("user updated")
	return current.Clone(), nil
}

// AddFriendship links two distinct users in both directions. Linking an
// already linked pair is a no-op.
func (s *UserStore) AddFriendship(userID, friendID int64) error {
	u, f, err := s.pair(userID, friendID)
	if err != nil {
		return err
	}
	if userID == friendID {
		return model.NewValidationError("Нельзя добавить себя в друзья")
	}
	u.Friends.Add(friendID)
	f.Friends.Add(userID)
	return nil
}

// RemoveFriendship unlinks two users in both directions. Unlinking a pair
// that is not linked is a no-op.
func (s *UserStore) RemoveFriendship(userID, friendID int64) error {
	u, f, err := s.pair(userID, friendID)
	if err != nil {
		return err
	}
	u.Friends.Remove(friendID)
	f.Friends.Remove(userID)
	return nil
}

// AddLikedFilm records filmID in the liked films of userID. Callers check
// that the film exists; the store only knows users.
func (s *UserStore) AddLikedFilm(userID, filmID int64) error {
	u, ok := s.users[userID]
	if !ok {
		return model.NewNotFoundError("Пользователь с id %d не найден", userID)
	}
	u.LikedFilms.Add(filmID)
	return nil
}

// RemoveLikedFilm drops filmID from the liked films of userID.
func (s *UserStore) RemoveLikedFilm(userID, filmID int64) error {
	u, ok := s.users[userID]
	if !ok {
		return model.NewNotFoundError("Пользователь с id %d не найден", userID)
	}
	u.LikedFilms.Remove(filmID)
	return nil
}

func (s *UserStore) pair(a, b int64) (*model.User, *model.User, error) {
	ua, ok := s.users[a]
	if !ok {
		return nil, nil, model.NewNotFoundError("Пользователь с id %d не найден", a)
	}
	ub, ok := s.users[b]
	if !ok {
		return nil, nil, model.NewNotFoundError("Пользователь с id %d не найден", b)
	}
	return ua, ub, nil
}

// nextID returns max(ids)+1, or 1 for an empty store.
func (s *UserStore) nextID() int64 {
	var maxID int64
	for _, id := range s.order {
		if id > maxID {
			maxID = id
		}
	}
	s.log.Debug().Int64("user_id", maxID+1).Msg("allocated user id")
	return maxID + 1
}
