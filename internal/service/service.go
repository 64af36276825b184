// Package service implements the social features of Filmorate on top of the
// film and user stores: friendships, likes and the popularity ranking.
//
// Services own no state. Like the stores they are not safe for concurrent
// use and rely on the caller to serialize access.
package service

import "github.com/iliyamo/filmorate/internal/model"

type filmStore interface {
	FindAll() []model.Film
	FindByID(id int64) (model.Film, bool)
	AddLike(filmID, userID int64) error
	RemoveLike(filmID, userID int64) error
}

type userStore interface {
	FindByID(id int64) (model.User, bool)
	AddFriendship(userID, friendID int64) error
	RemoveFriendship(userID, friendID int64) error
	AddLikedFilm(userID, filmID int64) error
	RemoveLikedFilm(userID, filmID int64) error
}

func userByID(users userStore, id int64) (model.User, error) {
	u, ok := users.FindByID(id)
	if !ok {
		return model.User{}, model.NewNotFoundError("Пользователь с id %d не найден", id)
	}
	return u, nil
}

func filmByID(films filmStore, id int64) (model.Film, error) {
	f, ok := films.FindByID(id)
	if !ok {
		return model.Film{}, model.NewNotFoundError("Фильм с id %d не найден", id)
	}
	return f, nil
}
