package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/queue"
	"github.com/iliyamo/filmorate/internal/service"
	"github.com/iliyamo/filmorate/internal/storage"
)

// FilmHandler serves /films.
type FilmHandler struct {
	Films   *storage.FilmStore
	Likes   *service.LikeService
	Ranking *service.RankingService
	Events  queue.Publisher
}

// NewFilmHandler panics if a store or service is nil. A nil publisher
// disables events.
func NewFilmHandler(films *storage.FilmStore, likes *service.LikeService, ranking *service.RankingService, events queue.Publisher) *FilmHandler {
	if films == nil || likes == nil || ranking == nil {
		panic("nil dependency passed to NewFilmHandler")
	}
	return &FilmHandler{Films: films, Likes: likes, Ranking: ranking, Events: publisher(events)}
}

// filmRequest is the body of POST and PUT /films. Likes are owned by the
// like endpoints; a client may echo them back but they are ignored.
type filmRequest struct {
	model.FilmPatch
	Likes []int64 `json:"likes"`
}

// List handles GET /films.
func (h *FilmHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Films.FindAll())
}

// Get handles GET /films/:id.
func (h *FilmHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	film, ok := h.Films.FindByID(id)
	if !ok {
		return model.NewNotFoundError("Фильм с id %d не найден", id)
	}
	return c.JSON(http.StatusOK, film)
}

// Create handles POST /films. A client-supplied id is ignored.
func (h *FilmHandler) Create(c echo.Context) error {
	var req filmRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	film, err := req.NewFilm()
	if err != nil {
		return err
	}
	created, err := h.Films.Add(film)
	if err != nil {
		return err
	}
	h.publish(queue.FilmCreated, created.ID, 0)
	return c.JSON(http.StatusOK, created)
}

// Update handles PUT /films. Only attributes present in the body change.
func (h *FilmHandler) Update(c echo.Context) error {
	var req filmRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	updated, err := h.Films.Update(req.FilmPatch)
	if err != nil {
		return err
	}
	h.publish(queue.FilmUpdated, updated.ID, 0)
	return c.JSON(http.StatusOK, updated)
}

// Like handles PUT /films/:id/like/:userId.
func (h *FilmHandler) Like(c echo.Context) error {
	filmID, userID, err := pathIDs(c, "id", "userId")
	if err != nil {
		return err
	}
	if err := h.Likes.AddLike(filmID, userID); err != nil {
		return err
	}
	h.publish(queue.LikeAdded, filmID, userID)
	return c.NoContent(http.StatusOK)
}

// Unlike handles DELETE /films/:id/like/:userId.
func (h *FilmHandler) Unlike(c echo.Context) error {
	filmID, userID, err := pathIDs(c, "id", "userId")
	if err != nil {
		return err
	}
	if err := h.Likes.RemoveLike(filmID, userID); err != nil {
		return err
	}
	h.publish(queue.LikeRemoved, filmID, userID)
	return c.NoContent(http.StatusOK)
}

// Popular handles GET /films/popular?count=N.
func (h *FilmHandler) Popular(c echo.Context) error {
	count := service.DefaultPopularCount
	if raw := c.QueryParam("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return model.NewBadRequestError("Некорректный параметр count: %q", raw)
		}
		count = n
	}
	films, err := h.Ranking.PopularFilms(count)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, films)
}

func (h *FilmHandler) publish(typ queue.EventType, filmID, userID int64) {
	ev := queue.NewEvent(typ)
	ev.FilmID = filmID
	ev.UserID = userID
	h.Events.Publish(ev)
}
