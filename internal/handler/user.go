package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/queue"
	"github.com/iliyamo/filmorate/internal/service"
	"github.com/iliyamo/filmorate/internal/storage"
)

// UserHandler serves /users and the friendship endpoints.
type UserHandler struct {
	Users  *storage.UserStore
	Social *service.SocialService
	Events queue.Publisher
}

// NewUserHandler panics if the store or service is nil.
func NewUserHandler(users *storage.UserStore, social *service.SocialService, events queue.Publisher) *UserHandler {
	if users == nil || social == nil {
		panic("nil dependency passed to NewUserHandler")
	}
	return &UserHandler{Users: users, Social: social, Events: publisher(events)}
}

type userRequest struct {
	model.UserPatch
	Friends []int64 `json:"friends"`
}

func (h *UserHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Users.FindAll())
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, ok := h.Users.FindByID(id)
	if !ok {
		return model.NewNotFoundError("Пользователь с id %d не найден", id)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Create(c echo.Context) error {
	var req userRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	user, err := req.NewUser()
	if err != nil {
		return err
	}
	created, err := h.Users.Create(user)
	if err != nil {
		return err
	}
	h.publish(queue.UserCreated, created.ID, 0)
	return c.JSON(http.StatusOK, created)
}

func (h *UserHandler) Update(c echo.Context) error {
	var req userRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	updated, err := h.Users.Update(req.UserPatch)
	if err != nil {
		return err
	}
	h.publish(queue.UserUpdated, updated.ID, 0)
	return c.JSON(http.StatusOK, updated)
}

func (h *UserHandler) Friends(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	friends, err := h.Social.ListFriends(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, friends)
}

func (h *UserHandler) AddFriend(c echo.Context) error {
	userID, friendID, err := pathIDs(c, "id", "friendId")
	if err != nil {
		return err
	}
	if err := h.Social.AddFriend(userID, friendID); err != nil {
		return err
	}
	h.publish(queue.FriendAdded, userID, friendID)
	return c.NoContent(http.StatusOK)
}

func (h *UserHandler) RemoveFriend(c echo.Context) error {
	userID, friendID, err := pathIDs(c, "id", "friendId")
	if err != nil {
		return err
	}
	if err := h.Social.RemoveFriend(userID, friendID); err != nil {
		return err
	}
	h.publish(queue.FriendRemoved, userID, friendID)
	return c.NoContent(http.StatusOK)
}

func (h *UserHandler) CommonFriends(c echo.Context) error {
	userID, otherID, err := pathIDs(c, "id", "otherId")
	if err != nil {
		return err
	}
	common, err := h.Social.CommonFriends(userID, otherID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, common)
}

func (h *UserHandler) publish(typ queue.EventType, userID, friendID int64) {
	ev := queue.NewEvent(typ)
	ev.UserID = userID
	ev.FriendID = friendID
	h.Events.Publish(ev)
}
