// Package handler exposes the Filmorate HTTP API: films, users, their
// friendships and likes, and the popularity ranking.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/model"
	"github.com/iliyamo/filmorate/internal/queue"
)

// bindStrict decodes the request body into dst. Unknown fields, trailing
// data and an empty body are rejected as bad requests.
func bindStrict(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewBadRequestError("Тело запроса не может быть пустым")
		}
		return model.NewBadRequestError("Некорректное тело запроса: %v", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return model.NewBadRequestError("Некорректное тело запроса: лишние данные после JSON")
	}
	return nil
}

// pathID parses a positive integer path parameter. Only plain decimal
// digits are accepted, so signs are rejected.
func pathID(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 || !isDigits(raw) {
		return 0, model.NewBadRequestError("Некорректный параметр %s: %q", name, raw)
	}
	return id, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// pathIDs parses two positive integer path parameters.
func pathIDs(c echo.Context, first, second string) (int64, int64, error) {
	a, err := pathID(c, first)
	if err != nil {
		return 0, 0, err
	}
	b, err := pathID(c, second)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// publisher falls back to a no-op when handlers are built without one.
func publisher(p queue.Publisher) queue.Publisher {
	if p == nil {
		return queue.NopPublisher{}
	}
	return p
}
