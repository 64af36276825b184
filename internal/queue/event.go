// Package queue defines the domain events Filmorate publishes to RabbitMQ
// and the consumer that records them in an activity log.
package queue

import "time"

// EventType names a domain event. It doubles as the AMQP message type.
type EventType string

const (
	FilmCreated   EventType = "film.created"
	FilmUpdated   EventType = "film.updated"
	UserCreated   EventType = "user.created"
	UserUpdated   EventType = "user.updated"
	LikeAdded     EventType = "like.added"
	LikeRemoved   EventType = "like.removed"
	FriendAdded   EventType = "friend.added"
	FriendRemoved EventType = "friend.removed"
)

// Event is published after a mutation succeeds. Only the ids relevant to
// the event type are set.
type Event struct {
	Type       EventType `json:"type"`
	FilmID     int64     `json:"film_id,omitempty"`
	UserID     int64     `json:"user_id,omitempty"`
	FriendID   int64     `json:"friend_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(typ EventType) Event {
	return Event{Type: typ, OccurredAt: time.Now().UTC()}
}
