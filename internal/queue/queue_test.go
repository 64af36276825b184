package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, time.May, 1, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "like",
			ev:   Event{Type: LikeAdded, FilmID: 3, UserID: 7, OccurredAt: at},
			want: "[2024-05-01T10:30:00Z] like.added | film_id=3 | user_id=7\n",
		},
		{
			name: "friend",
			ev:   Event{Type: FriendRemoved, UserID: 1, FriendID: 2, OccurredAt: at},
			want: "[2024-05-01T10:30:00Z] friend.removed | user_id=1 | friend_id=2\n",
		},
		{
			name: "film",
			ev:   Event{Type: FilmCreated, FilmID: 1, OccurredAt: at},
			want: "[2024-05-01T10:30:00Z] film.created | film_id=1\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, formatLine(tt.ev))
		})
	}
}

func TestHandleMessage_AppendsToActivityLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	for _, ev := range []Event{
		{Type: UserCreated, UserID: 1, OccurredAt: time.Unix(0, 0)},
		{Type: LikeAdded, FilmID: 2, UserID: 1, OccurredAt: time.Unix(60, 0)},
	} {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, handleMessage(dir, body))
	}

	data, err := os.ReadFile(filepath.Join(dir, ActivityLogName))
	require.NoError(t, err)
	assert.Equal(t,
		"[1970-01-01T00:00:00Z] user.created | user_id=1\n"+
			"[1970-01-01T00:01:00Z] like.added | film_id=2 | user_id=1\n",
		string(data))
}

func TestHandleMessage_RejectsMalformed(t *testing.T) {
	dir := t.TempDir()

	assert.Error(t, handleMessage(dir, []byte("not json")))
	assert.Error(t, handleMessage(dir, []byte(`{"film_id":1}`)))

	_, err := os.Stat(filepath.Join(dir, ActivityLogName))
	assert.True(t, os.IsNotExist(err))
}

func TestAMQPPublisher_PublishDoesNotBlockWhenFull(t *testing.T) {
	p := NewAMQPPublisher("amqp://unused", "events", 2, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			p.Publish(NewEvent(FilmCreated))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
	assert.Len(t, p.events, 2)
}

type fakeChannel struct {
	fail      bool
	published []amqp.Publishing
	// stop is called once want messages were published
	want int
	stop context.CancelFunc
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	if f.fail {
		return errors.New("channel closed")
	}
	f.published = append(f.published, msg)
	if f.stop != nil && len(f.published) == f.want {
		f.stop()
	}
	return nil
}

func TestAMQPPublisher_RetriesFailedEventAfterReconnect(t *testing.T) {
	p := NewAMQPPublisher("amqp://unused", "events", 4, zerolog.Nop())
	p.Publish(NewEvent(LikeAdded))
	p.Publish(NewEvent(LikeRemoved))

	broken := &fakeChannel{fail: true}
	err := p.drain(context.Background(), broken, nil)
	require.Error(t, err)
	require.NotNil(t, p.pending)
	assert.Equal(t, LikeAdded, p.pending.Type)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	healthy := &fakeChannel{want: 2, stop: cancel}
	err = p.drain(ctx, healthy, nil)
	require.ErrorIs(t, err, context.Canceled)

	assert.Nil(t, p.pending)
	require.Len(t, healthy.published, 2)
	assert.Equal(t, string(LikeAdded), healthy.published[0].Type)
	assert.Equal(t, string(LikeRemoved), healthy.published[1].Type)
	assert.Equal(t, amqp.Persistent, healthy.published[0].DeliveryMode)
}

func TestEventJSON_OmitsUnsetIDs(t *testing.T) {
	ev := Event{Type: FriendAdded, UserID: 1, FriendID: 2, OccurredAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"friend.added","user_id":1,"friend_id":2,"occurred_at":"2024-01-01T00:00:00Z"}`, string(b))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NotPanics(t, func() { p.Publish(NewEvent(LikeRemoved)) })
}
