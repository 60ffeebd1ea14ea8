package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToUser(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("u1")
	defer cancel()

	h.PublishToUser("u1", "room_update", map[string]string{"roomId": "r1"})

	select {
	case ev := <-ch:
		assert.Equal(t, "room_update", ev.Name)
	default:
		t.Fatal("expected an event")
	}
}

func TestHub_PublishToUnknownUserIsNoop(t *testing.T) {
	h := NewHub()
	h.PublishToUser("ghost", "room_update", nil) // must not panic
}

func TestHub_PublishToUsersDeduplicates(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("u1")
	defer cancel()

	h.PublishToUsers([]string{"u1", "u1", "u1"}, "room_update", nil)

	require.Len(t, ch, 1, "duplicate ids must deliver once")
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("u1")
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		h.PublishToUser("u1", "achievement", i)
	}
	// The publisher returned; the channel holds at most its buffer.
	assert.Len(t, ch, subscriberBuffer)
}

func TestHub_CancelClosesChannel(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("u1")
	cancel()

	_, open := <-ch
	assert.False(t, open)

	h.PublishToUser("u1", "room_update", nil) // must not panic after cancel
	cancel()                                  // double-cancel is safe
}

func TestHub_MultipleSubscribersSameUser(t *testing.T) {
	h := NewHub()
	ch1, cancel1 := h.Subscribe("u1")
	ch2, cancel2 := h.Subscribe("u1")
	defer cancel1()
	defer cancel2()

	h.PublishToUser("u1", "achievement", nil)
	assert.Len(t, ch1, 1)
	assert.Len(t, ch2, 1)
}
