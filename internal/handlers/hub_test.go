package handlers

import (
	"io"
	"testing"

	"github.com/jason-s-yu/sevens/internal/game"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHubRoutesBySession(t *testing.T) {
	hub := NewHub(quietLogger())
	a, cancelA := hub.Subscribe("AAAA")
	b, cancelB := hub.Subscribe("BBBB")
	defer cancelB()

	hub.OnGameEvent(game.GameEvent{Type: game.EventPlayerJoined, SessionID: "AAAA", Seq: 1})

	require.Len(t, a.Events, 1)
	assert.Equal(t, 1, (<-a.Events).Seq)
	assert.Empty(t, b.Events)

	assert.Equal(t, 1, hub.Subscribers("AAAA"))
	cancelA()
	cancelA()
	assert.Equal(t, 0, hub.Subscribers("AAAA"))
	assert.Equal(t, 1, hub.Subscribers("BBBB"))

	hub.OnGameEvent(game.GameEvent{Type: game.EventPlayerJoined, SessionID: "AAAA", Seq: 2})
	assert.Empty(t, a.Events)
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub(quietLogger())
	sub, cancel := hub.Subscribe("AAAA")
	defer cancel()

	for i := 1; i <= subscriptionBuffer+10; i++ {
		hub.OnGameEvent(game.GameEvent{Type: game.EventPlayerTurn, SessionID: "AAAA", Seq: i})
	}
	assert.Len(t, sub.Events, subscriptionBuffer)
	assert.Equal(t, 1, (<-sub.Events).Seq)
}

func TestHubReceivesRegistryEvents(t *testing.T) {
	gs := NewGameServer(quietLogger())
	id, _ := gs.Registry.CreateSession("Alice")
	sub, cancel := gs.Hub.Subscribe(id)
	defer cancel()

	_, err := gs.Registry.JoinSession(id, "Bob")
	require.NoError(t, err)

	require.Len(t, sub.Events, 1)
	ev := <-sub.Events
	assert.Equal(t, game.EventPlayerJoined, ev.Type)
	assert.Equal(t, "Bob", ev.User.Name)
}
