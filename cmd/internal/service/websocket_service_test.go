package service

import (
	"context"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/database"
	"gestaoacoes/cmd/internal/domain/database/repository"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/events"
	"gestaoacoes/cmd/internal/infrastructure/aws/websocket"
	"gestaoacoes/cmd/internal/utils"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentFrame struct {
	connID string
	typ    contract.EventType
}

type recordingGateway struct {
	mu     sync.Mutex
	gone   map[string]bool
	sent   []sentFrame
	closed []string
}

func (g *recordingGateway) Send(_ context.Context, connID string, frame any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gone[connID] {
		return websocket.ErrGone
	}
	g.sent = append(g.sent, sentFrame{connID, frame.(*contract.OutgoingSocketMessage).Type})
	return nil
}

func (g *recordingGateway) Close(_ context.Context, connID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = append(g.closed, connID)
	return nil
}

func (g *recordingGateway) frames() []sentFrame {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentFrame(nil), g.sent...)
}

func newSockets(t *testing.T) (*WebSocketService, *repository.DefaultConnectionRepository, *recordingGateway) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	repo := repository.NewConnectionRepository(db)
	gw := &recordingGateway{gone: map[string]bool{}}
	return NewWebSocketService(repo, gw), repo, gw
}

func inAnHour() int64 {
	return time.Now().Add(time.Hour).Unix()
}

func TestDispatchForgetsGoneConnections(t *testing.T) {
	ws, repo, gw := newSockets(t)
	require.Nil(t, ws.RegisterConnection("10", "a", inAnHour()))
	require.Nil(t, ws.RegisterConnection("10", "b", inAnHour()))
	require.Nil(t, ws.RegisterConnection("20", "c", inAnHour()))
	gw.gone["b"] = true

	ws.Dispatch(context.Background(), "10", &events.ActionDeleted{ActionID: "1"})

	assert.Equal(t, []sentFrame{{"a", contract.EventActionDeleted}}, gw.frames())
	ids, err := repo.FindIDs("10")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids)

	ws.Broadcast(context.Background(), &events.DirectoryInvalidated{Scope: "companies"})
	assert.Len(t, gw.frames(), 3)
}

func TestPingKeepsSessionAlive(t *testing.T) {
	ws, repo, gw := newSockets(t)
	require.Nil(t, ws.RegisterConnection("10", "a", inAnHour()))

	ws.HandleMessage(&contract.IncomingSocketMessage{Type: contract.EventPing}, "a")
	assert.Equal(t, []sentFrame{{"a", contract.EventAck}}, gw.frames())

	// Pinging with an expired token ends the session
	require.NoError(t, repo.Save(&entity.Connection{
		ConnectionID:   "old",
		UserID:         "10",
		TokenExpiresAt: utils.NowUTC() - 1,
		LastPingAt:     utils.NowUTC(),
	}))
	ws.HandleMessage(&contract.IncomingSocketMessage{Type: contract.EventPing}, "old")
	assert.Contains(t, gw.frames(), sentFrame{"old", contract.EventSessionExpired})
	assert.Contains(t, gw.closed, "old")

	conn, err := repo.FindByID("old")
	require.NoError(t, err)
	assert.Nil(t, conn)
}

func TestCleanupExpired(t *testing.T) {
	ws, repo, gw := newSockets(t)
	now := utils.NowUTC()
	require.Nil(t, ws.RegisterConnection("10", "fresh", inAnHour()))
	require.NoError(t, repo.Save(&entity.Connection{
		ConnectionID:   "silent",
		UserID:         "10",
		TokenExpiresAt: now + time.Hour.Milliseconds(),
		LastPingAt:     now - 2*entity.HeartbeatGraceMillis,
	}))

	assert.Equal(t, 1, ws.CleanupExpired(context.Background(), now))
	assert.Equal(t, []string{"silent"}, gw.closed)

	ids, err := repo.FindIDs("")
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids)
}

func TestTerminateUserConnections(t *testing.T) {
	ws, repo, gw := newSockets(t)
	require.Nil(t, ws.RegisterConnection("10", "a", inAnHour()))

	ws.TerminateUserConnections(context.Background(), "10", &events.ConnectionKill{Code: contract.KillCodeUserRemoved})
	assert.Equal(t, []sentFrame{{"a", contract.EventConnectionKill}}, gw.frames())

	assert.Eventually(t, func() bool {
		ids, err := repo.FindIDs("10")
		return err == nil && len(ids) == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestDirectoryInvalidationMessage(t *testing.T) {
	ws, _, _ := newSockets(t)
	var scope string
	ws.OnInvalidate = func(s string) { scope = s }

	ws.HandleMessage(&contract.IncomingSocketMessage{Type: contract.EventDirectoryInvalidated, Scope: "clients"}, "a")
	assert.Equal(t, "clients", scope)
}
