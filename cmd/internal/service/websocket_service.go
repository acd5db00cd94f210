package service

import (
	"context"
	"errors"
	"gestaoacoes/cmd/internal/contract"
	"gestaoacoes/cmd/internal/domain/entity"
	"gestaoacoes/cmd/internal/domain/events"
	"gestaoacoes/cmd/internal/infrastructure/aws/websocket"
	"gestaoacoes/cmd/internal/utils"
	"gestaoacoes/cmd/internal/utils/apierror"
	"time"

	"github.com/labstack/gommon/log"
)

// killDelay lets the kill frame reach the client before the socket is closed.
const killDelay = 200 * time.Millisecond

type ConnectionRepository interface {
	Save(conn *entity.Connection) error
	Delete(connIDs ...string) error
	FindByID(connID string) (*entity.Connection, error)
	FindIDs(userID string) ([]string, error)
	FindStale(now int64) ([]*entity.Connection, error)
	Touch(connID string, now int64) (bool, error)
}

// Realtime is the push side of the websocket service, as used by other services.
type Realtime interface {
	Dispatch(ctx context.Context, userID string, evt events.SocketEvent)
	Broadcast(ctx context.Context, evt events.SocketEvent)
}

type WebSocketService struct {
	ConnRepo ConnectionRepository
	Gateway  websocket.Gateway

	// OnInvalidate is called when a peer announces a directory change.
	OnInvalidate func(scope string)
}

func NewWebSocketService(repo ConnectionRepository, gateway websocket.Gateway) *WebSocketService {
	return &WebSocketService{
		ConnRepo: repo,
		Gateway:  gateway,
	}
}

// RegisterConnection stores a session opened with a token expiring at exp
// (seconds since epoch).
func (s *WebSocketService) RegisterConnection(userID, connID string, exp int64) apierror.ErrorResponse {
	now := utils.NowUTC()
	conn := &entity.Connection{
		ConnectionID:   connID,
		UserID:         userID,
		TokenExpiresAt: time.Unix(exp, 0).UnixMilli(),
		LastPingAt:     now,
		ConnectedAt:    now,
	}

	if err := s.ConnRepo.Save(conn); err != nil {
		log.Errorf("failed to save connection %s of %s: %v", connID, userID, err)
		return apierror.InternalServerError
	}
	return nil
}

func (s *WebSocketService) RemoveConnection(connID string) {
	if err := s.ConnRepo.Delete(connID); err != nil {
		log.Warnf("failed to forget connection %s: %v", connID, err)
	}
}

// CleanupExpired closes every stale session and returns how many were dropped.
func (s *WebSocketService) CleanupExpired(ctx context.Context, now int64) int {
	conns, err := s.ConnRepo.FindStale(now)
	if err != nil {
		log.Errorf("failed to fetch stale connections: %v", err)
		return 0
	}

	for _, conn := range conns {
		s.expire(ctx, conn.ConnectionID)
	}
	return len(conns)
}

func (s *WebSocketService) HandleMessage(msg *contract.IncomingSocketMessage, connID string) {
	switch msg.Type {
	case contract.EventPing:
		s.handlePing(context.Background(), connID)
	case contract.EventDirectoryInvalidated:
		if s.OnInvalidate != nil {
			s.OnInvalidate(msg.Scope)
		}
	default:
		log.Debugf("ignoring socket message %q from %s", msg.Type, connID)
	}
}

// TerminateUserConnections tells every session of the user why it is being
// closed, then closes it.
func (s *WebSocketService) TerminateUserConnections(ctx context.Context, userID string, ck *events.ConnectionKill) {
	ids, err := s.ConnRepo.FindIDs(userID)
	if err != nil {
		log.Errorf("failed to fetch connections of %s: %v", userID, err)
		return
	}

	s.fanOut(ctx, ids, toFrame(ck))
	time.AfterFunc(killDelay, func() {
		for _, id := range ids {
			s.close(context.WithoutCancel(ctx), id)
		}
	})
}

func (s *WebSocketService) Dispatch(ctx context.Context, userID string, evt events.SocketEvent) {
	ids, err := s.ConnRepo.FindIDs(userID)
	if err != nil {
		log.Errorf("failed to fetch connections of %s: %v", userID, err)
		return
	}
	s.fanOut(ctx, ids, toFrame(evt))
}

// Broadcast sends the event to every open session.
func (s *WebSocketService) Broadcast(ctx context.Context, evt events.SocketEvent) {
	ids, err := s.ConnRepo.FindIDs("")
	if err != nil {
		log.Errorf("failed to fetch connections for broadcast: %v", err)
		return
	}
	s.fanOut(ctx, ids, toFrame(evt))
}

func (s *WebSocketService) handlePing(ctx context.Context, connID string) {
	now := utils.NowUTC()
	conn, err := s.ConnRepo.FindByID(connID)
	if err != nil {
		log.Errorf("failed to fetch connection %s: %v", connID, err)
		return
	}

	if conn == nil || conn.Stale(now) {
		s.expire(ctx, connID)
		return
	}

	if _, err := s.ConnRepo.Touch(connID, now); err != nil {
		log.Errorf("failed to record ping of %s: %v", connID, err)
		return
	}
	s.fanOut(ctx, []string{connID}, toFrame(&events.Ack{}))
}

// fanOut sends one frame to each connection. Connections the gateway
// reports as gone are forgotten; other failures only get logged.
func (s *WebSocketService) fanOut(ctx context.Context, ids []string, frame *contract.OutgoingSocketMessage) {
	var gone []string
	for _, id := range ids {
		err := s.Gateway.Send(ctx, id, frame)
		switch {
		case err == nil:
		case errors.Is(err, websocket.ErrGone):
			gone = append(gone, id)
		default:
			log.Warnf("failed to push %s to %s: %v", frame.Type, id, err)
		}
	}

	if len(gone) > 0 {
		if err := s.ConnRepo.Delete(gone...); err != nil {
			log.Warnf("failed to forget %d gone connections: %v", len(gone), err)
		}
	}
}

// expire warns the client not to reconnect with the same token and drops the session.
func (s *WebSocketService) expire(ctx context.Context, connID string) {
	s.fanOut(ctx, []string{connID}, &contract.OutgoingSocketMessage{Type: contract.EventSessionExpired})
	s.close(ctx, connID)
}

func (s *WebSocketService) close(ctx context.Context, connID string) {
	if err := s.Gateway.Close(ctx, connID); err != nil && !errors.Is(err, websocket.ErrGone) {
		log.Warnf("failed to close connection %s: %v", connID, err)
	}
	s.RemoveConnection(connID)
}

func toFrame(evt events.SocketEvent) *contract.OutgoingSocketMessage {
	return &contract.OutgoingSocketMessage{Type: evt.GetType(), Data: evt}
}
