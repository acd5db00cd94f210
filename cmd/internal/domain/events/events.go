package events

import "gestaoacoes/cmd/internal/contract"

type SocketEvent interface {
	GetType() contract.EventType
}

type Ack struct{}

func (*Ack) GetType() contract.EventType {
	return contract.EventAck
}

type ConnectionKill struct {
	Code   contract.KillCode `json:"code"`
	Reason *string           `json:"reason,omitempty"`
}

func (e *ConnectionKill) GetType() contract.EventType {
	return contract.EventConnectionKill
}

type ActionCreated struct {
	*contract.ActionResponse
}

func (e *ActionCreated) GetType() contract.EventType {
	return contract.EventActionCreated
}

type ActionUpdated struct {
	*contract.ActionResponse
}

func (e *ActionUpdated) GetType() contract.EventType {
	return contract.EventActionUpdated
}

type ActionDeleted struct {
	ActionID string `json:"id"`
}

func (e *ActionDeleted) GetType() contract.EventType {
	return contract.EventActionDeleted
}

type NotificationCreated struct {
	*contract.NotificationResponse
}

func (e *NotificationCreated) GetType() contract.EventType {
	return contract.EventNotificationCreated
}

// DirectoryInvalidated tells clients (and other replicas) to drop cached
// companies/clients/responsibles.
type DirectoryInvalidated struct {
	Scope string `json:"scope"`
}

func (e *DirectoryInvalidated) GetType() contract.EventType {
	return contract.EventDirectoryInvalidated
}

type UserUpdated struct {
	*contract.UserResponse
}

func (e *UserUpdated) GetType() contract.EventType {
	return contract.EventUserUpdated
}
