package contract

type EventType string

const (
	EventPing EventType = "ping"

	EventConnectionKill EventType = "CONNECTION_KILL"
	EventSessionExpired EventType = "SESSION_EXPIRED"
	EventAck            EventType = "ACK"

	EventActionCreated EventType = "ACTION_CREATED"
	EventActionUpdated EventType = "ACTION_UPDATED"
	EventActionDeleted EventType = "ACTION_DELETED"

	EventNotificationCreated  EventType = "NOTIFICATION_CREATED"
	EventDirectoryInvalidated EventType = "DIRECTORY_INVALIDATED"

	EventUserUpdated EventType = "USER_UPDATED"
)

type KillCode int

const (
	KillCodeSessionExpired KillCode = 4001
	KillCodeUserRemoved    KillCode = 4003
)

// IncomingSocketMessage is used for messages we receive from the users.
type IncomingSocketMessage struct {
	Type  EventType `json:"type"`
	Scope string    `json:"scope,omitempty"`
}

// OutgoingSocketMessage is what we send to the client
type OutgoingSocketMessage struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}
