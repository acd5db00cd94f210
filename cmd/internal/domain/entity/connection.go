package entity

// A session that has not pinged for HeartbeatGraceMillis is considered gone.
const (
	HeartbeatIntervalMillis = int64(60_000)
	HeartbeatGraceMillis    = HeartbeatIntervalMillis + 10_000
)

// Connection is an open API Gateway websocket session of a user.
type Connection struct {
	ConnectionID   string `gorm:"primaryKey;autoIncrement:false"`
	UserID         string `gorm:"not null;index"`
	TokenExpiresAt int64  `gorm:"not null;index"`
	LastPingAt     int64  `gorm:"not null;index"`
	ConnectedAt    int64  `gorm:"not null"`
}

func (Connection) TableName() string {
	return "realtime_connections"
}

// Stale reports whether the session outlived its token or stopped pinging.
func (c *Connection) Stale(now int64) bool {
	return c.TokenExpiresAt < now || now-c.LastPingAt > HeartbeatGraceMillis
}
