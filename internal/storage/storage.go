// Package storage persists the append-only activity log of exchanges.
package storage

// MessageLog is one completed exchange. Rows are write-once: nothing in the
// system updates or deletes them.
type MessageLog struct {
	ID       uint   `gorm:"primaryKey"`
	Ts       int64  `gorm:"index;not null"` // unix seconds
	UserID   string `gorm:"index;not null"`
	IsGroup  bool   `gorm:"not null"`
	Incoming string `gorm:"not null"`
	Reply    string `gorm:"not null"`
}

func (MessageLog) TableName() string { return "message_log" }

// DailyStat is a query-time projection: the number of logged exchanges on one
// local calendar day. It is never stored.
type DailyStat struct {
	Day      string `gorm:"column:day" json:"day"` // YYYY-MM-DD
	Messages int    `gorm:"column:messages" json:"messages"`
}

// Store abstracts persistence of the activity log.
// LogMessage must be durable before it returns. Implementations must be safe
// for concurrent use.
type Store interface {
	LogMessage(userID string, isGroup bool, incoming, reply string) error
	GetDailyStats(days int) ([]DailyStat, error)
}
