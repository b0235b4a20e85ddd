package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore is the Store implementation backed by a local SQLite file.
type SQLiteStore struct {
	db *gorm.DB

	now func() time.Time
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure db dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&MessageLog{}); err != nil {
		return nil, fmt.Errorf("migrate message_log: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// LogMessage appends one exchange. The insert is committed before return.
func (s *SQLiteStore) LogMessage(userID string, isGroup bool, incoming, reply string) error {
	entry := MessageLog{
		Ts:       s.now().Unix(),
		UserID:   userID,
		IsGroup:  isGroup,
		Incoming: incoming,
		Reply:    reply,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("insert message log: %w", err)
	}
	return nil
}

// GetDailyStats groups the trailing days*86400 seconds of log entries by
// local calendar day, most recent day first. Days without entries are
// omitted. days is clamped to a minimum of 1.
func (s *SQLiteStore) GetDailyStats(days int) ([]DailyStat, error) {
	if days < 1 {
		days = 1
	}
	cutoff := s.now().Unix() - int64(days)*86400

	var stats []DailyStat
	err := s.db.Raw(`
		SELECT date(ts, 'unixepoch', 'localtime') AS day,
		       count(*) AS messages
		FROM message_log
		WHERE ts >= ?
		GROUP BY day
		ORDER BY day DESC`, cutoff).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}
	return stats, nil
}
