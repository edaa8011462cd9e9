package admin

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AuditLog appends one line per privileged action to a plain text file:
//
//	[2006-01-02 15:04:05] Admin: @name | Action: a | Target: t | Details: d
type AuditLog struct {
	mu   sync.Mutex
	file *os.File
}

func NewAuditLog(path string) (*AuditLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &AuditLog{file: f}, nil
}

// Record writes the action line. adminName may be an @username or a plain
// id rendered by the caller. Write failures are logged, not surfaced: the
// triggering action must not fail because the trail is unavailable.
func (l *AuditLog) Record(adminName, action, target, details string) {
	line := fmt.Sprintf("[%s] Admin: %s | Action: %s",
		time.Now().Format("2006-01-02 15:04:05"), adminName, action)
	if target != "" {
		line += " | Target: " + target
	}
	if details != "" {
		line += " | Details: " + details
	}

	l.mu.Lock()
	_, err := l.file.WriteString(line + "\n")
	l.mu.Unlock()
	if err != nil {
		zap.L().Error("Failed to write audit log", zap.Error(err))
	}

	zap.L().Info("Admin action",
		zap.String("admin", adminName),
		zap.String("action", action),
		zap.String("target", target))
}

func (l *AuditLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
