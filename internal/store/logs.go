package store

import (
	"context"
	"time"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
)

func (s *Store) CreateLog(ctx context.Context, entry *m.LogEntry) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// ListLogs returns the newest entries of an environment first.
func (s *Store) ListLogs(ctx context.Context, envID uint, limit int) ([]m.LogEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var entries []m.LogEntry
	err := s.db.WithContext(ctx).
		Where("environment_id = ?", envID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) CountLogs(ctx context.Context, envID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&m.LogEntry{}).Where("environment_id = ?", envID).Count(&n).Error
	return n, err
}

func (s *Store) ClearLogs(ctx context.Context, envID uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("environment_id = ?", envID).Delete(&m.LogEntry{})
	return res.RowsAffected, res.Error
}

// PruneLogs deletes every entry created before cutoff.
func (s *Store) PruneLogs(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&m.LogEntry{})
	return res.RowsAffected, res.Error
}
