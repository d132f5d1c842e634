package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
)

// CreateEnvironment inserts env together with any endpoints and scenarios
// attached to it.
func (s *Store) CreateEnvironment(ctx context.Context, env *m.Environment) error {
	if err := s.db.WithContext(ctx).Create(env).Error; err != nil {
		return fmt.Errorf("create environment: %w", err)
	}
	return nil
}

func (s *Store) GetEnvironment(ctx context.Context, id uint) (*m.Environment, error) {
	var env m.Environment
	if err := s.db.WithContext(ctx).Limit(1).Find(&env, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if env.ID == 0 {
		return nil, ErrNotFound
	}
	return &env, nil
}

// ListEnvironments returns the environments of owner. An empty owner lists
// every environment.
func (s *Store) ListEnvironments(ctx context.Context, owner string) ([]m.Environment, error) {
	q := s.db.WithContext(ctx).Order("id")
	if owner != "" {
		q = q.Where("owner_id = ?", owner)
	}

	var envs []m.Environment
	if err := q.Find(&envs).Error; err != nil {
		return nil, err
	}
	return envs, nil
}

func (s *Store) UpdateEnvironment(ctx context.Context, env *m.Environment) error {
	res := s.db.WithContext(ctx).Model(env).Select("Name", "Description", "IsActive").Updates(env)
	if res.Error != nil {
		return fmt.Errorf("update environment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEnvironment removes the environment and everything it owns.
func (s *Store) DeleteEnvironment(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		endpoints := tx.Model(&m.Endpoint{}).Select("id").Where("environment_id = ?", id)

		if err := tx.Where("environment_id = ?", id).Delete(&m.LogEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("endpoint_id IN (?)", endpoints).Delete(&m.Scenario{}).Error; err != nil {
			return err
		}
		if err := tx.Where("environment_id = ?", id).Delete(&m.Endpoint{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&m.Environment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
