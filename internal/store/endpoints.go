package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
)

func (s *Store) CreateEndpoint(ctx context.Context, ep *m.Endpoint) error {
	if err := s.db.WithContext(ctx).Create(ep).Error; err != nil {
		return fmt.Errorf("create endpoint: %w", duplicate(err))
	}
	return nil
}

func (s *Store) GetEndpoint(ctx context.Context, id uint) (*m.Endpoint, error) {
	var ep m.Endpoint
	if err := s.db.WithContext(ctx).Limit(1).Find(&ep, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if ep.ID == 0 {
		return nil, ErrNotFound
	}
	return &ep, nil
}

func (s *Store) ListEndpoints(ctx context.Context, envID uint) ([]m.Endpoint, error) {
	var eps []m.Endpoint
	err := s.db.WithContext(ctx).
		Where("environment_id = ?", envID).
		Order("id").
		Find(&eps).Error
	if err != nil {
		return nil, err
	}
	return eps, nil
}

// FindEndpoint looks an endpoint up by its literal path.
func (s *Store) FindEndpoint(ctx context.Context, envID uint, apiType m.APIType, path, method string) (*m.Endpoint, error) {
	var ep m.Endpoint
	err := s.db.WithContext(ctx).
		Limit(1).
		Find(&ep, "environment_id = ? AND api_type = ? AND path = ? AND method = ?", envID, apiType, path, method).
		Error
	if err != nil {
		return nil, err
	}
	if ep.ID == 0 {
		return nil, ErrNotFound
	}
	return &ep, nil
}

// EndpointsFor lists the candidates for pattern matching in registration
// order.
func (s *Store) EndpointsFor(ctx context.Context, envID uint, apiType m.APIType, method string) ([]m.Endpoint, error) {
	var eps []m.Endpoint
	err := s.db.WithContext(ctx).
		Where("environment_id = ? AND api_type = ? AND method = ?", envID, apiType, method).
		Order("id").
		Find(&eps).Error
	if err != nil {
		return nil, err
	}
	return eps, nil
}

func (s *Store) UpdateEndpoint(ctx context.Context, ep *m.Endpoint) error {
	res := s.db.WithContext(ctx).Model(ep).Select("APIType", "Path", "Method", "Description").Updates(ep)
	if res.Error != nil {
		return fmt.Errorf("update endpoint: %w", duplicate(res.Error))
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteEndpoint(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint_id = ?", id).Delete(&m.Scenario{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&m.Endpoint{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
