package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	m "github.com/violet-sunn/RespondXReplitAgent-sub000/internal/models"
)

// clearDefaults unsets every default scenario of endpointID except the
// given one. The endpoint row stays locked until tx ends, so concurrent
// default changes on one endpoint run one after another.
func clearDefaults(tx *gorm.DB, endpointID uint, except uint) error {
	var ep m.Endpoint
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Limit(1).
		Find(&ep, "id = ?", endpointID).
		Error
	if err != nil {
		return err
	}

	q := tx.Model(&m.Scenario{}).Where("endpoint_id = ? AND is_default = ?", endpointID, true)
	if except != 0 {
		q = q.Where("id <> ?", except)
	}
	return q.Update("is_default", false).Error
}

// CreateScenario inserts sc. When sc is the default, the previous default of
// its endpoint is cleared in the same transaction.
func (s *Store) CreateScenario(ctx context.Context, sc *m.Scenario) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sc.IsDefault {
			if err := clearDefaults(tx, sc.EndpointID, 0); err != nil {
				return err
			}
		}
		return tx.Create(sc).Error
	})
	if err != nil {
		return fmt.Errorf("create scenario: %w", err)
	}
	return nil
}

func (s *Store) GetScenario(ctx context.Context, id uint) (*m.Scenario, error) {
	var sc m.Scenario
	if err := s.db.WithContext(ctx).Limit(1).Find(&sc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if sc.ID == 0 {
		return nil, ErrNotFound
	}
	return &sc, nil
}

func (s *Store) ListScenarios(ctx context.Context, endpointID uint) ([]m.Scenario, error) {
	var scs []m.Scenario
	err := s.db.WithContext(ctx).
		Where("endpoint_id = ?", endpointID).
		Order("id").
		Find(&scs).Error
	if err != nil {
		return nil, err
	}
	return scs, nil
}

func (s *Store) UpdateScenario(ctx context.Context, sc *m.Scenario) error {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sc.IsDefault {
			if err := clearDefaults(tx, sc.EndpointID, sc.ID); err != nil {
				return err
			}
		}

		res := tx.Model(sc).
			Select("Name", "Type", "RequestConditions", "ResponseData", "StatusCode", "DelayMs", "IsDefault").
			Updates(sc)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return fmt.Errorf("update scenario: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefaultScenario makes id the only default scenario of its endpoint.
func (s *Store) SetDefaultScenario(ctx context.Context, id uint) (*m.Scenario, error) {
	var sc m.Scenario
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Limit(1).Find(&sc, "id = ?", id).Error; err != nil {
			return err
		}
		if sc.ID == 0 {
			return ErrNotFound
		}

		if err := clearDefaults(tx, sc.EndpointID, sc.ID); err != nil {
			return err
		}

		sc.IsDefault = true
		return tx.Model(&sc).Update("is_default", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *Store) DeleteScenario(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&m.Scenario{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) FindScenarioByType(ctx context.Context, endpointID uint, t m.ScenarioType) (*m.Scenario, error) {
	var sc m.Scenario
	err := s.db.WithContext(ctx).
		Order("id").
		Limit(1).
		Find(&sc, "endpoint_id = ? AND type = ?", endpointID, t).
		Error
	if err != nil {
		return nil, err
	}
	if sc.ID == 0 {
		return nil, ErrNotFound
	}
	return &sc, nil
}

func (s *Store) DefaultScenario(ctx context.Context, endpointID uint) (*m.Scenario, error) {
	var sc m.Scenario
	err := s.db.WithContext(ctx).
		Order("id").
		Limit(1).
		Find(&sc, "endpoint_id = ? AND is_default = ?", endpointID, true).
		Error
	if err != nil {
		return nil, err
	}
	if sc.ID == 0 {
		return nil, ErrNotFound
	}
	return &sc, nil
}
