package repository

import (
	"errors"
	"time"

	"github.com/harborfoods/foodplan/internal/entity"
	"gorm.io/gorm"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ---------- 生产计划 ----------

func (r *ScheduleRepository) GetProduction(id string) (*entity.ProductionSchedule, error) {
	var row entity.ProductionSchedule
	err := r.db.Preload("Item").Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *ScheduleRepository) ListProductionByWeek(week time.Time) ([]entity.ProductionSchedule, error) {
	var rows []entity.ProductionSchedule
	err := r.db.Preload("Item").
		Where("week_commencing = ?", week).
		Order("item_code").Find(&rows).Error
	return rows, err
}

func (r *ScheduleRepository) CreateProduction(row *entity.ProductionSchedule) error {
	return r.db.Create(row).Error
}

func (r *ScheduleRepository) UpdateProduction(row *entity.ProductionSchedule) error {
	return r.db.Save(row).Error
}

func (r *ScheduleRepository) DeleteProduction(id string) error {
	return r.db.Delete(&entity.ProductionSchedule{}, "id = ?", id).Error
}

// ---------- 灌装计划 ----------

func (r *ScheduleRepository) GetFilling(id string) (*entity.FillingSchedule, error) {
	var row entity.FillingSchedule
	err := r.db.Preload("Item").Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *ScheduleRepository) ListFillingByWeek(week time.Time) ([]entity.FillingSchedule, error) {
	var rows []entity.FillingSchedule
	err := r.db.Preload("Item").
		Where("week_commencing = ?", week).
		Order("item_code").Find(&rows).Error
	return rows, err
}

func (r *ScheduleRepository) CreateFilling(row *entity.FillingSchedule) error {
	return r.db.Create(row).Error
}

func (r *ScheduleRepository) UpdateFilling(row *entity.FillingSchedule) error {
	return r.db.Save(row).Error
}

func (r *ScheduleRepository) DeleteFilling(id string) error {
	return r.db.Delete(&entity.FillingSchedule{}, "id = ?", id).Error
}
