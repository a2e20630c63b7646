package repository

import (
	"errors"

	"github.com/harborfoods/foodplan/internal/entity"
	"gorm.io/gorm"
)

type RollupRepository struct {
	db *gorm.DB
}

func NewRollupRepository(db *gorm.DB) *RollupRepository {
	return &RollupRepository{db: db}
}

func (r *RollupRepository) CreateRun(run *entity.RollupRun) error {
	return r.db.Create(run).Error
}

func (r *RollupRepository) UpdateRun(run *entity.RollupRun) error {
	return r.db.Save(run).Error
}

func (r *RollupRepository) GetRunByID(id string) (*entity.RollupRun, error) {
	var run entity.RollupRun
	if err := r.db.Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

func (r *RollupRepository) GetLatestRun() (*entity.RollupRun, error) {
	var run entity.RollupRun
	if err := r.db.Order("started_at DESC").First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

func (r *RollupRepository) ListRuns(page, size int) ([]entity.RollupRun, int64, error) {
	query := r.db.Model(&entity.RollupRun{})
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var runs []entity.RollupRun
	err := query.Order("started_at DESC").
		Offset((page - 1) * size).Limit(size).Find(&runs).Error
	return runs, total, err
}
