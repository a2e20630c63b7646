package repository

import (
	"errors"
	"time"

	"github.com/harborfoods/foodplan/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StocktakeRepository struct {
	db *gorm.DB
}

func NewStocktakeRepository(db *gorm.DB) *StocktakeRepository {
	return &StocktakeRepository{db: db}
}

func (r *StocktakeRepository) GetByItemAndWeek(itemID string, week time.Time) (*entity.StocktakeSnapshot, error) {
	var row entity.StocktakeSnapshot
	err := r.db.Where("item_id = ? AND week_commencing = ?", itemID, week).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *StocktakeRepository) ListByWeek(week time.Time) ([]entity.StocktakeSnapshot, error) {
	var rows []entity.StocktakeSnapshot
	err := r.db.Preload("Item").
		Where("week_commencing = ?", week).
		Order("item_code").Find(&rows).Error
	return rows, err
}

// Upsert 同(item, week)只保留一行实盘
func (r *StocktakeRepository) Upsert(row *entity.StocktakeSnapshot) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}, {Name: "week_commencing"}},
		DoUpdates: clause.AssignmentColumns([]string{"stock_level_kg", "counted_by", "updated_at"}),
	}).Create(row).Error
}
