package repository

import (
	"errors"
	"time"

	"github.com/harborfoods/foodplan/internal/entity"
	"gorm.io/gorm"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) GetByID(id string) (*entity.InventoryBalance, error) {
	var balance entity.InventoryBalance
	err := r.db.Preload("Days", func(db *gorm.DB) *gorm.DB {
		return db.Order("day_index")
	}).Where("id = ?", id).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

func (r *InventoryRepository) GetByItemAndWeek(itemID string, week time.Time) (*entity.InventoryBalance, error) {
	var balance entity.InventoryBalance
	err := r.db.Preload("Days", func(db *gorm.DB) *gorm.DB {
		return db.Order("day_index")
	}).Where("item_id = ? AND week_commencing = ?", itemID, week).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

func (r *InventoryRepository) ListByWeek(week time.Time) ([]entity.InventoryBalance, error) {
	var balances []entity.InventoryBalance
	err := r.db.Preload("Days", func(db *gorm.DB) *gorm.DB {
		return db.Order("day_index")
	}).Where("week_commencing = ?", week).
		Order("item_code").Find(&balances).Error
	return balances, err
}

// ReplaceForItemWeek 整周覆盖写：同(item, week)旧头表和天表先删后插，单事务。
// 汇总重跑必须走这里，避免残留过期行。
func (r *InventoryRepository) ReplaceForItemWeek(balance *entity.InventoryBalance) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var old []entity.InventoryBalance
		if err := tx.Where("item_id = ? AND week_commencing = ?",
			balance.ItemID, balance.WeekCommencing).Find(&old).Error; err != nil {
			return err
		}
		for _, o := range old {
			if err := tx.Delete(&entity.InventoryBalanceDay{}, "balance_id = ?", o.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&entity.InventoryBalance{},
			"item_id = ? AND week_commencing = ?", balance.ItemID, balance.WeekCommencing).Error; err != nil {
			return err
		}
		return tx.Create(balance).Error
	})
}

// Save 保存头表和天表，单事务（日度编辑后的整周重算落库）
func (r *InventoryRepository) Save(balance *entity.InventoryBalance) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(balance).Error; err != nil {
			return err
		}
		for i := range balance.Days {
			if err := tx.Save(&balance.Days[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
