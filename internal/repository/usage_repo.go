package repository

import (
	"time"

	"github.com/harborfoods/foodplan/internal/entity"
	"gorm.io/gorm"
)

type UsageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) ListByWeek(week time.Time) ([]entity.UsageReport, error) {
	var rows []entity.UsageReport
	err := r.db.Where("week_commencing = ?", week).
		Order("item_code").Find(&rows).Error
	return rows, err
}

// ReplaceWeek 整周全量替换：先删该周全部报表行再插入，单事务。
// 写入前不删除曾造成大量重复行，先删后插是这张表的硬性前置条件。
func (r *UsageRepository) ReplaceWeek(week time.Time, rows []entity.UsageReport) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.UsageReport{}, "week_commencing = ?", week).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}
