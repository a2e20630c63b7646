package repository

import (
	"errors"

	"github.com/harborfoods/foodplan/internal/entity"
	"gorm.io/gorm"
)

type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

func (r *RecipeRepository) GetByID(id string) (*entity.RecipeItem, error) {
	var row entity.RecipeItem
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// ListByParent 取parent的全部有效配方行，带组件物料
func (r *RecipeRepository) ListByParent(parentID string) ([]entity.RecipeItem, error) {
	var rows []entity.RecipeItem
	err := r.db.Preload("ComponentItem").
		Where("parent_item_id = ? AND is_active = true", parentID).
		Order("sequence, created_at").Find(&rows).Error
	return rows, err
}

// MapByParent 一次装载全部有效配方行并按parent分组
func (r *RecipeRepository) MapByParent() (map[string][]entity.RecipeItem, error) {
	var rows []entity.RecipeItem
	if err := r.db.Where("is_active = true").Order("sequence, created_at").Find(&rows).Error; err != nil {
		return nil, err
	}
	m := make(map[string][]entity.RecipeItem)
	for _, row := range rows {
		m[row.ParentItemID] = append(m[row.ParentItemID], row)
	}
	return m, nil
}

// CreateAndRecalc 新增行项并在同一事务里重算同parent全部行项的百分比
func (r *RecipeRepository) CreateAndRecalc(row *entity.RecipeItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return recalcPercentages(tx, row.ParentItemID)
	})
}

// UpdateAndRecalc 更新行项并重算百分比
func (r *RecipeRepository) UpdateAndRecalc(row *entity.RecipeItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		return recalcPercentages(tx, row.ParentItemID)
	})
}

// DeleteAndRecalc 失效行项并重算剩余行项的百分比
func (r *RecipeRepository) DeleteAndRecalc(id, parentID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.RecipeItem{}).Where("id = ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return recalcPercentages(tx, parentID)
	})
}

// BatchCreateAndRecalc 批量新增（Excel导入用），最后统一重算一次
func (r *RecipeRepository) BatchCreateAndRecalc(parentID string, rows []entity.RecipeItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return recalcPercentages(tx, parentID)
	})
}

// recalcPercentages percentage = quantity / Σ(quantity) × 100；总量为0时全部置0
func recalcPercentages(tx *gorm.DB, parentID string) error {
	var rows []entity.RecipeItem
	if err := tx.Where("parent_item_id = ? AND is_active = true", parentID).Find(&rows).Error; err != nil {
		return err
	}
	var total float64
	for _, row := range rows {
		total += row.QuantityKG
	}
	for _, row := range rows {
		pct := 0.0
		if total > 0 {
			pct = row.QuantityKG / total * 100
		}
		if err := tx.Model(&entity.RecipeItem{}).Where("id = ?", row.ID).
			Update("percentage", pct).Error; err != nil {
			return err
		}
	}
	return nil
}
