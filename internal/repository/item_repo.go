package repository

import (
	"errors"

	"github.com/harborfoods/foodplan/internal/entity"
	"gorm.io/gorm"
)

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) GetByID(id string) (*entity.Item, error) {
	var item entity.Item
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) GetByCode(code string) (*entity.Item, error) {
	var item entity.Item
	err := r.db.Where("code = ? AND deleted_at IS NULL", code).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) Create(item *entity.Item) error {
	return r.db.Create(item).Error
}

func (r *ItemRepository) Update(item *entity.Item) error {
	return r.db.Save(item).Error
}

// Delete 软删除
func (r *ItemRepository) Delete(id string) error {
	return r.db.Model(&entity.Item{}).Where("id = ?", id).
		Update("deleted_at", gorm.Expr("NOW()")).Error
}

type ItemListParams struct {
	ItemType string
	Keyword  string
	Page     int
	Size     int
}

func (r *ItemRepository) List(params ItemListParams) ([]entity.Item, int64, error) {
	query := r.db.Model(&entity.Item{}).Where("deleted_at IS NULL")
	if params.ItemType != "" {
		query = query.Where("item_type = ?", params.ItemType)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var items []entity.Item
	err := query.Order("code").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&items).Error
	return items, total, err
}

// ListByType 按类型取全部有效物料
func (r *ItemRepository) ListByType(itemType string) ([]entity.Item, error) {
	var items []entity.Item
	err := r.db.Where("item_type = ? AND deleted_at IS NULL AND is_active = true", itemType).
		Order("code").Find(&items).Error
	return items, err
}

// MapByID 取全部有效物料并按ID索引，供汇总/校验一次性装载
func (r *ItemRepository) MapByID() (map[string]entity.Item, error) {
	var items []entity.Item
	if err := r.db.Where("deleted_at IS NULL").Find(&items).Error; err != nil {
		return nil, err
	}
	m := make(map[string]entity.Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m, nil
}

// DB 返回底层db用于事务
func (r *ItemRepository) DB() *gorm.DB {
	return r.db
}
