package entity

import (
	"time"
)

// RecipeItem 配方行项：parent为WIP/WIPF，component为任意物料，数量按每批kg计。
// percentage为冗余存储列，所有修改quantity_kg的写路径必须在同一事务里
// 重算同parent全部行项的percentage。
type RecipeItem struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid"`
	ParentItemID    string    `json:"parent_item_id" gorm:"type:uuid;not null;index"`
	ComponentItemID string    `json:"component_item_id" gorm:"type:uuid;not null;index"`
	QuantityKG      float64   `json:"quantity_kg" gorm:"type:decimal(12,4);not null"`
	Percentage      float64   `json:"percentage" gorm:"type:decimal(8,4);default:0"`
	Sequence        int       `json:"sequence" gorm:"not null;default:0"`
	IsActive        bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedBy       string    `json:"created_by" gorm:"size:64"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	ParentItem    *Item `json:"parent_item,omitempty" gorm:"foreignKey:ParentItemID"`
	ComponentItem *Item `json:"component_item,omitempty" gorm:"foreignKey:ComponentItemID"`
}

func (RecipeItem) TableName() string {
	return "recipe_items"
}
