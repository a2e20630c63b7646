package entity

import (
	"time"
)

// ItemType 物料类型（封闭集合）
const (
	ItemTypeRM   = "RM"   // 原材料
	ItemTypeWIP  = "WIP"  // 半成品（生产段）
	ItemTypeWIPF = "WIPF" // 半成品（灌装段）
	ItemTypeFG   = "FG"   // 成品
)

// ItemTypes 全部合法类型
var ItemTypes = []string{ItemTypeRM, ItemTypeWIP, ItemTypeWIPF, ItemTypeFG}

// ValidItemType 校验类型是否在封闭集合内
func ValidItemType(t string) bool {
	for _, v := range ItemTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Item 物料主数据，FG通过WIP/WIPF引用挂接配方链路
type Item struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	Code        string     `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name        string     `json:"name" gorm:"size:128;not null"`
	ItemType    string     `json:"item_type" gorm:"size:10;not null;index"`
	UnitPrice   float64    `json:"unit_price" gorm:"type:decimal(12,4);default:0"` // 每kg单价
	Supplier    string     `json:"supplier" gorm:"size:128"`
	WIPItemID   string     `json:"wip_item_id" gorm:"type:uuid"`  // FG引用的WIP
	WIPFItemID  string     `json:"wipf_item_id" gorm:"type:uuid"` // FG引用的WIPF
	Description string     `json:"description" gorm:"type:text"`
	IsActive    bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedBy   string     `json:"created_by" gorm:"size:64"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" gorm:"index"`

	WIPItem  *Item `json:"wip_item,omitempty" gorm:"foreignKey:WIPItemID"`
	WIPFItem *Item `json:"wipf_item,omitempty" gorm:"foreignKey:WIPFItemID"`
}

func (Item) TableName() string {
	return "items"
}

// IsRawMaterial 只有原材料参与库存结余
func (i Item) IsRawMaterial() bool {
	return i.ItemType == ItemTypeRM
}

// HasRecipe WIP和WIPF可挂配方
func (i Item) HasRecipe() bool {
	return i.ItemType == ItemTypeWIP || i.ItemType == ItemTypeWIPF
}
