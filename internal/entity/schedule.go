package entity

import (
	"time"
)

// WeekQuantities 一周七天的计划量列。统一用天索引（Monday=0..Sunday=6）
// 访问，不做按天名拼接字段的动态取值。
type WeekQuantities struct {
	MondayQty    float64 `json:"monday_qty" gorm:"type:decimal(12,4);default:0"`
	TuesdayQty   float64 `json:"tuesday_qty" gorm:"type:decimal(12,4);default:0"`
	WednesdayQty float64 `json:"wednesday_qty" gorm:"type:decimal(12,4);default:0"`
	ThursdayQty  float64 `json:"thursday_qty" gorm:"type:decimal(12,4);default:0"`
	FridayQty    float64 `json:"friday_qty" gorm:"type:decimal(12,4);default:0"`
	SaturdayQty  float64 `json:"saturday_qty" gorm:"type:decimal(12,4);default:0"`
	SundayQty    float64 `json:"sunday_qty" gorm:"type:decimal(12,4);default:0"`
}

// Quantities 按天索引返回七天计划量
func (w WeekQuantities) Quantities() [DaysPerWeek]float64 {
	return [DaysPerWeek]float64{
		w.MondayQty, w.TuesdayQty, w.WednesdayQty, w.ThursdayQty,
		w.FridayQty, w.SaturdayQty, w.SundayQty,
	}
}

// SetQuantity 按天索引写入，索引越界忽略
func (w *WeekQuantities) SetQuantity(day int, qty float64) {
	switch day {
	case Monday:
		w.MondayQty = qty
	case Tuesday:
		w.TuesdayQty = qty
	case Wednesday:
		w.WednesdayQty = qty
	case Thursday:
		w.ThursdayQty = qty
	case Friday:
		w.FridayQty = qty
	case Saturday:
		w.SaturdayQty = qty
	case Sunday:
		w.SundayQty = qty
	}
}

// Total 七天合计
func (w WeekQuantities) Total() float64 {
	var total float64
	for _, q := range w.Quantities() {
		total += q
	}
	return total
}

// ProductionSchedule 生产计划行：一个被制造物料（WIP）在一周内的按天计划量。
// 计划变更不会自动级联，下游汇总需要显式重跑。
type ProductionSchedule struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid"`
	ItemID         string    `json:"item_id" gorm:"type:uuid;not null;index"`
	ItemCode       string    `json:"item_code" gorm:"size:64;not null;index"`
	WeekCommencing time.Time `json:"week_commencing" gorm:"type:date;not null;index"`
	WeekQuantities `gorm:"embedded"`
	WeekTotal      float64   `json:"week_total" gorm:"type:decimal(12,4);default:0"`
	CreatedBy      string    `json:"created_by" gorm:"size:64"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Item *Item `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}

func (ProductionSchedule) TableName() string {
	return "production_schedules"
}

// FillingSchedule 灌装/包装计划行，结构与生产计划一致，按(code, week)聚合
type FillingSchedule struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid"`
	ItemID         string    `json:"item_id" gorm:"type:uuid;not null;index"`
	ItemCode       string    `json:"item_code" gorm:"size:64;not null;index"`
	WeekCommencing time.Time `json:"week_commencing" gorm:"type:date;not null;index"`
	WeekQuantities `gorm:"embedded"`
	WeekTotal      float64   `json:"week_total" gorm:"type:decimal(12,4);default:0"`
	CreatedBy      string    `json:"created_by" gorm:"size:64"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Item *Item `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}

func (FillingSchedule) TableName() string {
	return "filling_schedules"
}
