package entity

import (
	"time"
)

// StocktakeSnapshot 盘点快照：(item, week)的实盘库存，作为周一开盘库存种子
type StocktakeSnapshot struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid"`
	ItemID         string    `json:"item_id" gorm:"type:uuid;not null;uniqueIndex:uk_stocktake_item_week"`
	ItemCode       string    `json:"item_code" gorm:"size:64;not null"`
	WeekCommencing time.Time `json:"week_commencing" gorm:"type:date;not null;uniqueIndex:uk_stocktake_item_week"`
	StockLevelKG   float64   `json:"stock_level_kg" gorm:"type:decimal(12,4);not null;default:0"`
	CountedBy      string    `json:"counted_by" gorm:"size:64"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Item *Item `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}

func (StocktakeSnapshot) TableName() string {
	return "stocktake_snapshots"
}

// InventoryBalance 周库存结余头表：每(原材料, 周)一行。
// 周内每天的级联结果在inventory_balance_days，day_index 0..6。
type InventoryBalance struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid"`
	ItemID         string    `json:"item_id" gorm:"type:uuid;not null;index:idx_balance_item_week"`
	ItemCode       string    `json:"item_code" gorm:"size:64;not null"`
	ItemName       string    `json:"item_name" gorm:"size:128"`
	WeekCommencing time.Time `json:"week_commencing" gorm:"type:date;not null;index:idx_balance_item_week"`
	StartingStock  float64   `json:"starting_stock" gorm:"type:decimal(12,4);default:0"`
	PricePerKG     float64   `json:"price_per_kg" gorm:"type:decimal(12,4);default:0"`

	// 周汇总
	RequiredForPlan float64 `json:"required_for_plan" gorm:"type:decimal(12,4);default:0"`
	VarianceForWeek float64 `json:"variance_for_week" gorm:"type:decimal(12,4);default:0"`
	ValueRequired   float64 `json:"value_required" gorm:"type:decimal(12,4);default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Item *Item                 `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	Days []InventoryBalanceDay `json:"days,omitempty" gorm:"foreignKey:BalanceID"`
}

func (InventoryBalance) TableName() string {
	return "inventory_balances"
}

// InventoryBalanceDay 单日结余行。不变量：
//
//	opening[i] = closing[i-1]           (i > 0)
//	variance[i] = opening[i] - required[i]
//	closing[i] = opening[i] + ordered_received[i] - consumed[i]
//
// to_order/ordered_received/consumed为用户录入，其余列由级联重算写入。
type InventoryBalanceDay struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid"`
	BalanceID string `json:"balance_id" gorm:"type:uuid;not null;index"`
	DayIndex  int    `json:"day_index" gorm:"not null"` // Monday=0..Sunday=6

	OpeningStock       float64 `json:"opening_stock" gorm:"type:decimal(12,4);default:0"`
	RequiredQty        float64 `json:"required_qty" gorm:"type:decimal(12,4);default:0"`
	Variance           float64 `json:"variance" gorm:"type:decimal(12,4);default:0"`
	ToOrderQty         float64 `json:"to_order_qty" gorm:"type:decimal(12,4);default:0"`
	OrderedReceivedQty float64 `json:"ordered_received_qty" gorm:"type:decimal(12,4);default:0"`
	ConsumedQty        float64 `json:"consumed_qty" gorm:"type:decimal(12,4);default:0"`
	ClosingStock       float64 `json:"closing_stock" gorm:"type:decimal(12,4);default:0"`
}

func (InventoryBalanceDay) TableName() string {
	return "inventory_balance_days"
}

// UsageReport 周原料用量报表：每(原材料, 周)一行，每次汇总整周全量替换
type UsageReport struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid"`
	ItemID         string     `json:"item_id" gorm:"type:uuid;not null;index:idx_usage_item_week"`
	ItemCode       string     `json:"item_code" gorm:"size:64;not null"`
	ItemName       string     `json:"item_name" gorm:"size:128"`
	WeekCommencing time.Time  `json:"week_commencing" gorm:"type:date;not null;index:idx_usage_item_week"`
	WeekQuantities `gorm:"embedded"`
	TotalRequired  float64    `json:"total_required" gorm:"type:decimal(12,4);default:0"`
	RecipeCodes    StringList `json:"recipe_codes" gorm:"type:jsonb"` // 贡献用量的parent配方code集合
	CreatedAt      time.Time  `json:"created_at"`
}

func (UsageReport) TableName() string {
	return "usage_reports"
}

// RollupRunStatus 汇总运行状态
const (
	RollupStatusRunning   = "RUNNING"
	RollupStatusCompleted = "COMPLETED"
	RollupStatusFailed    = "FAILED"
)

// RollupRun 周汇总运行记录
type RollupRun struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid"`
	RunCode        string     `json:"run_code" gorm:"size:50;not null;uniqueIndex"`
	WeekCommencing time.Time  `json:"week_commencing" gorm:"type:date;not null;index"`
	Status         string     `json:"status" gorm:"size:20;not null;default:RUNNING"`
	ItemsProcessed int        `json:"items_processed" gorm:"default:0"`
	ItemsFailed    int        `json:"items_failed" gorm:"default:0"`
	EntriesSkipped int        `json:"entries_skipped" gorm:"default:0"`
	ErrorMessage   string     `json:"error_message" gorm:"type:text"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedBy      string     `json:"created_by" gorm:"size:64;not null"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (RollupRun) TableName() string {
	return "rollup_runs"
}
