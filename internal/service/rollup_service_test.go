package service

import (
	"math"
	"testing"
	"time"

	"github.com/harborfoods/foodplan/internal/entity"
)

func newBalance(starting, price float64, required, received, consumed [entity.DaysPerWeek]float64) *entity.InventoryBalance {
	b := &entity.InventoryBalance{
		ID:            "bal-1",
		ItemID:        "item-1",
		ItemCode:      "1001",
		StartingStock: starting,
		PricePerKG:    price,
	}
	for d := 0; d < entity.DaysPerWeek; d++ {
		b.Days = append(b.Days, entity.InventoryBalanceDay{
			ID:                 "day-" + string(rune('0'+d)),
			BalanceID:          b.ID,
			DayIndex:           d,
			RequiredQty:        required[d],
			OrderedReceivedQty: received[d],
			ConsumedQty:        consumed[d],
		})
	}
	return b
}

func TestRecomputeCascade(t *testing.T) {
	// 开盘100kg，工作日每天需求20kg，消耗与需求同步
	required := [entity.DaysPerWeek]float64{20, 20, 20, 20, 20, 0, 0}
	consumed := required
	b := newBalance(100, 2.5, required, [entity.DaysPerWeek]float64{}, consumed)

	Recompute(b)

	if b.Days[0].OpeningStock != 100 {
		t.Fatalf("monday opening = %v, want 100", b.Days[0].OpeningStock)
	}
	for i := 1; i < entity.DaysPerWeek; i++ {
		if b.Days[i].OpeningStock != b.Days[i-1].ClosingStock {
			t.Fatalf("day %d: opening %v != prior closing %v", i, b.Days[i].OpeningStock, b.Days[i-1].ClosingStock)
		}
	}
	for i, day := range b.Days {
		wantClosing := day.OpeningStock + day.OrderedReceivedQty - day.ConsumedQty
		if math.Abs(day.ClosingStock-wantClosing) > 1e-6 {
			t.Fatalf("day %d: closing %v, want %v", i, day.ClosingStock, wantClosing)
		}
		if day.Variance != day.OpeningStock-day.RequiredQty {
			t.Fatalf("day %d: variance %v, want %v", i, day.Variance, day.OpeningStock-day.RequiredQty)
		}
	}

	// 周五收盘清零，周末维持
	if b.Days[entity.Friday].ClosingStock != 0 {
		t.Fatalf("friday closing = %v, want 0", b.Days[entity.Friday].ClosingStock)
	}
	if b.Days[entity.Saturday].ClosingStock != 0 || b.Days[entity.Sunday].ClosingStock != 0 {
		t.Fatalf("weekend closing = %v/%v, want 0/0",
			b.Days[entity.Saturday].ClosingStock, b.Days[entity.Sunday].ClosingStock)
	}

	if b.RequiredForPlan != 100 {
		t.Fatalf("required_for_plan = %v, want 100", b.RequiredForPlan)
	}
	if b.VarianceForWeek != 0 {
		t.Fatalf("variance_for_week = %v, want 0", b.VarianceForWeek)
	}
	if b.ValueRequired != 250 {
		t.Fatalf("value_required = %v, want 250", b.ValueRequired)
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	required := [entity.DaysPerWeek]float64{13.5, 0, 7.25, 40, 0, 0, 3}
	received := [entity.DaysPerWeek]float64{0, 50, 0, 0, 0, 0, 0}
	consumed := [entity.DaysPerWeek]float64{10, 10, 10, 10, 10, 0, 0}
	b := newBalance(42.42, 1.99, required, received, consumed)

	Recompute(b)
	first := make([]entity.InventoryBalanceDay, len(b.Days))
	copy(first, b.Days)
	firstPlan, firstVar, firstVal := b.RequiredForPlan, b.VarianceForWeek, b.ValueRequired

	Recompute(b)
	for i := range b.Days {
		if b.Days[i] != first[i] {
			t.Fatalf("day %d changed on second run: %+v != %+v", i, b.Days[i], first[i])
		}
	}
	if b.RequiredForPlan != firstPlan || b.VarianceForWeek != firstVar || b.ValueRequired != firstVal {
		t.Fatalf("weekly aggregates changed on second run")
	}
}

func TestRecomputeSortsDays(t *testing.T) {
	// 乱序输入也要按day_index级联
	b := &entity.InventoryBalance{StartingStock: 10}
	for _, d := range []int{3, 0, 6, 1, 5, 2, 4} {
		b.Days = append(b.Days, entity.InventoryBalanceDay{DayIndex: d, ConsumedQty: 1})
	}

	Recompute(b)

	for i, day := range b.Days {
		if day.DayIndex != i {
			t.Fatalf("days not sorted: position %d has index %d", i, day.DayIndex)
		}
	}
	if b.Days[6].ClosingStock != 3 {
		t.Fatalf("sunday closing = %v, want 3", b.Days[6].ClosingStock)
	}
}

func testItems() map[string]entity.Item {
	return map[string]entity.Item{
		"wip-a": {ID: "wip-a", Code: "2001", Name: "酱料A", ItemType: entity.ItemTypeWIP},
		"wip-b": {ID: "wip-b", Code: "2002", Name: "酱料B", ItemType: entity.ItemTypeWIP},
		"flour": {ID: "flour", Code: "1001", Name: "面粉", ItemType: entity.ItemTypeRM},
		"salt":  {ID: "salt", Code: "1002", Name: "盐", ItemType: entity.ItemTypeRM},
		"fg":    {ID: "fg", Code: "3001", Name: "成品", ItemType: entity.ItemTypeFG},
	}
}

func TestCalculateUsageSharesAcrossRecipes(t *testing.T) {
	items := testItems()

	// 配方A：面粉占30%；配方B：面粉占50%
	recipes := map[string][]entity.RecipeItem{
		"wip-a": {
			{ParentItemID: "wip-a", ComponentItemID: "flour", QuantityKG: 30},
			{ParentItemID: "wip-a", ComponentItemID: "salt", QuantityKG: 70},
		},
		"wip-b": {
			{ParentItemID: "wip-b", ComponentItemID: "flour", QuantityKG: 50},
			{ParentItemID: "wip-b", ComponentItemID: "salt", QuantityKG: 50},
		},
	}

	schedA := entity.ProductionSchedule{ID: "s1", ItemID: "wip-a", ItemCode: "2001"}
	schedA.SetQuantity(entity.Monday, 100)
	schedB := entity.ProductionSchedule{ID: "s2", ItemID: "wip-b", ItemCode: "2002"}
	schedB.SetQuantity(entity.Monday, 40)

	usage, skipped := calculateUsage([]entity.ProductionSchedule{schedA, schedB}, recipes, items)
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %v", skipped)
	}

	flour := usage["flour"]
	if flour == nil {
		t.Fatal("flour usage missing")
	}
	// 100*0.30 + 40*0.50 = 50
	if math.Abs(flour.Daily[entity.Monday]-50) > 1e-9 {
		t.Fatalf("flour monday = %v, want 50", flour.Daily[entity.Monday])
	}
	if len(flour.RecipeCodes) != 2 || flour.RecipeCodes[0] != "2001" || flour.RecipeCodes[1] != "2002" {
		t.Fatalf("flour recipe codes = %v, want [2001 2002]", flour.RecipeCodes)
	}
}

func TestCalculateUsageSkipsBadEntries(t *testing.T) {
	items := testItems()
	recipes := map[string][]entity.RecipeItem{
		// wip-a 总重为0
		"wip-a": {{ParentItemID: "wip-a", ComponentItemID: "flour", QuantityKG: 0}},
	}

	zeroWeight := entity.ProductionSchedule{ID: "s1", ItemID: "wip-a", ItemCode: "2001"}
	zeroWeight.SetQuantity(entity.Monday, 100)
	missingItem := entity.ProductionSchedule{ID: "s2", ItemID: "ghost", ItemCode: "9999"}
	notARecipe := entity.ProductionSchedule{ID: "s3", ItemID: "fg", ItemCode: "3001"}

	usage, skipped := calculateUsage(
		[]entity.ProductionSchedule{zeroWeight, missingItem, notARecipe}, recipes, items)

	if len(usage) != 0 {
		t.Fatalf("expected no usage, got %d entries", len(usage))
	}
	if len(skipped) != 3 {
		t.Fatalf("expected 3 skip diagnostics, got %d: %v", len(skipped), skipped)
	}
}

func TestBuildUsageReportsStableOrder(t *testing.T) {
	week := entity.WeekCommencing(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	usage := map[string]*ItemUsage{
		"salt":  {Item: entity.Item{ID: "salt", Code: "1002", Name: "盐"}},
		"flour": {Item: entity.Item{ID: "flour", Code: "1001", Name: "面粉"}},
	}
	usage["flour"].Daily[entity.Monday] = 12.5
	usage["flour"].Daily[entity.Friday] = 7.5

	reports := buildUsageReports(week, usage)
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].ItemCode != "1001" || reports[1].ItemCode != "1002" {
		t.Fatalf("reports not sorted by code: %s, %s", reports[0].ItemCode, reports[1].ItemCode)
	}
	if reports[0].TotalRequired != 20 {
		t.Fatalf("flour total = %v, want 20", reports[0].TotalRequired)
	}
	if reports[0].MondayQty != 12.5 || reports[0].FridayQty != 7.5 {
		t.Fatalf("daily columns wrong: monday=%v friday=%v", reports[0].MondayQty, reports[0].FridayQty)
	}
	if !reports[0].WeekCommencing.Equal(week) {
		t.Fatalf("week = %v, want %v", reports[0].WeekCommencing, week)
	}
}
