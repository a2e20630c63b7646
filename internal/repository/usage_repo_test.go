package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harborfoods/foodplan/internal/entity"
	"github.com/harborfoods/foodplan/internal/testutil"
)

func usageRow(itemCode string, week time.Time, total float64) entity.UsageReport {
	return entity.UsageReport{
		ID:             uuid.New().String(),
		ItemID:         uuid.New().String(),
		ItemCode:       itemCode,
		ItemName:       "测试原料" + itemCode,
		WeekCommencing: week,
		TotalRequired:  total,
		RecipeCodes:    entity.StringList{"2001"},
	}
}

// TestUsageReplaceWeek 整周全量替换：重复跑不产生重复行
func TestUsageReplaceWeek(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewUsageRepository(db)

	week := entity.WeekCommencing(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	otherWeek := entity.WeekCommencing(time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC))

	// 别的周的数据不能被波及
	if err := repo.ReplaceWeek(otherWeek, []entity.UsageReport{usageRow("1001", otherWeek, 5)}); err != nil {
		t.Fatalf("ReplaceWeek(other): %v", err)
	}

	first := []entity.UsageReport{
		usageRow("1001", week, 50),
		usageRow("1002", week, 7.5),
	}
	if err := repo.ReplaceWeek(week, first); err != nil {
		t.Fatalf("ReplaceWeek: %v", err)
	}

	// 同周重跑，行数不翻倍
	second := []entity.UsageReport{
		usageRow("1001", week, 50),
		usageRow("1002", week, 7.5),
	}
	if err := repo.ReplaceWeek(week, second); err != nil {
		t.Fatalf("ReplaceWeek rerun: %v", err)
	}

	rows, err := repo.ListByWeek(week)
	if err != nil {
		t.Fatalf("ListByWeek: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after rerun, got %d", len(rows))
	}
	if rows[0].ItemCode != "1001" || rows[1].ItemCode != "1002" {
		t.Fatalf("rows not ordered by code: %s, %s", rows[0].ItemCode, rows[1].ItemCode)
	}
	if rows[0].TotalRequired != 50 {
		t.Fatalf("total = %v, want 50", rows[0].TotalRequired)
	}
	if len(rows[0].RecipeCodes) != 1 || rows[0].RecipeCodes[0] != "2001" {
		t.Fatalf("recipe codes = %v, want [2001]", rows[0].RecipeCodes)
	}

	other, err := repo.ListByWeek(otherWeek)
	if err != nil {
		t.Fatalf("ListByWeek(other): %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("other week must be untouched, got %d rows", len(other))
	}
}
