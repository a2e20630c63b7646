package service

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harborfoods/foodplan/internal/entity"
	"github.com/harborfoods/foodplan/internal/repository"
	"github.com/harborfoods/foodplan/internal/testutil"
	"go.uber.org/zap"
)

func setupRollupTest(t *testing.T) (*repository.Repositories, *RollupService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewRollupService(
		repos.Item, repos.Recipe, repos.Schedule,
		repos.Stocktake, repos.Inventory, repos.Usage, repos.Rollup,
		zap.NewNop(),
	)
	return repos, svc
}

// TestRollupRunWeek 端到端：配方+生产计划+盘点 → 用量报表与日度结余落库
func TestRollupRunWeek(t *testing.T) {
	repos, svc := setupRollupTest(t)
	week := entity.WeekCommencing(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))

	flour := &entity.Item{ID: uuid.New().String(), Code: "1001", Name: "面粉",
		ItemType: entity.ItemTypeRM, UnitPrice: 2, IsActive: true}
	wip := &entity.Item{ID: uuid.New().String(), Code: "2001", Name: "酱料A",
		ItemType: entity.ItemTypeWIP, IsActive: true}
	for _, item := range []*entity.Item{flour, wip} {
		if err := repos.Item.Create(item); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}

	// 配方：面粉占100%
	if err := repos.Recipe.CreateAndRecalc(&entity.RecipeItem{
		ID: uuid.New().String(), ParentItemID: wip.ID, ComponentItemID: flour.ID,
		QuantityKG: 100, IsActive: true,
	}); err != nil {
		t.Fatalf("seed recipe: %v", err)
	}

	// 生产计划：周一50kg 周三30kg
	sched := &entity.ProductionSchedule{
		ID: uuid.New().String(), ItemID: wip.ID, ItemCode: wip.Code, WeekCommencing: week,
	}
	sched.SetQuantity(entity.Monday, 50)
	sched.SetQuantity(entity.Wednesday, 30)
	if err := repos.Schedule.CreateProduction(sched); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	// 盘点：开盘120kg
	if err := repos.Stocktake.Upsert(&entity.StocktakeSnapshot{
		ID: uuid.New().String(), ItemID: flour.ID, ItemCode: flour.Code,
		WeekCommencing: week, StockLevelKG: 120,
	}); err != nil {
		t.Fatalf("seed stocktake: %v", err)
	}

	// 周中任意日期应归一到同一周
	preview, _, err := svc.UsageForWeek(week.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("UsageForWeek: %v", err)
	}
	if len(preview) != 1 {
		t.Fatalf("mid-week preview rows = %d, want 1", len(preview))
	}
	if math.Abs(preview[0].TotalRequired-80) > 1e-6 {
		t.Fatalf("mid-week preview total = %v, want 80", preview[0].TotalRequired)
	}

	run, err := svc.RunWeek(week, "tester")
	if err != nil {
		t.Fatalf("RunWeek: %v", err)
	}
	if run.Status != entity.RollupStatusCompleted {
		t.Fatalf("run status = %s, want COMPLETED", run.Status)
	}
	if run.ItemsProcessed != 1 || run.ItemsFailed != 0 {
		t.Fatalf("run counts = %d/%d, want 1/0", run.ItemsProcessed, run.ItemsFailed)
	}

	// 用量报表
	reports, err := repos.Usage.ListByWeek(week)
	if err != nil {
		t.Fatalf("ListByWeek: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 usage report, got %d", len(reports))
	}
	if math.Abs(reports[0].TotalRequired-80) > 1e-6 {
		t.Fatalf("total required = %v, want 80", reports[0].TotalRequired)
	}

	// 日度结余
	balance, err := repos.Inventory.GetByItemAndWeek(flour.ID, week)
	if err != nil {
		t.Fatalf("GetByItemAndWeek: %v", err)
	}
	if balance.StartingStock != 120 {
		t.Fatalf("starting stock = %v, want 120", balance.StartingStock)
	}
	if len(balance.Days) != entity.DaysPerWeek {
		t.Fatalf("expected 7 day rows, got %d", len(balance.Days))
	}
	if math.Abs(balance.Days[entity.Monday].RequiredQty-50) > 1e-6 {
		t.Fatalf("monday required = %v, want 50", balance.Days[entity.Monday].RequiredQty)
	}
	for i := 1; i < entity.DaysPerWeek; i++ {
		if balance.Days[i].OpeningStock != balance.Days[i-1].ClosingStock {
			t.Fatalf("day %d opening != prior closing", i)
		}
	}
	if math.Abs(balance.RequiredForPlan-80) > 1e-6 {
		t.Fatalf("required_for_plan = %v, want 80", balance.RequiredForPlan)
	}
	if math.Abs(balance.VarianceForWeek-40) > 1e-6 {
		t.Fatalf("variance_for_week = %v, want 40", balance.VarianceForWeek)
	}
	if math.Abs(balance.ValueRequired-160) > 1e-6 {
		t.Fatalf("value_required = %v, want 160", balance.ValueRequired)
	}

	// 编辑周二收货，整周重算，用户录入不被重跑清掉
	received := 25.0
	if _, err := svc.UpdateDay(balance.ID, entity.Tuesday, UpdateDayRequest{
		OrderedReceivedQty: &received,
	}); err != nil {
		t.Fatalf("UpdateDay: %v", err)
	}

	rerun, err := svc.RunWeek(week, "tester")
	if err != nil {
		t.Fatalf("RunWeek rerun: %v", err)
	}
	if rerun.RunCode == run.RunCode {
		t.Fatalf("run code must be unique per run, got %s twice", rerun.RunCode)
	}
	balance, err = repos.Inventory.GetByItemAndWeek(flour.ID, week)
	if err != nil {
		t.Fatalf("GetByItemAndWeek after rerun: %v", err)
	}
	if math.Abs(balance.Days[entity.Tuesday].OrderedReceivedQty-25) > 1e-6 {
		t.Fatalf("received qty lost on rerun: %v", balance.Days[entity.Tuesday].OrderedReceivedQty)
	}
	if math.Abs(balance.Days[entity.Tuesday].ClosingStock-145) > 1e-6 {
		t.Fatalf("tuesday closing = %v, want 145", balance.Days[entity.Tuesday].ClosingStock)
	}

	// 重跑不翻倍
	reports, _ = repos.Usage.ListByWeek(week)
	if len(reports) != 1 {
		t.Fatalf("usage rows duplicated on rerun: %d", len(reports))
	}
	balances, err := repos.Inventory.ListByWeek(week)
	if err != nil {
		t.Fatalf("ListByWeek balances: %v", err)
	}
	if len(balances) != 1 {
		t.Fatalf("balance rows duplicated on rerun: %d", len(balances))
	}
}

// TestRollupRerunDropsRemovedMaterial 计划删除后重跑，旧结余需求清零不残留
func TestRollupRerunDropsRemovedMaterial(t *testing.T) {
	repos, svc := setupRollupTest(t)
	week := entity.WeekCommencing(time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC))

	flour := &entity.Item{ID: uuid.New().String(), Code: "1010", Name: "面粉",
		ItemType: entity.ItemTypeRM, UnitPrice: 2, IsActive: true}
	sugar := &entity.Item{ID: uuid.New().String(), Code: "1011", Name: "糖",
		ItemType: entity.ItemTypeRM, UnitPrice: 1.5, IsActive: true}
	wipA := &entity.Item{ID: uuid.New().String(), Code: "2010", Name: "酱料A",
		ItemType: entity.ItemTypeWIP, IsActive: true}
	wipB := &entity.Item{ID: uuid.New().String(), Code: "2011", Name: "糖浆",
		ItemType: entity.ItemTypeWIP, IsActive: true}
	for _, item := range []*entity.Item{flour, sugar, wipA, wipB} {
		if err := repos.Item.Create(item); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}
	for _, row := range []*entity.RecipeItem{
		{ID: uuid.New().String(), ParentItemID: wipA.ID, ComponentItemID: flour.ID, QuantityKG: 100, IsActive: true},
		{ID: uuid.New().String(), ParentItemID: wipB.ID, ComponentItemID: sugar.ID, QuantityKG: 50, IsActive: true},
	} {
		if err := repos.Recipe.CreateAndRecalc(row); err != nil {
			t.Fatalf("seed recipe: %v", err)
		}
	}

	schedA := &entity.ProductionSchedule{
		ID: uuid.New().String(), ItemID: wipA.ID, ItemCode: wipA.Code, WeekCommencing: week,
	}
	schedA.SetQuantity(entity.Monday, 40)
	schedB := &entity.ProductionSchedule{
		ID: uuid.New().String(), ItemID: wipB.ID, ItemCode: wipB.Code, WeekCommencing: week,
	}
	schedB.SetQuantity(entity.Monday, 20)
	for _, sched := range []*entity.ProductionSchedule{schedA, schedB} {
		if err := repos.Schedule.CreateProduction(sched); err != nil {
			t.Fatalf("seed schedule: %v", err)
		}
	}

	if _, err := svc.RunWeek(week, "tester"); err != nil {
		t.Fatalf("RunWeek: %v", err)
	}
	balances, err := repos.Inventory.ListByWeek(week)
	if err != nil {
		t.Fatalf("ListByWeek: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(balances))
	}

	// 糖的结余录入一笔收货
	sugarBal, err := repos.Inventory.GetByItemAndWeek(sugar.ID, week)
	if err != nil {
		t.Fatalf("GetByItemAndWeek: %v", err)
	}
	received := 5.0
	if _, err := svc.UpdateDay(sugarBal.ID, entity.Monday, UpdateDayRequest{
		OrderedReceivedQty: &received,
	}); err != nil {
		t.Fatalf("UpdateDay: %v", err)
	}

	// 删除糖浆计划后重跑：糖的旧需求不得残留
	if err := repos.Schedule.DeleteProduction(schedB.ID); err != nil {
		t.Fatalf("DeleteProduction: %v", err)
	}
	run, err := svc.RunWeek(week, "tester")
	if err != nil {
		t.Fatalf("RunWeek rerun: %v", err)
	}
	if run.Status != entity.RollupStatusCompleted {
		t.Fatalf("run status = %s, want COMPLETED", run.Status)
	}

	sugarBal, err = repos.Inventory.GetByItemAndWeek(sugar.ID, week)
	if err != nil {
		t.Fatalf("GetByItemAndWeek after rerun: %v", err)
	}
	if math.Abs(sugarBal.RequiredForPlan) > 1e-6 {
		t.Fatalf("removed material required_for_plan = %v, want 0", sugarBal.RequiredForPlan)
	}
	for _, day := range sugarBal.Days {
		if math.Abs(day.RequiredQty) > 1e-6 {
			t.Fatalf("day %d required = %v, want 0 after plan removal", day.DayIndex, day.RequiredQty)
		}
	}
	if math.Abs(sugarBal.Days[entity.Monday].OrderedReceivedQty-5) > 1e-6 {
		t.Fatalf("received qty lost on rerun: %v", sugarBal.Days[entity.Monday].OrderedReceivedQty)
	}
	if math.Abs(sugarBal.VarianceForWeek-sugarBal.StartingStock) > 1e-6 {
		t.Fatalf("variance_for_week = %v, want starting stock %v",
			sugarBal.VarianceForWeek, sugarBal.StartingStock)
	}

	// 保留的物料不受影响
	flourBal, err := repos.Inventory.GetByItemAndWeek(flour.ID, week)
	if err != nil {
		t.Fatalf("GetByItemAndWeek flour: %v", err)
	}
	if math.Abs(flourBal.RequiredForPlan-40) > 1e-6 {
		t.Fatalf("flour required_for_plan = %v, want 40", flourBal.RequiredForPlan)
	}
}

// TestRollupMissingStocktake 盘点缺失按0开盘，不拖垮整批
func TestRollupMissingStocktake(t *testing.T) {
	repos, svc := setupRollupTest(t)
	week := entity.WeekCommencing(time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC))

	rm := &entity.Item{ID: uuid.New().String(), Code: "1005", Name: "糖",
		ItemType: entity.ItemTypeRM, UnitPrice: 1.2, IsActive: true}
	wip := &entity.Item{ID: uuid.New().String(), Code: "2005", Name: "糖浆",
		ItemType: entity.ItemTypeWIP, IsActive: true}
	for _, item := range []*entity.Item{rm, wip} {
		if err := repos.Item.Create(item); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}
	if err := repos.Recipe.CreateAndRecalc(&entity.RecipeItem{
		ID: uuid.New().String(), ParentItemID: wip.ID, ComponentItemID: rm.ID,
		QuantityKG: 10, IsActive: true,
	}); err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
	sched := &entity.ProductionSchedule{
		ID: uuid.New().String(), ItemID: wip.ID, ItemCode: wip.Code, WeekCommencing: week,
	}
	sched.SetQuantity(entity.Monday, 10)
	if err := repos.Schedule.CreateProduction(sched); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}

	run, err := svc.RunWeek(week, "tester")
	if err != nil {
		t.Fatalf("RunWeek: %v", err)
	}
	if run.Status != entity.RollupStatusCompleted || run.ItemsProcessed != 1 {
		t.Fatalf("run = %s %d/%d, want COMPLETED 1 processed",
			run.Status, run.ItemsProcessed, run.ItemsFailed)
	}

	balance, err := repos.Inventory.GetByItemAndWeek(rm.ID, week)
	if err != nil {
		t.Fatalf("GetByItemAndWeek: %v", err)
	}
	if balance.StartingStock != 0 {
		t.Fatalf("starting stock = %v, want 0 when stocktake missing", balance.StartingStock)
	}
	if math.Abs(balance.VarianceForWeek-(-10)) > 1e-6 {
		t.Fatalf("variance_for_week = %v, want -10", balance.VarianceForWeek)
	}
}
