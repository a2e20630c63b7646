package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/harborfoods/foodplan/internal/entity"
	"github.com/harborfoods/foodplan/internal/repository"
	"go.uber.org/zap"
)

// RollupService 周库存汇总引擎：用量汇总 → 日度结余级联 → 落库。
// 每次运行都从数据库重读全部源数据，从头计算，不做增量。
type RollupService struct {
	itemRepo      *repository.ItemRepository
	recipeRepo    *repository.RecipeRepository
	scheduleRepo  *repository.ScheduleRepository
	stocktakeRepo *repository.StocktakeRepository
	inventoryRepo *repository.InventoryRepository
	usageRepo     *repository.UsageRepository
	rollupRepo    *repository.RollupRepository
	logger        *zap.Logger
}

func NewRollupService(
	itemRepo *repository.ItemRepository,
	recipeRepo *repository.RecipeRepository,
	scheduleRepo *repository.ScheduleRepository,
	stocktakeRepo *repository.StocktakeRepository,
	inventoryRepo *repository.InventoryRepository,
	usageRepo *repository.UsageRepository,
	rollupRepo *repository.RollupRepository,
	logger *zap.Logger,
) *RollupService {
	return &RollupService{
		itemRepo:      itemRepo,
		recipeRepo:    recipeRepo,
		scheduleRepo:  scheduleRepo,
		stocktakeRepo: stocktakeRepo,
		inventoryRepo: inventoryRepo,
		usageRepo:     usageRepo,
		rollupRepo:    rollupRepo,
		logger:        logger,
	}
}

// ItemUsage 单个原材料的周用量累计
type ItemUsage struct {
	Item        entity.Item
	Daily       [entity.DaysPerWeek]float64
	RecipeCodes []string
}

// calculateUsage 核心用量汇总：把每条生产计划的按天计划量按配方比例
// 摊到原材料上，跨计划同原材料累加。配方总重为0的计划跳过并记诊断。
func calculateUsage(
	schedules []entity.ProductionSchedule,
	recipes map[string][]entity.RecipeItem,
	items map[string]entity.Item,
) (map[string]*ItemUsage, []string) {
	usage := make(map[string]*ItemUsage)
	var skipped []string

	for _, sched := range schedules {
		parent, ok := items[sched.ItemID]
		if !ok {
			skipped = append(skipped, fmt.Sprintf("schedule %s: item %s missing", sched.ID, sched.ItemCode))
			continue
		}
		if !parent.HasRecipe() {
			skipped = append(skipped, fmt.Sprintf("schedule %s: item %s is %s, no recipe", sched.ID, parent.Code, parent.ItemType))
			continue
		}
		rows := recipes[sched.ItemID]
		total := totalWeight(rows)
		if total <= 0 {
			skipped = append(skipped, fmt.Sprintf("schedule %s: recipe %s has zero total weight", sched.ID, parent.Code))
			continue
		}

		days := sched.Quantities()
		for _, row := range rows {
			component, ok := items[row.ComponentItemID]
			if !ok || !component.IsRawMaterial() {
				continue
			}
			share := row.QuantityKG / total
			acc, ok := usage[component.ID]
			if !ok {
				acc = &ItemUsage{Item: component}
				usage[component.ID] = acc
			}
			for d := 0; d < entity.DaysPerWeek; d++ {
				acc.Daily[d] += days[d] * share
			}
			if !containsCode(acc.RecipeCodes, parent.Code) {
				acc.RecipeCodes = append(acc.RecipeCodes, parent.Code)
			}
		}
	}
	return usage, skipped
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// buildUsageReports 把用量累计映射成报表行，按code排序保证输出稳定
func buildUsageReports(week time.Time, usage map[string]*ItemUsage) []entity.UsageReport {
	reports := make([]entity.UsageReport, 0, len(usage))
	for _, acc := range usage {
		report := entity.UsageReport{
			ID:             uuid.New().String(),
			ItemID:         acc.Item.ID,
			ItemCode:       acc.Item.Code,
			ItemName:       acc.Item.Name,
			WeekCommencing: week,
			RecipeCodes:    acc.RecipeCodes,
		}
		var total float64
		for d := 0; d < entity.DaysPerWeek; d++ {
			report.SetQuantity(d, acc.Daily[d])
			total += acc.Daily[d]
		}
		report.TotalRequired = total
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ItemCode < reports[j].ItemCode })
	return reports
}

// Recompute 日度结余级联：整周七天严格按周一起顺序重算。
// 是整个输入向量的纯函数，幂等；任何单日字段修改后都必须整周重跑。
//
//	opening[0] = starting_stock
//	opening[i] = closing[i-1]
//	variance[i] = opening[i] - required[i]
//	closing[i] = opening[i] + ordered_received[i] - consumed[i]
func Recompute(balance *entity.InventoryBalance) {
	sort.Slice(balance.Days, func(i, j int) bool {
		return balance.Days[i].DayIndex < balance.Days[j].DayIndex
	})

	var requiredTotal float64
	for i := range balance.Days {
		day := &balance.Days[i]
		if i == 0 {
			day.OpeningStock = balance.StartingStock
		} else {
			day.OpeningStock = balance.Days[i-1].ClosingStock
		}
		day.Variance = day.OpeningStock - day.RequiredQty
		day.ClosingStock = day.OpeningStock + day.OrderedReceivedQty - day.ConsumedQty
		requiredTotal += day.RequiredQty
	}

	balance.RequiredForPlan = requiredTotal
	balance.VarianceForWeek = balance.StartingStock - requiredTotal
	balance.ValueRequired = requiredTotal * balance.PricePerKG
}

// UsageForWeek 按周计算原材料用量（只读，不落库）
func (s *RollupService) UsageForWeek(week time.Time) ([]entity.UsageReport, []string, error) {
	week = entity.WeekCommencing(week)
	schedules, err := s.scheduleRepo.ListProductionByWeek(week)
	if err != nil {
		return nil, nil, fmt.Errorf("读取生产计划失败: %w", err)
	}
	recipes, err := s.recipeRepo.MapByParent()
	if err != nil {
		return nil, nil, fmt.Errorf("读取配方失败: %w", err)
	}
	items, err := s.itemRepo.MapByID()
	if err != nil {
		return nil, nil, fmt.Errorf("读取物料失败: %w", err)
	}
	usage, skipped := calculateUsage(schedules, recipes, items)
	return buildUsageReports(week, usage), skipped, nil
}

// RunWeek 执行一周的完整汇总。用量报表整周单事务全量替换；
// 结余按原材料逐项落库（每项一个事务），单项失败只计数不中断。
func (s *RollupService) RunWeek(week time.Time, userID string) (*entity.RollupRun, error) {
	week = entity.WeekCommencing(week)
	now := time.Now()
	id := uuid.New().String()
	run := &entity.RollupRun{
		ID:             id,
		RunCode:        fmt.Sprintf("ROLL-%s-%s", now.Format("20060102"), id[:8]),
		WeekCommencing: week,
		Status:         entity.RollupStatusRunning,
		StartedAt:      now,
		CreatedBy:      userID,
	}
	if err := s.rollupRepo.CreateRun(run); err != nil {
		return nil, fmt.Errorf("创建汇总运行记录失败: %w", err)
	}

	reports, skipped, err := s.UsageForWeek(week)
	if err != nil {
		return s.failRun(run, err)
	}
	for _, msg := range skipped {
		s.logger.Warn("rollup: schedule entry skipped", zap.String("week", week.Format("2006-01-02")), zap.String("reason", msg))
	}

	// 先删后插，整周单事务
	if err := s.usageRepo.ReplaceWeek(week, reports); err != nil {
		return s.failRun(run, fmt.Errorf("写入用量报表失败: %w", err))
	}

	processed, failed := 0, 0
	for _, report := range reports {
		if err := s.writeBalance(week, report); err != nil {
			failed++
			s.logger.Error("rollup: balance write failed",
				zap.String("item_code", report.ItemCode),
				zap.String("week", week.Format("2006-01-02")),
				zap.Error(err))
			continue
		}
		processed++
	}

	// 本轮计划中已不存在的原材料：旧结余的需求清零后重算，
	// 保留用户录入列，避免整周结果部分残留上一轮的需求
	current := make(map[string]bool, len(reports))
	for _, report := range reports {
		current[report.ItemID] = true
	}
	if existing, err := s.inventoryRepo.ListByWeek(week); err != nil {
		s.logger.Error("rollup: listing existing balances failed",
			zap.String("week", week.Format("2006-01-02")),
			zap.Error(err))
	} else {
		for i := range existing {
			balance := &existing[i]
			if current[balance.ItemID] {
				continue
			}
			for d := range balance.Days {
				balance.Days[d].RequiredQty = 0
			}
			Recompute(balance)
			if err := s.inventoryRepo.Save(balance); err != nil {
				failed++
				s.logger.Error("rollup: stale balance reset failed",
					zap.String("item_code", balance.ItemCode),
					zap.String("week", week.Format("2006-01-02")),
					zap.Error(err))
				continue
			}
			processed++
		}
	}

	completedAt := time.Now()
	run.Status = entity.RollupStatusCompleted
	run.CompletedAt = &completedAt
	run.ItemsProcessed = processed
	run.ItemsFailed = failed
	run.EntriesSkipped = len(skipped)
	if err := s.rollupRepo.UpdateRun(run); err != nil {
		return run, fmt.Errorf("更新汇总运行记录失败: %w", err)
	}
	return run, nil
}

func (s *RollupService) failRun(run *entity.RollupRun, cause error) (*entity.RollupRun, error) {
	completedAt := time.Now()
	run.Status = entity.RollupStatusFailed
	run.ErrorMessage = cause.Error()
	run.CompletedAt = &completedAt
	if err := s.rollupRepo.UpdateRun(run); err != nil {
		s.logger.Error("rollup: marking run failed did not persist",
			zap.String("run_code", run.RunCode),
			zap.Error(err))
	}
	return run, cause
}

// writeBalance 为单个原材料重建一周的结余并整周覆盖落库。
// 盘点或价格缺失按0处理并告警，不让单个缺数据项拖垮整批。
func (s *RollupService) writeBalance(week time.Time, report entity.UsageReport) error {
	startingStock := 0.0
	if snapshot, err := s.stocktakeRepo.GetByItemAndWeek(report.ItemID, week); err == nil {
		startingStock = snapshot.StockLevelKG
	} else {
		s.logger.Warn("rollup: stocktake missing, starting stock defaults to 0",
			zap.String("item_code", report.ItemCode),
			zap.String("week", week.Format("2006-01-02")))
	}

	price := 0.0
	if item, err := s.itemRepo.GetByID(report.ItemID); err == nil {
		price = item.UnitPrice
	} else {
		s.logger.Warn("rollup: item price missing, defaults to 0",
			zap.String("item_code", report.ItemCode))
	}

	balance := &entity.InventoryBalance{
		ID:             uuid.New().String(),
		ItemID:         report.ItemID,
		ItemCode:       report.ItemCode,
		ItemName:       report.ItemName,
		WeekCommencing: week,
		StartingStock:  startingStock,
		PricePerKG:     price,
	}

	required := report.Quantities()
	for d := 0; d < entity.DaysPerWeek; d++ {
		balance.Days = append(balance.Days, entity.InventoryBalanceDay{
			ID:          uuid.New().String(),
			BalanceID:   balance.ID,
			DayIndex:    d,
			RequiredQty: required[d],
		})
	}

	// 保留已有结余里的用户录入列（待订/已收/已耗）
	if existing, err := s.inventoryRepo.GetByItemAndWeek(report.ItemID, week); err == nil {
		for _, oldDay := range existing.Days {
			if oldDay.DayIndex < 0 || oldDay.DayIndex >= entity.DaysPerWeek {
				continue
			}
			day := &balance.Days[oldDay.DayIndex]
			day.ToOrderQty = oldDay.ToOrderQty
			day.OrderedReceivedQty = oldDay.OrderedReceivedQty
			day.ConsumedQty = oldDay.ConsumedQty
		}
	}

	Recompute(balance)
	return s.inventoryRepo.ReplaceForItemWeek(balance)
}

// UpdateDayRequest 日度用户字段编辑
type UpdateDayRequest struct {
	ToOrderQty         *float64 `json:"to_order_qty"`
	OrderedReceivedQty *float64 `json:"ordered_received_qty"`
	ConsumedQty        *float64 `json:"consumed_qty"`
}

// UpdateDay 编辑某一天的用户录入列后整周重算再落库
func (s *RollupService) UpdateDay(balanceID string, dayIndex int, req UpdateDayRequest) (*entity.InventoryBalance, error) {
	if dayIndex < 0 || dayIndex >= entity.DaysPerWeek {
		return nil, fmt.Errorf("天索引越界: %d", dayIndex)
	}
	balance, err := s.inventoryRepo.GetByID(balanceID)
	if err != nil {
		return nil, fmt.Errorf("结余记录不存在: %w", err)
	}

	found := false
	for i := range balance.Days {
		day := &balance.Days[i]
		if day.DayIndex != dayIndex {
			continue
		}
		if req.ToOrderQty != nil {
			day.ToOrderQty = *req.ToOrderQty
		}
		if req.OrderedReceivedQty != nil {
			day.OrderedReceivedQty = *req.OrderedReceivedQty
		}
		if req.ConsumedQty != nil {
			day.ConsumedQty = *req.ConsumedQty
		}
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("结余缺少第%d天的行", dayIndex)
	}

	Recompute(balance)
	if err := s.inventoryRepo.Save(balance); err != nil {
		return nil, fmt.Errorf("保存结余失败: %w", err)
	}
	return balance, nil
}

// ListBalances 按周读取结余
func (s *RollupService) ListBalances(week time.Time) ([]entity.InventoryBalance, error) {
	return s.inventoryRepo.ListByWeek(entity.WeekCommencing(week))
}

// ListUsage 按周读取已落库的用量报表
func (s *RollupService) ListUsage(week time.Time) ([]entity.UsageReport, error) {
	return s.usageRepo.ListByWeek(entity.WeekCommencing(week))
}

// ListRuns 汇总运行记录
func (s *RollupService) ListRuns(page, size int) ([]entity.RollupRun, int64, error) {
	return s.rollupRepo.ListRuns(page, size)
}
