package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/harborfoods/foodplan/internal/entity"
	"github.com/harborfoods/foodplan/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ReportService 周库存报表Excel导出
type ReportService struct {
	inventoryRepo *repository.InventoryRepository
	usageRepo     *repository.UsageRepository
}

func NewReportService(inventoryRepo *repository.InventoryRepository, usageRepo *repository.UsageRepository) *ReportService {
	return &ReportService{inventoryRepo: inventoryRepo, usageRepo: usageRepo}
}

// WeekReport 生成一周的库存结余工作簿：每个原材料一行，
// 七天的需求/开盘/收盘逐列展开，末尾带周汇总列。
func (s *ReportService) WeekReport(week time.Time) (*excelize.File, string, error) {
	week = entity.WeekCommencing(week)
	balances, err := s.inventoryRepo.ListByWeek(week)
	if err != nil {
		return nil, "", fmt.Errorf("读取结余失败: %w", err)
	}
	usage, err := s.usageRepo.ListByWeek(week)
	if err != nil {
		return nil, "", fmt.Errorf("读取用量报表失败: %w", err)
	}
	codesByItem := make(map[string][]string, len(usage))
	for _, u := range usage {
		codesByItem[u.ItemID] = u.RecipeCodes
	}

	f := excelize.NewFile()
	sheet := "Inventory"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []interface{}{"Code", "Item", "Starting Stock", "Price/kg"}
	for _, day := range entity.DayNames {
		headers = append(headers,
			day+" required", day+" opening", day+" variance",
			day+" received", day+" consumed", day+" closing")
	}
	headers = append(headers, "Required For Plan", "Variance For Week", "Value Required", "Recipes")
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, "", fmt.Errorf("写表头失败: %w", err)
	}

	for i, b := range balances {
		row := []interface{}{b.ItemCode, b.ItemName, b.StartingStock, b.PricePerKG}
		for d := 0; d < entity.DaysPerWeek; d++ {
			var day entity.InventoryBalanceDay
			for _, candidate := range b.Days {
				if candidate.DayIndex == d {
					day = candidate
					break
				}
			}
			row = append(row,
				day.RequiredQty, day.OpeningStock, day.Variance,
				day.OrderedReceivedQty, day.ConsumedQty, day.ClosingStock)
		}
		row = append(row, b.RequiredForPlan, b.VarianceForWeek, b.ValueRequired,
			strings.Join(codesByItem[b.ItemID], ", "))
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", fmt.Errorf("写第%d行失败: %w", i+2, err)
		}
	}

	filename := fmt.Sprintf("inventory_%s.xlsx", week.Format("2006-01-02"))
	return f, filename, nil
}
