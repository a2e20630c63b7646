package service

import (
	"fmt"
	"math"
	"time"

	"github.com/harborfoods/foodplan/internal/entity"
	"github.com/harborfoods/foodplan/internal/repository"
)

// Issue类型
const (
	IssueParentNotAggregated    = "ParentNotAggregated"
	IssueChildNotAggregated     = "ChildNotAggregated"
	IssueTotalMismatch          = "TotalMismatch"
	IssueMissingComponentLink   = "MissingComponentLink"
	IssueIncorrectComponentLink = "IncorrectComponentLink"
)

// totalTolerance 生产/灌装周合计比对的绝对容差
const totalTolerance = 0.01

// Issue 校验发现的问题，只读告知，从不阻塞写入
type Issue struct {
	Kind     string   `json:"kind"`
	ItemCode string   `json:"item_code,omitempty"`
	Message  string   `json:"message"`
	RowIDs   []string `json:"row_ids,omitempty"`
}

// ValidationReport 校验结果：问题列表 + 诊断信息。
// 参照数据缺失不报错，只出诊断。
type ValidationReport struct {
	WeekCommencing time.Time `json:"week_commencing"`
	Issues         []Issue   `json:"issues"`
	Diagnostics    []string  `json:"diagnostics,omitempty"`
}

// ValidationService 一致性校验，汇总前后运行以发现漂移，绝不修改数据
type ValidationService struct {
	itemRepo     *repository.ItemRepository
	scheduleRepo *repository.ScheduleRepository
}

func NewValidationService(itemRepo *repository.ItemRepository, scheduleRepo *repository.ScheduleRepository) *ValidationService {
	return &ValidationService{itemRepo: itemRepo, scheduleRepo: scheduleRepo}
}

// Run 执行一周的全部一致性检查
func (s *ValidationService) Run(week time.Time) (*ValidationReport, error) {
	week = entity.WeekCommencing(week)
	report := &ValidationReport{WeekCommencing: week, Issues: []Issue{}}

	production, err := s.scheduleRepo.ListProductionByWeek(week)
	if err != nil {
		return nil, fmt.Errorf("读取生产计划失败: %w", err)
	}
	filling, err := s.scheduleRepo.ListFillingByWeek(week)
	if err != nil {
		return nil, fmt.Errorf("读取灌装计划失败: %w", err)
	}
	items, err := s.itemRepo.MapByID()
	if err != nil {
		return nil, fmt.Errorf("读取物料失败: %w", err)
	}

	report.Issues = append(report.Issues, checkProductionAggregation(production)...)
	report.Issues = append(report.Issues, checkFillingAggregation(filling)...)
	report.Issues = append(report.Issues, checkTotals(production, filling)...)

	if len(items) == 0 {
		report.Diagnostics = append(report.Diagnostics, "item master is empty, component link checks skipped")
	} else {
		report.Issues = append(report.Issues, checkComponentLinks(items)...)
	}
	if len(production) == 0 {
		report.Diagnostics = append(report.Diagnostics, "no production schedules for week")
	}
	return report, nil
}

// checkProductionAggregation 同一物料code在一周内出现多条生产计划行，
// 本应聚合为一条，报ParentNotAggregated并点名全部行id
func checkProductionAggregation(schedules []entity.ProductionSchedule) []Issue {
	byCode := make(map[string][]string)
	order := []string{}
	for _, s := range schedules {
		if _, ok := byCode[s.ItemCode]; !ok {
			order = append(order, s.ItemCode)
		}
		byCode[s.ItemCode] = append(byCode[s.ItemCode], s.ID)
	}
	var issues []Issue
	for _, code := range order {
		ids := byCode[code]
		if len(ids) > 1 {
			issues = append(issues, Issue{
				Kind:     IssueParentNotAggregated,
				ItemCode: code,
				Message:  fmt.Sprintf("item %s has %d production rows for the week, expected one aggregated row", code, len(ids)),
				RowIDs:   ids,
			})
		}
	}
	return issues
}

// checkFillingAggregation 灌装段同理，按(code, week)聚合
func checkFillingAggregation(schedules []entity.FillingSchedule) []Issue {
	byCode := make(map[string][]string)
	order := []string{}
	for _, s := range schedules {
		if _, ok := byCode[s.ItemCode]; !ok {
			order = append(order, s.ItemCode)
		}
		byCode[s.ItemCode] = append(byCode[s.ItemCode], s.ID)
	}
	var issues []Issue
	for _, code := range order {
		ids := byCode[code]
		if len(ids) > 1 {
			issues = append(issues, Issue{
				Kind:     IssueChildNotAggregated,
				ItemCode: code,
				Message:  fmt.Sprintf("item %s has %d filling rows for the week, expected one aggregated row", code, len(ids)),
				RowIDs:   ids,
			})
		}
	}
	return issues
}

// checkTotals 周生产合计与灌装合计超过容差即报TotalMismatch
func checkTotals(production []entity.ProductionSchedule, filling []entity.FillingSchedule) []Issue {
	var prodTotal, fillTotal float64
	for _, s := range production {
		prodTotal += s.Total()
	}
	for _, s := range filling {
		fillTotal += s.Total()
	}
	if len(production) == 0 && len(filling) == 0 {
		return nil
	}
	if math.Abs(prodTotal-fillTotal) > totalTolerance {
		return []Issue{{
			Kind:    IssueTotalMismatch,
			Message: fmt.Sprintf("production total %.4f != filling total %.4f", prodTotal, fillTotal),
		}}
	}
	return nil
}

// checkComponentLinks 成品必须挂WIP引用；引用类型不对或code不在同族前缀下
// 报IncorrectComponentLink。WIPF引用可选，挂了就同样校验。
func checkComponentLinks(items map[string]entity.Item) []Issue {
	var issues []Issue
	for _, item := range items {
		if item.ItemType != entity.ItemTypeFG || !item.IsActive {
			continue
		}
		prefix := digitPrefix(item.Code)

		if item.WIPItemID == "" {
			issues = append(issues, Issue{
				Kind:     IssueMissingComponentLink,
				ItemCode: item.Code,
				Message:  fmt.Sprintf("finished good %s has no WIP component reference", item.Code),
			})
		} else {
			issues = append(issues, checkLink(items, item, item.WIPItemID, entity.ItemTypeWIP, prefix)...)
		}

		if item.WIPFItemID != "" {
			issues = append(issues, checkLink(items, item, item.WIPFItemID, entity.ItemTypeWIPF, prefix)...)
		}
	}
	return issues
}

func checkLink(items map[string]entity.Item, fg entity.Item, linkID, wantType, prefix string) []Issue {
	linked, ok := items[linkID]
	if !ok {
		return []Issue{{
			Kind:     IssueIncorrectComponentLink,
			ItemCode: fg.Code,
			Message:  fmt.Sprintf("finished good %s references missing item %s", fg.Code, linkID),
		}}
	}
	if linked.ItemType != wantType {
		return []Issue{{
			Kind:     IssueIncorrectComponentLink,
			ItemCode: fg.Code,
			Message:  fmt.Sprintf("finished good %s references %s which is %s, expected %s", fg.Code, linked.Code, linked.ItemType, wantType),
		}}
	}
	if prefix != "" && !hasPrefix(linked.Code, prefix) {
		return []Issue{{
			Kind:     IssueIncorrectComponentLink,
			ItemCode: fg.Code,
			Message:  fmt.Sprintf("finished good %s references %s outside code family %s", fg.Code, linked.Code, prefix),
		}}
	}
	return nil
}

// digitPrefix code起始的连续数字段即同族前缀
func digitPrefix(code string) string {
	end := 0
	for end < len(code) && code[end] >= '0' && code[end] <= '9' {
		end++
	}
	return code[:end]
}

func hasPrefix(code, prefix string) bool {
	return len(code) >= len(prefix) && code[:len(prefix)] == prefix
}
