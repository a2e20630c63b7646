package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborfoods/foodplan/internal/entity"
	"github.com/harborfoods/foodplan/internal/repository"
)

// ScheduleService 生产/灌装计划服务。
// 计划变更不自动级联，下游汇总需显式重跑RollupService.RunWeek。
type ScheduleService struct {
	repo     *repository.ScheduleRepository
	itemRepo *repository.ItemRepository
}

func NewScheduleService(repo *repository.ScheduleRepository, itemRepo *repository.ItemRepository) *ScheduleService {
	return &ScheduleService{repo: repo, itemRepo: itemRepo}
}

type ScheduleRequest struct {
	ItemID         string
	WeekCommencing time.Time
	Quantities     [7]float64 // Monday..Sunday
}

func (s *ScheduleService) ListProduction(week time.Time) ([]entity.ProductionSchedule, error) {
	return s.repo.ListProductionByWeek(entity.WeekCommencing(week))
}

func (s *ScheduleService) CreateProduction(req ScheduleRequest, userID string) (*entity.ProductionSchedule, error) {
	item, err := s.itemRepo.GetByID(req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("物料不存在: %w", err)
	}
	if !item.HasRecipe() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrInvalidItemType, item.Code, item.ItemType)
	}
	row := &entity.ProductionSchedule{
		ID:             uuid.New().String(),
		ItemID:         item.ID,
		ItemCode:       item.Code,
		WeekCommencing: entity.WeekCommencing(req.WeekCommencing),
		CreatedBy:      userID,
	}
	applyQuantities(&row.WeekQuantities, &row.WeekTotal, req.Quantities)
	if err := s.repo.CreateProduction(row); err != nil {
		return nil, fmt.Errorf("创建生产计划失败: %w", err)
	}
	return row, nil
}

func (s *ScheduleService) UpdateProduction(id string, quantities [7]float64) (*entity.ProductionSchedule, error) {
	row, err := s.repo.GetProduction(id)
	if err != nil {
		return nil, fmt.Errorf("生产计划不存在: %w", err)
	}
	applyQuantities(&row.WeekQuantities, &row.WeekTotal, quantities)
	if err := s.repo.UpdateProduction(row); err != nil {
		return nil, fmt.Errorf("更新生产计划失败: %w", err)
	}
	return row, nil
}

func (s *ScheduleService) DeleteProduction(id string) error {
	return s.repo.DeleteProduction(id)
}

func (s *ScheduleService) ListFilling(week time.Time) ([]entity.FillingSchedule, error) {
	return s.repo.ListFillingByWeek(entity.WeekCommencing(week))
}

func (s *ScheduleService) CreateFilling(req ScheduleRequest, userID string) (*entity.FillingSchedule, error) {
	item, err := s.itemRepo.GetByID(req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("物料不存在: %w", err)
	}
	row := &entity.FillingSchedule{
		ID:             uuid.New().String(),
		ItemID:         item.ID,
		ItemCode:       item.Code,
		WeekCommencing: entity.WeekCommencing(req.WeekCommencing),
		CreatedBy:      userID,
	}
	applyQuantities(&row.WeekQuantities, &row.WeekTotal, req.Quantities)
	if err := s.repo.CreateFilling(row); err != nil {
		return nil, fmt.Errorf("创建灌装计划失败: %w", err)
	}
	return row, nil
}

func (s *ScheduleService) UpdateFilling(id string, quantities [7]float64) (*entity.FillingSchedule, error) {
	row, err := s.repo.GetFilling(id)
	if err != nil {
		return nil, fmt.Errorf("灌装计划不存在: %w", err)
	}
	applyQuantities(&row.WeekQuantities, &row.WeekTotal, quantities)
	if err := s.repo.UpdateFilling(row); err != nil {
		return nil, fmt.Errorf("更新灌装计划失败: %w", err)
	}
	return row, nil
}

func (s *ScheduleService) DeleteFilling(id string) error {
	return s.repo.DeleteFilling(id)
}

func applyQuantities(week *entity.WeekQuantities, total *float64, quantities [7]float64) {
	for d := 0; d < entity.DaysPerWeek; d++ {
		week.SetQuantity(d, quantities[d])
	}
	*total = week.Total()
}
