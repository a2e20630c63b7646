package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborfoods/foodplan/internal/entity"
	"github.com/harborfoods/foodplan/internal/repository"
)

// StocktakeService 盘点快照服务
type StocktakeService struct {
	repo     *repository.StocktakeRepository
	itemRepo *repository.ItemRepository
}

func NewStocktakeService(repo *repository.StocktakeRepository, itemRepo *repository.ItemRepository) *StocktakeService {
	return &StocktakeService{repo: repo, itemRepo: itemRepo}
}

func (s *StocktakeService) ListWeek(week time.Time) ([]entity.StocktakeSnapshot, error) {
	return s.repo.ListByWeek(entity.WeekCommencing(week))
}

type UpsertStocktakeRequest struct {
	ItemID         string
	WeekCommencing time.Time
	StockLevelKG   float64
}

// Upsert 同(item, week)只保留最新一次实盘
func (s *StocktakeService) Upsert(req UpsertStocktakeRequest, userID string) (*entity.StocktakeSnapshot, error) {
	item, err := s.itemRepo.GetByID(req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("物料不存在: %w", err)
	}
	if !item.IsRawMaterial() {
		return nil, fmt.Errorf("%w: 盘点只针对原材料, %s是%s", ErrInvalidItemType, item.Code, item.ItemType)
	}
	row := &entity.StocktakeSnapshot{
		ID:             uuid.New().String(),
		ItemID:         item.ID,
		ItemCode:       item.Code,
		WeekCommencing: entity.WeekCommencing(req.WeekCommencing),
		StockLevelKG:   req.StockLevelKG,
		CountedBy:      userID,
	}
	if err := s.repo.Upsert(row); err != nil {
		return nil, fmt.Errorf("保存盘点失败: %w", err)
	}
	return row, nil
}
