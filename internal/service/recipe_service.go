package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harborfoods/foodplan/internal/entity"
	"github.com/harborfoods/foodplan/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ErrInvalidItemType 对不允许的物料类型请求了配方操作
var ErrInvalidItemType = errors.New("item type does not allow a recipe")

// RecipeService 配方服务（BOM解析）
type RecipeService struct {
	recipeRepo *repository.RecipeRepository
	itemRepo   *repository.ItemRepository
}

func NewRecipeService(recipeRepo *repository.RecipeRepository, itemRepo *repository.ItemRepository) *RecipeService {
	return &RecipeService{recipeRepo: recipeRepo, itemRepo: itemRepo}
}

// ResolvedComponent 解析后的配方组件，百分比每次读取时重算
type ResolvedComponent struct {
	Item       entity.Item `json:"item"`
	QuantityKG float64     `json:"quantity_kg"`
	Percentage float64     `json:"percentage"`
}

// resolveComponents 纯计算：percentage = quantity / Σ(quantity) × 100。
// 总量为0时全部百分比定义为0，不报错。
func resolveComponents(parent entity.Item, rows []entity.RecipeItem) ([]ResolvedComponent, error) {
	if !parent.HasRecipe() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrInvalidItemType, parent.Code, parent.ItemType)
	}
	total := totalWeight(rows)
	components := make([]ResolvedComponent, 0, len(rows))
	for _, row := range rows {
		pct := 0.0
		if total > 0 {
			pct = row.QuantityKG / total * 100
		}
		var item entity.Item
		if row.ComponentItem != nil {
			item = *row.ComponentItem
		}
		components = append(components, ResolvedComponent{
			Item:       item,
			QuantityKG: row.QuantityKG,
			Percentage: pct,
		})
	}
	return components, nil
}

func totalWeight(rows []entity.RecipeItem) float64 {
	var total float64
	for _, row := range rows {
		total += row.QuantityKG
	}
	return total
}

// ComponentsFor 按parent解析配方组件，parent必须是WIP/WIPF
func (s *RecipeService) ComponentsFor(parentID string) ([]ResolvedComponent, error) {
	parent, err := s.itemRepo.GetByID(parentID)
	if err != nil {
		return nil, fmt.Errorf("物料不存在: %w", err)
	}
	rows, err := s.recipeRepo.ListByParent(parentID)
	if err != nil {
		return nil, fmt.Errorf("读取配方失败: %w", err)
	}
	return resolveComponents(*parent, rows)
}

// TotalWeightFor 配方总重量（kg），无组件时为0
func (s *RecipeService) TotalWeightFor(parentID string) (float64, error) {
	rows, err := s.recipeRepo.ListByParent(parentID)
	if err != nil {
		return 0, fmt.Errorf("读取配方失败: %w", err)
	}
	return totalWeight(rows), nil
}

type AddRecipeItemRequest struct {
	ComponentItemID string  `json:"component_item_id" binding:"required"`
	QuantityKG      float64 `json:"quantity_kg" binding:"required,gt=0"`
	Sequence        int     `json:"sequence"`
}

// AddItem 新增配方行项，百分比在同一事务里重算
func (s *RecipeService) AddItem(parentID, userID string, req AddRecipeItemRequest) (*entity.RecipeItem, error) {
	parent, err := s.itemRepo.GetByID(parentID)
	if err != nil {
		return nil, fmt.Errorf("物料不存在: %w", err)
	}
	if !parent.HasRecipe() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrInvalidItemType, parent.Code, parent.ItemType)
	}
	if _, err := s.itemRepo.GetByID(req.ComponentItemID); err != nil {
		return nil, fmt.Errorf("组件物料不存在: %w", err)
	}

	row := &entity.RecipeItem{
		ID:              uuid.New().String(),
		ParentItemID:    parentID,
		ComponentItemID: req.ComponentItemID,
		QuantityKG:      req.QuantityKG,
		Sequence:        req.Sequence,
		IsActive:        true,
		CreatedBy:       userID,
	}
	if err := s.recipeRepo.CreateAndRecalc(row); err != nil {
		return nil, fmt.Errorf("新增配方行失败: %w", err)
	}
	return row, nil
}

type UpdateRecipeItemRequest struct {
	QuantityKG float64 `json:"quantity_kg" binding:"required,gt=0"`
	Sequence   *int    `json:"sequence"`
}

// UpdateItem 修改数量后必须重算同parent全部行项的百分比
func (s *RecipeService) UpdateItem(id string, req UpdateRecipeItemRequest) (*entity.RecipeItem, error) {
	row, err := s.recipeRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("配方行不存在: %w", err)
	}
	row.QuantityKG = req.QuantityKG
	if req.Sequence != nil {
		row.Sequence = *req.Sequence
	}
	if err := s.recipeRepo.UpdateAndRecalc(row); err != nil {
		return nil, fmt.Errorf("更新配方行失败: %w", err)
	}
	return row, nil
}

func (s *RecipeService) DeleteItem(id string) error {
	row, err := s.recipeRepo.GetByID(id)
	if err != nil {
		return fmt.Errorf("配方行不存在: %w", err)
	}
	if err := s.recipeRepo.DeleteAndRecalc(id, row.ParentItemID); err != nil {
		return fmt.Errorf("删除配方行失败: %w", err)
	}
	return nil
}

// ImportResult Excel导入结果
type ImportResult struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportExcel 从Excel批量导入配方行。首行为表头，列：组件code、数量(kg)。
// 按行累计成功/失败，最后统一重算一次百分比。
func (s *RecipeService) ImportExcel(parentID, userID string, f *excelize.File) (*ImportResult, error) {
	parent, err := s.itemRepo.GetByID(parentID)
	if err != nil {
		return nil, fmt.Errorf("物料不存在: %w", err)
	}
	if !parent.HasRecipe() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrInvalidItemType, parent.Code, parent.ItemType)
	}

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	result := &ImportResult{}
	var toCreate []entity.RecipeItem
	for i, cols := range rows {
		if i == 0 { // 表头
			continue
		}
		if len(cols) < 2 || strings.TrimSpace(cols[0]) == "" {
			continue
		}
		code := strings.TrimSpace(cols[0])
		qty, err := strconv.ParseFloat(strings.TrimSpace(cols[1]), 64)
		if err != nil || qty <= 0 {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 数量无效", i+1))
			continue
		}
		component, err := s.itemRepo.GetByCode(code)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 组件%s不存在", i+1, code))
			continue
		}
		toCreate = append(toCreate, entity.RecipeItem{
			ID:              uuid.New().String(),
			ParentItemID:    parentID,
			ComponentItemID: component.ID,
			QuantityKG:      qty,
			Sequence:        i,
			IsActive:        true,
			CreatedBy:       userID,
			CreatedAt:       time.Now(),
		})
	}

	if err := s.recipeRepo.BatchCreateAndRecalc(parentID, toCreate); err != nil {
		return nil, fmt.Errorf("导入配方失败: %w", err)
	}
	result.Imported = len(toCreate)
	return result, nil
}
