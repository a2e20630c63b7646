package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborfoods/foodplan/internal/entity"
	"github.com/harborfoods/foodplan/internal/repository"
	"github.com/redis/go-redis/v9"
)

const itemListCacheKey = "items:list:all"

// ItemService 物料主数据服务
type ItemService struct {
	repo *repository.ItemRepository
	rdb  *redis.Client
}

func NewItemService(repo *repository.ItemRepository, rdb *redis.Client) *ItemService {
	return &ItemService{repo: repo, rdb: rdb}
}

func (s *ItemService) Get(id string) (*entity.Item, error) {
	return s.repo.GetByID(id)
}

func (s *ItemService) List(params repository.ItemListParams) ([]entity.Item, int64, error) {
	return s.repo.List(params)
}

// ListAll 无过滤全量列表，redis缓存5分钟，写路径失效
func (s *ItemService) ListAll(ctx context.Context) ([]entity.Item, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, itemListCacheKey).Result(); err == nil {
			var items []entity.Item
			if json.Unmarshal([]byte(cached), &items) == nil {
				return items, nil
			}
		}
	}
	items, _, err := s.repo.List(repository.ItemListParams{Size: 10000})
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		if b, err := json.Marshal(items); err == nil {
			s.rdb.Set(ctx, itemListCacheKey, b, 5*time.Minute)
		}
	}
	return items, nil
}

func (s *ItemService) invalidateCache(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, itemListCacheKey)
	}
}

type CreateItemRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	ItemType    string  `json:"item_type" binding:"required"`
	UnitPrice   float64 `json:"unit_price"`
	Supplier    string  `json:"supplier"`
	WIPItemID   string  `json:"wip_item_id"`
	WIPFItemID  string  `json:"wipf_item_id"`
	Description string  `json:"description"`
}

func (s *ItemService) Create(ctx context.Context, req CreateItemRequest, userID string) (*entity.Item, error) {
	if !entity.ValidItemType(req.ItemType) {
		return nil, fmt.Errorf("非法物料类型: %s", req.ItemType)
	}
	if _, err := s.repo.GetByCode(req.Code); err == nil {
		return nil, fmt.Errorf("物料code已存在: %s", req.Code)
	}
	item := &entity.Item{
		ID:          uuid.New().String(),
		Code:        req.Code,
		Name:        req.Name,
		ItemType:    req.ItemType,
		UnitPrice:   req.UnitPrice,
		Supplier:    req.Supplier,
		WIPItemID:   req.WIPItemID,
		WIPFItemID:  req.WIPFItemID,
		Description: req.Description,
		IsActive:    true,
		CreatedBy:   userID,
	}
	if err := s.repo.Create(item); err != nil {
		return nil, fmt.Errorf("创建物料失败: %w", err)
	}
	s.invalidateCache(ctx)
	return item, nil
}

type UpdateItemRequest struct {
	Name        *string  `json:"name"`
	UnitPrice   *float64 `json:"unit_price"`
	Supplier    *string  `json:"supplier"`
	WIPItemID   *string  `json:"wip_item_id"`
	WIPFItemID  *string  `json:"wipf_item_id"`
	Description *string  `json:"description"`
	IsActive    *bool    `json:"is_active"`
}

func (s *ItemService) Update(ctx context.Context, id string, req UpdateItemRequest) (*entity.Item, error) {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("物料不存在: %w", err)
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.Supplier != nil {
		item.Supplier = *req.Supplier
	}
	if req.WIPItemID != nil {
		item.WIPItemID = *req.WIPItemID
	}
	if req.WIPFItemID != nil {
		item.WIPFItemID = *req.WIPFItemID
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if err := s.repo.Update(item); err != nil {
		return nil, fmt.Errorf("更新物料失败: %w", err)
	}
	s.invalidateCache(ctx)
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return fmt.Errorf("物料不存在: %w", err)
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("删除物料失败: %w", err)
	}
	s.invalidateCache(ctx)
	return nil
}
