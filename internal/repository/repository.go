package repository

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Repositories 仓库集合
type Repositories struct {
	User      *UserRepository
	Item      *ItemRepository
	Recipe    *RecipeRepository
	Schedule  *ScheduleRepository
	Stocktake *StocktakeRepository
	Inventory *InventoryRepository
	Usage     *UsageRepository
	Rollup    *RollupRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:      NewUserRepository(db),
		Item:      NewItemRepository(db),
		Recipe:    NewRecipeRepository(db),
		Schedule:  NewScheduleRepository(db),
		Stocktake: NewStocktakeRepository(db),
		Inventory: NewInventoryRepository(db),
		Usage:     NewUsageRepository(db),
		Rollup:    NewRollupRepository(db),
	}
}
