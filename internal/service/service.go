package service

import (
	"github.com/harborfoods/foodplan/internal/config"
	"github.com/harborfoods/foodplan/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Auth       *AuthService
	Item       *ItemService
	Recipe     *RecipeService
	Schedule   *ScheduleService
	Stocktake  *StocktakeService
	Rollup     *RollupService
	Validation *ValidationService
	Report     *ReportService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, logger *zap.Logger, cfg *config.Config) *Services {
	return &Services{
		Auth:       NewAuthService(repos.User, rdb, cfg),
		Item:       NewItemService(repos.Item, rdb),
		Recipe:     NewRecipeService(repos.Recipe, repos.Item),
		Schedule:   NewScheduleService(repos.Schedule, repos.Item),
		Stocktake:  NewStocktakeService(repos.Stocktake, repos.Item),
		Rollup: NewRollupService(
			repos.Item, repos.Recipe, repos.Schedule,
			repos.Stocktake, repos.Inventory, repos.Usage, repos.Rollup,
			logger,
		),
		Validation: NewValidationService(repos.Item, repos.Schedule),
		Report:     NewReportService(repos.Inventory, repos.Usage),
	}
}
