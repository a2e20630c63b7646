package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/harborfoods/foodplan/internal/entity"
	"github.com/harborfoods/foodplan/internal/repository"
	"github.com/harborfoods/foodplan/internal/service"
	"github.com/harborfoods/foodplan/internal/testutil"
	"go.uber.org/zap"
)

func setupRollupHandlerTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewRollupService(
		repos.Item, repos.Recipe, repos.Schedule,
		repos.Stocktake, repos.Inventory, repos.Usage, repos.Rollup,
		zap.NewNop(),
	)
	h := NewRollupHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/rollup/run", h.Run)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestRollupRunAcceptsDateOnlyWeek week_commencing按YYYY-MM-DD接收
func TestRollupRunAcceptsDateOnlyWeek(t *testing.T) {
	env := setupRollupHandlerTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/rollup/run",
		map[string]interface{}{"week_commencing": "2026-09-02"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != entity.RollupStatusCompleted {
		t.Fatalf("run status = %v, want COMPLETED", data["status"])
	}
	if week, _ := data["week_commencing"].(string); !strings.HasPrefix(week, "2026-08-31") {
		t.Fatalf("week not normalized to Monday: %v", data["week_commencing"])
	}

	// 非法日期格式拒绝
	w = testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/rollup/run",
		map[string]interface{}{"week_commencing": "09/02/2026"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed date must 400, got %d: %s", w.Code, w.Body.String())
	}
}
