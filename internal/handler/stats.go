package handler

import (
	"net/http"

	"github.com/Bateyjosue/xenfi-systems/internal/middleware"
	"github.com/Bateyjosue/xenfi-systems/internal/service"
	"github.com/Bateyjosue/xenfi-systems/internal/util"

	"github.com/gin-gonic/gin"
)

// StatsHandler serves the personal dashboard and the admin endpoints.
type StatsHandler struct {
	Stats *service.StatsService
	Admin *service.AdminService
}

func NewStatsHandler(stats *service.StatsService, admin *service.AdminService) *StatsHandler {
	return &StatsHandler{Stats: stats, Admin: admin}
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	out, err := h.Stats.Dashboard(c.Request.Context(), middleware.CurrentIdentity(c), service.DashboardQuery{
		StartDate:  c.Query("startDate"),
		EndDate:    c.Query("endDate"),
		CategoryID: c.Query("categoryId"),
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, out)
}

func (h *StatsHandler) AdminStats(c *gin.Context) {
	out, err := h.Stats.Admin(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, out)
}

func (h *StatsHandler) AdminExpenses(c *gin.Context) {
	q := expenseQuery(c)
	q.UserID = c.Query("userId")
	out, err := h.Admin.Expenses(c.Request.Context(), middleware.CurrentIdentity(c), q)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, out)
}

func (h *StatsHandler) AdminUsers(c *gin.Context) {
	out, err := h.Admin.Users(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, out)
}
