package handler

import (
	"net/http"

	"github.com/Bateyjosue/xenfi-systems/internal/middleware"
	"github.com/Bateyjosue/xenfi-systems/internal/service"
	"github.com/Bateyjosue/xenfi-systems/internal/util"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler serves the caller's own expenses.
type ExpenseHandler struct {
	Expenses *service.ExpenseService
}

func NewExpenseHandler(expenses *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{Expenses: expenses}
}

func expenseQuery(c *gin.Context) service.ExpenseQuery {
	return service.ExpenseQuery{
		StartDate:  c.Query("startDate"),
		EndDate:    c.Query("endDate"),
		CategoryID: c.Query("categoryId"),
	}
}

// ListExpenses writes the cached JSON array as is.
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	data, err := h.Expenses.List(c.Request.Context(), middleware.CurrentIdentity(c), expenseQuery(c))
	if err != nil {
		util.Fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, err := h.Expenses.Get(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, e)
}

func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var in service.CreateExpenseInput
	if !bindJSON(c, &in) {
		return
	}
	e, err := h.Expenses.Create(c.Request.Context(), middleware.CurrentIdentity(c), in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusCreated, e)
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in service.UpdateExpenseInput
	if !bindJSON(c, &in) {
		return
	}
	e, err := h.Expenses.Update(c.Request.Context(), middleware.CurrentIdentity(c), id, in)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, e)
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Expenses.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
