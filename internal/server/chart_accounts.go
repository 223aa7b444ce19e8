package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
)

type createChartAccountRequest struct {
	Code             string        `json:"code" binding:"max=64"`
	Description      string        `json:"description" binding:"required"`
	PlanType         string        `json:"plan_type" binding:"required"`
	ParentID         *snowflake.ID `json:"parent_id"`
	RevenueOrExpense string        `json:"revenue_or_expense" binding:"required"`
	DebitOrCredit    string        `json:"debit_or_credit" binding:"required"`
	FixedOrVariable  *string       `json:"fixed_or_variable"`
	CostOrExpense    *string       `json:"cost_or_expense"`
	Active           *bool         `json:"active"`
	Global           bool          `json:"global"`
}

type updateChartAccountRequest struct {
	Code             *string       `json:"code" binding:"omitempty,max=64"`
	Description      *string       `json:"description"`
	PlanType         *string       `json:"plan_type"`
	ParentID         *snowflake.ID `json:"parent_id"`
	ClearParent      bool          `json:"clear_parent"`
	RevenueOrExpense *string       `json:"revenue_or_expense"`
	DebitOrCredit    *string       `json:"debit_or_credit"`
	FixedOrVariable  *string       `json:"fixed_or_variable"`
	CostOrExpense    *string       `json:"cost_or_expense"`
	Active           *bool         `json:"active"`
	Global           *bool         `json:"global"`
}

func (s *Server) ListChartAccounts(c *gin.Context) {
	q := queryParser{c: c}
	includeGlobal := q.boolean("include_global")
	active := q.boolean("active")
	parentID := q.id("parent_id")
	if q.err != nil {
		AbortWithError(c, q.err)
		return
	}

	req := chartdomain.ListFilter{
		IncludeGlobal: includeGlobal == nil || *includeGlobal,
		Active:        active,
		ParentID:      parentID,
	}
	if v := q.upper("plan_type"); v != nil {
		planType := chartdomain.PlanType(*v)
		req.PlanType = &planType
	}
	if v := q.upper("revenue_or_expense"); v != nil {
		kind := chartdomain.RevenueOrExpense(*v)
		req.RevenueOrExpense = &kind
	}
	if v := q.upper("debit_or_credit"); v != nil {
		side := chartdomain.DebitOrCredit(*v)
		req.DebitOrCredit = &side
	}

	items, err := s.chartSvc.List(c.Request.Context(), orgIDFrom(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetChartAccount(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.chartSvc.Get(c.Request.Context(), orgIDFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateChartAccount(c *gin.Context) {
	var req createChartAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	create := chartdomain.CreateRequest{
		Code:             strings.TrimSpace(req.Code),
		Description:      strings.TrimSpace(req.Description),
		PlanType:         chartdomain.PlanType(upper(req.PlanType)),
		ParentID:         req.ParentID,
		RevenueOrExpense: chartdomain.RevenueOrExpense(upper(req.RevenueOrExpense)),
		DebitOrCredit:    chartdomain.DebitOrCredit(upper(req.DebitOrCredit)),
		Active:           req.Active,
		Global:           req.Global,
	}
	if req.FixedOrVariable != nil {
		value := chartdomain.FixedOrVariable(upper(*req.FixedOrVariable))
		create.FixedOrVariable = &value
	}
	if req.CostOrExpense != nil {
		value := chartdomain.CostOrExpense(upper(*req.CostOrExpense))
		create.CostOrExpense = &value
	}

	item, err := s.chartSvc.Create(c.Request.Context(), orgIDFrom(c), create, s.isAdmin(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateChartAccount(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateChartAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	patch := chartdomain.UpdateRequest{
		Code:        trimmed(req.Code),
		Description: trimmed(req.Description),
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
		Active:      req.Active,
		Global:      req.Global,
	}
	if req.PlanType != nil {
		value := chartdomain.PlanType(upper(*req.PlanType))
		patch.PlanType = &value
	}
	if req.RevenueOrExpense != nil {
		value := chartdomain.RevenueOrExpense(upper(*req.RevenueOrExpense))
		patch.RevenueOrExpense = &value
	}
	if req.DebitOrCredit != nil {
		value := chartdomain.DebitOrCredit(upper(*req.DebitOrCredit))
		patch.DebitOrCredit = &value
	}
	if req.FixedOrVariable != nil {
		value := chartdomain.FixedOrVariable(upper(*req.FixedOrVariable))
		patch.FixedOrVariable = &value
	}
	if req.CostOrExpense != nil {
		value := chartdomain.CostOrExpense(upper(*req.CostOrExpense))
		patch.CostOrExpense = &value
	}

	item, err := s.chartSvc.Update(c.Request.Context(), orgIDFrom(c), id, patch, s.isAdmin(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteChartAccount(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.chartSvc.Delete(c.Request.Context(), orgIDFrom(c), id, s.isAdmin(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func upper(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)
	return &out
}
