package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	costcenterdomain "github.com/smallbiznis/bookkeeper/internal/costcenter/domain"
)

type createAccountRequest struct {
	Code        string `json:"code" binding:"required,max=64"`
	Description string `json:"description" binding:"required"`
	AccountType string `json:"account_type"`
}

type createCostCenterRequest struct {
	Code        string `json:"code" binding:"required,max=64"`
	Description string `json:"description" binding:"required"`
}

func (s *Server) ListAccounts(c *gin.Context) {
	items, err := s.accountSvc.List(c.Request.Context(), orgIDFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	item, err := s.accountSvc.Create(c.Request.Context(), orgIDFrom(c), accountdomain.CreateRequest{
		Code:        strings.TrimSpace(req.Code),
		Description: strings.TrimSpace(req.Description),
		AccountType: accountdomain.AccountType(upper(req.AccountType)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) GetAccount(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.accountSvc.Get(c.Request.Context(), orgIDFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteAccount(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.accountSvc.Delete(c.Request.Context(), orgIDFrom(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListCostCenters(c *gin.Context) {
	items, err := s.costCenterSvc.List(c.Request.Context(), orgIDFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) CreateCostCenter(c *gin.Context) {
	var req createCostCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}

	item, err := s.costCenterSvc.Create(c.Request.Context(), orgIDFrom(c), costcenterdomain.CreateRequest{
		Code:        strings.TrimSpace(req.Code),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) GetCostCenter(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.costCenterSvc.Get(c.Request.Context(), orgIDFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteCostCenter(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.costCenterSvc.Delete(c.Request.Context(), orgIDFrom(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
