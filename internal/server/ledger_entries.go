package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
)

type splitRequest struct {
	ChartAccountID snowflake.ID    `json:"chart_account_id" binding:"required"`
	CostCenterID   *snowflake.ID   `json:"cost_center_id"`
	SplitAmount    decimal.Decimal `json:"split_amount"`
}

type ledgerEntryRequest struct {
	IssueDate      string          `json:"issue_date" binding:"required"`
	PaymentDate    string          `json:"payment_date"`
	AccountID      snowflake.ID    `json:"account_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Operation      string          `json:"operation" binding:"required"`
	History        string          `json:"history" binding:"max=1000"`
	DocumentNumber string          `json:"document_number" binding:"max=128"`
	Confirmed      bool            `json:"confirmed"`
	Splits         []splitRequest  `json:"splits" binding:"dive"`
}

type confirmLedgerEntryRequest struct {
	Confirmed *bool `json:"confirmed"`
}

func (r ledgerEntryRequest) toInput() (ledgerdomain.EntryInput, error) {
	issueDate, err := parseOptionalDate(r.IssueDate)
	if err != nil || issueDate == nil {
		return ledgerdomain.EntryInput{}, newValidationError("issue_date", "invalid_issue_date", "invalid issue_date")
	}
	paymentDate, err := parseOptionalDate(r.PaymentDate)
	if err != nil {
		return ledgerdomain.EntryInput{}, newValidationError("payment_date", "invalid_payment_date", "invalid payment_date")
	}

	splits := make([]ledgerdomain.SplitInput, 0, len(r.Splits))
	for _, split := range r.Splits {
		splits = append(splits, ledgerdomain.SplitInput{
			ChartAccountID: split.ChartAccountID,
			CostCenterID:   split.CostCenterID,
			SplitAmount:    split.SplitAmount,
		})
	}

	return ledgerdomain.EntryInput{
		IssueDate:      *issueDate,
		PaymentDate:    paymentDate,
		AccountID:      r.AccountID,
		Amount:         r.Amount,
		Operation:      ledgerdomain.Operation(upper(r.Operation)),
		History:        strings.TrimSpace(r.History),
		DocumentNumber: strings.TrimSpace(r.DocumentNumber),
		Confirmed:      r.Confirmed,
		Splits:         splits,
	}, nil
}

func (s *Server) ListLedgerEntries(c *gin.Context) {
	q := queryParser{c: c}
	req := ledgerdomain.ListFilter{
		DateFrom:  q.date("date_from"),
		DateTo:    q.date("date_to"),
		AccountID: q.id("account_id"),
		Confirmed: q.boolean("confirmed"),
		Deleted:   q.boolean("deleted"),
	}
	withSplits := q.boolean("with_splits")
	if q.err != nil {
		AbortWithError(c, q.err)
		return
	}
	req.WithSplits = withSplits != nil && *withSplits
	if v := q.upper("operation"); v != nil {
		op := ledgerdomain.Operation(*v)
		if !op.Valid() {
			AbortWithError(c, ledgerdomain.ErrInvalidOperation)
			return
		}
		req.Operation = &op
	}

	items, err := s.ledgerSvc.List(c.Request.Context(), orgIDFrom(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetLedgerEntry(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	q := queryParser{c: c}
	withSplits := q.boolean("with_splits")
	if q.err != nil {
		AbortWithError(c, q.err)
		return
	}

	item, err := s.ledgerSvc.Get(c.Request.Context(), orgIDFrom(c), id, withSplits == nil || *withSplits)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) CreateLedgerEntry(c *gin.Context) {
	var req ledgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	input, err := req.toInput()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.ledgerSvc.Create(c.Request.Context(), orgIDFrom(c), ledgerdomain.CreateRequest{EntryInput: input})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateLedgerEntry(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req ledgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindError(err))
		return
	}
	input, err := req.toInput()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	item, err := s.ledgerSvc.Update(c.Request.Context(), orgIDFrom(c), id, ledgerdomain.UpdateRequest{EntryInput: input})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ConfirmLedgerEntry(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req confirmLedgerEntryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, bindError(err))
			return
		}
	}
	confirmed := req.Confirmed == nil || *req.Confirmed

	item, err := s.ledgerSvc.Confirm(c.Request.Context(), orgIDFrom(c), id, confirmed)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteLedgerEntry(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.ledgerSvc.SoftDelete(c.Request.Context(), orgIDFrom(c), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
