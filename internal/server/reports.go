package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	dredomain "github.com/smallbiznis/bookkeeper/internal/dre/domain"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	"github.com/smallbiznis/bookkeeper/internal/report/pdf"
	statementdomain "github.com/smallbiznis/bookkeeper/internal/statement/domain"
)

func (s *Server) GetStatement(c *gin.Context) {
	statement, ok := s.buildStatement(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": statement})
}

func (s *Server) GetStatementPDF(c *gin.Context) {
	statement, ok := s.buildStatement(c)
	if !ok {
		return
	}

	doc, err := s.renderer.RenderStatement(c.Request.Context(), statement)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	writePDF(c, "statement.pdf", doc)
}

func (s *Server) RunDRE(c *gin.Context) {
	report, ok := s.buildDRE(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) GetDREPDF(c *gin.Context) {
	report, ok := s.buildDRE(c)
	if !ok {
		return
	}

	doc, err := s.renderer.RenderDRE(c.Request.Context(), report)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	writePDF(c, "dre.pdf", doc)
}

func (s *Server) buildStatement(c *gin.Context) (statementdomain.Statement, bool) {
	q := queryParser{c: c}
	req := statementdomain.StatementRequest{
		DateFrom:  q.date("date_from"),
		DateTo:    q.date("date_to"),
		AccountID: q.id("account_id"),
		Confirmed: q.boolean("confirmed"),
	}
	if q.err != nil {
		AbortWithError(c, q.err)
		return statementdomain.Statement{}, false
	}
	if v := q.upper("operation"); v != nil {
		op := ledgerdomain.Operation(*v)
		if !op.Valid() {
			AbortWithError(c, ledgerdomain.ErrInvalidOperation)
			return statementdomain.Statement{}, false
		}
		req.Operation = &op
	}

	statement, err := s.statementSvc.Statement(c.Request.Context(), orgIDFrom(c), req)
	if err != nil {
		AbortWithError(c, err)
		return statementdomain.Statement{}, false
	}
	return statement, true
}

func (s *Server) buildDRE(c *gin.Context) (dredomain.Report, bool) {
	q := queryParser{c: c}
	from := q.date("date_from")
	to := q.date("date_to")
	if q.err != nil {
		AbortWithError(c, q.err)
		return dredomain.Report{}, false
	}

	req := dredomain.DRERequest{}
	if from != nil {
		req.DateFrom = *from
	}
	if to != nil {
		req.DateTo = *to
	}

	report, err := s.dreSvc.Run(c.Request.Context(), orgIDFrom(c), req)
	if err != nil {
		AbortWithError(c, err)
		return dredomain.Report{}, false
	}
	return report, true
}

func writePDF(c *gin.Context, filename string, doc []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, pdf.ContentType, doc)
}
