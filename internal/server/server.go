package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/bookkeeper/internal/account"
	accountdomain "github.com/smallbiznis/bookkeeper/internal/account/domain"
	"github.com/smallbiznis/bookkeeper/internal/audit"
	auditdomain "github.com/smallbiznis/bookkeeper/internal/audit/domain"
	"github.com/smallbiznis/bookkeeper/internal/authorization"
	"github.com/smallbiznis/bookkeeper/internal/chartaccount"
	chartdomain "github.com/smallbiznis/bookkeeper/internal/chartaccount/domain"
	"github.com/smallbiznis/bookkeeper/internal/config"
	"github.com/smallbiznis/bookkeeper/internal/costcenter"
	costcenterdomain "github.com/smallbiznis/bookkeeper/internal/costcenter/domain"
	"github.com/smallbiznis/bookkeeper/internal/dre"
	dredomain "github.com/smallbiznis/bookkeeper/internal/dre/domain"
	"github.com/smallbiznis/bookkeeper/internal/ledger"
	ledgerdomain "github.com/smallbiznis/bookkeeper/internal/ledger/domain"
	"github.com/smallbiznis/bookkeeper/internal/observability"
	obsmiddleware "github.com/smallbiznis/bookkeeper/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/bookkeeper/internal/observability/metrics"
	obstracing "github.com/smallbiznis/bookkeeper/internal/observability/tracing"
	"github.com/smallbiznis/bookkeeper/internal/report/pdf"
	"github.com/smallbiznis/bookkeeper/internal/statement"
	statementdomain "github.com/smallbiznis/bookkeeper/internal/statement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	chartaccount.Module,
	account.Module,
	costcenter.Module,
	ledger.Module,
	statement.Module,
	dre.Module,
	pdf.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	authzSvc      authorization.Service
	auditSvc      auditdomain.Service
	chartSvc      chartdomain.Service
	accountSvc    accountdomain.Service
	costCenterSvc costcenterdomain.Service
	ledgerSvc     ledgerdomain.Service
	statementSvc  statementdomain.Service
	dreSvc        dredomain.Service
	renderer      pdf.Renderer
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	AuthzSvc      authorization.Service
	AuditSvc      auditdomain.Service
	ChartSvc      chartdomain.Service
	AccountSvc    accountdomain.Service
	CostCenterSvc costcenterdomain.Service
	LedgerSvc     ledgerdomain.Service
	StatementSvc  statementdomain.Service
	DRESvc        dredomain.Service
	Renderer      pdf.Renderer
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		authzSvc:      p.AuthzSvc,
		auditSvc:      p.AuditSvc,
		chartSvc:      p.ChartSvc,
		accountSvc:    p.AccountSvc,
		costCenterSvc: p.CostCenterSvc,
		ledgerSvc:     p.LedgerSvc,
		statementSvc:  p.StatementSvc,
		dreSvc:        p.DRESvc,
		renderer:      p.Renderer,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(TenantContext())

	// -------- Chart of accounts --------
	api.GET("/chart-accounts", s.ListChartAccounts)
	api.GET("/chart-accounts/:id", s.GetChartAccount)
	api.POST("/chart-accounts", s.CreateChartAccount)
	api.PATCH("/chart-accounts/:id", s.UpdateChartAccount)
	api.DELETE("/chart-accounts/:id", s.DeleteChartAccount)

	// -------- Ledger --------
	manageLedger := s.authorizeAction(authorization.ObjectLedger, authorization.ActionManage)
	api.GET("/ledger-entries", s.ListLedgerEntries)
	api.GET("/ledger-entries/:id", s.GetLedgerEntry)
	api.POST("/ledger-entries", manageLedger, s.CreateLedgerEntry)
	api.PUT("/ledger-entries/:id", manageLedger, s.UpdateLedgerEntry)
	api.POST("/ledger-entries/:id/confirm", manageLedger, s.ConfirmLedgerEntry)
	api.DELETE("/ledger-entries/:id", manageLedger, s.DeleteLedgerEntry)

	// -------- Reports --------
	api.GET("/statement", s.GetStatement)
	api.GET("/statement.pdf", s.GetStatementPDF)
	api.GET("/dre", s.RunDRE)
	api.GET("/dre.pdf", s.GetDREPDF)

	// -------- Registries --------
	api.GET("/accounts", s.ListAccounts)
	api.POST("/accounts", s.CreateAccount)
	api.GET("/accounts/:id", s.GetAccount)
	api.DELETE("/accounts/:id", s.DeleteAccount)

	api.GET("/cost-centers", s.ListCostCenters)
	api.POST("/cost-centers", s.CreateCostCenter)
	api.GET("/cost-centers/:id", s.GetCostCenter)
	api.DELETE("/cost-centers/:id", s.DeleteCostCenter)

	// -------- Audit --------
	api.GET("/audit-logs", s.authorizeAction(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
