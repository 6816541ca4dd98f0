// Package server exposes the conversion pipeline and import planning over
// HTTP so snapshots can be previewed before anything reaches the ledger.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/wsbridge/internal/accounts"
	"github.com/cleared-dev/wsbridge/internal/buildinfo"
	"github.com/cleared-dev/wsbridge/internal/diag"
	"github.com/cleared-dev/wsbridge/internal/importer"
	"github.com/cleared-dev/wsbridge/internal/journal"
	"github.com/cleared-dev/wsbridge/internal/ledger"
	"github.com/cleared-dev/wsbridge/internal/model"
	"github.com/cleared-dev/wsbridge/internal/parser"
	"github.com/cleared-dev/wsbridge/internal/pipeline"
	"github.com/cleared-dev/wsbridge/internal/reconcile"
	"github.com/cleared-dev/wsbridge/internal/stats"
	"github.com/cleared-dev/wsbridge/internal/transform"
)

// Config wires the server to its collaborators.
type Config struct {
	Resolver   *accounts.Resolver
	BrandPayee string
	// Sink backs /v1/plan. Planning reads the ledger directory only.
	// Nil disables planning.
	Sink   ledger.Sink
	Parser *parser.Parser
	Logger zerolog.Logger
}

// Server is the preview HTTP service.
type Server struct {
	app    *fiber.App
	cfg    Config
	logger zerolog.Logger
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Ledger  bool   `json:"ledger"`
	Mapped  int    `json:"mappedAccounts"`
	// Accounts lists the configured mappings in match order.
	Accounts []AccountPattern `json:"accounts"`
}

// AccountPattern describes one account mapping.
type AccountPattern struct {
	Pattern   string `json:"pattern"`
	Kind      string `json:"kind"`
	AccountID string `json:"accountId"`
}

// InvalidTransaction pairs a rejected transaction with its failed checks.
type InvalidTransaction struct {
	Transaction model.Transaction         `json:"transaction"`
	Errors      []journal.ValidationError `json:"errors"`
}

// TransformResponse is the body of POST /v1/transform.
type TransformResponse struct {
	Blocks       int                  `json:"blocks"`
	Transactions []model.Transaction  `json:"transactions"`
	Invalid      []InvalidTransaction `json:"invalid"`
	Warnings     diag.List            `json:"warnings"`
	Stats        stats.Summary        `json:"stats"`
}

// PlanRequest is the body of POST /v1/plan. Blocks take precedence; plain
// transactions carry no transfer metadata and are planned as ordinary
// postings.
type PlanRequest struct {
	Blocks       []model.Block       `json:"blocks"`
	Transactions []model.Transaction `json:"transactions"`
}

// PlanResponse is the body of POST /v1/plan.
type PlanResponse struct {
	Plan     reconcile.Plan `json:"plan"`
	Records  int            `json:"records"`
	Warnings diag.List      `json:"warnings"`
}

// New builds the fiber app and registers its routes.
func New(cfg Config) *Server {
	s := &Server{cfg: cfg, logger: cfg.Logger.With().Str("component", "server").Logger()}

	s.app = fiber.New(fiber.Config{
		AppName:               "wsbridge",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.logRequests)

	s.app.Get("/healthz", s.handleHealth)
	v1 := s.app.Group("/v1")
	v1.Post("/transform", s.handleTransform)
	v1.Post("/plan", s.handlePlan)

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) options() pipeline.Options {
	return pipeline.Options{
		Parser: s.cfg.Parser,
		Transform: transform.Options{
			IsAccountMapped: s.cfg.Resolver.IsMapped,
			BrandPayee:      s.cfg.BrandPayee,
		},
	}
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	patterns := s.cfg.Resolver.Patterns()
	mapped := make([]AccountPattern, 0, len(patterns))
	for _, p := range patterns {
		mapped = append(mapped, AccountPattern{Pattern: p.Source, Kind: p.Kind.String(), AccountID: p.AccountID})
	}
	return c.JSON(HealthResponse{
		Status:   "ok",
		Version:  buildinfo.Version,
		Ledger:   s.cfg.Sink != nil,
		Mapped:   len(mapped),
		Accounts: mapped,
	})
}

func (s *Server) handleTransform(c *fiber.Ctx) error {
	blocks, err := (&importer.JSONReader{}).Read(bytes.NewReader(c.Body()))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res := pipeline.Run(blocks, s.options())

	resp := TransformResponse{
		Blocks:       res.Blocks,
		Transactions: nonNil(res.Valid),
		Invalid:      []InvalidTransaction{},
		Warnings:     nonNil(res.Warnings),
		Stats:        stats.Compute(res.Transactions),
	}
	for _, tx := range res.Invalid {
		resp.Invalid = append(resp.Invalid, InvalidTransaction{
			Transaction: tx,
			Errors:      journal.Validate(tx).Errors,
		})
	}
	return c.JSON(resp)
}

func (s *Server) handlePlan(c *fiber.Ctx) error {
	if s.cfg.Sink == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no ledger configured")
	}

	var req PlanRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "decoding request: "+err.Error())
	}

	var txs []model.Transaction
	var warns diag.List
	if len(req.Blocks) > 0 {
		res := pipeline.Run(req.Blocks, s.options())
		txs, warns = res.Valid, res.Warnings
	} else {
		var w diag.List
		txs, _, w = journal.Partition(req.Transactions)
		warns = append(warns, w...)
	}

	engine := reconcile.NewEngine(s.cfg.Sink, s.cfg.Resolver, s.logger)
	plan, w, err := engine.DryRun(c.UserContext(), txs)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	warns = append(warns, w...)

	if plan.Batches == nil {
		plan.Batches = []reconcile.Batch{}
	}
	return c.JSON(PlanResponse{
		Plan:     plan,
		Records:  plan.Len(),
		Warnings: nonNil(warns),
	})
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			return herr
		}
	}
	s.logger.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("HTTP request")
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
