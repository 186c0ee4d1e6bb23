package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Felixpere/final-project/internal/analytics"
	"github.com/Felixpere/final-project/internal/config"
	"github.com/Felixpere/final-project/internal/engine"
	"github.com/Felixpere/final-project/internal/model"
	"github.com/Felixpere/final-project/internal/push"
	"github.com/Felixpere/final-project/internal/storage"
)

type Handler struct {
	db       *pgxpool.Pool
	logger   *zap.Logger
	cfg      *config.Config
	outcomes *push.OutcomePublisher
}

func NewHandler(db *pgxpool.Pool, logger *zap.Logger, cfg *config.Config, outcomes *push.OutcomePublisher) *Handler {
	return &Handler{
		db:       db,
		logger:   logger,
		cfg:      cfg,
		outcomes: outcomes,
	}
}

// Auth Handlers

func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	var userID int64
	err = h.db.QueryRow(c.Request.Context(),
		"INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id",
		req.Email, string(hash)).Scan(&userID)

	if err != nil {
		h.logger.Error("failed to register user", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user created", "id": userID})
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID int64
	var hash string
	err := h.db.QueryRow(c.Request.Context(),
		"SELECT id, password_hash FROM users WHERE email = $1", req.Email).Scan(&userID, &hash)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Data Handlers

func (h *Handler) GetSignals(c *gin.Context) {
	start, end, ok := h.timeRange(c)
	if !ok {
		return
	}

	loader := engine.NewDataLoader(h.db)
	signals, err := loader.LoadSignals(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to query signals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, signals)
}

// RunEvaluation loads the signal window plus all price history for the
// referenced symbols, runs the evaluation batch, persists the outcomes
// and returns the report with aggregate hit rates.
func (h *Handler) RunEvaluation(c *gin.Context) {
	var req struct {
		StartTime time.Time `json:"start_time" binding:"required"`
		EndTime   time.Time `json:"end_time" binding:"required"`
		Tolerance float64   `json:"tolerance"` // optional override of the configured fraction
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tolerance := h.cfg.Tolerance
	if req.Tolerance > 0 {
		tolerance = req.Tolerance
	}

	report, _, err := h.evaluate(c, req.StartTime, req.EndTime, tolerance)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evaluate"})
		return
	}

	store := storage.NewOutcomeStore(h.db, h.logger)
	if err := store.SaveOutcomes(c.Request.Context(), report.Outcomes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist outcomes"})
		return
	}

	h.outcomes.PublishOutcomes(report.Outcomes)

	c.JSON(http.StatusOK, gin.H{
		"report":   report,
		"by_level": analytics.HitRateByLevel(report.Outcomes),
		"by_group": analytics.HitRateByGroup(report.Outcomes),
	})
}

func (h *Handler) GetRanking(c *gin.Context) {
	start, end, ok := h.timeRange(c)
	if !ok {
		return
	}

	loader := engine.NewDataLoader(h.db)
	signals, err := loader.LoadSignals(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to query signals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	ranked := analytics.RankSymbols(signals, analytics.RankingConfig{
		Window:        time.Duration(h.cfg.WindowDays) * 24 * time.Hour,
		MinActiveDays: float64(h.cfg.MinActiveDays),
		MinSignals:    h.cfg.MinSignalCount,
		TopN:          h.cfg.TopN,
	}, time.Time{})

	c.JSON(http.StatusOK, ranked)
}

func (h *Handler) RunSimulation(c *gin.Context) {
	start, end, ok := h.timeRange(c)
	if !ok {
		return
	}

	report, _, err := h.evaluate(c, start, end, h.cfg.Tolerance)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evaluate"})
		return
	}

	sim := analytics.NewSimulator(payoffTable(h.cfg), decimal.NewFromFloat(h.cfg.Stake), h.cfg.NoDataAsLoss)

	c.JSON(http.StatusOK, gin.H{
		"all":   sim.Run(report.Outcomes),
		"long":  sim.Run(analytics.FilterByDirection(report.Outcomes, model.DirectionLong)),
		"short": sim.Run(analytics.FilterByDirection(report.Outcomes, model.DirectionShort)),
	})
}

func (h *Handler) evaluate(c *gin.Context, start, end time.Time, tolerance float64) (model.EvaluationReport, []model.Signal, error) {
	ctx := c.Request.Context()
	loader := engine.NewDataLoader(h.db)

	signals, err := loader.LoadSignals(ctx, start, end)
	if err != nil {
		h.logger.Error("failed to load signals", zap.Error(err))
		return model.EvaluationReport{}, nil, err
	}

	symbols := uniqueSymbols(signals)
	candles, err := loader.LoadCandles(ctx, symbols, start, h.cfg.CandlePeriod)
	if err != nil {
		h.logger.Error("failed to load candles", zap.Error(err))
		return model.EvaluationReport{}, nil, err
	}
	events, err := loader.LoadUpdateEvents(ctx, symbols, start)
	if err != nil {
		h.logger.Error("failed to load update events", zap.Error(err))
		return model.EvaluationReport{}, nil, err
	}

	evaluator := engine.NewEvaluator(h.cfg.EvalWorkers, h.logger)
	report := evaluator.Run(ctx, engine.Input{
		Signals:   signals,
		Candles:   candles,
		Events:    events,
		Tolerance: decimal.NewFromFloat(tolerance),
	})
	return report, signals, nil
}

func (h *Handler) timeRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := time.Parse(time.RFC3339, c.DefaultQuery("from", "2023-01-01T00:00:00Z"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.RFC3339, c.DefaultQuery("to", time.Now().UTC().Format(time.RFC3339)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func uniqueSymbols(signals []model.Signal) []string {
	seen := make(map[string]bool)
	symbols := make([]string, 0)
	for _, s := range signals {
		if !seen[s.Symbol] {
			seen[s.Symbol] = true
			symbols = append(symbols, s.Symbol)
		}
	}
	return symbols
}

func payoffTable(cfg *config.Config) analytics.PayoffTable {
	return analytics.PayoffTable{
		Levels: [model.NumTPLevels]decimal.Decimal{
			decimal.NewFromFloat(cfg.PayoffTP40),
			decimal.NewFromFloat(cfg.PayoffTP60),
			decimal.NewFromFloat(cfg.PayoffTP80),
			decimal.NewFromFloat(cfg.PayoffTP100),
		},
		Miss: decimal.NewFromFloat(cfg.PayoffMiss),
	}
}
