// Package server exposes the dashboard's derived data over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/explorer"
	"sld-dashboard/internal/gas"
	"sld-dashboard/internal/health"
	"sld-dashboard/internal/observability"
	"sld-dashboard/internal/presale"
	"sld-dashboard/internal/roi"
	"sld-dashboard/internal/staking"
	"sld-dashboard/internal/storage"
)

// WhaleFeedLimit caps the whale endpoint's page size.
const WhaleFeedLimit = 20

// PriceSource supplies the latest pair quote.
type PriceSource interface {
	Latest() *domain.PricePoint
}

// Options for creating a Server.
type Options struct {
	GasTracker *gas.Tracker
	Price      PriceSource
	WhaleStore storage.WhaleAlertStore
	AprStore   storage.AprHistoryStore
	Staking    *staking.Service
	Presale    *presale.Service
	Metrics    *observability.Metrics
	Logger     *log.Logger
}

// Server routes dashboard API requests.
type Server struct {
	gasTracker *gas.Tracker
	price      PriceSource
	whaleStore storage.WhaleAlertStore
	aprStore   storage.AprHistoryStore
	staking    *staking.Service
	presale    *presale.Service
	metrics    *observability.Metrics
	logger     *log.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		gasTracker: opts.GasTracker,
		price:      opts.Price,
		whaleStore: opts.WhaleStore,
		aprStore:   opts.AprStore,
		staking:    opts.Staking,
		presale:    opts.Presale,
		metrics:    opts.Metrics,
		logger:     logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	mux.HandleFunc("/api/gas", s.instrument("/api/gas", s.handleGas))
	mux.HandleFunc("/api/price", s.instrument("/api/price", s.handlePrice))
	mux.HandleFunc("/api/whale", s.instrument("/api/whale", s.handleWhale))
	mux.HandleFunc("/api/apr-history", s.instrument("/api/apr-history", s.handleAprHistory))
	mux.HandleFunc("/api/last-stake", s.instrument("/api/last-stake", s.handleLastStake))
	mux.HandleFunc("/api/presale", s.instrument("/api/presale", s.handlePresale))
	mux.HandleFunc("/api/roi", s.instrument("/api/roi", s.handleRoi))
	mux.HandleFunc("/api/health-score", s.instrument("/api/health-score", s.handleHealthScore))

	return mux
}

// instrument wraps a handler with request metrics.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	if s.metrics == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// handleGas returns the last known-good gas estimate.
func (s *Server) handleGas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	gwei, label, ok := s.gasTracker.Current()
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "no gas sample yet")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"gwei":  gwei,
		"label": label,
	})
}

// handlePrice returns the latest pair quote.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	point := s.price.Latest()
	if point == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no price fetched yet")
		return
	}
	s.writeJSON(w, http.StatusOK, point)
}

// handleWhale returns recent whale alerts, newest first.
func (s *Server) handleWhale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := WhaleFeedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n < limit {
			limit = n
		}
	}

	alerts, err := s.whaleStore.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Printf("whale feed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if alerts == nil {
		alerts = []domain.WhaleAlert{}
	}
	s.writeJSON(w, http.StatusOK, alerts)
}

// aprPostBody is the POST /api/apr-history payload.
type aprPostBody struct {
	PoolID    int     `json:"poolId"`
	Apr       float64 `json:"apr"`
	Timestamp int64   `json:"timeStamp"`
}

// handleAprHistory serves and appends APR history points.
func (s *Server) handleAprHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		pool, ok := s.poolParam(w, r.URL.Query().Get("pool"))
		if !ok {
			return
		}
		points, err := s.aprStore.History(r.Context(), pool)
		if err != nil {
			s.logger.Printf("apr history: %v", err)
			s.writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if points == nil {
			points = []domain.AprPoint{}
		}
		s.writeJSON(w, http.StatusOK, points)

	case http.MethodPost:
		var body aprPostBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid body")
			return
		}
		pool, err := domain.ParsePoolID(body.PoolID)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid pool")
			return
		}
		ts := body.Timestamp
		if ts == 0 {
			ts = time.Now().Unix()
		}
		point := domain.AprPoint{PoolID: pool, AprPercent: body.Apr, Timestamp: ts}
		if err := s.aprStore.Append(r.Context(), point); err != nil {
			if errors.Is(err, storage.ErrInvalidInput) {
				s.writeError(w, http.StatusBadRequest, "apr out of range")
				return
			}
			s.logger.Printf("apr append: %v", err)
			s.writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		s.writeJSON(w, http.StatusCreated, point)

	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleLastStake returns the lock countdown for a wallet's pool.
func (s *Server) handleLastStake(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user := r.URL.Query().Get("user")
	if !common.IsHexAddress(user) {
		s.writeError(w, http.StatusBadRequest, "invalid user address")
		return
	}
	pool, ok := s.poolParam(w, r.URL.Query().Get("pool"))
	if !ok {
		return
	}

	status, err := s.staking.LockStatus(r.Context(), common.HexToAddress(user), pool)
	if err != nil {
		if errors.Is(err, explorer.ErrNoStakeFound) {
			s.writeJSON(w, http.StatusOK, &staking.LockStatus{Pool: pool})
			return
		}
		s.logger.Printf("last stake: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

// handlePresale returns sale status, with a purchase preview when a
// BNB amount is supplied.
func (s *Server) handlePresale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.presale == nil {
		s.writeError(w, http.StatusServiceUnavailable, "presale not configured")
		return
	}

	status, err := s.presale.Status(r.Context())
	if err != nil {
		s.logger.Printf("presale status: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := struct {
		*presale.Status
		Preview *float64 `json:"preview,omitempty"`
	}{Status: status}

	if raw := r.URL.Query().Get("bnb"); raw != "" {
		bnb, err := strconv.ParseFloat(raw, 64)
		if err != nil || bnb < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid bnb amount")
			return
		}
		preview, err := s.presale.Preview(r.Context(), bnb)
		if err != nil {
			s.logger.Printf("presale preview: %v", err)
			s.writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp.Preview = &preview
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleRoi computes return metrics for a rate, with an optional
// compounding projection when a staked amount is supplied.
func (s *Server) handleRoi(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bps, err := strconv.ParseInt(r.URL.Query().Get("bps"), 10, 64)
	if err != nil || bps < 0 {
		s.writeError(w, http.StatusBadRequest, "invalid bps")
		return
	}
	metrics := roi.Compute(bps)

	resp := map[string]interface{}{"metrics": metrics}
	if raw := r.URL.Query().Get("staked"); raw != "" {
		staked, err := strconv.ParseFloat(raw, 64)
		if err != nil || staked < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid staked amount")
			return
		}
		balance, rewards := roi.Project(staked, metrics.AprPercent, 12)
		resp["projection"] = map[string]float64{
			"balance": balance,
			"rewards": rewards,
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleHealthScore evaluates the wallet health heuristic. The gas
// reading comes from the tracker; everything else from query params.
func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	in := health.Input{WhaleMonitoring: q.Get("whale") == "true"}

	var err error
	if in.StakedAmount, err = floatParam(q.Get("staked")); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid staked")
		return
	}
	if in.AprPercent, err = floatParam(q.Get("apr")); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid apr")
		return
	}
	if in.Allowance, err = floatParam(q.Get("allowance")); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid allowance")
		return
	}
	if in.TokenBalance, err = floatParam(q.Get("balance")); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid balance")
		return
	}

	if gwei, ok := s.gasTracker.ScoreValue(); ok {
		in.GasGwei = &gwei
	}

	s.writeJSON(w, http.StatusOK, health.Evaluate(in))
}

// poolParam parses and validates a pool query parameter.
func (s *Server) poolParam(w http.ResponseWriter, raw string) (domain.PoolID, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid pool")
		return 0, false
	}
	pool, err := domain.ParsePoolID(n)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid pool")
		return 0, false
	}
	return pool, true
}

// floatParam parses an optional non-negative float; empty means zero.
func floatParam(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, errors.New("invalid value")
	}
	return v, nil
}
