package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"bloodbank/internal/bank"
	"bloodbank/internal/bank/service"
	platformmetrics "bloodbank/internal/platform/metrics"
	"bloodbank/internal/platform/middleware"
	dErrors "bloodbank/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// Service defines the interface for blood-bank operations.
type Service interface {
	Donate(ctx context.Context, donorID string, quantityML int) (service.DonationResult, error)
	Request(ctx context.Context, recipientID string, quantityML int) (service.RequestResult, error)
	Availability(ctx context.Context, bloodType bank.BloodType) (int, error)
	DonationHistory(ctx context.Context, donorID string) ([]bank.BloodUnit, error)
	RequestHistory(ctx context.Context, recipientID string) ([]bank.BloodRequest, error)
}

// Handler is the thin HTTP layer over the bank service. It validates input,
// resolves actor identity from the auth middleware, and translates outcomes
// into JSON; business rules stay in the service.
type Handler struct {
	logger       *slog.Logger
	bank         Service
	metrics      *platformmetrics.Metrics
	jwtValidator middleware.JWTValidator
	idempotency  middleware.IdempotencyStore
	idemTTL      time.Duration
}

func New(
	bankSvc Service,
	logger *slog.Logger,
	metrics *platformmetrics.Metrics,
	jwtValidator middleware.JWTValidator,
	idempotency middleware.IdempotencyStore,
	idemTTL time.Duration,
) *Handler {
	return &Handler{
		logger:       logger,
		bank:         bankSvc,
		metrics:      metrics,
		jwtValidator: jwtValidator,
		idempotency:  idempotency,
		idemTTL:      idemTTL,
	}
}

// Register registers the bank routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	bankRouter := chi.NewRouter()
	bankRouter.Use(middleware.Recovery(h.logger))
	bankRouter.Use(middleware.RequestID)
	bankRouter.Use(middleware.Logger(h.logger))
	bankRouter.Use(middleware.Timeout(30 * time.Second))
	bankRouter.Use(middleware.ContentTypeJSON)
	bankRouter.Use(middleware.LatencyMiddleware(h.metrics))
	bankRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	bankRouter.With(middleware.Idempotency(h.idempotency, h.idemTTL)).
		Post("/donations", h.handleDonate)
	bankRouter.With(middleware.Idempotency(h.idempotency, h.idemTTL)).
		Post("/requests", h.handleRequest)
	bankRouter.Get("/donations", h.handleDonationHistory)
	bankRouter.Get("/requests", h.handleRequestHistory)
	bankRouter.Get("/inventory/{bloodType}", h.handleAvailability)

	r.Mount("/", bankRouter)
}

type submitBody struct {
	// QuantityML arrives textual or numeric depending on the caller; it is
	// coerced to a positive integer before reaching the service.
	QuantityML any `json:"quantity_ml"`
}

func (h *Handler) handleDonate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	donorID, ok := h.requireRole(w, r, middleware.RoleDonor)
	if !ok {
		return
	}

	quantity, err := decodeQuantity(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid donation request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	result, err := h.bank.Donate(ctx, donorID, quantity)
	if err != nil {
		h.logError(ctx, "donation failed", err)
		writeError(w, err)
		return
	}
	if !result.Eligible {
		writeJSON(w, http.StatusOK, map[string]any{
			"eligible":           false,
			"message":            "donors must wait 60 days between donations",
			"next_donation_date": result.NextEligibleDate.Format(dateLayout),
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"unit_id":         result.Unit.ID.String(),
		"blood_type":      string(result.Unit.BloodType),
		"quantity_ml":     result.Unit.QuantityML,
		"collection_date": result.Unit.CollectionDate.Format(dateLayout),
		"expiry_date":     result.Unit.ExpiryDate.Format(dateLayout),
	})
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recipientID, ok := h.requireRole(w, r, middleware.RoleRecipient)
	if !ok {
		return
	}

	quantity, err := decodeQuantity(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid blood request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	result, err := h.bank.Request(ctx, recipientID, quantity)
	if err != nil {
		h.logError(ctx, "blood request failed", err)
		writeError(w, err)
		return
	}
	if !result.Eligible {
		writeJSON(w, http.StatusOK, map[string]any{
			"eligible":          false,
			"message":           "recipients must wait 40 days between requests",
			"next_request_date": result.NextEligibleDate.Format(dateLayout),
		})
		return
	}
	message := "request fulfilled"
	if result.Request.Status == bank.StatusPending {
		message = "insufficient stock, request recorded as pending"
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"request_id":   result.Request.ID.String(),
		"status":       string(result.Request.Status),
		"blood_type":   string(result.Request.BloodType),
		"quantity_ml":  result.Request.QuantityML,
		"request_date": result.Request.RequestDate.Format(dateLayout),
		"message":      message,
	})
}

func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bloodType, err := bank.ParseBloodType(chi.URLParam(r, "bloodType"))
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}
	total, err := h.bank.Availability(ctx, bloodType)
	if err != nil {
		h.logError(ctx, "availability lookup failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"blood_type":   string(bloodType),
		"available_ml": total,
	})
}

func (h *Handler) handleDonationHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	donorID, ok := h.requireRole(w, r, middleware.RoleDonor)
	if !ok {
		return
	}
	units, err := h.bank.DonationHistory(ctx, donorID)
	if err != nil {
		h.logError(ctx, "donation history failed", err)
		writeError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(units))
	for _, unit := range units {
		items = append(items, map[string]any{
			"unit_id":         unit.ID.String(),
			"blood_type":      string(unit.BloodType),
			"quantity_ml":     unit.QuantityML,
			"collection_date": unit.CollectionDate.Format(dateLayout),
			"expiry_date":     unit.ExpiryDate.Format(dateLayout),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"donations": items})
}

func (h *Handler) handleRequestHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recipientID, ok := h.requireRole(w, r, middleware.RoleRecipient)
	if !ok {
		return
	}
	requests, err := h.bank.RequestHistory(ctx, recipientID)
	if err != nil {
		h.logError(ctx, "request history failed", err)
		writeError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(requests))
	for _, request := range requests {
		items = append(items, map[string]any{
			"request_id":   request.ID.String(),
			"blood_type":   string(request.BloodType),
			"quantity_ml":  request.QuantityML,
			"request_date": request.RequestDate.Format(dateLayout),
			"status":       string(request.Status),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": items})
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, role string) (string, bool) {
	ctx := r.Context()
	actorID := middleware.GetActorID(ctx)
	if actorID == "" {
		// Should never happen once RequireAuth is mounted.
		h.logger.ErrorContext(ctx, "actor missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		writeError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	if middleware.GetRole(ctx) != role {
		w.WriteHeader(http.StatusForbidden)
		return "", false
	}
	return actorID, true
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}

func decodeQuantity(r *http.Request) (int, error) {
	var body submitBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return coerceQuantity(body.QuantityML)
}

// coerceQuantity accepts the quantity as the caller sent it, textual or
// numeric, and narrows it to a positive integer.
func coerceQuantity(raw any) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, dErrors.New(dErrors.CodeBadRequest, "quantity must be a whole number")
		}
		return requirePositive(int(v))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, dErrors.New(dErrors.CodeBadRequest, "quantity must be numeric")
		}
		return requirePositive(n)
	case nil:
		return 0, dErrors.New(dErrors.CodeBadRequest, "quantity_ml is required")
	default:
		return 0, dErrors.New(dErrors.CodeBadRequest, "quantity must be numeric")
	}
}

func requirePositive(n int) (int, error) {
	if n <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "quantity must be a positive integer")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError centralizes domain error translation so every endpoint returns
// the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   string(code),
		"message": dErrors.MessageOf(err),
	})
}
