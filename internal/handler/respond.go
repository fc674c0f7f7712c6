package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/bazaarline/storefront/internal/domain/cart"
	"github.com/bazaarline/storefront/internal/domain/category"
	"github.com/bazaarline/storefront/internal/domain/order"
	"github.com/bazaarline/storefront/internal/domain/product"
)

// errorResponse is the shared error payload for every API error.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(ctx).Error("encode response", zap.Error(err))
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	respondJSON(ctx, w, status, errorResponse{Code: status, Message: message})
}

// decodeJSON reads and decodes the request body, rejecting unknown trailing
// content.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode body")
	}
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}

// respondDomainError maps domain errors to HTTP status codes. Validation
// failures carry the specific constraint in the message; anything unmapped is
// logged and surfaced as a generic 500.
func respondDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		oosErr *cart.OutOfStockError
		qesErr *cart.QuantityExceedsStockError
		mvsErr *cart.MissingVariantSelectionError
		pnfErr *order.ProductNotFoundError
		itErr  *order.InvalidTransitionError
		cscErr *category.CascadeError
	)

	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, category.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.As(err, &oosErr),
		errors.As(err, &qesErr),
		errors.As(err, &mvsErr),
		errors.As(err, &pnfErr):
		respondError(ctx, w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, order.ErrEmptyCart):
		respondError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.As(err, &itErr):
		respondError(ctx, w, http.StatusConflict, err.Error())
	case errors.As(err, &cscErr):
		zctx.From(ctx).Error("cascade delete", zap.Error(err))
		respondError(ctx, w, http.StatusInternalServerError, err.Error())
	default:
		zctx.From(ctx).Error("handler", zap.Error(err))
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
	}
}
