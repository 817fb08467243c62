package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/repository"
)

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", models.ErrInvalidID, r.PathValue("id"))
	}
	return id, nil
}

func listOptions(r *http.Request) (repository.ListOptions, error) {
	var opts repository.ListOptions
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("%w: limit must be a non-negative integer", models.ErrInvalidInput)
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("%w: offset must be a non-negative integer", models.ErrInvalidInput)
		}
		opts.Offset = n
	}
	return opts, nil
}

func tradeFilter(r *http.Request) (repository.TradeFilter, error) {
	opts, err := listOptions(r)
	if err != nil {
		return repository.TradeFilter{}, err
	}
	filter := repository.TradeFilter{ListOptions: opts, Symbol: r.URL.Query().Get("symbol")}
	if v := r.URL.Query().Get("outcome"); v != "" {
		switch outcome := models.TradeOutcome(v); outcome {
		case models.TradeOutcomeOpen, models.TradeOutcomeWin, models.TradeOutcomeLoss, models.TradeOutcomeBreakeven:
			filter.Outcome = outcome
		default:
			return repository.TradeFilter{}, fmt.Errorf("%w: unknown outcome %q", models.ErrInvalidInput, v)
		}
	}
	return filter, nil
}
