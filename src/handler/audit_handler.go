package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradecore/src/model"
	"tradecore/src/repository"
)

type auditSearcher interface {
	Search(ctx context.Context, options repository.TradeAuditSearchOptions) ([]model.TradeAudit, error)
}

// SearchTradeAuditsHandler returns a handler that lists audit records.
// Supports pagination and filters (symbol, market, outcome, createdFrom,
// createdTo).
func SearchTradeAuditsHandler(repo auditSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var symbol *string
		if symbolParam := r.URL.Query().Get("symbol"); symbolParam != "" {
			symbol = &symbolParam
		}

		var market *string
		if marketParam := r.URL.Query().Get("market"); marketParam != "" {
			if !model.TradingMarket(marketParam).Valid() {
				http.Error(w, "invalid market", http.StatusBadRequest)
				return
			}
			market = &marketParam
		}

		var outcome *string
		if outcomeParam := r.URL.Query().Get("outcome"); outcomeParam != "" {
			outcome = &outcomeParam
		}

		var createdFrom, createdTo *time.Time
		if createdFromParam := r.URL.Query().Get("createdFrom"); createdFromParam != "" {
			parsed, err := time.Parse(time.RFC3339, createdFromParam)
			if err != nil {
				http.Error(w, "invalid createdFrom", http.StatusBadRequest)
				return
			}
			createdFrom = &parsed
		}

		if createdToParam := r.URL.Query().Get("createdTo"); createdToParam != "" {
			parsed, err := time.Parse(time.RFC3339, createdToParam)
			if err != nil {
				http.Error(w, "invalid createdTo", http.StatusBadRequest)
				return
			}
			createdTo = &parsed
		}

		page := 1
		if pageParam := r.URL.Query().Get("page"); pageParam != "" {
			parsedPage, err := strconv.Atoi(pageParam)
			if err != nil || parsedPage <= 0 {
				http.Error(w, "invalid page", http.StatusBadRequest)
				return
			}
			page = parsedPage
		}

		pageSize := 20
		if sizeParam := r.URL.Query().Get("pageSize"); sizeParam != "" {
			parsedSize, err := strconv.Atoi(sizeParam)
			if err != nil || parsedSize <= 0 {
				http.Error(w, "invalid pageSize", http.StatusBadRequest)
				return
			}
			pageSize = parsedSize
		}

		offset := (page - 1) * pageSize

		records, err := repo.Search(r.Context(), repository.TradeAuditSearchOptions{
			Symbol:        symbol,
			Market:        market,
			Outcome:       outcome,
			CreatedAfter:  createdFrom,
			CreatedBefore: createdTo,
			Limit:         pageSize,
			Offset:        offset,
		})
		if err != nil {
			logger.WithError(err).Error("failed to search trade audits")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			logger.WithError(err).Error("failed to encode audit records")
		}
	}
}
