package pricing

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	pricingsvc "gitlab.com/mcpricing.net/internal/core/services/pricing"
	"gitlab.com/mcpricing.net/internal/domain"
	"gitlab.com/mcpricing.net/internal/handlers/response"
)

// PricingHandler runs pricing jobs on behalf of HTTP clients
type PricingHandler struct {
	pricingService pricingsvc.IPricingService
	logger         primary.Logger
}

func NewPricingHandler(pricingService pricingsvc.IPricingService, logger primary.Logger) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		logger:         logger,
	}
}

func (h *PricingHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/pricing", h.PriceOption).Methods("POST")
}

// PriceOption blocks until the job converges. Closing the request cancels the job.
func (h *PricingHandler) PriceOption(w http.ResponseWriter, r *http.Request) {
	var req PricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	params := req.params(h.pricingService.DefaultParams())

	var (
		result *domain.PricingResult
		err    error
	)
	switch {
	case req.Option != nil:
		result, err = h.pricingService.RunJob(r.Context(), *req.Option, params)
	case req.OptionName != "" && req.PayoutType != "":
		result, err = h.pricingService.PriceOption(r.Context(), req.OptionName, domain.PayoutType(req.PayoutType), params)
	default:
		response.WriteError(w, response.ErrorMessage{
			Message:    "either option or option_name and payout_type are required",
			StatusCode: http.StatusBadRequest,
		})
		return
	}

	if err != nil {
		h.logger.Error("Failed to price option", "error", err)
		response.WriteError(w, response.FromError(err))
		return
	}

	response.WriteSuccess(w, NewPricingResponse(result))
}
