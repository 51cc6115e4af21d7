package options

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/services/catalog"
	"gitlab.com/mcpricing.net/internal/domain"
	"gitlab.com/mcpricing.net/internal/handlers"
	"gitlab.com/mcpricing.net/internal/handlers/response"
)

// OptionHandler serves the option catalog
type OptionHandler struct {
	catalogService catalog.ICatalogService
	logger         primary.Logger
}

func NewOptionHandler(catalogService catalog.ICatalogService, logger primary.Logger) *OptionHandler {
	return &OptionHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

func (h *OptionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/options", h.ListOptions).Methods("GET")
	router.HandleFunc("/api/options", h.SaveOption).Methods("POST")
	router.HandleFunc("/api/options/{name}/{payoutType}", h.GetOption).Methods("GET")
}

func (h *OptionHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	records, err := h.catalogService.ListOptions(r.Context())
	if err != nil {
		h.logger.Error("Failed to list options", "error", err)
		response.WriteError(w, response.FromError(err))
		return
	}

	handlers.ResponseWithJson(w, http.StatusOK, records)
}

func (h *OptionHandler) SaveOption(w http.ResponseWriter, r *http.Request) {
	var option domain.OptionSpec
	if err := json.NewDecoder(r.Body).Decode(&option); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	if err := h.catalogService.SaveOption(r.Context(), option); err != nil {
		h.logger.Error("Failed to save option", "error", err)
		response.WriteError(w, response.FromError(err))
		return
	}

	handlers.ResponseWithJson(w, http.StatusCreated, option)
}

func (h *OptionHandler) GetOption(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	record, err := h.catalogService.GetOption(r.Context(), vars["name"], domain.PayoutType(vars["payoutType"]))
	if err != nil {
		response.WriteError(w, response.FromError(err))
		return
	}

	handlers.ResponseWithJson(w, http.StatusOK, record)
}
