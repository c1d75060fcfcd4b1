package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/okarpenko/staybase/internal/auth"
	"github.com/okarpenko/staybase/internal/middleware"
	"github.com/okarpenko/staybase/internal/model"
	"github.com/okarpenko/staybase/internal/store"
)

// errHotelNotFound aborts a file-store mutation without touching the
// file.
var errHotelNotFound = errors.New("hotel not found")

// HotelHandler handles the hotel CRUD routes over the flat-file store.
type HotelHandler struct {
	file   *store.FileStore
	logger *zap.Logger
}

// NewHotelHandler creates a new HotelHandler instance.
func NewHotelHandler(file *store.FileStore, logger *zap.Logger) *HotelHandler {
	return &HotelHandler{
		file:   file,
		logger: logger,
	}
}

// RegisterRoutes registers the hotel routes. Reads are public;
// mutations are gated behind operator token authentication.
func (h *HotelHandler) RegisterRoutes(router *mux.Router, operatorGate middleware.Middleware) {
	sub := router.PathPrefix("/hotels").Subrouter()

	sub.HandleFunc("", h.List).Methods(http.MethodGet)
	sub.HandleFunc("/", h.List).Methods(http.MethodGet)

	create := operatorGate(http.HandlerFunc(h.Create))
	sub.Handle("", create).Methods(http.MethodPost)
	sub.Handle("/", create).Methods(http.MethodPost)

	sub.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	sub.Handle("/{id}", operatorGate(http.HandlerFunc(h.Update))).Methods(http.MethodPut)
	sub.Handle("/{id}", operatorGate(http.HandlerFunc(h.Delete))).Methods(http.MethodDelete)
}

// List handles GET /hotels and returns the entire stored collection.
func (h *HotelHandler) List(w http.ResponseWriter, _ *http.Request) {
	hotels, err := h.file.ReadAll()
	if err != nil {
		h.storeError(w, err, "list hotels")
		return
	}

	writeJSON(h.logger, w, http.StatusOK, hotels)
}

// Get handles GET /hotels/{id}, matching the id by string equality.
func (h *HotelHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	hotels, err := h.file.ReadAll()
	if err != nil {
		h.storeError(w, err, "get hotel")
		return
	}

	for i := range hotels {
		if hotels[i].ID == id {
			writeJSON(h.logger, w, http.StatusOK, hotels[i])
			return
		}
	}

	writeMsg(h.logger, w, http.StatusNotFound, "message", "Hotel not found")
}

// Create handles POST /hotels. The new listing gets id = current
// count + 1 and is stamped with the authenticated operator's id.
func (h *HotelHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input model.HotelInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		writeMsg(h.logger, w, http.StatusBadRequest, "message", "invalid request body")
		return
	}

	id, _ := auth.FromContext(r.Context())

	var created model.Hotel
	err := h.file.Mutate(func(hotels []model.Hotel) ([]model.Hotel, error) {
		created = model.Hotel{
			ID:         strconv.Itoa(len(hotels) + 1),
			OperatorID: id.User.ID,
		}
		input.ApplyTo(&created)

		return append(hotels, created), nil
	})
	if err != nil {
		h.storeError(w, err, "create hotel")
		return
	}

	writeJSON(h.logger, w, http.StatusCreated, created)
}

// Update handles PUT /hotels/{id}, shallow-merging the supplied fields
// onto the stored listing.
func (h *HotelHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input model.HotelInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		writeMsg(h.logger, w, http.StatusBadRequest, "message", "invalid request body")
		return
	}

	var updated model.Hotel
	err := h.file.Mutate(func(hotels []model.Hotel) ([]model.Hotel, error) {
		for i := range hotels {
			if hotels[i].ID == id {
				input.ApplyTo(&hotels[i])
				updated = hotels[i]

				return hotels, nil
			}
		}

		return nil, errHotelNotFound
	})
	if err != nil {
		if errors.Is(err, errHotelNotFound) {
			writeMsg(h.logger, w, http.StatusNotFound, "message", "Hotel not found")
			return
		}

		h.storeError(w, err, "update hotel")
		return
	}

	writeJSON(h.logger, w, http.StatusOK, updated)
}

// Delete handles DELETE /hotels/{id} and returns 204 with no body on
// success.
func (h *HotelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.file.Mutate(func(hotels []model.Hotel) ([]model.Hotel, error) {
		remaining := make([]model.Hotel, 0, len(hotels))
		for i := range hotels {
			if hotels[i].ID != id {
				remaining = append(remaining, hotels[i])
			}
		}

		if len(remaining) == len(hotels) {
			return nil, errHotelNotFound
		}

		return remaining, nil
	})
	if err != nil {
		if errors.Is(err, errHotelNotFound) {
			writeMsg(h.logger, w, http.StatusNotFound, "message", "Hotel not found")
			return
		}

		h.storeError(w, err, "delete hotel")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HotelHandler) storeError(w http.ResponseWriter, err error, operation string) {
	h.logger.Error("file store operation failed", zap.String("operation", operation), zap.Error(err))
	writeMsg(h.logger, w, http.StatusInternalServerError, "message", "Internal server error")
}
