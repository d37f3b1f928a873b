package api

import (
	"net/http"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/service"
)

type GarageHandler struct {
	garage service.GarageService
}

func NewGarageHandler(garage service.GarageService) *GarageHandler {
	return &GarageHandler{garage: garage}
}

func (h *GarageHandler) AddCar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Make        string `json:"make"`
		Model       string `json:"model"`
		Year        int32  `json:"year"`
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	car := &domain.Car{
		OwnerID:     CallerID(r.Context()),
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Description: req.Description,
	}
	if err := h.garage.AddCar(r.Context(), car); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{"car": car})
}

func (h *GarageHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	carID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	car, images, err := h.garage.GetCar(r.Context(), carID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if images == nil {
		images = []domain.CarImage{}
	}
	respondSuccess(w, http.StatusOK, envelope{"car": car, "images": images})
}

func (h *GarageHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	carID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Make        string `json:"make"`
		Model       string `json:"model"`
		Year        int32  `json:"year"`
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	car := &domain.Car{
		ID:          carID,
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Description: req.Description,
	}
	if err := h.garage.UpdateCar(r.Context(), CallerID(r.Context()), car); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"car": car})
}

func (h *GarageHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	carID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.garage.DeleteCar(r.Context(), CallerID(r.Context()), carID); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil)
}

// MyCars lists the caller's own garage.
func (h *GarageHandler) MyCars(w http.ResponseWriter, r *http.Request) {
	cars, err := h.garage.ListByOwner(r.Context(), CallerID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if cars == nil {
		cars = []domain.Car{}
	}
	respondSuccess(w, http.StatusOK, envelope{"cars": cars})
}

// Gallery is the public feed of everyone's cars, paginated, with the
// caller's like state joined in.
func (h *GarageHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 0)

	result, err := h.garage.Gallery(r.Context(), CallerID(r.Context()), page, pageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if result.Cars == nil {
		result.Cars = []domain.Car{}
	}
	respondSuccess(w, http.StatusOK, envelope{"gallery": result})
}

func (h *GarageHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	carID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	liked, likeCount, err := h.garage.ToggleLike(r.Context(), CallerID(r.Context()), carID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"liked": liked, "like_count": likeCount})
}

func (h *GarageHandler) RequestUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CarID       *int32 `json:"carId"`
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
		IsPrimary   bool   `json:"isPrimary"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	ticket, err := h.garage.RequestImageUpload(r.Context(), CallerID(r.Context()), req.CarID, req.Filename, req.ContentType, req.IsPrimary)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{"upload": ticket})
}

func (h *GarageHandler) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	imageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		CarID int32 `json:"carId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	img, err := h.garage.ConfirmImageUpload(r.Context(), CallerID(r.Context()), imageID, req.CarID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"image": img})
}

func (h *GarageHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	imageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	url, err := h.garage.ImageDownloadURL(r.Context(), imageID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"download_url": url})
}

func (h *GarageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	imageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.garage.DeleteImage(r.Context(), CallerID(r.Context()), imageID); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil)
}
