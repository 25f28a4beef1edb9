package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tidecal/server/internal/api/middleware"
	"github.com/tidecal/server/internal/api/problem"
	"github.com/tidecal/server/internal/domain/users"
)

type ProfileHandler struct {
	Users *users.Service
	Env   string
}

func NewProfileHandler(userService *users.Service, env string) *ProfileHandler {
	return &ProfileHandler{Users: userService, Env: env}
}

type setPictureRequest struct {
	// ImageBase64 is the raw uploaded image, any decodable format.
	ImageBase64 string      `json:"image_base64"`
	Crop        *users.Rect `json:"crop,omitempty"`
}

type pictureResponse struct {
	Picture string `json:"picture"`
}

func (h *ProfileHandler) SetPicture(w http.ResponseWriter, r *http.Request) {
	var req setPictureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, h.Env)
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Image is not valid base64", err, h.Env)
		return
	}

	username := middleware.Username(r.Context())
	ref, err := h.Users.SetPicture(r.Context(), username, data, req.Crop)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrTooLarge):
			problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeValidation, "Image too large", err, h.Env)
		case errors.Is(err, users.ErrDecode):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Image could not be decoded", err, h.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Storing picture failed", err, h.Env)
		}
		return
	}

	writeJSON(w, http.StatusOK, pictureResponse{Picture: ref})
}

func (h *ProfileHandler) GetPicture(w http.ResponseWriter, r *http.Request) {
	username := middleware.Username(r.Context())
	ref, err := h.Users.GetPicture(r.Context(), username)
	if err != nil {
		if errors.Is(err, users.ErrNoPicture) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "No profile picture", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeInternal, "Fetching picture failed", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, pictureResponse{Picture: ref})
}
