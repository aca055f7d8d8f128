package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/easyeats/easyeats/internal/identity"
	"github.com/easyeats/easyeats/internal/logging"
	"github.com/easyeats/easyeats/internal/models"
	"github.com/easyeats/easyeats/internal/repositories"
	"github.com/easyeats/easyeats/internal/storage"
)

const maxUploadBytes = 10 << 20

// ProfileHandler implements the /api/users/ profile endpoints.
type ProfileHandler struct {
	Profiles ProfileStore
	Images   ImageStorage
	Limiter  RateLimiter
	NowFunc  func() time.Time
}

// Create handles POST /api/users/create_profile/.
func (h ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Profiles == nil {
		logger.Error("profile store unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "profile services unavailable")
		return
	}

	if !allowRequest(h.Limiter, r, "create_profile") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many requests")
		return
	}

	claims, ok := identity.ClaimsFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication credentials were not provided")
		return
	}

	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create profile payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.FirebaseUID = strings.TrimSpace(req.FirebaseUID)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	switch {
	case req.FirebaseUID == "":
		respondError(ctx, w, http.StatusBadRequest, "firebase_uid is required")
		return
	case req.Email == "":
		respondError(ctx, w, http.StatusBadRequest, "email is required")
		return
	}

	if req.FirebaseUID != claims.UID {
		logger.Warn("create profile uid mismatch", "requested", req.FirebaseUID)
		respondError(ctx, w, http.StatusForbidden, "cannot create a profile for another user")
		return
	}

	now := h.now()
	profile := models.UserProfile{
		ID:             uuid.NewString(),
		FirebaseUID:    req.FirebaseUID,
		Email:          req.Email,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Bio:            req.Bio,
		Location:       strings.TrimSpace(req.Location),
		ProfilePicture: strings.TrimSpace(req.ProfilePicture),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if msg := validateProfile(profile); msg != "" {
		respondError(ctx, w, http.StatusBadRequest, msg)
		return
	}

	if _, err := h.Profiles.FindByUID(ctx, profile.FirebaseUID); err == nil {
		respondError(ctx, w, http.StatusBadRequest, "Profile already exists")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("create profile lookup failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to verify existing profiles")
		return
	}

	if err := h.Profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusBadRequest, "Profile already exists")
			return
		}
		logger.Error("failed to create profile", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create profile")
		return
	}

	logger.Info("profile created", "profileId", profile.ID)
	respondJSON(ctx, w, http.StatusCreated, createProfileResponse{Profile: newProfileResponse(profile)})
}

// Get handles GET /api/users/{uid}/get_profile/.
func (h ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Profiles == nil {
		logger.Error("profile store unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "profile services unavailable")
		return
	}

	profile, err := h.Profiles.FindByUID(ctx, r.PathValue("uid"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Profile not found")
			return
		}
		logger.Error("failed to load profile", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, newProfileResponse(profile))
}

// Update handles PUT /api/users/{uid}/update_profile/. Only the fields present in the
// form are changed.
func (h ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Profiles == nil {
		logger.Error("profile store unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "profile services unavailable")
		return
	}

	uid := r.PathValue("uid")
	claims, ok := identity.ClaimsFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "authentication credentials were not provided")
		return
	}
	if claims.UID != uid {
		logger.Warn("profile update forbidden", "target", uid)
		respondError(ctx, w, http.StatusForbidden, "cannot modify another user's profile")
		return
	}

	if err := parseForm(w, r); err != nil {
		logger.Warn("invalid profile update payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid form body")
		return
	}

	profile, err := h.Profiles.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Profile not found")
			return
		}
		logger.Error("failed to load profile for update", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	if v, ok := formValue(r, "bio"); ok {
		profile.Bio = v
	}
	if v, ok := formValue(r, "location"); ok {
		profile.Location = strings.TrimSpace(v)
	}
	if v, ok := formValue(r, "user.first_name", "first_name"); ok {
		profile.FirstName = strings.TrimSpace(v)
	}
	if v, ok := formValue(r, "user.last_name", "last_name"); ok {
		profile.LastName = strings.TrimSpace(v)
	}
	if v, ok := formValue(r, "user.email", "email"); ok {
		profile.Email = strings.TrimSpace(strings.ToLower(v))
	}
	if msg := validateProfile(profile); msg != "" {
		respondError(ctx, w, http.StatusBadRequest, msg)
		return
	}

	img, closeImg, err := formImage(r, "profile_picture")
	if err != nil {
		logger.Warn("invalid profile picture upload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid profile_picture upload")
		return
	}
	var uploaded string
	if img != nil {
		defer closeImg()
		if h.Images == nil {
			respondError(ctx, w, http.StatusServiceUnavailable, "image storage unavailable")
			return
		}
		location, err := h.Images.SaveImage(ctx, storage.ProfilePictures, uid, *img)
		if err != nil {
			logger.Error("failed to store profile picture", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "failed to store profile picture")
			return
		}
		profile.ProfilePicture = location
		uploaded = location
	}

	profile.UpdatedAt = h.now()
	if err := h.Profiles.Update(ctx, profile); err != nil {
		discardImage(ctx, h.Images, uploaded)
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "Profile not found")
			return
		}
		logger.Error("failed to update profile", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, newProfileResponse(profile))
}

func validateProfile(p models.UserProfile) string {
	if _, err := mail.ParseAddress(p.Email); err != nil || strings.ContainsAny(p.Email, " <>") {
		return "Enter a valid email address."
	}
	if utf8.RuneCountInString(p.FirstName) > models.MaxNameLength {
		return "first_name must be at most 30 characters"
	}
	if utf8.RuneCountInString(p.LastName) > models.MaxNameLength {
		return "last_name must be at most 30 characters"
	}
	if utf8.RuneCountInString(p.Location) > models.MaxLocationLength {
		return "location must be at most 100 characters"
	}
	return ""
}

func (h ProfileHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type createProfileRequest struct {
	FirebaseUID    string `json:"firebase_uid"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	ProfilePicture string `json:"profile_picture"`
}

type createProfileResponse struct {
	Profile profileResponse `json:"profile"`
}

type profileUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type profileResponse struct {
	ID             string      `json:"id"`
	FirebaseUID    string      `json:"firebase_uid"`
	Email          string      `json:"email"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Bio            string      `json:"bio"`
	Location       string      `json:"location"`
	ProfilePicture *string     `json:"profile_picture"`
	RecipeCount    int         `json:"recipe_count"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	User           profileUser `json:"user"`
}

func newProfileResponse(p models.UserProfile) profileResponse {
	resp := profileResponse{
		ID:          p.ID,
		FirebaseUID: p.FirebaseUID,
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Bio:         p.Bio,
		Location:    p.Location,
		RecipeCount: p.RecipeCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		User: profileUser{
			Username:  p.Email,
			Email:     p.Email,
			FirstName: p.FirstName,
			LastName:  p.LastName,
		},
	}
	if p.ProfilePicture != "" {
		picture := p.ProfilePicture
		resp.ProfilePicture = &picture
	}
	return resp
}
