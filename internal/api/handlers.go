// Wayfarer - Nearby Recommendation Aggregation and Ranking Engine
// Copyright 2026 Wayfarer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarerhq/wayfarer

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/internal/models"
	"github.com/wayfarerhq/wayfarer/internal/store"
)

// Default position when neither coordinates nor a resolvable location are
// provided.
const (
	defaultHomeLat = 37.7749
	defaultHomeLng = -122.4194
)

var timeNow = time.Now

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (rt *Router) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if !rt.ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleRecommendations answers GET /api/v1/recommendations. Query
// parameters override stored preferences field by field; anything absent
// falls back to what the user saved.
func (rt *Router) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID := q.Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	count := rt.cfg.API.DefaultCount
	if raw := q.Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = n
	}

	user, err := rt.buildUserContext(r, userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := rt.engine.Recommend(r.Context(), user, count)
	if err != nil {
		logging.Error().Err(err).Str("user_id", userID).Msg("recommendation request failed")
		writeError(w, http.StatusInternalServerError, "failed to build recommendations")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// buildUserContext merges stored preferences, query overrides, and history
// into the engine's input.
func (rt *Router) buildUserContext(r *http.Request, userID string) (*models.UserContext, error) {
	q := r.URL.Query()
	ctx := r.Context()

	prefs := models.Preferences{Budget: models.BudgetAny}
	if rt.prefs != nil {
		stored, err := rt.prefs.Preferences(ctx, userID)
		switch {
		case err == nil:
			prefs = stored
		case !errors.Is(err, store.ErrNotFound):
			logging.Warn().Err(err).Str("user_id", userID).Msg("failed to load stored preferences")
		}
	}

	if raw := q.Get("categories"); raw != "" {
		prefs.Categories = parseCategories(raw)
	}
	if raw := q.Get("interests"); raw != "" {
		prefs.Interests = splitCSV(raw)
	}
	if raw := q.Get("budget"); raw != "" {
		prefs.Budget = models.BudgetTier(raw)
	}
	if raw := q.Get("kid_friendly"); raw != "" {
		prefs.KidFriendly = raw == "true" || raw == "1"
	}
	if raw := q.Get("travel_buckets"); raw != "" {
		prefs.TravelBuckets = parseBuckets(raw)
	}
	if raw := q.Get("group"); raw != "" {
		prefs.GroupType = models.GroupType(raw)
	}

	location := q.Get("location")
	if location == "" {
		location = prefs.Location
	}

	lat, lng, err := rt.resolvePosition(r, location)
	if err != nil {
		return nil, err
	}

	user := &models.UserContext{
		UserID:         userID,
		Lat:            lat,
		Lng:            lng,
		LocationString: location,
		Preferences:    prefs,
	}

	if rt.history != nil {
		if visited, err := rt.history.VisitedList(ctx, userID); err == nil {
			user.Visited = visited
		} else {
			logging.Warn().Err(err).Str("user_id", userID).Msg("failed to load visited history")
		}
		if recents, err := rt.history.RecentRecommendations(ctx, userID); err == nil {
			user.Recent = recents
		} else {
			logging.Warn().Err(err).Str("user_id", userID).Msg("failed to load recent history")
		}
	}
	return user, nil
}

// resolvePosition prefers explicit lat/lng, then geocodes the location
// string, then falls back to the default home position.
func (rt *Router) resolvePosition(r *http.Request, location string) (float64, float64, error) {
	q := r.URL.Query()
	rawLat, rawLng := q.Get("lat"), q.Get("lng")

	if rawLat != "" || rawLng != "" {
		lat, latErr := strconv.ParseFloat(rawLat, 64)
		lng, lngErr := strconv.ParseFloat(rawLng, 64)
		if latErr != nil || lngErr != nil {
			return 0, 0, errors.New("lat and lng must both be valid numbers")
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return 0, 0, errors.New("lat/lng out of range")
		}
		return lat, lng, nil
	}

	if location != "" && rt.geocode != nil {
		if lat, lng, ok := rt.geocode(r.Context(), location); ok {
			return lat, lng, nil
		}
	}
	return defaultHomeLat, defaultHomeLng, nil
}

func (rt *Router) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	prefs, err := rt.prefs.Preferences(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no preferences stored for user")
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("user_id", userID).Msg("failed to read preferences")
		writeError(w, http.StatusInternalServerError, "failed to read preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (rt *Router) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var prefs models.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid preferences payload")
		return
	}
	if prefs.Budget == "" {
		prefs.Budget = models.BudgetAny
	}

	if err := rt.prefs.SetPreferences(r.Context(), userID, prefs); err != nil {
		logging.Error().Err(err).Str("user_id", userID).Msg("failed to store preferences")
		writeError(w, http.StatusInternalServerError, "failed to store preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type visitRequest struct {
	PlaceID string `json:"place_id"`
}

func (rt *Router) handleAddVisit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req visitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaceID == "" {
		writeError(w, http.StatusBadRequest, "place_id is required")
		return
	}

	visit := models.VisitedPlace{PlaceID: req.PlaceID, VisitedAt: timeNow()}
	if err := rt.history.AddVisited(r.Context(), userID, visit); err != nil {
		logging.Error().Err(err).Str("user_id", userID).Msg("failed to record visit")
		writeError(w, http.StatusInternalServerError, "failed to record visit")
		return
	}
	writeJSON(w, http.StatusCreated, visit)
}

func parseCategories(raw string) []models.Category {
	parts := splitCSV(raw)
	out := make([]models.Category, 0, len(parts))
	for _, p := range parts {
		out = append(out, models.Category(p))
	}
	return out
}

func parseBuckets(raw string) []models.TravelBucket {
	parts := splitCSV(raw)
	out := make([]models.TravelBucket, 0, len(parts))
	for _, p := range parts {
		out = append(out, models.TravelBucket(p))
	}
	return out
}

func splitCSV(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
