package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"campus_rentals/internal/app"
	"campus_rentals/internal/domain"
)

type Handlers struct {
	Search        *app.SearchService
	Listings      *app.ListingService
	SavedSearches *app.SavedSearchService
	Favorites     *app.FavoriteService
	Viewings      *app.ViewingService
	Users         *app.UserService
	Reviews       *app.ReviewService
	Inquiries     *app.InquiryService
	Messages      *app.MessageService

	JWTSecret []byte
	Cron      CronConfig
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

const maxBody = 1 << 20

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	// long-running; bounded by the notifier's own timeout
	s.mux.Get("/api/cron/process-saved-searches", h.processSavedSearches)
	s.mux.Post("/api/cron/process-saved-searches", h.processSavedSearches)

	s.mux.Group(func(r chi.Router) {
		r.Use(Timeout(s.timeout))

		r.Get("/v1/properties", h.searchProperties)
		r.Get("/v1/properties/{id}", h.getProperty)
		r.Get("/v1/properties/{id}/similar", h.similarProperties)
		r.Get("/v1/compare", h.compareProperties)
		r.Get("/v1/properties/{id}/reviews", h.listReviews)

		r.Group(func(r chi.Router) {
			r.Use(Auth(h.JWTSecret))

			r.Get("/v1/me", h.getMe)
			r.Put("/v1/me", h.putMe)

			r.Get("/v1/saved-searches", h.listSavedSearches)
			r.Post("/v1/saved-searches", h.createSavedSearch)
			r.Get("/v1/saved-searches/{id}", h.getSavedSearch)
			r.Put("/v1/saved-searches/{id}", h.updateSavedSearch)
			r.Delete("/v1/saved-searches/{id}", h.deleteSavedSearch)

			r.Get("/v1/favorites", h.listFavorites)
			r.Post("/v1/favorites/{propertyID}", h.toggleFavorite)

			r.Get("/v1/viewings", h.listViewings)
			r.Post("/v1/viewings", h.scheduleViewing)
			r.Post("/v1/viewings/{id}/cancel", h.cancelViewing)

			r.Post("/v1/properties/{id}/reviews", h.addReview)
			r.Put("/v1/properties/{id}/reviews/{reviewID}", h.editReview)
			r.Delete("/v1/properties/{id}/reviews/{reviewID}", h.removeReview)

			r.Get("/v1/inquiries", h.listInquiries)
			r.Post("/v1/inquiries", h.sendInquiry)
			r.Get("/v1/inquiries/{id}", h.getInquiry)
			r.Post("/v1/inquiries/{id}/cancel", h.cancelInquiry)

			r.Get("/v1/messages", h.listConversations)
			r.Get("/v1/messages/thread", h.getThread)
			r.Post("/v1/messages", h.sendMessage)
			r.Post("/v1/messages/{id}/read", h.markMessageRead)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(RoleLandlord))
				r.Get("/v1/landlord/properties", h.listLandlordProperties)
				r.Post("/v1/landlord/properties", h.createProperty)
				r.Put("/v1/landlord/properties/{id}", h.updateProperty)
				r.Delete("/v1/landlord/properties/{id}", h.deleteProperty)
				r.Get("/v1/landlord/viewings", h.listLandlordViewings)
				r.Put("/v1/landlord/viewings/{id}/status", h.setViewingStatus)
				r.Get("/v1/landlord/inquiries", h.listLandlordInquiries)
				r.Get("/v1/landlord/inquiries/stats", h.inquiryStats)
				r.Post("/v1/landlord/inquiries/{id}/response", h.respondInquiry)
				r.Put("/v1/landlord/inquiries/{id}/status", h.setInquiryStatus)
			})
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, domain.ErrInvalid), errors.Is(err, domain.ErrMalformed):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable answers with 304 when the client already has this version.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		return errors.Join(domain.ErrInvalid, err)
	}
	return nil
}

func principal(r *http.Request) Principal {
	p, _ := principalFrom(r.Context())
	return p
}

// ---- catalog ----

func (h *Handlers) searchProperties(w http.ResponseWriter, r *http.Request) {
	spec, err := parseFilterSpec(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Search.Search(r.Context(), spec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, map[string]any{"items": out, "count": len(out)})
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.Search.GetProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, p)
}

func (h *Handlers) similarProperties(w http.ResponseWriter, r *http.Request) {
	limit := app.DefaultSimilar
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 20 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 20")
			return
		}
		limit = l
	}
	out, err := h.Search.Similar(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, map[string]any{"items": out})
}

func (h *Handlers) compareProperties(w http.ResponseWriter, r *http.Request) {
	out, err := h.Search.Compare(r.Context(), listParam(r.URL.Query(), "ids"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, map[string]any{"items": out})
}

// ---- profile ----

func (h *Handlers) getMe(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	u, err := h.Users.Get(r.Context(), p.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		u, err = domain.UserContact{ID: p.UserID, Email: p.Email, DisplayName: p.Name}, nil
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u, "role": p.Role})
}

func (h *Handlers) putMe(w http.ResponseWriter, r *http.Request) {
	var in domain.UserContact
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.ID = principal(r).UserID
	u, err := h.Users.UpsertProfile(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// contact resolves the caller's stored profile, falling back to token claims.
func (h *Handlers) contact(r *http.Request) (domain.UserContact, error) {
	p := principal(r)
	u, err := h.Users.Get(r.Context(), p.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.UserContact{ID: p.UserID, Email: p.Email, DisplayName: p.Name}, nil
	}
	return u, err
}

// ---- saved searches ----

type savedSearchInput struct {
	Name                  string           `json:"name"`
	Filters               any              `json:"filters"`
	EmailNotifications    bool             `json:"emailNotifications"`
	NotificationFrequency domain.Frequency `json:"notificationFrequency"`
}

func (in savedSearchInput) toDomain() (domain.SavedSearch, error) {
	f, err := domain.DecodeSearchFilters(in.Filters)
	if err != nil {
		return domain.SavedSearch{}, err
	}
	return domain.SavedSearch{
		Name:                  in.Name,
		Filters:               f,
		EmailNotifications:    in.EmailNotifications,
		NotificationFrequency: in.NotificationFrequency,
	}, nil
}

func (h *Handlers) listSavedSearches(w http.ResponseWriter, r *http.Request) {
	out, err := h.SavedSearches.ListForUser(r.Context(), principal(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) getSavedSearch(w http.ResponseWriter, r *http.Request) {
	ss, err := h.SavedSearches.Get(r.Context(), principal(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ss)
}

func (h *Handlers) createSavedSearch(w http.ResponseWriter, r *http.Request) {
	var in savedSearchInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	ss, err := in.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.SavedSearches.Save(r.Context(), principal(r).UserID, ss)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateSavedSearch(w http.ResponseWriter, r *http.Request) {
	var in savedSearchInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	ss, err := in.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.SavedSearches.Update(r.Context(), principal(r).UserID, chi.URLParam(r, "id"), ss)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteSavedSearch(w http.ResponseWriter, r *http.Request) {
	if err := h.SavedSearches.Delete(r.Context(), principal(r).UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- favorites ----

func (h *Handlers) listFavorites(w http.ResponseWriter, r *http.Request) {
	out, err := h.Favorites.Properties(r.Context(), principal(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	on, err := h.Favorites.Toggle(r.Context(), principal(r).UserID, chi.URLParam(r, "propertyID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": on})
}

// ---- viewings ----

func (h *Handlers) listViewings(w http.ResponseWriter, r *http.Request) {
	out, err := h.Viewings.ListForUser(r.Context(), principal(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) scheduleViewing(w http.ResponseWriter, r *http.Request) {
	var in app.ViewingRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.contact(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.Viewings.Schedule(r.Context(), u, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handlers) cancelViewing(w http.ResponseWriter, r *http.Request) {
	if err := h.Viewings.Cancel(r.Context(), principal(r).UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- landlord ----

func (h *Handlers) listLandlordProperties(w http.ResponseWriter, r *http.Request) {
	out, err := h.Listings.ListByLandlord(r.Context(), principal(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) createProperty(w http.ResponseWriter, r *http.Request) {
	var in domain.Property
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Listings.Create(r.Context(), principal(r).UserID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) updateProperty(w http.ResponseWriter, r *http.Request) {
	var in domain.Property
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Listings.Update(r.Context(), principal(r).UserID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) deleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := h.Listings.Delete(r.Context(), principal(r).UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) listLandlordViewings(w http.ResponseWriter, r *http.Request) {
	out, err := h.Viewings.ListForLandlord(r.Context(), principal(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) setViewingStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status domain.ViewingStatus `json:"status"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Viewings.SetStatus(r.Context(), principal(r).UserID, chi.URLParam(r, "id"), in.Status); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
