package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus_rentals/internal/app"
	"campus_rentals/internal/domain"
)

// ---- reviews ----

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	out, err := h.Reviews.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) addReview(w http.ResponseWriter, r *http.Request) {
	var in app.ReviewInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.contact(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.Reviews.Add(r.Context(), u, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *Handlers) editReview(w http.ResponseWriter, r *http.Request) {
	var in app.ReviewInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.Reviews.Edit(r.Context(), principal(r).UserID, chi.URLParam(r, "id"), chi.URLParam(r, "reviewID"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *Handlers) removeReview(w http.ResponseWriter, r *http.Request) {
	if err := h.Reviews.Remove(r.Context(), principal(r).UserID, chi.URLParam(r, "id"), chi.URLParam(r, "reviewID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- inquiries ----

func (h *Handlers) listInquiries(w http.ResponseWriter, r *http.Request) {
	out, err := h.Inquiries.ListForTenant(r.Context(), principal(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) sendInquiry(w http.ResponseWriter, r *http.Request) {
	var in app.InquiryInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.contact(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := h.Inquiries.Send(r.Context(), u, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handlers) getInquiry(w http.ResponseWriter, r *http.Request) {
	q, err := h.Inquiries.Get(r.Context(), principal(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) cancelInquiry(w http.ResponseWriter, r *http.Request) {
	if err := h.Inquiries.Cancel(r.Context(), principal(r).UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) listLandlordInquiries(w http.ResponseWriter, r *http.Request) {
	st := domain.InquiryStatus(r.URL.Query().Get("status"))
	out, err := h.Inquiries.ListForLandlord(r.Context(), principal(r).UserID, st)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) inquiryStats(w http.ResponseWriter, r *http.Request) {
	out, err := h.Inquiries.Stats(r.Context(), principal(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) respondInquiry(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Response string `json:"response"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	q, err := h.Inquiries.Respond(r.Context(), principal(r).UserID, chi.URLParam(r, "id"), in.Response)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) setInquiryStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status domain.InquiryStatus `json:"status"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Inquiries.SetStatus(r.Context(), principal(r).UserID, chi.URLParam(r, "id"), in.Status); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- messages ----

func (h *Handlers) listConversations(w http.ResponseWriter, r *http.Request) {
	out, err := h.Messages.Conversations(r.Context(), principal(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) getThread(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.Messages.Thread(r.Context(), principal(r).UserID, q.Get("propertyId"), q.Get("with"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	var in app.MessageInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.Messages.Send(r.Context(), principal(r).UserID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handlers) markMessageRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Messages.MarkRead(r.Context(), principal(r).UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
