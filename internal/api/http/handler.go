package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"library-circulation/internal/domain"
	"library-circulation/internal/service"
)

// CirculationHandler exposes the circulation service over HTTP.
type CirculationHandler struct {
	svc service.CirculationService
}

func NewCirculationHandler(svc service.CirculationService) *CirculationHandler {
	return &CirculationHandler{svc: svc}
}

// RegisterRoutes mounts every circulation route on router behind auth.
func RegisterRoutes(router *mux.Router, h *CirculationHandler, auth *AuthMiddleware) {
	router.Use(RequestLogging, auth.Handler)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/reservations", h.SubmitReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{bookID}", h.CancelReservation).Methods(http.MethodDelete)
	api.HandleFunc("/loans", h.SubmitLoanRequest).Methods(http.MethodPost)
	api.HandleFunc("/loans/{bookID}/cancel-request", h.SubmitLoanCancellationRequest).Methods(http.MethodPost)

	desk := api.PathPrefix("/librarian").Subrouter()
	desk.HandleFunc("/reservations/confirm", h.ConfirmReservation).Methods(http.MethodPost)
	desk.HandleFunc("/loans/confirm", h.ConfirmLoan).Methods(http.MethodPost)
	desk.HandleFunc("/loans/cancel/confirm", h.ConfirmLoanCancellation).Methods(http.MethodPost)
	desk.HandleFunc("/pending-actions", h.ListPendingActions).Methods(http.MethodGet)
	desk.HandleFunc("/pending-actions/{id}", h.GetPendingAction).Methods(http.MethodGet)
	desk.HandleFunc("/history", h.ListHistory).Methods(http.MethodGet)
}

func (h *CirculationHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// intentFor resolves whose intent this is. Users act for themselves; a
// librarian may name another user.
func intentFor(r *http.Request, body intentRequest) (service.IntentRequest, error) {
	caller, _ := IdentityFromContext(r.Context())
	userID := caller.UserID
	if body.UserID != 0 && body.UserID != caller.UserID {
		if caller.Role != domain.UserRoleLibrarian {
			return service.IntentRequest{}, errForbidden
		}
		userID = body.UserID
	}
	return service.IntentRequest{UserID: userID, BookID: body.BookID, UserEmail: body.UserEmail}, nil
}

type forbidden struct{}

func (forbidden) Error() string { return "only librarians may act on behalf of another user" }

var errForbidden = forbidden{}

type submitFunc func(r *http.Request, req service.IntentRequest) (*domain.Receipt, error)

func (h *CirculationHandler) submitFromBody(w http.ResponseWriter, r *http.Request, status int, fn submitFunc) {
	var body intentRequest
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	h.submit(w, r, body, status, fn)
}

func (h *CirculationHandler) submitFromPath(w http.ResponseWriter, r *http.Request, status int, fn submitFunc) {
	bookID, err := pathID(r, "bookID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	body := intentRequest{BookID: bookID}
	if r.ContentLength > 0 {
		if err := decode(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		body.BookID = bookID
	}
	h.submit(w, r, body, status, fn)
}

func (h *CirculationHandler) submit(w http.ResponseWriter, r *http.Request, body intentRequest, status int, fn submitFunc) {
	req, err := intentFor(r, body)
	if err == errForbidden {
		writeErrorCode(w, r, http.StatusForbidden, "PERMISSION_DENIED", err.Error(), false)
		return
	}
	receipt, err := fn(r, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, receipt)
}

func (h *CirculationHandler) SubmitReservation(w http.ResponseWriter, r *http.Request) {
	h.submitFromBody(w, r, http.StatusAccepted, func(r *http.Request, req service.IntentRequest) (*domain.Receipt, error) {
		return h.svc.SubmitReservation(r.Context(), req)
	})
}

func (h *CirculationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	h.submitFromPath(w, r, http.StatusOK, func(r *http.Request, req service.IntentRequest) (*domain.Receipt, error) {
		return h.svc.SubmitReservationCancellation(r.Context(), req)
	})
}

func (h *CirculationHandler) SubmitLoanRequest(w http.ResponseWriter, r *http.Request) {
	h.submitFromBody(w, r, http.StatusAccepted, func(r *http.Request, req service.IntentRequest) (*domain.Receipt, error) {
		return h.svc.SubmitLoanRequest(r.Context(), req)
	})
}

func (h *CirculationHandler) SubmitLoanCancellationRequest(w http.ResponseWriter, r *http.Request) {
	h.submitFromPath(w, r, http.StatusAccepted, func(r *http.Request, req service.IntentRequest) (*domain.Receipt, error) {
		return h.svc.SubmitLoanCancellationRequest(r.Context(), req)
	})
}

func (h *CirculationHandler) confirm(w http.ResponseWriter, r *http.Request, fn func(req confirmRequest) (*domain.Receipt, error)) {
	var body confirmRequest
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	receipt, err := fn(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (h *CirculationHandler) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, func(req confirmRequest) (*domain.Receipt, error) {
		return h.svc.ConfirmReservation(r.Context(), req.UserID, req.BookID)
	})
}

func (h *CirculationHandler) ConfirmLoan(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, func(req confirmRequest) (*domain.Receipt, error) {
		return h.svc.ConfirmLoan(r.Context(), req.UserID, req.BookID, req.DueDate)
	})
}

func (h *CirculationHandler) ConfirmLoanCancellation(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, func(req confirmRequest) (*domain.Receipt, error) {
		return h.svc.ConfirmLoanCancellation(r.Context(), req.UserID, req.BookID)
	})
}

func (h *CirculationHandler) GetPendingAction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	action, err := h.svc.GetPendingAction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, action)
}

func (h *CirculationHandler) ListPendingActions(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter := domain.PendingActionFilter{
		UserID:     q.UserID,
		BookID:     q.BookID,
		OrderType:  domain.OrderType(q.OrderType),
		ActionType: domain.ActionType(q.ActionType),
	}
	actions, total, err := h.svc.ListPendingActions(r.Context(), filter, q.Page, q.PageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if actions == nil {
		actions = []domain.PendingAction{}
	}
	writeJSON(w, http.StatusOK, listResponse[domain.PendingAction]{Items: actions, Total: total, Page: q.Page, PageSize: q.PageSize})
}

func (h *CirculationHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter := domain.HistoryFilter{
		UserID: q.UserID,
		BookID: q.BookID,
		Event:  domain.HistoryEvent(q.Event),
	}
	entries, total, err := h.svc.ListHistory(r.Context(), filter, q.Page, q.PageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, listResponse[domain.HistoryEntry]{Items: entries, Total: total, Page: q.Page, PageSize: q.PageSize})
}
