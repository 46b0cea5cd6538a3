package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ticketon/ticketon/internal/domain/transit"
	"github.com/ticketon/ticketon/internal/domain/user"
	"github.com/ticketon/ticketon/internal/services/tickets"
)

// TransitHandler serves carrier, route and ticket endpoints. Buyers are
// resolved by login from the principal; the token carries no numeric id.
type TransitHandler struct {
	svc   *tickets.Service
	users user.Repo
}

func NewTransitHandler(svc *tickets.Service, users user.Repo) *TransitHandler {
	return &TransitHandler{svc: svc, users: users}
}

func requireRole(w http.ResponseWriter, r *http.Request, role user.Role) (Principal, bool) {
	p, ok := PrincipalFrom(r.Context())
	if !ok || p.Role != role {
		respondForbidden(w)
		return Principal{}, false
	}
	return p, true
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func paging(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

func (h *TransitHandler) CreateCarrier(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, user.RoleAdministrator); !ok {
		return
	}
	var c transit.Carrier
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	if err := h.svc.AddCarrier(r.Context(), &c); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *TransitHandler) UpdateCarrier(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, user.RoleAdministrator); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid id"})
		return
	}
	var c transit.Carrier
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	c.ID = id
	if err := h.svc.UpdateCarrier(r.Context(), &c); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *TransitHandler) DeleteCarrier(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, user.RoleAdministrator); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid id"})
		return
	}
	if err := h.svc.DeleteCarrier(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *TransitHandler) GetCarrier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid id"})
		return
	}
	c, err := h.svc.GetCarrier(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *TransitHandler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, user.RoleAdministrator); !ok {
		return
	}
	var rt transit.Route
	if err := json.NewDecoder(r.Body).Decode(&rt); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	if err := h.svc.AddRoute(r.Context(), &rt); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rt)
}

func (h *TransitHandler) UpdateRoute(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, user.RoleAdministrator); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid id"})
		return
	}
	var rt transit.Route
	if err := json.NewDecoder(r.Body).Decode(&rt); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	rt.ID = id
	if err := h.svc.UpdateRoute(r.Context(), &rt); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rt)
}

func (h *TransitHandler) DeleteRoute(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, user.RoleAdministrator); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid id"})
		return
	}
	if err := h.svc.DeleteRoute(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *TransitHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid id"})
		return
	}
	rt, err := h.svc.GetRoute(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rt)
}

func (h *TransitHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, user.RoleAdministrator); !ok {
		return
	}
	var t transit.Ticket
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	if err := h.svc.AddTicket(r.Context(), &t); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (h *TransitHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, user.RoleAdministrator); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid id"})
		return
	}
	var t transit.Ticket
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	t.ID = id
	if err := h.svc.UpdateTicket(r.Context(), &t); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (h *TransitHandler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, user.RoleAdministrator); !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid id"})
		return
	}
	if err := h.svc.DeleteTicket(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// SearchTickets dispatches on the first recognized query filter. Every
// branch returns only tickets still on sale.
func (h *TransitHandler) SearchTickets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, size := paging(r)
	ctx := r.Context()

	var (
		list []*transit.Ticket
		err  error
	)
	switch {
	case q.Get("route_id") != "":
		var routeID int64
		routeID, err = strconv.ParseInt(q.Get("route_id"), 10, 64)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid route_id"})
			return
		}
		list, err = h.svc.OnSaleByRoute(ctx, routeID, page, size)
	case q.Get("departure") != "":
		var at time.Time
		at, err = time.Parse(time.RFC3339, q.Get("departure"))
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid departure, use RFC3339"})
			return
		}
		list, err = h.svc.OnSaleByDeparture(ctx, at, page, size)
	case q.Get("departure_point") != "":
		list, err = h.svc.OnSaleByDeparturePoint(ctx, q.Get("departure_point"), page, size)
	case q.Get("destination") != "":
		list, err = h.svc.OnSaleByDestination(ctx, q.Get("destination"), page, size)
	case q.Get("carrier") != "":
		list, err = h.svc.OnSaleByCarrierName(ctx, q.Get("carrier"), page, size)
	default:
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "missing search filter"})
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if list == nil {
		list = []*transit.Ticket{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *TransitHandler) BuyTicket(w http.ResponseWriter, r *http.Request) {
	p, ok := requireRole(w, r, user.RoleBuyer)
	if !ok {
		return
	}
	id, okID := pathID(r)
	if !okID {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid id"})
		return
	}
	u, err := h.users.GetByLogin(r.Context(), p.Login)
	if err != nil {
		respondError(w, err)
		return
	}
	sold, err := h.svc.Buy(r.Context(), id, tickets.Buyer{UserID: u.ID, Login: u.Login})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sold)
}

func (h *TransitHandler) PurchasedTickets(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		respondForbidden(w)
		return
	}
	u, err := h.users.GetByLogin(r.Context(), p.Login)
	if err != nil {
		respondError(w, err)
		return
	}
	page, size := paging(r)
	list, err := h.svc.Purchased(r.Context(), u.ID, page, size)
	if err != nil {
		respondError(w, err)
		return
	}
	if list == nil {
		list = []*transit.Ticket{}
	}
	respondJSON(w, http.StatusOK, list)
}
