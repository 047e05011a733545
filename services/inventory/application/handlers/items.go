package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/errhttp"
	"github.com/ghuser/stockledger/pkg/httpx"
	"github.com/ghuser/stockledger/pkg/logger"
	pkgvalidator "github.com/ghuser/stockledger/pkg/validator"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
)

// ItemHandler serves the item lifecycle endpoints.
type ItemHandler struct {
	svc *appsvcs.ItemService
	log logger.Logger
}

// NewItemHandler returns an ItemHandler.
func NewItemHandler(svc *appsvcs.ItemService, log logger.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, log: log}
}

// Create records a new item in the caller's group.
//
//	@Summary	Record item
//	@Tags		inventory
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ItemRequest	true	"Item"
//	@Success	201		{object}	ItemEnvelope
//	@Failure	403		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/inventory/items [post]
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ItemRequest](w, r)
	if !ok {
		return
	}
	view, err := h.svc.Create(r.Context(), p, req.input())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ItemEnvelope{Item: toItemResponse(view)})
}

// Get returns one item.
//
//	@Summary	Get item
//	@Tags		inventory
//	@Produce	json
//	@Param		id	path		string	true	"Item id"
//	@Success	200	{object}	ItemEnvelope
//	@Failure	403	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/inventory/items/{id} [get]
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Get(r.Context(), p, id)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ItemEnvelope{Item: toItemResponse(view)})
}

// Update replaces an item's details and custodian.
//
//	@Summary	Update item
//	@Tags		inventory
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Item id"
//	@Param		request	body		ItemRequest	true	"Item"
//	@Success	200		{object}	ItemEnvelope
//	@Failure	403		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/inventory/items/{id} [put]
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ItemRequest](w, r)
	if !ok {
		return
	}
	view, err := h.svc.Update(r.Context(), p, id, req.input())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ItemEnvelope{Item: toItemResponse(view)})
}

// AssignCustodian hands an item to another account of its group.
//
//	@Summary	Assign custodian
//	@Tags		inventory
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Item id"
//	@Param		request	body		CustodianRequest	true	"Custodian"
//	@Success	200		{object}	ItemEnvelope
//	@Failure	403		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/inventory/items/{id}/custodian [put]
func (h *ItemHandler) AssignCustodian(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CustodianRequest](w, r)
	if !ok {
		return
	}
	view, err := h.svc.AssignCustodian(r.Context(), p, id, uuid.MustParse(req.Custodian))
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ItemEnvelope{Item: toItemResponse(view)})
}

// Condemn retires a batch of items. Ids the caller may not condemn are skipped.
//
//	@Summary	Condemn items
//	@Tags		inventory
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CondemnRequest	true	"Item ids"
//	@Success	200		{object}	CondemnResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/inventory/items/condemn [post]
func (h *ItemHandler) Condemn(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CondemnRequest](w, r)
	if !ok {
		return
	}
	n, err := h.svc.Condemn(r.Context(), p, req.ids())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, CondemnResponse{Success: true, Condemned: n})
}

// Delete soft-deletes an item.
//
//	@Summary	Delete item
//	@Tags		inventory
//	@Produce	json
//	@Param		id	path		string	true	"Item id"
//	@Success	200	{object}	SuccessResponse
//	@Failure	403	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Router		/inventory/items/{id} [delete]
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), p, id); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Item deleted"})
}

// List returns the items of a group, optionally filtered by status.
//
//	@Summary	List items
//	@Tags		inventory
//	@Produce	json
//	@Param		group	query		string	false	"Group (admins only may pick another group)"
//	@Param		status	query		string	false	"Comma separated statuses"
//	@Success	200		{object}	ItemsEnvelope
//	@Failure	403		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/inventory/items [get]
//	@Router		/admin/items [get]
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	views, err := h.svc.List(r.Context(), p, q.Get("group"), splitStatuses(q["status"]))
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ItemsEnvelope{Items: toItemResponses(views)})
}

// MyItems returns the items assigned or issued to the caller, or to userId
// for admins.
//
//	@Summary	Items held by a user
//	@Tags		inventory
//	@Produce	json
//	@Param		userId	query		string	false	"Account id (admins only)"
//	@Success	200		{object}	ItemsEnvelope
//	@Failure	403		{object}	ErrorResponse
//	@Router		/inventory/my-items [get]
func (h *ItemHandler) MyItems(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var userID *uuid.UUID
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			errhttp.WriteError(w, r, h.log, pkgvalidator.Field("userId", "Must be a valid UUID"))
			return
		}
		userID = &id
	}
	views, err := h.svc.ListForUser(r.Context(), p, userID)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ItemsEnvelope{Items: toItemResponses(views)})
}

// Custodians lists the approved accounts of the caller's group.
//
//	@Summary	Custodian candidates
//	@Tags		inventory
//	@Produce	json
//	@Success	200	{object}	CustodiansEnvelope
//	@Router		/inventory/custodians [get]
func (h *ItemHandler) Custodians(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	users, err := h.svc.Custodians(r.Context(), p)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, CustodiansEnvelope{Users: users})
}

func (h *ItemHandler) principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, err := auth.PrincipalFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return auth.Principal{}, false
	}
	return p, true
}

func (h *ItemHandler) target(w http.ResponseWriter, r *http.Request) (auth.Principal, uuid.UUID, bool) {
	p, ok := h.principal(w, r)
	if !ok {
		return auth.Principal{}, uuid.Nil, false
	}
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		errhttp.WriteError(w, r, h.log, pkgvalidator.Field("id", "Must be a valid UUID"))
		return auth.Principal{}, uuid.Nil, false
	}
	return p, id, true
}

func splitStatuses(values []string) []string {
	var out []string
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
