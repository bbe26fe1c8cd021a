package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ListBanks serves a paginated bank list, optionally filtered by a
// case-insensitive name search.
func (h *Handlers) ListBanks(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := pagingParams(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	banks, err := h.svc.ListBanks(page, pageSize, r.URL.Query().Get("search"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, banks)
}

// GetBank serves a single bank by id.
func (h *Handlers) GetBank(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.jsonError(w, "Invalid bank ID", http.StatusBadRequest)
		return
	}

	bank, err := h.svc.GetBank(id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if bank == nil {
		h.jsonError(w, "Bank not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, bank)
}

// BankBranches serves a paginated list of one bank's branches, optionally
// filtered by city and state.
func (h *Handlers) BankBranches(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.jsonError(w, "Invalid bank ID", http.StatusBadRequest)
		return
	}

	page, pageSize, err := pagingParams(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	q := r.URL.Query()
	branches, err := h.svc.ListBranchesOfBank(id, page, pageSize, q.Get("city"), q.Get("state"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if branches == nil {
		h.jsonError(w, "Bank not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, branches)
}
