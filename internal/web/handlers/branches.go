package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ifscdir/ifscdir/internal/directory"
)

// ListBranches serves a paginated branch list with ANDed filters and an
// optional search term across branch name, address and IFSC.
func (h *Handlers) ListBranches(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := pagingParams(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	q := r.URL.Query()
	filters := directory.BranchFilters{
		BankName: q.Get("bank_name"),
		City:     q.Get("city"),
		District: q.Get("district"),
		State:    q.Get("state"),
	}

	branches, err := h.svc.ListBranches(page, pageSize, filters, q.Get("search"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, branches)
}

// GetBranch serves a single branch (with bank details) by IFSC code.
func (h *Handlers) GetBranch(w http.ResponseWriter, r *http.Request) {
	branch, err := h.svc.GetBranchByIFSC(chi.URLParam(r, "ifsc"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if branch == nil {
		h.jsonError(w, "Branch not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, branch)
}
