package endpoints

import (
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptvault/internal/api"
	"github.com/jackzampolin/promptvault/internal/types"
	"github.com/jackzampolin/promptvault/internal/vault"
)

// QuickFiltersResponse lists quick filters with their active state.
type QuickFiltersResponse struct {
	QuickFilters []vault.QuickFilterView `json:"quickFilters" yaml:"quickFilters"`
}

// CreateQuickFilterResponse is the filter saved from the selection.
// Created is false when an equivalent filter already existed.
type CreateQuickFilterResponse struct {
	QuickFilter types.QuickFilter `json:"quickFilter" yaml:"quickFilter"`
	Created     bool              `json:"created" yaml:"created"`
}

type quickFilterGroup struct{}

func (quickFilterGroup) Group() string { return "quickfilters" }

// ListQuickFiltersEndpoint handles GET /api/quickfilters.
type ListQuickFiltersEndpoint struct{ quickFilterGroup }

func (e *ListQuickFiltersEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/quickfilters", e.handler
}

func (e *ListQuickFiltersEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	List quick filters
//	@Tags		quickfilters
//	@Produce	json
//	@Success	200	{object}	QuickFiltersResponse
//	@Router		/api/quickfilters [get]
func (e *ListQuickFiltersEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, QuickFiltersResponse{QuickFilters: store.QuickFilterViews()})
}

func (e *ListQuickFiltersEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List quick filters and which are active",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp QuickFiltersResponse
			if err := api.NewClient(getServerURL()).Get(cmd.Context(), "/api/quickfilters", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// CreateQuickFilterEndpoint handles POST /api/quickfilters.
type CreateQuickFilterEndpoint struct{ quickFilterGroup }

func (e *CreateQuickFilterEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/quickfilters", e.handler
}

func (e *CreateQuickFilterEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Save the selection as a quick filter
//	@Description	Uses the selected category, else the selected model, else the search text.
//	@Tags			quickfilters
//	@Produce		json
//	@Success		201	{object}	CreateQuickFilterResponse
//	@Success		200	{object}	CreateQuickFilterResponse	"equivalent filter already saved"
//	@Failure		400	{object}	ErrorResponse
//	@Router			/api/quickfilters [post]
func (e *CreateQuickFilterEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	qf, created, err := store.AddQuickFilterFromSelection(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, CreateQuickFilterResponse{QuickFilter: qf, Created: created})
}

func (e *CreateQuickFilterEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Save the current selection as a quick filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp CreateQuickFilterResponse
			if err := api.NewClient(getServerURL()).Post(cmd.Context(), "/api/quickfilters", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteQuickFilterEndpoint handles DELETE /api/quickfilters/{id}.
type DeleteQuickFilterEndpoint struct{ quickFilterGroup }

func (e *DeleteQuickFilterEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/quickfilters/{id}", e.handler
}

func (e *DeleteQuickFilterEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Delete a quick filter
//	@Tags		quickfilters
//	@Produce	json
//	@Param		id	path		string	true	"Quick filter ID"
//	@Success	200	{object}	DeleteResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/quickfilters/{id} [delete]
func (e *DeleteQuickFilterEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := store.RemoveQuickFilter(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: id})
}

func (e *DeleteQuickFilterEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a quick filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp DeleteResponse
			if err := api.NewClient(getServerURL()).Delete(cmd.Context(), "/api/quickfilters/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ApplyQuickFilterEndpoint handles POST /api/quickfilters/{id}/apply.
type ApplyQuickFilterEndpoint struct{ quickFilterGroup }

func (e *ApplyQuickFilterEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/quickfilters/{id}/apply", e.handler
}

func (e *ApplyQuickFilterEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Apply a quick filter
//	@Description	Toggles the filter onto the selection: applying an active filter clears it.
//	@Tags			quickfilters
//	@Produce		json
//	@Param			id	path		string	true	"Quick filter ID"
//	@Success		200	{object}	VisibleResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/quickfilters/{id}/apply [post]
func (e *ApplyQuickFilterEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	sel, err := store.ApplyQuickFilter(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	prompts := store.Search(sel)
	writeJSON(w, http.StatusOK, VisibleResponse{Selection: sel, Count: len(prompts), Prompts: prompts})
}

func (e *ApplyQuickFilterEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <id>",
		Short: "Toggle a quick filter onto the selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp VisibleResponse
			if err := api.NewClient(getServerURL()).Post(cmd.Context(), "/api/quickfilters/"+url.PathEscape(args[0])+"/apply", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
