package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptvault/internal/api"
	"github.com/jackzampolin/promptvault/internal/types"
)

type selectionGroup struct{}

func (selectionGroup) Group() string { return "selection" }

// GetSelectionEndpoint handles GET /api/selection.
type GetSelectionEndpoint struct{ selectionGroup }

func (e *GetSelectionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/selection", e.handler
}

func (e *GetSelectionEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Current selection
//	@Tags		selection
//	@Produce	json
//	@Success	200	{object}	types.Selection
//	@Router		/api/selection [get]
func (e *GetSelectionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, store.Selection())
}

func (e *GetSelectionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sel types.Selection
			if err := api.NewClient(getServerURL()).Get(cmd.Context(), "/api/selection", &sel); err != nil {
				return err
			}
			return api.Output(sel)
		},
	}
}

// SetSelectionEndpoint handles PUT /api/selection.
type SetSelectionEndpoint struct{ selectionGroup }

func (e *SetSelectionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/selection", e.handler
}

func (e *SetSelectionEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Replace the selection
//	@Description	Empty category or model means All.
//	@Tags			selection
//	@Accept			json
//	@Produce		json
//	@Param			request	body		types.Selection	true	"Selection"
//	@Success		200		{object}	VisibleResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/selection [put]
func (e *SetSelectionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	var sel types.Selection
	if !decodeJSON(w, r, &sel) {
		return
	}
	sel = store.SetSelection(sel)
	prompts := store.Visible()
	writeJSON(w, http.StatusOK, VisibleResponse{Selection: sel, Count: len(prompts), Prompts: prompts})
}

func (e *SetSelectionEndpoint) Command(getServerURL func() string) *cobra.Command {
	var query, category, model string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the selection; unset flags keep their current value",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var sel types.Selection
			if err := client.Get(cmd.Context(), "/api/selection", &sel); err != nil {
				return err
			}
			if cmd.Flags().Changed("query") {
				sel.Query = query
			}
			if cmd.Flags().Changed("category") {
				sel.Category = category
			}
			if cmd.Flags().Changed("model") {
				sel.Model = model
			}

			var resp VisibleResponse
			if err := client.Put(cmd.Context(), "/api/selection", sel, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Free-text search")
	cmd.Flags().StringVar(&category, "category", "", "Category (All for none)")
	cmd.Flags().StringVar(&model, "model", "", "Model (All for none)")
	return cmd
}
