package endpoints

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptvault/internal/api"
)

// ModelsResponse is the managed model list.
type ModelsResponse struct {
	Models []string `json:"models" yaml:"models"`
}

type modelGroup struct{}

func (modelGroup) Group() string { return "models" }

// ListModelsEndpoint handles GET /api/models.
type ListModelsEndpoint struct{ modelGroup }

func (e *ListModelsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/models", e.handler
}

func (e *ListModelsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	List models
//	@Tags		models
//	@Produce	json
//	@Success	200	{object}	ModelsResponse
//	@Router		/api/models [get]
func (e *ListModelsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ModelsResponse{Models: store.Models()})
}

func (e *ListModelsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List models",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp ModelsResponse
			if err := api.NewClient(getServerURL()).Get(cmd.Context(), "/api/models", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// AddModelEndpoint handles POST /api/models.
type AddModelEndpoint struct{ modelGroup }

func (e *AddModelEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/models", e.handler
}

func (e *AddModelEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Add a model
//	@Description	The name is trimmed. Empty names and case-insensitive duplicates are rejected.
//	@Tags			models
//	@Accept			json
//	@Produce		json
//	@Param			request	body		NameRequest	true	"Model name"
//	@Success		201		{object}	ModelsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/api/models [post]
func (e *AddModelEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	var req NameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "model name is required")
		return
	}
	if slices.ContainsFunc(store.Models(), func(m string) bool { return strings.EqualFold(m, name) }) {
		writeServiceError(w, r, fmt.Errorf("model %q %w", name, errDuplicate))
		return
	}

	added, err := store.AddModel(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !added {
		writeServiceError(w, r, fmt.Errorf("model %q %w", name, errDuplicate))
		return
	}
	writeJSON(w, http.StatusCreated, ModelsResponse{Models: store.Models()})
}

func (e *AddModelEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp ModelsResponse
			if err := api.NewClient(getServerURL()).Post(cmd.Context(), "/api/models", NameRequest{Name: args[0]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// RemoveModelEndpoint handles DELETE /api/models/{name}.
type RemoveModelEndpoint struct{ modelGroup }

func (e *RemoveModelEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/models/{name}", e.handler
}

func (e *RemoveModelEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Remove a model
//	@Description	Prompts keep the model. Model quick filters for it are deleted and a selection on it is reset to All.
//	@Tags			models
//	@Produce		json
//	@Param			name	path		string	true	"Model name"
//	@Success		200		{object}	ModelsResponse
//	@Router			/api/models/{name} [delete]
func (e *RemoveModelEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	if err := store.RemoveModel(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ModelsResponse{Models: store.Models()})
}

func (e *RemoveModelEndpoint) Command(getServerURL func() string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a model and its quick filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(fmt.Sprintf("Remove model %q?", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
			var resp ModelsResponse
			if err := api.NewClient(getServerURL()).Delete(cmd.Context(), "/api/models/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
