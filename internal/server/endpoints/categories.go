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

// CategoriesResponse is the managed category list.
type CategoriesResponse struct {
	Categories []string `json:"categories" yaml:"categories"`
}

// NameRequest names a category or model to add.
type NameRequest struct {
	Name string `json:"name"`
}

type categoryGroup struct{}

func (categoryGroup) Group() string { return "categories" }

// ListCategoriesEndpoint handles GET /api/categories.
type ListCategoriesEndpoint struct{ categoryGroup }

func (e *ListCategoriesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/categories", e.handler
}

func (e *ListCategoriesEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	List categories
//	@Tags		categories
//	@Produce	json
//	@Success	200	{object}	CategoriesResponse
//	@Router		/api/categories [get]
func (e *ListCategoriesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: store.Categories()})
}

func (e *ListCategoriesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp CategoriesResponse
			if err := api.NewClient(getServerURL()).Get(cmd.Context(), "/api/categories", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// AddCategoryEndpoint handles POST /api/categories.
type AddCategoryEndpoint struct{ categoryGroup }

func (e *AddCategoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/categories", e.handler
}

func (e *AddCategoryEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Add a category
//	@Description	The name is trimmed. Empty names and exact duplicates are rejected.
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			request	body		NameRequest	true	"Category name"
//	@Success		201		{object}	CategoriesResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/api/categories [post]
func (e *AddCategoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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
		writeError(w, http.StatusBadRequest, "category name is required")
		return
	}
	if slices.Contains(store.Categories(), name) {
		writeServiceError(w, r, fmt.Errorf("category %q %w", name, errDuplicate))
		return
	}

	added, err := store.AddCategory(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !added {
		writeServiceError(w, r, fmt.Errorf("category %q %w", name, errDuplicate))
		return
	}
	writeJSON(w, http.StatusCreated, CategoriesResponse{Categories: store.Categories()})
}

func (e *AddCategoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp CategoriesResponse
			if err := api.NewClient(getServerURL()).Post(cmd.Context(), "/api/categories", NameRequest{Name: args[0]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// RemoveCategoryEndpoint handles DELETE /api/categories/{name}.
type RemoveCategoryEndpoint struct{ categoryGroup }

func (e *RemoveCategoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/categories/{name}", e.handler
}

func (e *RemoveCategoryEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Remove a category
//	@Description	Prompts keep their category. A selection on the category is reset to All.
//	@Tags			categories
//	@Produce		json
//	@Param			name	path		string	true	"Category name"
//	@Success		200		{object}	CategoriesResponse
//	@Router			/api/categories/{name} [delete]
func (e *RemoveCategoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	if err := store.RemoveCategory(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: store.Categories()})
}

func (e *RemoveCategoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(fmt.Sprintf("Remove category %q?", args[0])) {
				fmt.Println("Aborted.")
				return nil
			}
			var resp CategoriesResponse
			if err := api.NewClient(getServerURL()).Delete(cmd.Context(), "/api/categories/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
