package endpoints

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptvault/internal/api"
	"github.com/jackzampolin/promptvault/internal/types"
)

// PromptsResponse is a list of prompts.
type PromptsResponse struct {
	Prompts []types.Prompt `json:"prompts" yaml:"prompts"`
}

// VisibleResponse is the visible list together with the selection that produced it.
type VisibleResponse struct {
	Selection types.Selection `json:"selection" yaml:"selection"`
	Count     int             `json:"count" yaml:"count"`
	Prompts   []types.Prompt  `json:"prompts" yaml:"prompts"`
}

// DeleteResponse reports a removed resource.
type DeleteResponse struct {
	Deleted string `json:"deleted" yaml:"deleted"`
}

// promptGroup places prompt commands under "api prompts".
type promptGroup struct{}

func (promptGroup) Group() string { return "prompts" }

// ListPromptsEndpoint handles GET /api/prompts.
type ListPromptsEndpoint struct{ promptGroup }

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List all prompts
//	@Description	All prompts in store order, newest first
//	@Tags			prompts
//	@Produce		json
//	@Success		200	{object}	PromptsResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/prompts [get]
func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PromptsResponse{Prompts: store.Prompts()})
}

func (e *ListPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PromptsResponse
			if err := client.Get(cmd.Context(), "/api/prompts", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// VisiblePromptsEndpoint handles GET /api/prompts/visible.
type VisiblePromptsEndpoint struct{ promptGroup }

func (e *VisiblePromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts/visible", e.handler
}

func (e *VisiblePromptsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Visible prompts
//	@Description	Prompts matching the current selection. Query parameters override the stored selection for this request only.
//	@Tags			prompts
//	@Produce		json
//	@Param			query		query		string	false	"Free-text search"
//	@Param			category	query		string	false	"Category or All"
//	@Param			model		query		string	false	"Model or All"
//	@Success		200			{object}	VisibleResponse
//	@Failure		503			{object}	ErrorResponse
//	@Router			/api/prompts/visible [get]
func (e *VisiblePromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}

	sel := store.Selection()
	q := r.URL.Query()
	if q.Has("query") {
		sel.Query = q.Get("query")
	}
	if q.Has("category") {
		sel.Category = q.Get("category")
	}
	if q.Has("model") {
		sel.Model = q.Get("model")
	}
	sel = sel.Normalized()

	prompts := store.Search(sel)
	writeJSON(w, http.StatusOK, VisibleResponse{Selection: sel, Count: len(prompts), Prompts: prompts})
}

func (e *VisiblePromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var query, category, model string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Show prompts matching the selection or the given filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if cmd.Flags().Changed("query") {
				params.Set("query", query)
			}
			if cmd.Flags().Changed("category") {
				params.Set("category", category)
			}
			if cmd.Flags().Changed("model") {
				params.Set("model", model)
			}
			path := "/api/prompts/visible"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			client := api.NewClient(getServerURL())
			var resp VisibleResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Free-text search over title, content and tags")
	cmd.Flags().StringVar(&category, "category", "", "Category filter (All for none)")
	cmd.Flags().StringVar(&model, "model", "", "Model filter (All for none)")
	return cmd
}

// GetPromptEndpoint handles GET /api/prompts/{id}.
type GetPromptEndpoint struct{ promptGroup }

func (e *GetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts/{id}", e.handler
}

func (e *GetPromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Get a prompt
//	@Tags		prompts
//	@Produce	json
//	@Param		id	path		string	true	"Prompt ID"
//	@Success	200	{object}	types.Prompt
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/prompts/{id} [get]
func (e *GetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	p, err := store.Prompt(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (e *GetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a prompt by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := fetchPrompt(cmd, getServerURL(), args[0])
			if err != nil {
				return err
			}
			return api.Output(p)
		},
	}
}

func fetchPrompt(cmd *cobra.Command, serverURL, id string) (types.Prompt, error) {
	var p types.Prompt
	err := api.NewClient(serverURL).Get(cmd.Context(), "/api/prompts/"+url.PathEscape(id), &p)
	return p, err
}

// promptFlags binds the editable prompt fields to command flags.
type promptFlags struct {
	title    string
	content  string
	tags     string
	models   []string
	category string
}

func (f *promptFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Prompt title")
	cmd.Flags().StringVar(&f.content, "content", "", "Prompt text")
	cmd.Flags().StringVar(&f.tags, "tags", "", "Comma-separated tags")
	cmd.Flags().StringSliceVar(&f.models, "models", nil, "Target models (repeat or comma-separate)")
	cmd.Flags().StringVar(&f.category, "category", "", "Category")
}

// overlay copies the flags the user set onto in.
func (f *promptFlags) overlay(cmd *cobra.Command, in types.PromptInput) types.PromptInput {
	if cmd.Flags().Changed("title") {
		in.Title = f.title
	}
	if cmd.Flags().Changed("content") {
		in.Content = f.content
	}
	if cmd.Flags().Changed("tags") {
		in.Tags = f.tags
		in.TagList = nil
	}
	if cmd.Flags().Changed("models") {
		in.Models = f.models
	}
	if cmd.Flags().Changed("category") {
		in.Category = f.category
	}
	return in
}

// CreatePromptEndpoint handles POST /api/prompts.
type CreatePromptEndpoint struct{ promptGroup }

func (e *CreatePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompts", e.handler
}

func (e *CreatePromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Create a prompt
//	@Description	Adds a prompt to the front of the list. Tags are comma-separated.
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		types.PromptInput	true	"Prompt fields"
//	@Success		201		{object}	types.Prompt
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/prompts [post]
func (e *CreatePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	var in types.PromptInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := store.CreatePrompt(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (e *CreatePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var flags promptFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a prompt",
		Example: `  promptvault api prompts create --title "SEO Blog Post" \
    --content "Write a blog post about..." --tags "seo, blog" \
    --models ChatGPT,Claude --category Writing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := flags.overlay(cmd, types.PromptInput{})
			client := api.NewClient(getServerURL())
			var p types.Prompt
			if err := client.Post(cmd.Context(), "/api/prompts", in, &p); err != nil {
				return err
			}
			return api.Output(p)
		},
	}
	flags.bind(cmd)
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("models")
	return cmd
}

// UpdatePromptEndpoint handles PUT /api/prompts/{id}.
type UpdatePromptEndpoint struct{ promptGroup }

func (e *UpdatePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/prompts/{id}", e.handler
}

func (e *UpdatePromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Update a prompt
//	@Description	Replaces the editable fields. Favorite flag and last-used time are kept.
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Prompt ID"
//	@Param			request	body		types.PromptInput	true	"Prompt fields"
//	@Success		200		{object}	types.Prompt
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/prompts/{id} [put]
func (e *UpdatePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	var in types.PromptInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := store.UpdatePrompt(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (e *UpdatePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var flags promptFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a prompt; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := fetchPrompt(cmd, getServerURL(), args[0])
			if err != nil {
				return err
			}
			in := flags.overlay(cmd, types.PromptInput{
				Title:    current.Title,
				Content:  current.Content,
				TagList:  current.Tags,
				Models:   current.Models,
				Category: current.Category,
			})

			client := api.NewClient(getServerURL())
			var p types.Prompt
			if err := client.Put(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0]), in, &p); err != nil {
				return err
			}
			return api.Output(p)
		},
	}
	flags.bind(cmd)
	return cmd
}

// DeletePromptEndpoint handles DELETE /api/prompts/{id}.
type DeletePromptEndpoint struct{ promptGroup }

func (e *DeletePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/prompts/{id}", e.handler
}

func (e *DeletePromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Delete a prompt
//	@Tags		prompts
//	@Produce	json
//	@Param		id	path		string	true	"Prompt ID"
//	@Success	200	{object}	DeleteResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/prompts/{id} [delete]
func (e *DeletePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := store.DeletePrompt(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: id})
}

// confirm is swapped out in tests.
var confirm = api.Confirm

func (e *DeletePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				p, err := fetchPrompt(cmd, getServerURL(), args[0])
				if err != nil {
					return err
				}
				if !confirm(fmt.Sprintf("Delete prompt %q?", p.Title)) {
					fmt.Println("Aborted.")
					return nil
				}
			}

			client := api.NewClient(getServerURL())
			var resp DeleteResponse
			if err := client.Delete(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// FavoritePromptEndpoint handles POST /api/prompts/{id}/favorite.
type FavoritePromptEndpoint struct{ promptGroup }

func (e *FavoritePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompts/{id}/favorite", e.handler
}

func (e *FavoritePromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary	Toggle favorite
//	@Tags		prompts
//	@Produce	json
//	@Param		id	path		string	true	"Prompt ID"
//	@Success	200	{object}	types.Prompt
//	@Failure	404	{object}	ErrorResponse
//	@Router		/api/prompts/{id}/favorite [post]
func (e *FavoritePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	p, err := store.ToggleFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (e *FavoritePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle a prompt's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var p types.Prompt
			if err := client.Post(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0])+"/favorite", nil, &p); err != nil {
				return err
			}
			return api.Output(p)
		},
	}
}
