package endpoints

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptvault/internal/api"
	"github.com/jackzampolin/promptvault/internal/vault"
)

// EnhanceRequest carries draft prompt text.
type EnhanceRequest struct {
	Text string `json:"text" yaml:"text"`
}

// EnhanceResponse carries the enhanced prompt text.
type EnhanceResponse struct {
	Text string `json:"text" yaml:"text"`
}

// SuggestTagsRequest carries prompt content to tag.
type SuggestTagsRequest struct {
	Content string `json:"content" yaml:"content"`
}

// SuggestTagsResponse lists suggested tags.
type SuggestTagsResponse struct {
	Tags []string `json:"tags" yaml:"tags"`
}

// EnhancePromptEndpoint handles POST /api/prompts/enhance.
type EnhancePromptEndpoint struct{ promptGroup }

func (e *EnhancePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompts/enhance", e.handler
}

func (e *EnhancePromptEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Enhance prompt text
//	@Description	Returns the text unchanged; no model is called.
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		EnhanceRequest	true	"Draft text"
//	@Success		200		{object}	EnhanceResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/prompts/enhance [post]
func (e *EnhancePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req EnhanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, EnhanceResponse{Text: vault.EnhancePrompt(req.Text)})
}

func (e *EnhancePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "enhance <text>",
		Short: "Enhance draft prompt text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp EnhanceResponse
			req := EnhanceRequest{Text: strings.Join(args, " ")}
			if err := client.Post(cmd.Context(), "/api/prompts/enhance", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// SuggestTagsEndpoint handles POST /api/prompts/suggest-tags.
type SuggestTagsEndpoint struct{ promptGroup }

func (e *SuggestTagsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompts/suggest-tags", e.handler
}

func (e *SuggestTagsEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Suggest tags
//	@Description	Returns no suggestions; no model is called.
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SuggestTagsRequest	true	"Prompt content"
//	@Success		200		{object}	SuggestTagsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/prompts/suggest-tags [post]
func (e *SuggestTagsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req SuggestTagsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tags := vault.SuggestTags(req.Content)
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, SuggestTagsResponse{Tags: tags})
}

func (e *SuggestTagsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest-tags <content>",
		Short: "Suggest tags for prompt content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SuggestTagsResponse
			req := SuggestTagsRequest{Content: strings.Join(args, " ")}
			if err := client.Post(cmd.Context(), "/api/prompts/suggest-tags", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
