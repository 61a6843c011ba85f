package endpoints

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/moby/sys/atomicwriter"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptvault/internal/api"
	"github.com/jackzampolin/promptvault/internal/home"
	"github.com/jackzampolin/promptvault/internal/svcctx"
	"github.com/jackzampolin/promptvault/internal/types"
	"github.com/jackzampolin/promptvault/internal/vault"
)

// ImportResponse lists the prompts an import added.
type ImportResponse struct {
	Imported int            `json:"imported" yaml:"imported"`
	Prompts  []types.Prompt `json:"prompts" yaml:"prompts"`
}

// ImportPromptsEndpoint handles POST /api/prompts/import.
type ImportPromptsEndpoint struct{ promptGroup }

func (e *ImportPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompts/import", e.handler
}

func (e *ImportPromptsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Import prompts
//	@Description	Body is JSON text whose root is an array of prompt-like objects. Missing fields get defaults; colliding ids are replaced.
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	ImportResponse
//	@Failure		400	{object}	ErrorResponse
//	@Router			/api/prompts/import [post]
func (e *ImportPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "import body too large")
		return
	}

	imported, err := store.ImportJSON(r.Context(), string(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
		logger.Info("imported prompts", "count", len(imported))
	}
	writeJSON(w, http.StatusOK, ImportResponse{Imported: len(imported), Prompts: imported})
}

func (e *ImportPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Import prompts from a JSON array file (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open import file: %w", err)
				}
				defer f.Close()
				src = f
			}

			client := api.NewClient(getServerURL())
			var resp ImportResponse
			if err := client.PostRaw(cmd.Context(), "/api/prompts/import", "application/json", src, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ExportRequest selects prompts to export by id.
type ExportRequest struct {
	IDs []string `json:"ids"`
}

// ExportPromptsEndpoint handles POST /api/prompts/export.
type ExportPromptsEndpoint struct{ promptGroup }

func (e *ExportPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompts/export", e.handler
}

func (e *ExportPromptsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Export prompts
//	@Description	Serializes the selected prompts that are currently visible, in visible order
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ExportRequest	true	"Prompt ids"
//	@Success		200		{object}	vault.ExportFile
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/prompts/export [post]
func (e *ExportPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFrom(w, r)
	if !ok {
		return
	}
	var req ExportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	file, err := store.Export(req.IDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// ExportResult reports where an export was written.
type ExportResult struct {
	Path  string `json:"path" yaml:"path"`
	Count int    `json:"count" yaml:"count"`
}

func (e *ExportPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var ids []string
	var outFile string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export visible prompts to a JSON file",
		Long: `Export writes the selected prompts to a JSON file.

Without --ids every currently visible prompt is exported. Without --file the
export is written to the exports directory of the promptvault home.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())

			if len(ids) == 0 {
				var visible VisibleResponse
				if err := client.Get(ctx, "/api/prompts/visible", &visible); err != nil {
					return err
				}
				for _, p := range visible.Prompts {
					ids = append(ids, p.ID)
				}
			}

			var file vault.ExportFile
			if err := client.Post(ctx, "/api/prompts/export", ExportRequest{IDs: ids}, &file); err != nil {
				return err
			}

			path := outFile
			if path == "" {
				dir, err := home.New(homeFlag(cmd))
				if err != nil {
					return err
				}
				if err := dir.EnsureExists(); err != nil {
					return err
				}
				path = dir.ExportPath(file.FileName)
			}
			if err := atomicwriter.WriteFile(path, append(file.Data, '\n'), 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			return api.Output(ExportResult{Path: path, Count: file.Count})
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Prompt ids to export (default: all visible)")
	cmd.Flags().StringVarP(&outFile, "file", "f", "", "Output file (default: <home>/exports/<name>)")
	return cmd
}

// homeFlag returns the root --home flag, or "" when the command tree has none.
func homeFlag(cmd *cobra.Command) string {
	f := cmd.Flag("home")
	if f == nil {
		return ""
	}
	return strings.TrimSpace(f.Value.String())
}
