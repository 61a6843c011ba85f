package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptvault/internal/api"
	"github.com/jackzampolin/promptvault/internal/desktop"
	"github.com/jackzampolin/promptvault/internal/svcctx"
)

// DesktopResponse is the controls' cached state plus the shell window's own
// state when the shell runs in this process.
type DesktopResponse struct {
	Controls desktop.State        `json:"controls" yaml:"controls"`
	Window   *desktop.WindowState `json:"window,omitempty" yaml:"window,omitempty"`
}

// OpacityRequest sets the window opacity in percent.
type OpacityRequest struct {
	Percent float64 `json:"percent"`
}

type desktopGroup struct{}

func (desktopGroup) Group() string { return "desktop" }

func controlsFrom(w http.ResponseWriter, r *http.Request) (*desktop.Controls, bool) {
	controls := svcctx.DesktopFrom(r.Context())
	if controls == nil {
		writeError(w, http.StatusServiceUnavailable, "desktop controls are disabled")
		return nil, false
	}
	return controls, true
}

func desktopResponse(r *http.Request, controls *desktop.Controls) DesktopResponse {
	resp := DesktopResponse{Controls: controls.State()}
	if win := svcctx.WindowFrom(r.Context()); win != nil {
		state := win.State()
		resp.Window = &state
	}
	return resp
}

func desktopCommand(use, short, method, path string, getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp DesktopResponse
			var err error
			switch method {
			case http.MethodGet:
				err = client.Get(cmd.Context(), path, &resp)
			default:
				err = client.Post(cmd.Context(), path, nil, &resp)
			}
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DesktopStateEndpoint handles GET /api/desktop.
type DesktopStateEndpoint struct{ desktopGroup }

func (e *DesktopStateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/desktop", e.handler
}

func (e *DesktopStateEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	Desktop window state
//	@Tags		desktop
//	@Produce	json
//	@Success	200	{object}	DesktopResponse
//	@Failure	503	{object}	ErrorResponse
//	@Router		/api/desktop [get]
func (e *DesktopStateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	controls, ok := controlsFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, desktopResponse(r, controls))
}

func (e *DesktopStateEndpoint) Command(getServerURL func() string) *cobra.Command {
	return desktopCommand("state", "Show pin and opacity state", http.MethodGet, "/api/desktop", getServerURL)
}

// TogglePinEndpoint handles POST /api/desktop/pin.
type TogglePinEndpoint struct{ desktopGroup }

func (e *TogglePinEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/desktop/pin", e.handler
}

func (e *TogglePinEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	Toggle always-on-top
//	@Tags		desktop
//	@Produce	json
//	@Success	200	{object}	DesktopResponse
//	@Failure	503	{object}	ErrorResponse
//	@Router		/api/desktop/pin [post]
func (e *TogglePinEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	controls, ok := controlsFrom(w, r)
	if !ok {
		return
	}
	if _, err := controls.TogglePin(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, desktopResponse(r, controls))
}

func (e *TogglePinEndpoint) Command(getServerURL func() string) *cobra.Command {
	return desktopCommand("pin", "Toggle always-on-top", http.MethodPost, "/api/desktop/pin", getServerURL)
}

// SetOpacityEndpoint handles PUT /api/desktop/opacity.
type SetOpacityEndpoint struct{ desktopGroup }

func (e *SetOpacityEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/desktop/opacity", e.handler
}

func (e *SetOpacityEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Set window opacity
//	@Description	Percent is clamped to 40..100.
//	@Tags			desktop
//	@Accept			json
//	@Produce		json
//	@Param			request	body		OpacityRequest	true	"Opacity percent"
//	@Success		200		{object}	DesktopResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/desktop/opacity [put]
func (e *SetOpacityEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	controls, ok := controlsFrom(w, r)
	if !ok {
		return
	}
	var req OpacityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := controls.SetOpacityPercent(r.Context(), req.Percent); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, desktopResponse(r, controls))
}

func (e *SetOpacityEndpoint) Command(getServerURL func() string) *cobra.Command {
	var percent float64
	cmd := &cobra.Command{
		Use:   "opacity",
		Short: "Set window opacity in percent (40-100)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp DesktopResponse
			if err := api.NewClient(getServerURL()).Put(cmd.Context(), "/api/desktop/opacity", OpacityRequest{Percent: percent}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().Float64VarP(&percent, "percent", "p", 100, "Opacity percent")
	return cmd
}

// MinimizeEndpoint handles POST /api/desktop/minimize.
type MinimizeEndpoint struct{ desktopGroup }

func (e *MinimizeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/desktop/minimize", e.handler
}

func (e *MinimizeEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	Minimize the window
//	@Tags		desktop
//	@Produce	json
//	@Success	200	{object}	DesktopResponse
//	@Failure	503	{object}	ErrorResponse
//	@Router		/api/desktop/minimize [post]
func (e *MinimizeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	controls, ok := controlsFrom(w, r)
	if !ok {
		return
	}
	if err := controls.Minimize(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, desktopResponse(r, controls))
}

func (e *MinimizeEndpoint) Command(getServerURL func() string) *cobra.Command {
	return desktopCommand("minimize", "Minimize the window", http.MethodPost, "/api/desktop/minimize", getServerURL)
}

// CloseWindowEndpoint handles POST /api/desktop/close.
type CloseWindowEndpoint struct{ desktopGroup }

func (e *CloseWindowEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/desktop/close", e.handler
}

func (e *CloseWindowEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	Close the window
//	@Tags		desktop
//	@Produce	json
//	@Success	200	{object}	DesktopResponse
//	@Failure	503	{object}	ErrorResponse
//	@Router		/api/desktop/close [post]
func (e *CloseWindowEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	controls, ok := controlsFrom(w, r)
	if !ok {
		return
	}
	if err := controls.Close(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, desktopResponse(r, controls))
}

func (e *CloseWindowEndpoint) Command(getServerURL func() string) *cobra.Command {
	return desktopCommand("close", "Close the window", http.MethodPost, "/api/desktop/close", getServerURL)
}
