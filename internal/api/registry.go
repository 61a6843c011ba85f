package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Registry holds all registered endpoints.
type Registry struct {
	endpoints  []Endpoint
	commanders []Commander
	groups     map[string]string
}

// NewRegistry creates a new endpoint registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]string)}
}

// Register adds an endpoint to the registry.
func (r *Registry) Register(ep Endpoint) {
	r.endpoints = append(r.endpoints, ep)
}

// RegisterCommand adds a CLI-only command to the registry.
func (r *Registry) RegisterCommand(c Commander) {
	r.commanders = append(r.commanders, c)
}

// DescribeGroup sets the short help text of a command group.
func (r *Registry) DescribeGroup(name, short string) {
	r.groups[name] = short
}

// RegisterRoutes registers all endpoint HTTP routes with the given mux.
// initMiddleware wraps handlers that require full server initialization.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, initMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if ep.RequiresInit() {
			handler = initMiddleware(handler)
		}
		mux.HandleFunc(method+" "+path, handler)
	}
}

// BuildCommands returns a cobra.Command tree for all registered endpoints.
// Endpoints implementing Grouped are placed under a subcommand named by
// their group; the rest sit directly under "api".
// getServerURL is called at runtime to get the server URL.
func (r *Registry) BuildCommands(getServerURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running promptvault server via HTTP.

These commands require a running server (promptvault serve).
Use --server to specify a custom server URL.

Examples:
  promptvault api health                      # Check server health
  promptvault api prompts list                # List all prompts
  promptvault api prompts search --query seo  # Search prompts
  promptvault api quickfilters list           # Saved filters with active state`,
	}

	groupCmds := make(map[string]*cobra.Command)
	add := func(group string, cmd *cobra.Command) {
		if cmd == nil {
			return
		}
		if group == "" {
			apiCmd.AddCommand(cmd)
			return
		}
		parent, ok := groupCmds[group]
		if !ok {
			short := r.groups[group]
			if short == "" {
				short = group + " commands"
			}
			parent = &cobra.Command{Use: group, Short: short}
			groupCmds[group] = parent
			apiCmd.AddCommand(parent)
		}
		parent.AddCommand(cmd)
	}

	for _, ep := range r.endpoints {
		group := ""
		if g, ok := ep.(Grouped); ok {
			group = g.Group()
		}
		add(group, ep.Command(getServerURL))
	}
	for _, c := range r.commanders {
		add(c.Group(), c.Command(getServerURL))
	}

	return apiCmd
}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}
