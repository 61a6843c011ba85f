package endpoints

import (
	"github.com/jackzampolin/promptvault/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},

		// Prompt endpoints
		&ListPromptsEndpoint{},
		&VisiblePromptsEndpoint{},
		&GetPromptEndpoint{},
		&CreatePromptEndpoint{},
		&UpdatePromptEndpoint{},
		&DeletePromptEndpoint{},
		&FavoritePromptEndpoint{},
		&ImportPromptsEndpoint{},
		&ExportPromptsEndpoint{},
		&EnhancePromptEndpoint{},
		&SuggestTagsEndpoint{},

		// Category and model endpoints
		&ListCategoriesEndpoint{},
		&AddCategoryEndpoint{},
		&RemoveCategoryEndpoint{},
		&ListModelsEndpoint{},
		&AddModelEndpoint{},
		&RemoveModelEndpoint{},

		// Quick filter and selection endpoints
		&ListQuickFiltersEndpoint{},
		&CreateQuickFilterEndpoint{},
		&DeleteQuickFilterEndpoint{},
		&ApplyQuickFilterEndpoint{},
		&GetSelectionEndpoint{},
		&SetSelectionEndpoint{},

		// Desktop bridge endpoints
		&DesktopStateEndpoint{},
		&TogglePinEndpoint{},
		&SetOpacityEndpoint{},
		&MinimizeEndpoint{},
		&CloseWindowEndpoint{},

		// Swagger/OpenAPI endpoint
		&SwaggerEndpoint{},

		// Static files (catch-all, must be last)
		&StaticEndpoint{},
	}
}

// Commands returns CLI-only commands that have no HTTP route.
func Commands() []api.Commander {
	return []api.Commander{
		&CopyPromptCommand{},
	}
}

// Groups describes the "api" subcommand groups.
var Groups = map[string]string{
	"prompts":      "Create, search, import and export prompts",
	"categories":   "Manage categories",
	"models":       "Manage models",
	"quickfilters": "Saved quick filters",
	"selection":    "Active search and filter selection",
	"desktop":      "Desktop window controls",
}

// NewRegistry returns a registry holding every endpoint and command.
func NewRegistry() *api.Registry {
	r := api.NewRegistry()
	for _, ep := range All() {
		r.Register(ep)
	}
	for _, c := range Commands() {
		r.RegisterCommand(c)
	}
	for name, short := range Groups {
		r.DescribeGroup(name, short)
	}
	return r
}
