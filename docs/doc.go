// Package docs provides generated OpenAPI documentation.
//
// promptvault API
//
//	@title			promptvault API
//	@version		1.0
//	@description	Local API for a personal prompt library: prompts, categories, models, quick filters and desktop window controls.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/promptvault
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http
package docs

//go:generate swag init -g ../cmd/promptvault/serve.go -o . --outputTypes go --parseInternal
