// Package docs holds the general OpenAPI annotations for the scangate API.
// Endpoint annotations live on the handlers in internal/api/handlers; run
// `go generate ./docs` to refresh the document in docs/swagger.
//
//go:generate swag init -g swagger_docs.go -d .,../internal/api/handlers -o ./swagger --parseDependency --parseInternal
package docs

// @title scangate API
// @version 1.0.0
// @description Runs nmap port scans against validated targets and returns sanitized, parsed results.
// @description
// @description Targets and port specifications are validated before any process is started,
// @description and scan output is stripped of MAC addresses and local paths before it is returned.
// @description Finished scans can be downloaded as JSON, CSV or plain-text log reports.
// @description
// @description ## Authentication
// @description When API keys are enabled, include a key in the `X-API-Key` header or as a Bearer token.
// @description Health, liveness, version, metrics and documentation endpoints never require a key.
//
// @contact.name scangate maintainers
// @contact.url https://github.com/anstrom/scangate
//
// @license.name MIT
// @license.url https://github.com/anstrom/scangate/blob/main/LICENSE
//
// @host localhost:5000
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for authentication
