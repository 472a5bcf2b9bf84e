package handlers

import (
	"net/http"

	"github.com/upb/dpa-psp-adapter/utils"
)

// OpenAPI document types, limited to what the adapter publishes

// OpenAPIDocument is the root of an OpenAPI 3.0 document
type OpenAPIDocument struct {
	OpenAPI    string                     `json:"openapi"`
	Info       openAPIInfo                `json:"info"`
	Servers    []openAPIServer            `json:"servers,omitempty"`
	Paths      map[string]openAPIPathItem `json:"paths"`
	Components openAPIComponents          `json:"components"`
}

type openAPIInfo struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

type openAPIServer struct {
	URL string `json:"url"`
}

type openAPIPathItem map[string]openAPIOperation

type openAPIOperation struct {
	Summary     string                     `json:"summary"`
	Tags        []string                   `json:"tags,omitempty"`
	Security    []map[string][]string      `json:"security,omitempty"`
	Parameters  []openAPIParameter         `json:"parameters,omitempty"`
	RequestBody *openAPIRequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]openAPIResponse `json:"responses"`
}

type openAPIParameter struct {
	Name     string        `json:"name"`
	In       string        `json:"in"`
	Required bool          `json:"required"`
	Schema   openAPISchema `json:"schema"`
}

type openAPIRequestBody struct {
	Required bool                        `json:"required"`
	Content  map[string]openAPIMediaType `json:"content"`
}

type openAPIMediaType struct {
	Schema openAPISchema `json:"schema"`
}

type openAPIResponse struct {
	Description string `json:"description"`
}

type openAPISchema struct {
	Type string `json:"type,omitempty"`
	Ref  string `json:"$ref,omitempty"`
}

type openAPIComponents struct {
	SecuritySchemes map[string]openAPISecurityScheme `json:"securitySchemes"`
}

type openAPISecurityScheme struct {
	Type         string `json:"type"`
	Scheme       string `json:"scheme"`
	BearerFormat string `json:"bearerFormat,omitempty"`
}

var (
	bearerAuth = []map[string][]string{{"bearerAuth": {}}}

	tenantPathParam = openAPIParameter{Name: "tenantId", In: "path", Required: true, Schema: openAPISchema{Type: "string"}}
	tenantHeader    = openAPIParameter{Name: "X-SAP-TenantId", In: "header", Required: false, Schema: openAPISchema{Type: "string"}}

	jsonBody = &openAPIRequestBody{
		Required: true,
		Content:  map[string]openAPIMediaType{"application/json": {Schema: openAPISchema{Type: "object"}}},
	}

	authResponses = map[string]openAPIResponse{
		"401": {Description: "Unauthorized - Invalid or missing authentication token"},
	}
)

func responses(codes map[string]string) map[string]openAPIResponse {
	out := make(map[string]openAPIResponse, len(codes)+len(authResponses))
	for code, resp := range authResponses {
		out[code] = resp
	}
	for code, description := range codes {
		out[code] = openAPIResponse{Description: description}
	}
	return out
}

func queryParam(name string) openAPIParameter {
	return openAPIParameter{Name: name, In: "query", Required: true, Schema: openAPISchema{Type: "string"}}
}

// BuildOpenAPIDocument describes the adapter's HTTP interface
func BuildOpenAPIDocument(serverURL string) *OpenAPIDocument {
	doc := &OpenAPIDocument{
		OpenAPI: "3.0.0",
		Info: openAPIInfo{
			Title:       "Digital Payments PSP Adapter",
			Version:     utils.APIVersion,
			Description: "Connects the digital payments core to a payment service provider",
		},
		Paths: map[string]openAPIPathItem{
			"/core/v1/tenants/{tenantId}": {
				"put": {
					Summary:    "Onboard a tenant",
					Tags:       []string{"Tenants"},
					Security:   bearerAuth,
					Parameters: []openAPIParameter{tenantPathParam},
					Responses: responses(map[string]string{
						"200": "Tenant onboarded",
						"400": "Missing tenant id in path",
					}),
				},
				"delete": {
					Summary:    "Offboard a tenant",
					Tags:       []string{"Tenants"},
					Security:   bearerAuth,
					Parameters: []openAPIParameter{tenantPathParam},
					Responses: responses(map[string]string{
						"204": "Tenant offboarded",
						"500": "Unable to delete tenant",
					}),
				},
			},
			"/core/v1/tenant/{tenantId}": {
				"get": {
					Summary:    "Look up a tenant",
					Tags:       []string{"Tenants"},
					Security:   bearerAuth,
					Parameters: []openAPIParameter{tenantPathParam},
					Responses: responses(map[string]string{
						"200": "Tenant found",
						"404": "Tenant not found",
					}),
				},
			},
			"/core/v1/capabilities": {
				"get": {
					Summary:    "Adapter capabilities",
					Tags:       []string{"Capabilities"},
					Security:   bearerAuth,
					Parameters: []openAPIParameter{tenantHeader},
					Responses: responses(map[string]string{
						"200": "Capabilities",
						"404": "Tenant not onboarded",
					}),
				},
			},
			"/core/v1/cards/requestregistrationurl": {
				"post": {
					Summary:     "Request a card registration URL",
					Tags:        []string{"Cards"},
					Security:    bearerAuth,
					RequestBody: jsonBody,
					Responses: responses(map[string]string{
						"200": "Registration URL",
						"400": "Invalid or incomplete request body",
						"405": "Method Not Allowed",
						"502": "Payment service provider error",
					}),
				},
			},
			"/core/v1/charges": {
				"post": {
					Summary:     "Authorize charges",
					Tags:        []string{"Charges"},
					Security:    bearerAuth,
					Parameters:  []openAPIParameter{tenantHeader},
					RequestBody: jsonBody,
					Responses: responses(map[string]string{
						"200": "Charge results",
						"400": "Invalid or incomplete request body",
						"404": "Tenant not onboarded",
						"502": "Payment service provider error",
					}),
				},
			},
			"/payment": {
				"get": {
					Summary: "Payment service provider return redirect",
					Tags:    []string{"Payment"},
					Parameters: []openAPIParameter{
						queryParam("transactionId"),
						queryParam("status"),
						queryParam("DigitalPaymentTransaction"),
						queryParam("tenantId"),
					},
					Responses: map[string]openAPIResponse{
						"200": {Description: "Payment result"},
						"400": {Description: "Missing query parameter"},
						"502": {Description: "Payment service provider error"},
					},
				},
				"post": {
					Summary:   "Payment service provider webhook",
					Tags:      []string{"Payment"},
					Responses: map[string]openAPIResponse{"200": {Description: "Acknowledged"}},
				},
			},
			"/mock-token": {
				"post": {
					Summary: "Issue a mock bearer token (non-production only)",
					Tags:    []string{"Development"},
					Responses: map[string]openAPIResponse{
						"200": {Description: "Mock token"},
						"404": {Description: "Not available in production"},
					},
				},
			},
		},
		Components: openAPIComponents{
			SecuritySchemes: map[string]openAPISecurityScheme{
				"bearerAuth": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
			},
		},
	}

	if serverURL != "" {
		doc.Servers = []openAPIServer{{URL: serverURL}}
	}
	return doc
}

// DocsHandler serves the OpenAPI document
type DocsHandler struct {
	document *OpenAPIDocument
}

// NewDocsHandler creates a DocsHandler advertising the given base URL
func NewDocsHandler(serverURL string) *DocsHandler {
	return &DocsHandler{document: BuildOpenAPIDocument(serverURL)}
}

// HandleOpenAPI handles GET /api-docs.json
func (h *DocsHandler) HandleOpenAPI(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.document)
}
