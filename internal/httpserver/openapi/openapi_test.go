package openapi

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type document struct {
	OpenAPI string                               `yaml:"openapi"`
	Paths   map[string]map[string]yaml.Node      `yaml:"paths"`
	Comps   map[string]map[string]map[string]any `yaml:"components"`
}

func TestYAML_DocumentsEveryRoute(t *testing.T) {
	var doc document
	if err := yaml.Unmarshal(YAML, &doc); err != nil {
		t.Fatalf("parse openapi.yaml: %v", err)
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		t.Fatalf("unexpected openapi version %q", doc.OpenAPI)
	}

	want := map[string][]string{
		"/customers":                             {"get", "post"},
		"/customers/{id}":                        {"get", "put", "delete"},
		"/customers/{id}/favorites":              {"get", "post"},
		"/customers/{id}/favorites/{favoriteId}": {"delete"},
		"/products/{id}":                         {"get"},
	}
	for path, methods := range want {
		ops, ok := doc.Paths[path]
		if !ok {
			t.Fatalf("missing path %s", path)
		}
		for _, m := range methods {
			if _, ok := ops[m]; !ok {
				t.Fatalf("missing %s %s", m, path)
			}
		}
	}

	errSchema, ok := doc.Comps["schemas"]["Error"]
	if !ok {
		t.Fatalf("missing Error schema")
	}
	props, _ := errSchema["properties"].(map[string]any)
	if _, ok := props["message"]; !ok {
		t.Fatalf("error body must document message, got %v", errSchema)
	}
}

func TestDocsHTML_PointsAtSpec(t *testing.T) {
	html := DocsHTML("/api-docs/openapi.yaml")
	if !strings.Contains(html, "url: '/api-docs/openapi.yaml'") || !strings.Contains(html, "swagger-ui") {
		t.Fatalf("unexpected docs page %s", html)
	}
}
