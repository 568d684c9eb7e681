// Package openapi embeds the OpenAPI document of the catalog API.
package openapi

import _ "embed"

// YAML contains the embedded OpenAPI document.
//
//go:embed openapi.yaml
var YAML []byte

// DocsHTML renders Swagger UI for the document served at specURL.
func DocsHTML(specURL string) string {
	return `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Favorites Catalog API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '` + specURL + `',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
}
