package servers

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen -generate types -package servers -o types.gen.go openapi.yaml
//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen -generate server -package servers -o server.gen.go openapi.yaml

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawSpec []byte

// RawSpec returns the OpenAPI document the package was generated from.
func RawSpec() []byte {
	return rawSpec
}

// GetSwagger returns the parsed OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading spec: %w", err)
	}
	return swagger, nil
}
