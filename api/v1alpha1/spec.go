package v1alpha1

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiSpec []byte

// GetSwagger returns the openapi description of the pcap query api.
func GetSwagger() (*openapi3.T, error) {
	swagger, err := openapi3.NewLoader().LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading openapi spec: %w", err)
	}
	return swagger, nil
}
