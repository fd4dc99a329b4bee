// Package api holds the engine's HTTP contract. The servers package is
// generated from it and the HTTP adapter validates requests against it.
package api

import (
	_ "embed"
)

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen@v2.4.1 --config=oapi-codegen.yml openapi.yml

// OpenAPI is the contract document in YAML.
//
//go:embed openapi.yml
var OpenAPI []byte
