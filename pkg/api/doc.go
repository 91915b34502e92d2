// Package api defines the labtrack domain types: the Sample record with
// its enumerated type and status fields, the create/update request shapes,
// ID generation, request validation, and the structured error taxonomy
// shared by the service and transport layers.
package api
