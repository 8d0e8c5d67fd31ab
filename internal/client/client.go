// Package client provides a transport-agnostic interface for the clinic
// requests API and an HTTP/JSON implementation of it.
package client

import (
	"context"

	"github.com/alfredjeanlab/zayafka/internal/model"
	"github.com/alfredjeanlab/zayafka/internal/query"
)

// ClinicClient is the interface the list controller and the CLI commands use
// to talk to the API. It is implemented by HTTPClient.
type ClinicClient interface {
	// ListRequests fetches one page of requests for the given parameters.
	ListRequests(ctx context.Context, params query.Params) (*model.PageResult, error)

	// DeleteRequest removes a request by id.
	DeleteRequest(ctx context.Context, id string) error

	// ExportRequests downloads a spreadsheet of the requests matching params.
	ExportRequests(ctx context.Context, params query.Params) (*Export, error)

	// Close releases any transport resources.
	Close() error
}

// Export is a binary export artifact as delivered by the API.
type Export struct {
	ContentType string
	Data        []byte
}
