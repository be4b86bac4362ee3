package client

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

const (
	endpointOperationTypes = "operationTypes"
	endpointExecute        = "executeOperation"
)

// FetchOperationCatalogue returns every operation the backend declares.
func (c *Client) FetchOperationCatalogue(ctx context.Context) ([]types.OperationDescriptor, error) {
	return call[[]types.OperationDescriptor](ctx, c, endpointOperationTypes, http.MethodGet, "/api/file-operations/types", nil)
}

// ExecuteOperation runs opType with payload and returns the backend's
// result message.
func (c *Client) ExecuteOperation(ctx context.Context, opType string, payload types.Payload) (string, error) {
	if payload == nil {
		payload = types.Payload{}
	}
	return call[string](ctx, c, endpointExecute, http.MethodPost, "/api/file-operations/{type}/execute", func(r *resty.Request) {
		r.SetPathParam("type", opType).SetBody(map[string]any(payload))
	})
}
