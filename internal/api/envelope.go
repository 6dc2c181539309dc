package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/journalapp/journal-server/internal/http/response"
)

// EnvelopeVersion is the version of the response envelope format.
const EnvelopeVersion = response.Version

// EnvelopeTransformer wraps every huma response body in the versioned
// {v, success, data, error} envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch val := v.(type) {
	case response.Envelope:
		return val, nil
	case *APIError:
		return response.Fail(val.Code, val.Message, val.Details), nil
	case error:
		code, _ := strconv.Atoi(status)
		return response.Fail(string(response.CodeForStatus(code)), val.Error(), nil), nil
	}
	return response.OK(v), nil
}
