package widget

import (
	"encoding/json"

	"query-chat/backend"
	"query-chat/format"
)

const unknownErrorText = "Unknown error occurred."

type uploadOutcome interface{ isUploadOutcome() }

type uploadAccepted struct {
	dataset string
	label   string
}

type uploadRejected struct{}

func (uploadAccepted) isUploadOutcome() {}
func (uploadRejected) isUploadOutcome() {}

func classifyUpload(resp *backend.UploadResponse) uploadOutcome {
	if resp.Success {
		return uploadAccepted{dataset: resp.Dataset, label: resp.Message}
	}
	return uploadRejected{}
}

type queryOutcome interface{ isQueryOutcome() }

// queryAnswered: results is usable as a result payload.
type queryAnswered struct {
	sql     string
	results json.RawMessage
	data    any
}

// queryFlagged: the backend reported an error, or sent an empty payload.
type queryFlagged struct {
	sql     string
	message string
}

// queryBroken: results is missing or null, so nothing can be read from it.
type queryBroken struct {
	sql string
}

func (queryAnswered) isQueryOutcome() {}
func (queryFlagged) isQueryOutcome()  {}
func (queryBroken) isQueryOutcome()   {}

func classifyQuery(resp *backend.QueryResponse) queryOutcome {
	results := format.Undefined
	if len(resp.Results) > 0 {
		decoded, err := format.DecodeJSON(resp.Results)
		if err != nil {
			return queryBroken{sql: resp.SQLQuery}
		}
		results = decoded
	}

	errValue, err := format.Property(results, "error")
	if err != nil {
		return queryBroken{sql: resp.SQLQuery}
	}

	if !format.Truthy(results) || format.Truthy(errValue) {
		message := unknownErrorText
		if format.Truthy(errValue) {
			message = format.Stringify(errValue)
		}
		return queryFlagged{sql: resp.SQLQuery, message: message}
	}

	data, _ := format.Property(results, "data")
	return queryAnswered{sql: resp.SQLQuery, results: resp.Results, data: data}
}
