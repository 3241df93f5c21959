package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bobmcallan/strata/internal/models"
)

// DecodeJSON reads a chart request. The body is either the full request
// object ({"type": ..., "data": [[...]]}) or a bare dataset array.
func DecodeJSON(r io.Reader) (models.ChartRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.ChartRequest{}, &ImportError{Source: "json", Err: err}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return models.ChartRequest{}, &ImportError{Source: "json", Err: ErrNoData}
	}

	var req models.ChartRequest
	if data[0] == '[' {
		if err := json.Unmarshal(data, &req.Data); err != nil {
			return models.ChartRequest{}, &ImportError{Source: "json", Err: fmt.Errorf("invalid dataset: %w", err)}
		}
	} else if err := json.Unmarshal(data, &req); err != nil {
		return models.ChartRequest{}, &ImportError{Source: "json", Err: fmt.Errorf("invalid chart request: %w", err)}
	}

	if len(req.Data) == 0 {
		return models.ChartRequest{}, &ImportError{Source: "json", Err: ErrNoSeries}
	}
	return req, nil
}
