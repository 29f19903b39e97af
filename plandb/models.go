package plandb

import "encoding/json"

// Kinds stored in the dataset and run tables.
const (
	KindCase1      = "case1"
	KindCase2      = "case2"
	KindForecast   = "forecast"
	KindAllocation = "allocation"
	KindScenario   = "scenario"
)

// Dataset is a stored upload: the canonical CSV text plus provenance.
type Dataset struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Source    string `json:"source"`
	Payload   string `json:"payload,omitempty"`
	CreatedAt int64  `json:"createdAt"` // epoch millis
}

// Run is one recorded forecast, allocation, or scenario execution. Params
// and Result hold the request and response JSON as sent on the wire.
type Run struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	DatasetID *int64          `json:"datasetId,omitempty"`
	Params    json.RawMessage `json:"params"`
	Result    json.RawMessage `json:"result,omitempty"`
	Status    string          `json:"status"`
	CreatedAt int64           `json:"createdAt"` // epoch millis
}
