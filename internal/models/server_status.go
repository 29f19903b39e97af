package models

import "time"

// ServerStatusModel describes the running server for the status endpoint.
type ServerStatusModel struct {
	ReadableTime string `json:"readableTime"`
	Time         int64  `json:"time"`
	Version      string `json:"version"`
	Env          string `json:"env"`
	UptimeMs     int64  `json:"uptimeMs"`
	Case1Source  string `json:"case1Source"`
	Case2Source  string `json:"case2Source"`
}

// NewServerStatusModel creates a ServerStatusModel based on a provided time
// and server metadata.
func NewServerStatusModel(t time.Time, version string, env string, startedAt time.Time, case1Source, case2Source string) ServerStatusModel {
	timeMillis := t.UnixNano() / int64(time.Millisecond)

	return ServerStatusModel{
		ReadableTime: t.Format(time.RFC3339),
		Time:         timeMillis,
		Version:      version,
		Env:          env,
		UptimeMs:     t.Sub(startedAt).Milliseconds(),
		Case1Source:  case1Source,
		Case2Source:  case2Source,
	}
}
