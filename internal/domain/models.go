package domain

import "time"

// Domain contains core models shared by the driver and publishers.

// Dataset describes a query result written to the workdir.
type Dataset struct {
	JobID      string    `json:"job_id"`
	JobName    string    `json:"job_name"`
	OutputPath string    `json:"output_path"`
	Bytes      int       `json:"bytes"`
	UpdatedAt  time.Time `json:"updated_at"`
}
