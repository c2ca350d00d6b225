package publishers

import (
	"time"

	"github.com/samvad-hq/overpass-harvester/internal/domain"
)

// EventDatasetUpdated is the only event kind emitted today.
const EventDatasetUpdated = "dataset.updated"

// Event represents the payload published downstream.
type Event struct {
	Kind        string         `json:"kind"`
	Dataset     domain.Dataset `json:"dataset"`
	PublishedAt time.Time      `json:"published_at"`
}

// NewEvent constructs a dataset-updated Event.
func NewEvent(ds domain.Dataset) Event {
	return Event{
		Kind:        EventDatasetUpdated,
		Dataset:     ds,
		PublishedAt: time.Now().UTC(),
	}
}
