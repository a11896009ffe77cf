package frequency

import "fmt"

// Stage names a step of the trip count pipeline.
type Stage string

const (
	StageCreateStops Stage = "create_stops"
	StageCount       Stage = "count"
	StageWrite       Stage = "write"
)

// stageMessages are reported when a stage fails.
var stageMessages = map[Stage]string{
	StageCreateStops: "Error creating feature class of GTFS stops.",
	StageCount:       "Error counting arrivals or departures at stop during time window.",
	StageWrite:       "Error writing to output.",
}

// StageError is a failure inside one pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
