package servicearea

import (
	"strings"
	"time"

	"transitanalysis.onebusaway.org/internal/timewindow"
)

// Request is a validated time-lapse run.
type Request struct {
	Layer      string
	OutputPath string
	Window     timewindow.Window
	Increment  int
	Timestamps []time.Time
}

// ParseRequest validates the raw tool inputs and builds the analysis timestamps. It
// touches no external resource, so bad input fails before a license is taken.
func ParseRequest(layer, outputPath, startDay, startTime, endDay, endTime string, incrementMinutes int) (Request, error) {
	if strings.TrimSpace(layer) == "" {
		return Request{}, &timewindow.InputError{Field: "layer", Message: "A service area layer is required."}
	}
	if strings.TrimSpace(outputPath) == "" {
		return Request{}, &timewindow.InputError{Field: "output", Message: "An output feature class is required."}
	}
	if incrementMinutes <= 0 {
		return Request{}, &timewindow.InputError{Field: "increment", Message: "The time increment must be a positive number of minutes."}
	}

	window, err := timewindow.Build(startDay, startTime, endDay, endTime)
	if err != nil {
		return Request{}, err
	}

	return Request{
		Layer:      layer,
		OutputPath: outputPath,
		Window:     window,
		Increment:  incrementMinutes,
		Timestamps: window.Timestamps(incrementMinutes),
	}, nil
}
