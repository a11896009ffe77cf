package models

// AnalysisTimesEntry lists the times of day a time-lapse run would solve at.
type AnalysisTimesEntry struct {
	EndTime          string   `json:"endTime"`
	Generic          bool     `json:"generic"`
	IncrementMinutes int      `json:"incrementMinutes"`
	StartTime        string   `json:"startTime"`
	TimeCount        int      `json:"timeCount"`
	Times            []string `json:"times"`
}

func NewAnalysisTimesEntry(start, end string, generic bool, increment int, times []string) AnalysisTimesEntry {
	if times == nil {
		times = []string{}
	}
	return AnalysisTimesEntry{
		EndTime:          end,
		Generic:          generic,
		IncrementMinutes: increment,
		StartTime:        start,
		TimeCount:        len(times),
		Times:            times,
	}
}

// StopFrequency is the trip statistics of one stop. Max wait values are null when the
// stop has no service on the analysed day.
type StopFrequency struct {
	Day            string  `json:"day"`
	Direction      string  `json:"direction"`
	MaxWaitMinutes *int    `json:"maxWaitMinutes"`
	MaxWaitSeconds *int    `json:"maxWaitSeconds"`
	StopID         string  `json:"stopId"`
	TripCount      int     `json:"tripCount"`
	TripsPerHour   float64 `json:"tripsPerHour"`
	WindowEnd      int     `json:"windowEnd"`
	WindowStart    int     `json:"windowStart"`
}

// FrequencyWindow echoes the resolved request of a trip frequency query.
type FrequencyWindow struct {
	Day         string
	Direction   string
	WindowStart int
	WindowEnd   int
}

func NewStopFrequency(stopID string, w FrequencyWindow, tripCount int, tripsPerHour float64, maxWaitSeconds, maxWaitMinutes *int) StopFrequency {
	return StopFrequency{
		Day:            w.Day,
		Direction:      w.Direction,
		MaxWaitMinutes: maxWaitMinutes,
		MaxWaitSeconds: maxWaitSeconds,
		StopID:         stopID,
		TripCount:      tripCount,
		TripsPerHour:   tripsPerHour,
		WindowEnd:      w.WindowEnd,
		WindowStart:    w.WindowStart,
	}
}
