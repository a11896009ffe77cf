package restapi

import (
	"net/http"
	"sort"

	"transitanalysis.onebusaway.org/internal/frequency"
	"transitanalysis.onebusaway.org/internal/models"
	"transitanalysis.onebusaway.org/internal/schedule"
	"transitanalysis.onebusaway.org/internal/utils"
)

// parseFrequencyQuery validates the day, window and direction shared by the trip
// frequency endpoints. Direction defaults to departures.
func (api *RestAPI) parseFrequencyQuery(w http.ResponseWriter, r *http.Request) (frequency.Request, bool) {
	query := r.URL.Query()

	fieldErrors := utils.RequireParams(query, []string{"day", "startTime", "endTime"}, nil)
	fieldErrors = utils.ValidateClockParams(query, []string{"startTime", "endTime"}, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return frequency.Request{}, false
	}
	if err := utils.ValidateDayToken(query.Get("day")); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"day": {err.Error()}})
		return frequency.Request{}, false
	}

	direction := query.Get("direction")
	if direction == "" {
		direction = schedule.Departures.String()
	}

	req, err := frequency.ParseRequest("", query.Get("day"), query.Get("startTime"), query.Get("endTime"), direction)
	if err != nil {
		if fields, ok := utils.InputErrorFields(err); ok {
			api.validationErrorResponse(w, r, fields)
		} else {
			api.serverErrorResponse(w, r, err)
		}
		return frequency.Request{}, false
	}
	return req, true
}

func frequencyWindow(req frequency.Request) models.FrequencyWindow {
	return models.FrequencyWindow{
		Day:         req.Day.String(),
		Direction:   req.Direction.String(),
		WindowStart: req.Window.Start,
		WindowEnd:   req.Window.End,
	}
}

func stopFrequency(stopID string, req frequency.Request, s frequency.StopStats) models.StopFrequency {
	return models.NewStopFrequency(stopID, frequencyWindow(req), s.TripCount, s.TripsPerHour, s.MaxWait, s.MaxWaitMinutes())
}

// tripFrequencyHandler returns the trip statistics of every stop
func (api *RestAPI) tripFrequencyHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := api.parseFrequencyQuery(w, r)
	if !ok {
		return
	}

	ctx := r.Context()

	stops, err := api.Store.Stops(ctx)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	stats, _, err := api.Counter.Stats(ctx, stops, req.Day, req.Window, req.Direction)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	sort.Slice(stops, func(i, j int) bool { return stops[i].ID < stops[j].ID })

	list := make([]models.StopFrequency, 0, len(stops))
	refs := make([]models.Stop, 0, len(stops))
	for _, s := range stops {
		list = append(list, stopFrequency(s.ID, req, stats[s.ID]))
		refs = append(refs, models.NewStop(s.ID, s.Name, s.Lat, s.Lon))
	}

	api.sendResponse(w, r, models.NewListResponse(list, models.NewStopReferences(refs)))
}
