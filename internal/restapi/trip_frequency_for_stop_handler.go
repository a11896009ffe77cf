package restapi

import (
	"net/http"

	"transitanalysis.onebusaway.org/internal/models"
	"transitanalysis.onebusaway.org/internal/schedule"
	"transitanalysis.onebusaway.org/internal/utils"
)

func (api *RestAPI) tripFrequencyForStopHandler(w http.ResponseWriter, r *http.Request) {
	stopID := utils.ExtractIDFromParams(r, "id")
	if err := utils.ValidateID(stopID); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return
	}

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

	var stop *schedule.Stop
	for i := range stops {
		if stops[i].ID == stopID {
			stop = &stops[i]
			break
		}
	}
	if stop == nil {
		api.sendNotFound(w, r)
		return
	}

	stats, _, err := api.Counter.Stats(ctx, []schedule.Stop{*stop}, req.Day, req.Window, req.Direction)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	entry := stopFrequency(stop.ID, req, stats[stop.ID])
	refs := models.NewStopReferences([]models.Stop{models.NewStop(stop.ID, stop.Name, stop.Lat, stop.Lon)})
	api.sendResponse(w, r, models.NewEntryResponse(entry, refs))
}
