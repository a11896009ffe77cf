package restapi

import (
	"net/http"

	"transitanalysis.onebusaway.org/internal/models"
	"transitanalysis.onebusaway.org/internal/timewindow"
	"transitanalysis.onebusaway.org/internal/utils"
)

// analysisTimesHandler previews the times of day a time-lapse run would solve at
func (api *RestAPI) analysisTimesHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	fieldErrors := utils.RequireParams(query, []string{"startDay", "startTime", "endDay", "endTime", "increment"}, nil)
	fieldErrors = utils.ValidateClockParams(query, []string{"startTime", "endTime"}, fieldErrors)
	increment, fieldErrors := utils.ParseIntParam(query, "increment", 0, fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}
	if increment <= 0 {
		api.validationErrorResponse(w, r, map[string][]string{
			"increment": {"The time increment must be a positive number of minutes."},
		})
		return
	}

	window, err := timewindow.Build(
		utils.SanitizeInput(query.Get("startDay")),
		query.Get("startTime"),
		utils.SanitizeInput(query.Get("endDay")),
		query.Get("endTime"),
	)
	if err != nil {
		if fields, ok := utils.InputErrorFields(err); ok {
			api.validationErrorResponse(w, r, fields)
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}

	stamps := window.Timestamps(increment)
	times := make([]string, len(stamps))
	for i, t := range stamps {
		times[i] = timewindow.FormatTimeOfDay(t)
	}

	entry := models.NewAnalysisTimesEntry(
		timewindow.FormatTimeOfDay(window.Start),
		timewindow.FormatTimeOfDay(window.End),
		window.Generic,
		increment,
		times,
	)
	api.sendResponse(w, r, models.NewEntryResponse(entry, models.NewEmptyReferences()))
}
