package gtfsdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jamespfennell/gtfs"
	"transitanalysis.onebusaway.org/internal/logging"
)

// processAndStoreGTFSDataWithSource parses a GTFS zip and replaces the stored schedule with
// it. Feeds whose hash matches the last import are skipped.
func (c *Client) processAndStoreGTFSDataWithSource(ctx context.Context, b []byte, source string) (err error) {
	startTime := time.Now()
	defer func() {
		c.importRuntime = time.Since(startTime)

		if c.config.verbose {
			logging.LogOperation(c.logger, "gtfs_import_finished",
				slog.String("source", source),
				slog.Duration("duration", c.importRuntime))
		}
	}()

	hash := hashFeed(b)

	existing, err := c.GetImportMetadata(ctx)
	switch {
	case err == nil && existing.FileHash == hash:
		logging.LogOperation(c.logger, "gtfs_import_skipped_unchanged",
			slog.String("source", source),
			slog.String("file_hash", hash))
		return nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("error reading import metadata: %w", err)
	}

	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return fmt.Errorf("error parsing GTFS data: %w", err)
	}

	if c.config.verbose {
		c.logger.Info("retrieved static data", slog.Int("warnings", len(staticData.Warnings)))
		for k, v := range c.staticDataCounts(staticData) {
			c.logger.Debug("static data count", slog.String("table", k), slog.Int("count", v))
		}
	}

	rows := convertStatic(staticData)
	if rows.skippedStops > 0 {
		c.logger.Warn("skipped stops without coordinates", slog.Int("count", rows.skippedStops))
	}

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "gtfs_import")

	if err := clearTables(ctx, tx); err != nil {
		return err
	}
	if err := insertAll(ctx, tx, rows); err != nil {
		return err
	}
	if err := upsertImportMetadata(ctx, tx, ImportMetadata{
		FileHash:   hash,
		FileSource: source,
		ImportTime: time.Now().Unix(),
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	logging.LogOperation(c.logger, "gtfs_data_imported",
		slog.String("source", source),
		slog.Int("stops_count", len(rows.stops)),
		slog.Int("trips_count", len(rows.trips)),
		slog.Int("stop_times_count", len(rows.stopTimes)))

	return nil
}

// staticRows is a parsed feed flattened into table rows.
type staticRows struct {
	agencies      []Agency
	routes        []Route
	stops         []Stop
	calendars     []Calendar
	calendarDates []CalendarDate
	trips         []Trip
	stopTimes     []StopTime
	skippedStops  int
}

func convertStatic(staticData *gtfs.Static) staticRows {
	var rows staticRows

	for _, a := range staticData.Agencies {
		rows.agencies = append(rows.agencies, Agency{
			ID:       a.Id,
			Name:     a.Name,
			URL:      a.Url,
			Timezone: a.Timezone,
			Lang:     a.Language,
			Phone:    a.Phone,
		})
	}

	singleAgencyID := ""
	if len(staticData.Agencies) == 1 {
		singleAgencyID = staticData.Agencies[0].Id
	}

	for _, r := range staticData.Routes {
		agencyID := ""
		if r.Agency != nil {
			agencyID = r.Agency.Id
		}
		rows.routes = append(rows.routes, Route{
			ID:        r.Id,
			AgencyID:  pickFirstAvailable(agencyID, singleAgencyID),
			ShortName: r.ShortName,
			LongName:  r.LongName,
			Type:      int(r.Type),
		})
	}

	for _, s := range staticData.Stops {
		if s.Latitude == nil || s.Longitude == nil {
			rows.skippedStops++
			continue
		}
		rows.stops = append(rows.stops, Stop{
			ID:           s.Id,
			Code:         s.Code,
			Name:         s.Name,
			Desc:         s.Description,
			Lat:          *s.Latitude,
			Lon:          *s.Longitude,
			LocationType: int(s.Type),
		})
	}

	for _, s := range staticData.Services {
		rows.calendars = append(rows.calendars, Calendar{
			ServiceID: s.Id,
			Monday:    boolToInt(s.Monday),
			Tuesday:   boolToInt(s.Tuesday),
			Wednesday: boolToInt(s.Wednesday),
			Thursday:  boolToInt(s.Thursday),
			Friday:    boolToInt(s.Friday),
			Saturday:  boolToInt(s.Saturday),
			Sunday:    boolToInt(s.Sunday),
			StartDate: s.StartDate.Format(dateLayout),
			EndDate:   s.EndDate.Format(dateLayout),
		})
		for _, d := range s.AddedDates {
			rows.calendarDates = append(rows.calendarDates, CalendarDate{ServiceID: s.Id, Date: d.Format(dateLayout), ExceptionType: 1})
		}
		for _, d := range s.RemovedDates {
			rows.calendarDates = append(rows.calendarDates, CalendarDate{ServiceID: s.Id, Date: d.Format(dateLayout), ExceptionType: 2})
		}
	}

	for _, t := range staticData.Trips {
		if t.Route == nil || t.Service == nil {
			continue
		}
		rows.trips = append(rows.trips, Trip{
			ID:        t.ID,
			RouteID:   t.Route.Id,
			ServiceID: t.Service.Id,
			Headsign:  t.Headsign,
		})
		for _, st := range t.StopTimes {
			if st.Stop == nil {
				continue
			}
			rows.stopTimes = append(rows.stopTimes, StopTime{
				TripID:        t.ID,
				StopID:        st.Stop.Id,
				StopSequence:  st.StopSequence,
				ArrivalTime:   int(st.ArrivalTime / time.Second),
				DepartureTime: int(st.DepartureTime / time.Second),
			})
		}
	}

	return rows
}

func hashFeed(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// toNullString converts a string to sql.NullString
func toNullString(s string) sql.NullString {
	return sql.NullString{
		String: s,
		Valid:  s != "",
	}
}

func pickFirstAvailable(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
