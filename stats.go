package epicmix

import (
	"context"
	"iter"
	"time"
)

const (
	lifetimeStatPath  = "v3/Stats/LifetimeStat"
	seasonStatPath    = "v3/Stats/SeasonStat"
	resortDayStatPath = "v3/Stats/ResortDayStat"
	liftRidesPath     = "v3/LiftHistory/Rides"
)

// LifetimeStats represents a rider's lifetime stats.
type LifetimeStats struct {
	// DisplayName is the display name of the statistic ("Lifetime Stats").
	DisplayName string `json:"displayName"`
	// SummaryStatID is the unique identifier of the lifetime stats.
	SummaryStatID int `json:"summaryStatId"`
	// LiftRides is the number of lifetime lift rides.
	LiftRides int `json:"liftRides"`
	// DaysOnMountain is the number of lifetime days on mountain.
	DaysOnMountain int `json:"daysOnMountain"`
	// VerticalInFeet is the lifetime vertical distance skied in feet.
	VerticalInFeet int `json:"verticalInFeet"`
	// VerticalInMeters is the lifetime vertical distance skied in meters.
	VerticalInMeters float64 `json:"verticalInMeters"`
	// MostVisitedResort is the identifier of the most visited resort.
	MostVisitedResort int `json:"mostVisitedResort"`
	// UpdatedTimestampUTC is when the stats were last updated.
	UpdatedTimestampUTC string `json:"updatedTimestampUtc"`
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
func (s *LifetimeStats) UnmarshalJSON(data []byte) error {
	type alias LifetimeStats
	return decodeRecord(data, "LifetimeStats", (*alias)(s))
}

// UpdatedAt parses UpdatedTimestampUTC.
func (s LifetimeStats) UpdatedAt() (time.Time, error) {
	return ParseTimestamp(s.UpdatedTimestampUTC)
}

// SeasonStats represents a rider's stats for one season.
type SeasonStats struct {
	// SummaryStatID is the unique identifier of the season stats.
	SummaryStatID int `json:"summaryStatId"`
	// SeasonDisplayName is the display name of the season.
	SeasonDisplayName string `json:"seasonDisplayName"`
	// SeasonTagID identifies the season. Pass it to [Client.DailyStats].
	SeasonTagID int `json:"seasonTagId"`
	// LiftRides is the number of lift rides taken during the season.
	LiftRides int `json:"liftRides"`
	// DaysOnMountain is the number of days on mountain during the season.
	DaysOnMountain int `json:"daysOnMountain"`
	// VerticalInFeet is the vertical distance skied in feet during the season.
	VerticalInFeet int `json:"verticalInFeet"`
	// VerticalInMeters is the vertical distance skied in meters during the season.
	VerticalInMeters float64 `json:"verticalInMeters"`
	// MostVisitedResort is the identifier of the season's most visited resort.
	MostVisitedResort int `json:"mostVisitedResort"`
	// UpdatedTimestampUTC is when the stats were last updated.
	UpdatedTimestampUTC string `json:"updatedTimestampUtc"`
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
func (s *SeasonStats) UnmarshalJSON(data []byte) error {
	type alias SeasonStats
	return decodeRecord(data, "SeasonStats", (*alias)(s))
}

// UpdatedAt parses UpdatedTimestampUTC.
func (s SeasonStats) UpdatedAt() (time.Time, error) {
	return ParseTimestamp(s.UpdatedTimestampUTC)
}

// DayStats represents a rider's stats for a single day at a resort.
type DayStats struct {
	// ResortDayStatID is the unique identifier of the day's stats.
	ResortDayStatID int `json:"resortDayStatId"`
	// ResortID identifies the resort where the stats were recorded.
	ResortID string `json:"resortId"`
	// VerticalInFeet is the vertical distance skied in feet on the day.
	VerticalInFeet int `json:"verticalInFeet"`
	// VerticalInMeters is the vertical distance skied in meters on the day.
	VerticalInMeters float64 `json:"verticalInMeters"`
	// LiftRides is the number of lift rides taken on the day.
	LiftRides int `json:"liftRides"`
	// CreatedTimestampUTC is when the stats were created.
	CreatedTimestampUTC string `json:"createdTimestampUtc"`
	// UpdatedTimestampUTC is when the stats were last updated.
	UpdatedTimestampUTC string `json:"updatedTimestampUtc"`
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
func (s *DayStats) UnmarshalJSON(data []byte) error {
	type alias DayStats
	return decodeRecord(data, "DayStats", (*alias)(s))
}

// CreatedAt parses CreatedTimestampUTC.
func (s DayStats) CreatedAt() (time.Time, error) {
	return ParseTimestamp(s.CreatedTimestampUTC)
}

// LiftRide represents a single lift ride.
type LiftRide struct {
	// ResortName is the name of the resort where the ride took place.
	ResortName string `json:"resortName"`
	// LiftName is the name of the lift.
	LiftName string `json:"liftName"`
	// ScanTime is when the rider's pass was scanned.
	ScanTime string `json:"scanTime"`
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
func (r *LiftRide) UnmarshalJSON(data []byte) error {
	type alias LiftRide
	return decodeRecord(data, "LiftRide", (*alias)(r))
}

// ScannedAt parses ScanTime.
func (r LiftRide) ScannedAt() (time.Time, error) {
	return ParseTimestamp(r.ScanTime)
}

type seasonStatsList struct {
	SeasonStats []SeasonStats `json:"seasonStats"`
}

func (l *seasonStatsList) UnmarshalJSON(data []byte) error {
	type alias seasonStatsList
	return decodeEnvelope(data, "season stats", (*alias)(l))
}

type dayStatsList struct {
	ResortDayStats []DayStats `json:"resortDayStats"`
}

func (l *dayStatsList) UnmarshalJSON(data []byte) error {
	type alias dayStatsList
	return decodeEnvelope(data, "resort day stats", (*alias)(l))
}

type dayStatsParams struct {
	SeasonTagID int `url:"SeasonTagId"`
}

type liftHistoryParams struct {
	Date string `url:"date"`
}

// LifetimeStats retrieves the rider's lifetime stats.
func (c *Client) LifetimeStats(ctx context.Context) (*LifetimeStats, error) {
	var result Response[LifetimeStats]
	if err := c.Fetch(ctx, lifetimeStatPath, &result); err != nil {
		return nil, err
	}

	return &result.Data, nil
}

// SeasonStats retrieves the rider's stats for every recorded season,
// in the order returned by the server.
func (c *Client) SeasonStats(ctx context.Context) ([]SeasonStats, error) {
	var result Response[seasonStatsList]
	if err := c.Fetch(ctx, seasonStatPath, &result); err != nil {
		return nil, err
	}

	return result.Data.SeasonStats, nil
}

// DailyStats retrieves the rider's per-day stats for a season.
func (c *Client) DailyStats(ctx context.Context, seasonTagID int) ([]DayStats, error) {
	path, err := withQuery(resortDayStatPath, dayStatsParams{SeasonTagID: seasonTagID})
	if err != nil {
		return nil, err
	}

	var result Response[dayStatsList]
	if err := c.Fetch(ctx, path, &result); err != nil {
		return nil, err
	}

	return result.Data.ResortDayStats, nil
}

// LiftHistory retrieves the rider's lift rides for a day.
// date has the form YYYY-MM-DDT00:00:00, see [FormatDate].
func (c *Client) LiftHistory(ctx context.Context, date string) ([]LiftRide, error) {
	path, err := withQuery(liftRidesPath, liftHistoryParams{Date: date})
	if err != nil {
		return nil, err
	}

	var result Response[[]LiftRide]
	if err := c.Fetch(ctx, path, &result); err != nil {
		return nil, err
	}

	return result.Data, nil
}

// AllDailyStats returns an iterator over the daily stats of every season,
// in season order.
func (c *Client) AllDailyStats(ctx context.Context) iter.Seq2[DayStats, error] {
	return iterate(ctx, c.SeasonStats, func(ctx context.Context, s SeasonStats) ([]DayStats, error) {
		return c.DailyStats(ctx, s.SeasonTagID)
	})
}
