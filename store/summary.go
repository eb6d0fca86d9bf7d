package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// sampleCap bounds how many raw rows are embedded in a summary.
const sampleCap = 50

// Summary is the aggregate metrics payload embedded into consensus prompts.
// Keys of DailyCounts use the YYYYMMDD date format; prompt instructions
// depend on that shape, so it is part of the contract.
type Summary struct {
	Period     SummaryPeriod     `json:"period"`
	Containers ContainerMetrics  `json:"containers"`
	Vehicles   VehicleMetrics    `json:"vehicles"`
	Sample     SummarySampleRows `json:"sample"`
}

// SummaryPeriod is the inclusive date window the summary covers.
type SummaryPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ContainerMetrics aggregates container events for the period.
type ContainerMetrics struct {
	TotalRecords  int            `json:"total_records"`
	TotalQuantity float64        `json:"total_quantity"`
	DailyCounts   map[string]int `json:"daily_counts"`
	ByLineCode    map[string]int `json:"by_line_code"`
}

// VehicleMetrics aggregates ramp operations for the period.
type VehicleMetrics struct {
	TotalRecords      int            `json:"total_records"`
	DailyVehicleCount map[string]int `json:"daily_vehicle_counts"`
}

// SummarySampleRows carries a capped sample of raw rows for grounding.
type SummarySampleRows struct {
	Containers []ContainerRow `json:"containers"`
	Vehicles   []VehicleRow   `json:"vehicles"`
}

// ContainerRow is one raw container event as embedded in a summary sample.
type ContainerRow struct {
	UnloadedOn string  `json:"unloaded_on"`
	LineCode   string  `json:"line_code,omitempty"`
	Quantity   float64 `json:"quantity"`
	ShipName   string  `json:"ship_name,omitempty"`
	Manifest   string  `json:"manifest,omitempty"`
}

// VehicleRow is one raw ramp operation as embedded in a summary sample.
type VehicleRow struct {
	OperationDate   string `json:"operation_date"`
	RampID          string `json:"ramp_id,omitempty"`
	Shift           string `json:"shift,omitempty"`
	VehiclesCount   int    `json:"vehicles_count"`
	ContainersCount int    `json:"containers_count"`
}

// MetricsSummary aggregates both event tables over the inclusive window and
// returns the summary as serialized JSON, ready for a prompt. maxRows caps
// how many rows of each table feed the aggregation; values <= 0 fall back to
// a sane default.
func (s *Store) MetricsSummary(ctx context.Context, start, end time.Time, maxRows int) (json.RawMessage, error) {
	if end.Before(start) {
		start, end = end, start
	}
	if maxRows <= 0 {
		maxRows = 2000
	}

	summary := Summary{
		Period: SummaryPeriod{
			StartDate: start.Format(dateKey),
			EndDate:   end.Format(dateKey),
		},
		Containers: ContainerMetrics{
			DailyCounts: map[string]int{},
			ByLineCode:  map[string]int{},
		},
		Vehicles: VehicleMetrics{
			DailyVehicleCount: map[string]int{},
		},
	}

	if err := s.aggregateContainers(ctx, &summary, start, end, maxRows); err != nil {
		return nil, err
	}
	if err := s.aggregateVehicles(ctx, &summary, start, end, maxRows); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	return encoded, nil
}

func (s *Store) aggregateContainers(ctx context.Context, summary *Summary, start, end time.Time, maxRows int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT unloaded_on, line_code, quantity, ship_name, manifest
		 FROM container_events
		 WHERE unloaded_on BETWEEN ? AND ?
		 ORDER BY unloaded_on ASC LIMIT ?`,
		start.Format(dateKey), end.Format(dateKey), maxRows)
	if err != nil {
		return fmt.Errorf("query container events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row ContainerRow
		if err := rows.Scan(&row.UnloadedOn, &row.LineCode, &row.Quantity, &row.ShipName, &row.Manifest); err != nil {
			return fmt.Errorf("scan container event: %w", err)
		}
		summary.Containers.TotalRecords++
		summary.Containers.TotalQuantity += row.Quantity
		summary.Containers.DailyCounts[row.UnloadedOn]++
		if row.LineCode != "" {
			summary.Containers.ByLineCode[row.LineCode]++
		}
		if len(summary.Sample.Containers) < sampleCap {
			summary.Sample.Containers = append(summary.Sample.Containers, row)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate container events: %w", err)
	}
	return nil
}

func (s *Store) aggregateVehicles(ctx context.Context, summary *Summary, start, end time.Time, maxRows int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT operation_date, ramp_id, shift, vehicles_count, containers_count
		 FROM vehicle_events
		 WHERE operation_date BETWEEN ? AND ?
		 ORDER BY operation_date ASC LIMIT ?`,
		start.Format(dateKey), end.Format(dateKey), maxRows)
	if err != nil {
		return fmt.Errorf("query vehicle events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row VehicleRow
		if err := rows.Scan(&row.OperationDate, &row.RampID, &row.Shift, &row.VehiclesCount, &row.ContainersCount); err != nil {
			return fmt.Errorf("scan vehicle event: %w", err)
		}
		summary.Vehicles.TotalRecords++
		summary.Vehicles.DailyVehicleCount[row.OperationDate] += row.VehiclesCount
		if len(summary.Sample.Vehicles) < sampleCap {
			summary.Sample.Vehicles = append(summary.Sample.Vehicles, row)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate vehicle events: %w", err)
	}
	return nil
}
