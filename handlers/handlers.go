// Package handlers provides the production handler registry: one handler
// per structured command, binding the data store and the Hebrew response
// builders together. The registry is plain data so callers can replace or
// extend individual entries before wiring it into the router.
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/opscouncil/intent"
	"github.com/hupe1980/opscouncil/logging"
	"github.com/hupe1980/opscouncil/respond"
	"github.com/hupe1980/opscouncil/router"
	"github.com/hupe1980/opscouncil/store"
)

// Metrics is the slice of the data store the structured handlers consume.
// *store.Store satisfies it.
type Metrics interface {
	DailyContainerCount(ctx context.Context, day time.Time) (int, error)
	ContainerCountBetween(ctx context.Context, start, end time.Time) (int, error)
	VehicleCountBetween(ctx context.Context, start, end time.Time) (int, error)
	MonthlyContainerCount(ctx context.Context, month, year int) (int, error)
	MonthlyComparison(ctx context.Context, month1, year1, month2, year2 int) (store.Comparison, error)
}

// StatusClient looks up one container identifier across the port terminals.
type StatusClient interface {
	Lookup(ctx context.Context, containerID string) ([]respond.PortStatus, error)
}

// Options configures the handler registry.
type Options struct {
	// Status serves container_status_lookup. Leaving it nil makes the
	// handler answer with a service-unavailable message.
	Status StatusClient
	// Consensus, Backends and Aggregator serve policy questions. Without a
	// consensus engine policy questions fall back.
	Consensus  router.Consensus
	Backends   []string
	Aggregator string
	// ManagerGateway and ManagerBackend serve manager questions through a
	// single designated backend.
	ManagerGateway Gateway
	ManagerBackend string
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Gateway is the minimal submission surface the manager handler needs.
// backend.Registry satisfies it.
type Gateway interface {
	Submit(ctx context.Context, backendID, prompt string) (string, error)
}

// Registry builds the full production handler map over the given metrics
// store.
func Registry(metrics Metrics, optFns ...func(o *Options)) map[string]router.HandlerFunc {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return map[string]router.HandlerFunc{
		intent.CmdContainersDaily:      requireMetrics(metrics, dailyContainers),
		intent.CmdContainersBetween:    requireMetrics(metrics, containersBetween),
		intent.CmdVehiclesBetween:      requireMetrics(metrics, vehiclesBetween),
		intent.CmdContainersMonthly:    requireMetrics(metrics, containersMonthly),
		intent.CmdContainersComparison: requireMetrics(metrics, containersComparison),
		intent.CmdContainerStatus:      containerStatus(opts.Status, opts.Logger),
		intent.CmdPolicyQuestion:       policyQuestion(opts.Consensus, opts.Backends, opts.Aggregator),
		intent.CmdManagerQuestion:      managerQuestion(opts.ManagerGateway, opts.ManagerBackend, opts.Logger),
	}
}

// requireMetrics guards the data handlers against a missing store. The
// resulting error degrades to the fallback message in the router.
func requireMetrics(metrics Metrics, build func(Metrics) router.HandlerFunc) router.HandlerFunc {
	if metrics == nil {
		return func(context.Context, router.Request) (string, error) {
			return "", fmt.Errorf("metrics store is not configured")
		}
	}
	return build(metrics)
}

func dailyContainers(metrics Metrics) router.HandlerFunc {
	return func(ctx context.Context, req router.Request) (string, error) {
		day, err := dateParam(req.Command, intent.ParamTargetDate)
		if err != nil {
			return "", err
		}
		count, err := metrics.DailyContainerCount(ctx, day)
		if err != nil {
			return "", fmt.Errorf("daily container count: %w", err)
		}
		return respond.DailyContainers(count, day), nil
	}
}

func containersBetween(metrics Metrics) router.HandlerFunc {
	return func(ctx context.Context, req router.Request) (string, error) {
		start, end, err := rangeParams(req.Command)
		if err != nil {
			return "", err
		}
		count, err := metrics.ContainerCountBetween(ctx, start, end)
		if err != nil {
			return "", fmt.Errorf("container count between: %w", err)
		}
		return respond.ContainersRange(count, start, end), nil
	}
}

func vehiclesBetween(metrics Metrics) router.HandlerFunc {
	return func(ctx context.Context, req router.Request) (string, error) {
		start, end, err := rangeParams(req.Command)
		if err != nil {
			return "", err
		}
		count, err := metrics.VehicleCountBetween(ctx, start, end)
		if err != nil {
			return "", fmt.Errorf("vehicle count between: %w", err)
		}
		return respond.VehiclesRange(count, start, end), nil
	}
}

func containersMonthly(metrics Metrics) router.HandlerFunc {
	return func(ctx context.Context, req router.Request) (string, error) {
		month, err := intParam(req.Command, intent.ParamMonth)
		if err != nil {
			return "", err
		}
		year, err := intParam(req.Command, intent.ParamYear)
		if err != nil {
			return "", err
		}
		count, err := metrics.MonthlyContainerCount(ctx, month, year)
		if err != nil {
			return "", fmt.Errorf("monthly container count: %w", err)
		}
		return respond.MonthlyContainers(count, month, year), nil
	}
}

func containersComparison(metrics Metrics) router.HandlerFunc {
	return func(ctx context.Context, req router.Request) (string, error) {
		month1, err := intParam(req.Command, intent.ParamMonth1)
		if err != nil {
			return "", err
		}
		year1, err := intParam(req.Command, intent.ParamYear1)
		if err != nil {
			return "", err
		}
		month2, err := intParam(req.Command, intent.ParamMonth2)
		if err != nil {
			return "", err
		}
		year2, err := intParam(req.Command, intent.ParamYear2)
		if err != nil {
			return "", err
		}
		comparison, err := metrics.MonthlyComparison(ctx, month1, year1, month2, year2)
		if err != nil {
			return "", fmt.Errorf("monthly comparison: %w", err)
		}
		return respond.ComparisonContainers(
			comparison.Count1, month1, year1,
			comparison.Count2, month2, year2,
			comparison.Difference), nil
	}
}

func containerStatus(status StatusClient, logger logging.Logger) router.HandlerFunc {
	return func(ctx context.Context, req router.Request) (string, error) {
		containerID, err := stringParam(req.Command, intent.ParamContainerID)
		if err != nil {
			return "", err
		}
		if status == nil {
			return respond.StatusUnavailable(), nil
		}
		results, err := status.Lookup(ctx, containerID)
		if err != nil {
			logger.Warn("container status lookup failed", "container_id", containerID, "error", err.Error())
			return "", fmt.Errorf("container status lookup: %w", err)
		}
		return respond.ContainerStatus(containerID, results), nil
	}
}

// policyQuestion routes procedure and regulation questions to the council,
// where the knowledge excerpts in the bundle carry the relevant document
// sections.
func policyQuestion(consensus router.Consensus, backends []string, aggregator string) router.HandlerFunc {
	return func(ctx context.Context, req router.Request) (string, error) {
		if consensus == nil {
			return respond.Fallback(), nil
		}
		final := consensus.Answer(ctx, req.Text, req.Bundle, backends, aggregator)
		return final.Text, nil
	}
}
