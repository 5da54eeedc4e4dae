// Package metadata exposes presentation and documentation metadata for the
// registered summary statistics: independent-variable grids, plot labels and
// scales, recommended valid ranges, and the canonical input parameter table.
//
// All accessors are pure lookups over the registry; the only failure mode is
// registry.ErrUnknownStatistic on an unrecognized name.
package metadata

import (
	"github.com/cosmohub/subgridemu/pkg/registry"
)

// PlotInfo describes how a statistic is conventionally plotted.
type PlotInfo struct {
	Title  string         `json:"title"`
	XLabel string         `json:"xlabel"`
	YLabel string         `json:"ylabel"`
	XScale registry.Scale `json:"xscale"`
	YScale registry.Scale `json:"yscale"`
}

// XGrid returns the nominal independent-variable grid for a statistic along
// with a short description of the independent variable.
//
// Note this is the nominal grid from the registry table; the grid baked into
// a trained artifact is authoritative for prediction output length and may
// differ (see the artifact loader).
func XGrid(name string) ([]float64, string, error) {
	d, err := registry.Describe(name)
	if err != nil {
		return nil, "", err
	}
	grid := append([]float64(nil), d.NominalGrid...)
	return grid, d.XLabel, nil
}

// GetPlotInfo returns plotting metadata for a statistic.
func GetPlotInfo(name string) (PlotInfo, error) {
	d, err := registry.Describe(name)
	if err != nil {
		return PlotInfo{}, err
	}
	return PlotInfo{
		Title:  d.Title,
		XLabel: d.XAxis,
		YLabel: d.YAxis,
		XScale: d.XScale,
		YScale: d.YScale,
	}, nil
}

// ValidRange returns the recommended independent-variable interval where the
// emulator is most reliable, based on training data coverage.
func ValidRange(name string) (low, high float64, err error) {
	d, err := registry.Describe(name)
	if err != nil {
		return 0, 0, err
	}
	return d.ValidRange.Low, d.ValidRange.High, nil
}
