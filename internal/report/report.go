// Package report derives catalog statistics and CSV exports.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/erazemk/assettrack/internal/model"
)

// TopLocations is how many locations a Summary lists.
const TopLocations = 5

// bom marks the export as UTF-8 for spreadsheet applications.
const bom = "\ufeff"

// LocationCount is the number of assets registered at one location.
type LocationCount struct {
	Location string `json:"location"`
	Assets   int    `json:"assets"`
}

// Summary holds the statistics shown on the reports screen.
type Summary struct {
	TotalAssets   int             `json:"total_assets"`
	TotalQuantity int             `json:"total_quantity"`
	TopLocations  []LocationCount `json:"top_locations"`
}

// Summarize counts assets, sums their quantities and ranks locations by
// asset count. Locations with equal counts are ordered by name.
func Summarize(assets []model.Asset) Summary {
	s := Summary{TotalAssets: len(assets), TopLocations: []LocationCount{}}

	counts := map[string]int{}
	for _, a := range assets {
		s.TotalQuantity += a.Quantity
		counts[a.Location]++
	}
	for loc, n := range counts {
		s.TopLocations = append(s.TopLocations, LocationCount{Location: loc, Assets: n})
	}
	sort.Slice(s.TopLocations, func(i, j int) bool {
		a, b := s.TopLocations[i], s.TopLocations[j]
		if a.Assets != b.Assets {
			return a.Assets > b.Assets
		}
		return a.Location < b.Location
	})
	if len(s.TopLocations) > TopLocations {
		s.TopLocations = s.TopLocations[:TopLocations]
	}
	return s
}

var assetHeader = []string{"Name", "Serial Number", "Quantity", "Location", "RFID Code"}

func assetRecord(a model.Asset) []string {
	return []string{a.Name, a.SerialNumber, strconv.Itoa(a.Quantity), a.Location, a.RFIDCode}
}

// WriteCSV writes the catalog as a BOM-prefixed UTF-8 CSV document.
func WriteCSV(w io.Writer, assets []model.Asset) error {
	cw, err := newWriter(w, assetHeader)
	if err != nil {
		return err
	}
	for _, a := range assets {
		if err := cw.Write(assetRecord(a)); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	return flush(cw)
}

// WriteResultCSV writes a reconciliation result, found assets first, with a
// Status column.
func WriteResultCSV(w io.Writer, result model.Result) error {
	cw, err := newWriter(w, append(append([]string{}, assetHeader...), "Status"))
	if err != nil {
		return err
	}
	rows := []struct {
		assets []model.Asset
		status string
	}{
		{result.Found, "found"},
		{result.Missing, "missing"},
	}
	for _, group := range rows {
		for _, a := range group.assets {
			if err := cw.Write(append(assetRecord(a), group.status)); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
		}
	}
	return flush(cw)
}

func newWriter(w io.Writer, header []string) (*csv.Writer, error) {
	if _, err := io.WriteString(w, bom); err != nil {
		return nil, fmt.Errorf("writing bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	return cw, nil
}

func flush(cw *csv.Writer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
