package inventory

import "github.com/erazemk/assettrack/internal/model"

// Partition splits assets into found and missing by whether any scan carries
// the asset's exact RFID code. Asset order is preserved and the result never
// holds nil slices.
func Partition(assets []model.Asset, scans []model.InventoryScan) model.Result {
	seen := make(map[string]struct{}, len(scans))
	for _, s := range scans {
		seen[s.RFIDCode] = struct{}{}
	}

	result := model.Result{
		Found:   []model.Asset{},
		Missing: []model.Asset{},
		Scanned: make([]model.InventoryScan, len(scans)),
	}
	copy(result.Scanned, scans)

	for _, a := range assets {
		if _, ok := seen[a.RFIDCode]; ok {
			result.Found = append(result.Found, a)
		} else {
			result.Missing = append(result.Missing, a)
		}
	}
	return result
}
