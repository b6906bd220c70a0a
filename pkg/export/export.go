// Package export renders decision log records for download.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/shriram-s7/fleetdispatch/core/model"
)

// WriteJSON writes the decisions to w in JSON format.
func WriteJSON(w io.Writer, recs []model.Decision) error {
	enc := json.NewEncoder(w)
	return enc.Encode(recs)
}

// WriteCSV writes the decisions to w in CSV format.
func WriteCSV(w io.Writer, recs []model.Decision) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"truck_id", "decision", "explanation", "timestamp"}); err != nil {
		return err
	}
	for _, r := range recs {
		rec := []string{
			r.TruckID,
			r.Action,
			r.Explanation,
			strconv.FormatFloat(r.Timestamp, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
