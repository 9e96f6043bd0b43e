package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes one header line followed by one line per month. Amounts
// carry two decimals and no thousands separator.
func WriteCSV(w io.Writer, s Schedule) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(Columns))
	for _, row := range s.Result.Schedule {
		record[0] = strconv.Itoa(row.Month)
		for i, v := range rowValues(row) {
			record[i+1] = cents(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write month %d: %w", row.Month, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
