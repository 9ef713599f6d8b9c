package worksheet

import (
	"time"
)

var (
	epoch1900 = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	epoch1904 = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	lastDate  = time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)
)

// ExcelDate converts the wall-clock time of t to an Excel serial date. The
// location of t is ignored. In the 1900 system serials after 1900-02-28 are
// shifted by one day to keep Excel's phantom 1900-02-29.
func ExcelDate(t time.Time, date1904 bool) (float64, error) {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	epoch := epoch1900
	if date1904 {
		epoch = epoch1904
	}
	if wall.Before(epoch) || !wall.Before(lastDate) {
		return 0, newWriteError(RangeError, "date %s outside the range Excel can represent",
			wall.Format(time.RFC3339))
	}
	midnight := time.Date(wall.Year(), wall.Month(), wall.Day(), 0, 0, 0, 0, time.UTC)
	days := int((midnight.Unix() - epoch.Unix()) / 86400)
	if !date1904 && days > 59 {
		days++
	}
	frac := float64(wall.Sub(midnight)) / float64(24*time.Hour)
	return float64(days) + frac, nil
}
