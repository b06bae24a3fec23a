package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Tokyo")
	if err != nil {
		panic(err)
	}
}

// force the timezone to be JST regardless of where the server runs,
// stored timestamps and cohort cutoffs are all campus-local
func Now() time.Time {
	return time.Now().In(Location)
}

// Timestamp renders t in the format the gpadata table has always used.
func Timestamp(t time.Time) string {
	return t.In(Location).Format("2006-01-02 15:04:05")
}
