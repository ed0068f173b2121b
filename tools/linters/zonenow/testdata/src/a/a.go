package a

import "time"

var berlin, _ = time.LoadLocation("Europe/Berlin")

func hostZone() string {
	return time.Now().Format("2006-01-02") // want "time.Now\\(\\) should be pinned to a zone"
}

func utc() time.Time {
	return time.Now().UTC()
}

func configured() string {
	return time.Now().In(berlin).Format("2006-01-02")
}

func parenthesized() time.Time {
	return (time.Now()).UTC()
}

func assigned() time.Time {
	now := time.Now() // want "time.Now\\(\\) should be pinned to a zone"
	return now
}

// injected clocks are not calls to time.Now.
func injected(now func() time.Time) time.Time {
	return now()
}

var clock = time.Now

func nolintAbove() time.Time {
	//nolint
	return time.Now()
}

func nolintScoped() time.Time {
	return time.Now() //nolint:zonenow
}

func nolintList() time.Time {
	return time.Now() //nolint:errcheck,zonenow
}

func nolintOther() time.Time {
	return time.Now() //nolint:errcheck // want "time.Now\\(\\) should be pinned to a zone"
}
