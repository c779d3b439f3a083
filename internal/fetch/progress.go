package fetch

import "io"

// Progress creates a tracker for each download. total is -1 when the
// server did not send a Content-Length.
type Progress interface {
	Start(name string, total int64) Tracker
}

// Tracker receives byte counts for one download.
type Tracker interface {
	Add(n int)
	Done()
}

type noopProgress struct{}

func (noopProgress) Start(string, int64) Tracker { return noopTracker{} }

type noopTracker struct{}

func (noopTracker) Add(int) {}
func (noopTracker) Done()   {}

// countingReader reports every read to a Tracker.
type countingReader struct {
	r io.Reader
	t Tracker
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.t.Add(n)
	}
	return n, err
}
