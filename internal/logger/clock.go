package logger

import "time"

// timeNow is swapped in tests for deterministic timestamps.
var timeNow = time.Now
