package httpserver

import "time"

// ShutdownTimeout bounds how long in-flight requests get to finish on shutdown.
var ShutdownTimeout = 10 * time.Second
