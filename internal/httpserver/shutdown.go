package httpserver

import "time"

// ShutdownTimeout bounds graceful shutdown, including draining the media
// cleanup queue.
var ShutdownTimeout = 15 * time.Second
