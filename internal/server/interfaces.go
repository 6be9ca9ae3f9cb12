package server

// Server runs a transport listener until it is told to stop.
type Server interface {
	// RunServer begins accepting requests and blocks until shutdown.
	RunServer()

	// Shutdown stops accepting new requests and drains in-flight ones.
	Shutdown()
}
