// Package app wires the board analyzer together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Validate the configuration
//	2. Initialize logging and OpenTelemetry
//	3. Create the report store, business metrics and runtime metrics
//	4. Create the analyzer and health services
//	5. Set up the chi router, middleware and handlers
//	6. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(cfg, app.Options{Build: build})
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run serves until ctx is cancelled. The server and the store janitor run
// in one errgroup; cancellation or a failure in either shuts the server down
// within Server.ShutdownTimeout and flushes telemetry. The package never
// calls os.Exit.
package app
