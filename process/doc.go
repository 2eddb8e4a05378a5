// Package process runs a program's main function under signal control.
//
// Run cancels the context handed to main on SIGINT or SIGTERM so servers and
// injectors can shut down gracefully. If shutdown hangs, a second signal or
// the kill timeout ends the process.
//
//	err := process.Run(context.Background(), func(ctx context.Context) error {
//		return app.Run(ctx)
//	}, process.WithKillTimeout(10*time.Second))
package process
