/*
Package cli provides command-line interface utilities for Meridian.

The cli package includes error types and signal handling helpers used
by the meridian command.

Error Types:

Commands wrap failures in typed errors so callers can distinguish
configuration problems from execution failures:

	if err := runServer(cmd, args); err != nil {
		return cli.NewCommandError("run", err)
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
