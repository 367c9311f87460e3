package cli

import (
	"github.com/wrenfield/cadence/internal/app"
)

// container is the global CLI application instance. It is built once by
// the entrypoint (cmd/cadence) and consulted by every subcommand.
var container *app.Container

// SetContainer sets the global CLI application instance.
func SetContainer(c *app.Container) {
	container = c
}

// GetContainer returns the global CLI application instance.
func GetContainer() *app.Container {
	return container
}
