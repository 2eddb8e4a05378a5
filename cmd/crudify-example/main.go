// Command crudify-example serves a small module graph: an app module with a
// Home controller, a users module and the config and http-util modules it
// builds on.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/crudify/bootstrap"
	"github.com/kbukum/crudify/config"
	"github.com/kbukum/crudify/di"
)

func main() {
	var cfg Config
	if err := config.LoadConfig("crudify-example", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	app, err := bootstrap.NewApp(&cfg, appModule(&cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap: %v\n", err)
		os.Exit(1)
	}

	app.OnReady(func(ctx context.Context) error {
		users, err := di.Get(app.Modules.Injector(), UsersServiceKey)
		if err != nil {
			return err
		}
		users.log.Log("Users loaded", map[string]interface{}{"count": len(users.List())})
		return nil
	})

	if err := app.Run(context.Background()); err != nil {
		app.Logger.Fatal("Application failed", map[string]interface{}{"error": err.Error()})
	}
}
