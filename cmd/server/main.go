// Command server runs the reference Auth API: DID challenge login, session
// tokens and campaign intake.
package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/didkeeper/internal/server"
	"github.com/dmitrijs2005/didkeeper/internal/server/config"
)

func main() {
	ctx := context.Background()

	app, err := server.NewApp(ctx, config.LoadConfig())
	if err != nil {
		log.Fatalf("server: %v", err)
	}

	app.Run(ctx)
}
