package main

import (
	"context"
	"fmt"
	"os"

	"arkscrape/cmd/arkscrape/commands"
	"arkscrape/lib/telemetry"
)

func main() {
	ctx := context.Background()
	tel, err := telemetry.SetupFromEnv(ctx, "arkscrape")
	if err != nil {
		fmt.Fprintln(os.Stderr, "telemetry setup:", err)
		os.Exit(1)
	}
	defer tel.Shutdown(ctx)

	commands.ExecuteContext(ctx)
}
