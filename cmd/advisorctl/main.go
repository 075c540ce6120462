package main

import (
	"context"
	"fmt"
	"os"

	"advisorbot/internal/bootstrap"
	"advisorbot/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd(cli.Options{
		Open: func(ctx context.Context) (*bootstrap.App, func() error, error) {
			app, err := bootstrap.New(ctx, bootstrap.Options{})
			if err != nil {
				return nil, nil, fmt.Errorf("bootstrap failed: %w", err)
			}
			return app, app.Close, nil
		},
		In:  os.Stdin,
		Out: os.Stdout,
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "advisorctl: %v\n", err)
		os.Exit(1)
	}
}
