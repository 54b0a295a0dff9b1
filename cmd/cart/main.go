package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Apurer/go-gin-supply-api/internal/app/cartcli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cartcli.Run(ctx, os.Args[1:], os.Stdout, nil); err != nil {
		fmt.Fprintln(os.Stderr, "cart:", err)
		os.Exit(1)
	}
}
