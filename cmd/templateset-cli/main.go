package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/goliatone/go-templateset/internal/prompt"
	"github.com/goliatone/go-templateset/pkg/templates"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, prompt.NewSurveyDriver())
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}

	svcErr := templates.ServiceError(err)
	fmt.Fprintf(os.Stderr, "%s: %v\n", svcErr.TextCode, err)
	os.Exit(1)
}
