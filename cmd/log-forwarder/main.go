package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/turbot/go-kit/helpers"
	"github.com/turbot/tailpipe-s3-log-forwarder/constants"
	"github.com/turbot/tailpipe-s3-log-forwarder/logging"
)

func main() {
	logging.Initialize(constants.FunctionName)

	defer func() {
		if r := recover(); r != nil {
			err := helpers.ToError(r)
			slog.Error("log forwarder failed", "error", err)
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}()

	os.Exit(Execute())
}
