package main

import (
	"os"

	"github.com/GoogleCloudPlatform/nl-trip-analytics/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
