// Package main provides the ordersight CLI, an order data quality and
// analytics pipeline.
package main

import (
	"os"

	"github.com/ordersight-labs/ordersight/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
