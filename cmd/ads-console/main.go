package main

import (
	"os"

	"github.com/AJMedia-landers/ads-console/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
