package main

import (
	"os"

	"github.com/yungbote/skillmapper-backend/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
