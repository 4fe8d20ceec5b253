package main

import (
	"os"

	"github/itish2003/invoicechat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
