package main

import (
	"os"

	"github.com/sadopc/gscandir/internal/cli"
	"github.com/sirupsen/logrus"
)

var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version)
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
