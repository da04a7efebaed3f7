//go:build cli
// +build cli

package main

import (
	_ "kasuwa.GO/custom"

	"kasuwa.GO/cmd"
	"kasuwa.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
