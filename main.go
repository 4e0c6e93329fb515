package main

import "github.com/dyike/WealthGo/internal/cli"

func main() {
	cli.Run()
}
