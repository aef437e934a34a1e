package main

import "findex/internal/cli"

func main() {
	cli.Execute()
}
