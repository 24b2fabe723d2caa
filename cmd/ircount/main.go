package main

import "ircount/internal/cli"

func main() {
	cli.Execute()
}
