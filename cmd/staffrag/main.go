package main

import "staffrag/internal/cli"

func main() {
	cli.Execute()
}
