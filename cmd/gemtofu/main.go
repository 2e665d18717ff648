package main

import "github.com/mcoot/gemtofu/internal/cli"

func main() {
	cli.Execute()
}
