package main

import "github.com/funvibe/rectype/pkg/cli"

func main() {
	cli.Run()
}
