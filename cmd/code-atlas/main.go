package main

import "code-atlas/src/handler/cli"

func main() {
	cli.Run()
}
