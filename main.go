package main

import "github.com/fakeyudi/splitwatch/cmd"

func main() {
	cmd.Execute()
}
