package main

import "github.com/bigtools/cmd"

func main() {
	cmd.Execute()
}
