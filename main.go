package main

import "github.com/imjasonh/hookreg/cmd"

func main() {
	cmd.Execute()
}
