package main

import "github.com/kozaktomas/frushion/cmd"

func main() {
	cmd.Execute()
}
