package main

import "github.com/node4good/gypninja/cmd"

func main() {
	cmd.Execute()
}
