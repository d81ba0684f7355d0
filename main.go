package main

import "constella/orrery/cmd"

func main() {
	cmd.Execute()
}
