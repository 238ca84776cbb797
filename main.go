package main

import "inkmap/cmd"

func main() {
	cmd.Execute()
}
