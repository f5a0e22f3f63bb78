package main

import "github.com/phoenix-launcher/phoenix/cmd"

func main() {
	cmd.Execute()
}
