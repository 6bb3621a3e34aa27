package main

import "github.com/frahmantamala/ngo-platform/cmd"

func main() {
	cmd.Execute()
}
