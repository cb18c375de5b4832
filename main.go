package main

import "github.com/frahmantamala/motors-dealership/cmd"

func main() {
	cmd.Execute()
}
