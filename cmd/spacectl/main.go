package main

import "space-booking/cmd/spacectl/cli"

func main() {
	cli.Execute()
}
