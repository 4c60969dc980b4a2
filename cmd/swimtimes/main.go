package main

import "github.com/williampepple1/swimtimes/internal/cli"

func main() {
	cli.Execute()
}
