package main

import "github.com/oakline-data/jobpulse/cmd"

func main() {
	cmd.Execute()
}
