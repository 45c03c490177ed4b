package main

import "github.com/crewtrack/modelgen/cmd"

func main() {
	cmd.Execute()
}
