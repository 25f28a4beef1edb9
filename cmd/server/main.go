package main

import "github.com/tidecal/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
