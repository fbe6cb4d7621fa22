package main

import "github.com/oshokin/verstamp/cmd/verstamp/cmd"

func main() {
	cmd.Execute()
}
