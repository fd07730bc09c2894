package main

import "github.com/notargets/sobolsa/cmd"

func main() {
	cmd.Execute()
}
