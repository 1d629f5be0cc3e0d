package main

import "github.com/spencertipping/pipesh/cmd"

func main() {
	cmd.Execute()
}
