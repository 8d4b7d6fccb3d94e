package main

import "github.com/jsphweid/statecomposer/cmd"

func main() {
	cmd.Execute()
}
