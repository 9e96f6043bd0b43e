package main

import "loan-simulator/cmd"

func main() {
	cmd.Execute()
}
