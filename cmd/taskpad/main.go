package main

import "github.com/entrepeneur4lyf/taskpad/cmd/taskpad/cmd"

func main() {
	cmd.Execute()
}
