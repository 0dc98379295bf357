package main

import "safesettings/internal/cmd"

func main() {
	cmd.Execute()
}
