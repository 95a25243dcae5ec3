package main

import "github.com/vibast-solutions/ms-go-token-charge/cmd"

func main() {
	cmd.Execute()
}
