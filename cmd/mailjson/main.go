package main

import "github.com/zostay/go-mailjson/cmd/mailjson/cmd"

func main() {
	cmd.Execute()
}
