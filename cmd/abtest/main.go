package main

import "github.com/apodwikat/abtest/internal/cli"

func main() {
	cli.Execute()
}
