package main

import "github.com/nfrund/voyage/cmd/voyage/cmd"

func main() {
	cmd.Execute()
}
