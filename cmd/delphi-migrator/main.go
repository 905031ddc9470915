package main

import "github.com/petrarca/delphi-migrator/internal/cmd"

func main() {
	cmd.Execute()
}
