package main

import "github.com/nikogura/cover-letter/cmd"

func main() {
	cmd.Execute()
}
