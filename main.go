package main

import "github.com/fbz-tec/pgxdump/cmd"

func main() {
	cmd.Execute()
}
