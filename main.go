package main

import "github.com/frahmantamala/school-platform/cmd"

func main() {
	cmd.Execute()
}
