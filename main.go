package main

import (
	"fmt"

	"github.com/alpadrive/fleet-server/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Println(err.Error())
		return
	}
}
