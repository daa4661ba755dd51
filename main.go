package main

import (
	"fmt"

	"github.com/odin-fire/odin-go/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Println(err.Error())
		return
	}
}
