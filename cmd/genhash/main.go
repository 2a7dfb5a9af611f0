package main

import (
	"fmt"
	"os"

	"storefront/internal/service"
)

func main() {
	password := "storefront2026"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	h, err := service.HashPassword(password)
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
