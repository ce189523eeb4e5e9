package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/phillip-england/laborsuite/internal/laborcli"
)

func main() {
	if err := laborcli.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, laborcli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr)
			laborcli.PrintUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
