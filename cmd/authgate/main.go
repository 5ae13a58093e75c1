// Command authgate runs the authentication gateway and administers its
// authorization levels.
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
