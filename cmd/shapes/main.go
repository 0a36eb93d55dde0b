// Package main is the shapes command-line tool.
//
//	shapes match -p '{array: [{var: x}], rest: "*"}' -v '[1,2,3]'
//	shapes case -f route.yaml '{op: move, to: home}'
//	shapes serve --config shapes.yaml
package main

import (
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
