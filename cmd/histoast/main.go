// Package main provides the CLI entrypoint for histoast.
package main

func main() {
	Execute()
}
