// Package main is the entry point of the next16 account server.
package main

func main() {
	Execute()
}
