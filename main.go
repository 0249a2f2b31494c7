package main

import "github.com/murmurchat/murmur/cmd/server"

func main() {
	server.NewServer().Run()
}
