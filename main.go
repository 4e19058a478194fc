package main

import "github.com/vitrina-shop/media-proxy/cmd"

func main() {
	cmd.Execute()
}
