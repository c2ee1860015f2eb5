package main

import "nathanbeddoewebdev/dnsctl/cmd"

func main() {
	cmd.Execute()
}
