package main

import "github.com/hzbay/amqp-acker/cmd"

func main() {
	cmd.Execute()
}
