// tripbot is a travel-planning chat assistant with terminal and browser front ends.
package main

import "github.com/linanwx/tripbot/cmd"

func main() {
	cmd.Execute()
}
