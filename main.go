package main

import "manjaword/cli"

func main() {
	// Without a sub-command this starts the backend the editor shell talks to.
	cli.Execute()
}
