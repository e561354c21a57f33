// Command pylaunch runs a Python script with its output captured to a
// timestamped log file.
package main

import "github.com/druarnfield/pylaunch/internal/cli"

func main() {
	cli.Execute()
}
