// This program performs administrative tasks against a registry node.
package main

import "github.com/ardanlabs/registry/app/tooling/admin/cmd"

func main() {
	cmd.Execute()
}
