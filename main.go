package main

import (
	"fmt"
	"os"

	"github.com/yuhonghong66/neo4j/cmd"
	"github.com/yuhonghong66/neo4j/log"
)

func main() {
	log.InitLogger()
	cli := cmd.NewSetCli()
	if err := cli.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
