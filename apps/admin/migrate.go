package main

import (
	"github.com/trezcool/goose"

	appfs "github.com/yash-1818/planemate/fs"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) migrate(args []string) error {
	command := "up"
	arguments := make([]string, 0)
	if len(args) > 1 {
		command = args[1]
	}
	if len(args) > 2 {
		arguments = append(arguments, args[2:]...)
	}
	return gooseRunFunc(command, cli.db.DB, appfs.FS, "migrations", arguments...)
}
