package cmds

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
)

func (p *Executor) PrintUsage() {
	printed := make(map[*Command]bool)
	var print func(prefix string, name string, command *Command)
	print = func(prefix string, name string, command *Command) {
		if command == nil {
			return
		}
		if printed[command] {
			return
		}
		printed[command] = true

		names := append([]string{name}, command.Aliases...)
		line := prefix + strings.Join(names, " | ")
		if command.Description != "" {
			line += "\n" + prefix + "\t" + command.Description
		}
		fmt.Fprintln(os.Stderr, line)

		for _, subName := range slices.Sorted(maps.Keys(command.Subs)) {
			print(prefix+"\t", subName, command.Subs[subName])
		}
	}

	for _, name := range slices.Sorted(maps.Keys(p.commands)) {
		print("", name, p.commands[name])
	}
}
