package inspector

import (
	"fmt"
	"io"
	"sort"

	"github.com/buildkite/shellwords"
	"github.com/dustin/go-humanize"
	"github.com/gertd/go-pluralize"
	"github.com/rodaine/table"

	"github.com/rhelmot/objectively/object"
	"github.com/rhelmot/objectively/thread"
)

var errQuit = fmt.Errorf("inspector: session ended")

var plur = pluralize.NewClient()

func dispatch(w io.Writer, line string) error {
	parts, err := shellwords.SplitPosix(line)
	if err != nil {
		return fmt.Errorf("parsing command: %w", err)
	}
	if len(parts) == 0 {
		return nil
	}
	switch parts[0] {
	case "help":
		printHelp(w)
	case "threads":
		printThreads(w)
	case "groups":
		printGroups(w)
	case "quit", "exit":
		return errQuit
	default:
		fmt.Fprintf(w, "unknown command %q -- try `help`\n", parts[0])
	}
	return nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  threads   list every thread currently tracked by the scheduler")
	fmt.Fprintln(w, "  groups    list every live thread-group and its memory quota")
	fmt.Fprintln(w, "  quit      close this session")
}

func printThreads(w io.Writer) {
	infos := thread.Snapshot()
	if len(infos) == 0 {
		fmt.Fprintln(w, "no threads tracked")
		return
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	fmt.Fprintf(w, "%s:\n", plur.Pluralize("thread", len(infos), true))
	t := table.New("ID", "Group", "State").WithWriter(w)
	for _, info := range infos {
		t.AddRow(info.ID, info.Group, info.State.String())
	}
	t.Print()
}

func printGroups(w io.Writer) {
	groups := liveGroups()
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	fmt.Fprintf(w, "%s:\n", plur.Pluralize("group", len(groups), true))
	t := table.New("Name", "Used", "Limit", "Yield Interval", "Parent").WithWriter(w)
	for _, g := range groups {
		parent := "-"
		if g.Parent != nil {
			parent = g.Parent.Name
		}
		t.AddRow(g.Name, humanize.Bytes(g.MemUsed), humanize.Bytes(g.MemLimit), g.YieldInterval, parent)
	}
	t.Print()
}

// liveGroups returns RootGroup plus every group reachable through
// object.AllObjects -- RootGroup itself is a static object and so is never
// tracked in that registry, unlike every other allocated object.
func liveGroups() []*object.Group {
	var groups []*object.Group
	if object.RootGroup != nil {
		groups = append(groups, object.RootGroup)
	}
	for _, o := range object.AllObjects() {
		if g, ok := o.(*object.Group); ok {
			groups = append(groups, g)
		}
	}
	return groups
}
