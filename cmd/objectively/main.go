// Command objectively runs a compiled bytecode file under the runtime
// implemented by this module's object/gc/interp/thread packages.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rhelmot/objectively"
	"github.com/rhelmot/objectively/audit"
	"github.com/rhelmot/objectively/builtin"
	"github.com/rhelmot/objectively/gc"
	"github.com/rhelmot/objectively/object"
	"github.com/rhelmot/objectively/thread"
)

const defaultHeapMem = uint64(1) << 30

func main() {
	var logFile string
	var auditDir string
	var dumpJSON bool

	flag.StringVar(&logFile, "logfile", "", "Path to log file (default: stderr), rotated via lumberjack.")
	flag.StringVar(&auditDir, "audit-dir", "", "Directory for the thread-group audit ledger (disabled if empty).")
	flag.BoolVar(&dumpJSON, "dump-json", false, "Print a per-kind/per-group live object census to stdout after the program exits.")
	flag.Parse()

	if logFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
		})
	}

	if flag.NArg() < 1 {
		log.Fatal("usage: objectively <bytecode-file> [args...]")
	}
	path := flag.Args()[0]

	memLimit := defaultHeapMem
	if v := os.Getenv("HEAP_MEM"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			log.Fatal(objectively.WithStack(fmt.Errorf("parsing HEAP_MEM=%q: %w", v, err)))
		}
		memLimit = parsed
	}

	gc.Install()
	builtin.Install()
	thread.Install()

	if auditDir != "" {
		ledger, err := audit.Open(auditDir)
		if err != nil {
			log.Fatal(objectively.WithStack(fmt.Errorf("opening audit ledger: %w", err)))
		}
		defer ledger.Close()
		ledger.Install()
	}

	object.NewRootGroup(memLimit, 0)

	code, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(objectively.WithStack(fmt.Errorf("reading bytecode file %q: %w", path, err)))
	}
	bytecode, err := object.NewBytesEx(object.RootGroup, code)
	if err != nil {
		log.Fatal(objectively.WithStack(fmt.Errorf("loading bytecode into the root group: %w", err)))
	}
	env, err := object.NewDict(object.RootGroup)
	if err != nil {
		log.Fatal(objectively.WithStack(fmt.Errorf("allocating the entry closure's environment: %w", err)))
	}
	entry, err := object.NewClosure(object.RootGroup, bytecode, env)
	if err != nil {
		log.Fatal(objectively.WithStack(fmt.Errorf("allocating the entry closure: %w", err)))
	}

	extraArgs := flag.Args()[1:]
	argObjects := make([]object.Object, len(extraArgs))
	for i, a := range extraArgs {
		b, err := object.NewBytesEx(object.RootGroup, []byte(a))
		if err != nil {
			log.Fatal(objectively.WithStack(fmt.Errorf("allocating a CLI argument: %w", err)))
		}
		argObjects[i] = b
	}
	args := object.NewTuple(argObjects)

	result, runErr := thread.Run(object.RootGroup, entry, args)

	if dumpJSON {
		if err := dumpCensus(os.Stdout); err != nil {
			log.Print(objectively.WithStack(fmt.Errorf("writing --dump-json census: %w", err)))
		}
	}

	if runErr != nil {
		exc, ok := object.AsException(runErr)
		if !ok {
			log.Fatal(objectively.WithStack(fmt.Errorf("running the entry closure: %w", runErr)))
		}
		fmt.Fprintln(os.Stderr, object.Repr(exc))
		os.Exit(1)
	}

	if code, ok := result.(*object.Int); ok {
		os.Exit(int(code.Value))
	}
	os.Exit(0)
}

// dumpCensus writes a one-shot per-kind/per-group live object count to w,
// the same shape gc.CensusWriter persists continuously, for a single
// end-of-run snapshot without standing up a tkrzw database.
func dumpCensus(w *os.File) error {
	counts := map[string]int{}
	for _, o := range object.AllObjects() {
		groupName := "<none>"
		if g := o.Hdr().Group; g != nil {
			groupName = g.Name
		}
		counts[fmt.Sprintf("%s/%s", object.KindName(o), groupName)]++
	}
	enc := json.NewEncoder(w)
	return enc.Encode(counts)
}
