package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/onyx-protocol/neovm/env"
	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/log"
	"github.com/onyx-protocol/neovm/log/rotation"
	"github.com/onyx-protocol/neovm/protocol/interop"
	"github.com/onyx-protocol/neovm/protocol/vm"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

const help = `Usage: neovm [flags] (-x hex | -a asm | -f file)

Command neovm runs a script and prints its final state and
result stack as JSON.

Flags:
`

var (
	flagX      = flag.String("x", "", "script as `hex`")
	flagA      = flag.String("a", "", "script as `assembly`")
	flagF      = flag.String("f", "", "read raw bytecode from `file` (- for stdin)")
	flagConfig = flag.String("config", "", "TOML config `file`")
	flagFlags  = flag.String("flags", "", "call `flags` of the entry script (default from config, else All)")
	flagT      = flag.Bool("t", false, "print execution trace to stderr")
	flagD      = flag.Bool("d", false, "disassemble the script and exit")
	flagStrict = flag.Bool("strict", false, "reject malformed scripts before running them")
	flagB      breakpoints
)

func init() {
	flag.Var(&flagB, "b", "break at instruction `offset` (repeatable)")
}

// breakpoints is a repeatable flag.Value of script offsets.
type breakpoints []int

func (b *breakpoints) String() string {
	var s []string
	for _, pos := range *b {
		s = append(s, strconv.Itoa(pos))
	}
	return strings.Join(s, ",")
}

func (b *breakpoints) Set(s string) error {
	pos, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if pos < 0 {
		return fmt.Errorf("negative offset %d", pos)
	}
	*b = append(*b, pos)
	return nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, help)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}
	log.SetOutput(os.Stderr)
	log.SetPrefix("app", "neovm")

	prog, err := readScript(*flagX, *flagA, *flagF, os.Stdin)
	if err != nil {
		fatal(err)
	}
	if *flagD {
		s, err := vm.Disassemble(prog)
		if err != nil {
			fatal(err)
		}
		fmt.Println(s)
		return
	}

	c, err := loadConfig(*flagConfig)
	if err != nil {
		fatal(err)
	}
	registerEnv(c)
	env.Parse()
	if *flagFlags != "" {
		c.CallFlags = *flagFlags
	}

	var (
		trace     io.Writer
		traceFile *rotation.File
	)
	switch {
	case *flagT:
		trace = os.Stderr
	case c.Trace.File != "":
		traceFile = rotation.Create(c.Trace.File, c.Trace.MaxSize, c.Trace.Keep)
		trace = traceFile
	}

	ctx := log.WithRunID(context.Background(), uuid.New().String())
	r := &runner{
		config:      c,
		trace:       trace,
		breakpoints: flagB,
		strict:      *flagStrict,
		stderr:      os.Stderr,
	}
	rep, err := r.run(ctx, prog)
	if traceFile != nil {
		traceFile.Close()
	}
	if err != nil {
		fatal(err)
	}

	fd := os.Stdout.Fd()
	if err := rep.write(os.Stdout, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)); err != nil {
		fatal(err)
	}
	if rep.State != vm.StateHalt.String() {
		os.Exit(1)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "neovm:", err)
	if d := errors.Detail(err); d != "" && !strings.Contains(err.Error(), d) {
		fmt.Fprintln(os.Stderr, "neovm:", d)
	}
	os.Exit(2)
}

// readScript returns the bytecode named by exactly one of the
// -x, -a and -f flags.
func readScript(x, asm, file string, stdin io.Reader) ([]byte, error) {
	n := 0
	for _, s := range []string{x, asm, file} {
		if s != "" {
			n++
		}
	}
	if n != 1 {
		return nil, errors.New("need exactly one of -x, -a and -f")
	}
	switch {
	case x != "":
		return hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(x), "0x"))
	case asm != "":
		return vm.Assemble(asm)
	case file == "-":
		return ioutil.ReadAll(stdin)
	}
	return ioutil.ReadFile(file)
}

type runner struct {
	config      *config
	trace       io.Writer
	breakpoints []int
	strict      bool
	stderr      io.Writer
}

// report is the JSON printed for a run.
type report struct {
	RunID         string         `json:"run_id"`
	State         string         `json:"state"`
	Stack         []interface{}  `json:"stack"`
	Exception     interface{}    `json:"exception,omitempty"`
	Fault         string         `json:"fault,omitempty"`
	FaultAt       interface{}    `json:"fault_at,omitempty"`
	Notifications []notification `json:"notifications,omitempty"`
	Logs          []string       `json:"logs,omitempty"`
}

type notification struct {
	Contract string      `json:"contract"`
	Name     string      `json:"name"`
	State    interface{} `json:"state"`
}

func (r *runner) run(ctx context.Context, prog []byte) (*report, error) {
	flags, err := vm.ParseCallFlags(r.config.CallFlags)
	if err != nil {
		return nil, errors.Wrap(err, "call flags")
	}
	store, err := r.config.store()
	if err != nil {
		return nil, err
	}
	script, err := vm.NewScript(prog, r.strict)
	if err != nil {
		return nil, errors.Wrap(err, "decoding script")
	}

	var opts []vm.Option
	if r.trace != nil {
		opts = append(opts, vm.WithTrace(r.trace))
	}
	h := interop.NewHost(ctx, store)
	e := interop.Default().NewEngine(h, r.config.Limits, opts...)
	if _, err := e.LoadScriptWithFlags(script, -1, 0, flags); err != nil {
		return nil, err
	}

	if len(r.breakpoints) == 0 {
		e.Execute()
	} else {
		d := vm.NewDebugger(e)
		for _, pos := range r.breakpoints {
			d.AddBreakPoint(script, pos)
		}
		for d.Execute() == vm.StateBreak {
			ectx := e.CurrentContext()
			stack, err := jsonItems(ectx.EvaluationStack().Items())
			if err != nil {
				return nil, err
			}
			b, err := json.Marshal(stack)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(r.stderr, "break at %d: %s\n", ectx.IP(), b)
		}
	}

	rep := &report{RunID: log.RunID(ctx), State: e.State().String()}
	rep.Stack, err = jsonItems(e.ResultStack().Items())
	if err != nil {
		return nil, err
	}
	if ex := e.UncaughtException(); ex != nil {
		rep.Exception, err = stackitem.ToJSONValue(ex)
		if err != nil {
			return nil, err
		}
	}
	if err := e.FaultError(); err != nil {
		rep.Fault = err.Error()
		if at := errors.Data(err); at != nil {
			rep.FaultAt = at
		}
	}
	for _, n := range h.Notifications {
		rep.Notifications = append(rep.Notifications, notification{
			Contract: hex.EncodeToString(n.ScriptHash),
			Name:     n.Name,
			State:    n.State,
		})
	}
	for _, l := range h.Logs {
		rep.Logs = append(rep.Logs, l.Message)
	}
	return rep, nil
}

func jsonItems(items []stackitem.Item) ([]interface{}, error) {
	v := make([]interface{}, 0, len(items))
	for _, item := range items {
		j, err := stackitem.ToJSONValue(item)
		if err != nil {
			return nil, err
		}
		v = append(v, j)
	}
	return v, nil
}

func (rep *report) write(w io.Writer, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rep)
}
