package main

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	"github.com/evilsocket/islazy/tui"
	"github.com/pbnjay/memory"

	"github.com/born-ml/fladiff/internal/host"
	"github.com/born-ml/fladiff/internal/optim"
	"github.com/born-ml/fladiff/internal/session"
)

var started = time.Now()

var helpHandler = handler{
	Name:        "HELP",
	Mnemonic:    "HELP",
	Completer:   readline.PcItem("help"),
	Description: "Show the available commands and their descriptions.",
	Callback: func(cmd string, args []string, sess *session.Session) error {
		rows := [][]string{}
		for _, h := range handlers {
			rows = append(rows, []string{h.Mnemonic, h.Description})
		}
		tui.Table(out, []string{"command", "description"}, rows)
		return nil
	},
}

var quitHandler = handler{
	Name:        "QUIT",
	Mnemonic:    "QUIT, Q or EXIT",
	Completer:   readline.PcItem("quit"),
	Parser:      regexp.MustCompile(`^(?i)(QUIT|Q|EXIT)$`),
	Description: "Exit the session.",
	Callback: func(cmd string, args []string, sess *session.Session) error {
		return errQuit
	},
}

var infoHandler = handler{
	Name:        "INFO",
	Mnemonic:    "INFO",
	Completer:   readline.PcItem("info"),
	Description: "Display session and host information.",
	Callback: func(cmd string, args []string, sess *session.Session) error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		opts := sess.Evaluator().Options()
		rows := [][]string{
			{"version", version},
			{"started", humanize.Time(started)},
			{"functions", strconv.Itoa(len(sess.List()))},
			{"jacobian mode", string(opts.JacobianMode)},
			{"hessian mode", string(opts.HessianMode)},
			{"tolerance", fmt.Sprintf("%g", opts.Tolerance)},
			{"cpus", strconv.Itoa(runtime.NumCPU())},
			{"host memory", humanize.Bytes(memory.TotalMemory())},
			{"heap alloc", humanize.Bytes(m.Alloc)},
			{"sys", humanize.Bytes(m.Sys)},
		}
		tui.Table(out, []string{"name", "value"}, rows)
		return nil
	},
}

var defineHandler = handler{
	Name:        "DEF",
	Mnemonic:    "DEF <SOURCE>",
	Completer:   readline.PcItem("def"),
	Parser:      regexp.MustCompile(`^(?i)(DEF|DEFINE)\s+(function.+)$`),
	Description: "Compile a JavaScript function declaration and register it under its name.",
	Callback: func(cmd string, args []string, sess *session.Session) error {
		fn, err := sess.Define("", args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "defined %s (%d inputs)\n", fn.Name, fn.Inputs)
		return nil
	},
}

var listHandler = handler{
	Name:        "LIST",
	Mnemonic:    "LIST or LS",
	Completer:   readline.PcItem("list"),
	Parser:      regexp.MustCompile(`^(?i)(LIST|LS)$`),
	Description: "List the registered functions.",
	Callback: func(cmd string, args []string, sess *session.Session) error {
		rows := [][]string{}
		for _, fn := range sess.List() {
			kind := "inline"
			if fn.Builtin {
				kind = "builtin"
			}
			rows = append(rows, []string{fn.Name, strconv.Itoa(fn.Inputs), kind})
		}
		tui.Table(out, []string{"name", "inputs", "kind"}, rows)
		return nil
	},
}

var removeHandler = handler{
	Name:        "RM",
	Mnemonic:    "RM <NAME>",
	Completer:   readline.PcItem("rm"),
	Parser:      regexp.MustCompile(`^(?i)(RM|DEL)\s+(\S+)$`),
	Description: "Remove the function <NAME>.",
	Callback: func(cmd string, args []string, sess *session.Session) error {
		return sess.Remove(args[0])
	},
}

var evalHandler = handler{
	Name:        "EVAL",
	Mnemonic:    "EVAL or E <NAME> <POINT>",
	Completer:   readline.PcItem("eval"),
	Parser:      regexp.MustCompile(`^(?i)(EVAL|E)\s+(\S+)\s+(.+)$`),
	Description: "Evaluate <NAME> at <POINT>, e.g. eval rosenbrock c(-1.2, 1).",
	Callback: func(cmd string, args []string, sess *session.Session) error {
		x, err := host.ParseVector(args[1])
		if err != nil {
			return err
		}
		values, err := sess.Evaluate(args[0], x)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, host.FormatVector(values))
		return nil
	},
}

var gradHandler = handler{
	Name:        "GRAD",
	Mnemonic:    "GRAD or G <NAME> <POINT>",
	Completer:   readline.PcItem("grad"),
	Parser:      regexp.MustCompile(`^(?i)(GRAD|G)\s+(\S+)\s+(.+)$`),
	Description: "Jacobian of <NAME> at <POINT>, one row per output.",
	Callback: func(cmd string, args []string, sess *session.Session) error {
		x, err := host.ParseVector(args[1])
		if err != nil {
			return err
		}
		jac, err := sess.Gradient(args[0], x)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, host.FormatMatrix(jac))
		return nil
	},
}

var hessHandler = handler{
	Name:        "HESS",
	Mnemonic:    "HESS or H <NAME> <POINT> [@OUTPUT]",
	Completer:   readline.PcItem("hess"),
	Parser:      regexp.MustCompile(`^(?i)(HESS|H)\s+(\S+)\s+(.+?)\s*(?:@(\d+))?$`),
	Description: "Hessian of output <OUTPUT> (default 0) of <NAME> at <POINT>.",
	Callback: func(cmd string, args []string, sess *session.Session) error {
		x, err := host.ParseVector(args[1])
		if err != nil {
			return err
		}
		k, err := outputIndex(args[2])
		if err != nil {
			return err
		}
		h, err := sess.Hessian(args[0], x, k)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, host.FormatMatrix(h))
		return nil
	},
}

var checkHandler = handler{
	Name:        "CHECK",
	Mnemonic:    "CHECK <NAME> <POINT> [@OUTPUT]",
	Completer:   readline.PcItem("check"),
	Parser:      regexp.MustCompile(`^(?i)(CHECK)\s+(\S+)\s+(.+?)\s*(?:@(\d+))?$`),
	Description: "Compare the automatic gradient with central finite differences.",
	Callback: func(cmd string, args []string, sess *session.Session) error {
		x, err := host.ParseVector(args[1])
		if err != nil {
			return err
		}
		k, err := outputIndex(args[2])
		if err != nil {
			return err
		}
		report, err := sess.Check(args[0], x, k)
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	},
}

var minimizeHandler = handler{
	Name:        "MIN",
	Mnemonic:    "MIN <NAME> <START> [@OUTPUT]",
	Completer:   readline.PcItem("min"),
	Parser:      regexp.MustCompile(`^(?i)(MIN|MINIMIZE)\s+(\S+)\s+(.+?)\s*(?:@(\d+))?$`),
	Description: "Minimize <NAME> from <START> using its automatic gradient.",
	Callback: func(cmd string, args []string, sess *session.Session) error {
		x0, err := host.ParseVector(args[1])
		if err != nil {
			return err
		}
		k, err := outputIndex(args[2])
		if err != nil {
			return err
		}
		res, err := sess.Minimize(context.TODO(), args[0], x0, k)
		if err != nil {
			return err
		}
		printMinimum(res)
		return nil
	},
}

var runsHandler = handler{
	Name:        "RUNS",
	Mnemonic:    "RUNS <NAME> [LIMIT]",
	Completer:   readline.PcItem("runs"),
	Parser:      regexp.MustCompile(`^(?i)(RUNS)\s+(\S+)\s*(\d*)$`),
	Description: "Show the logged runs of <NAME>, newest first (requires a store).",
	Callback: func(cmd string, args []string, sess *session.Session) error {
		limit := 10
		if args[1] != "" {
			limit, _ = strconv.Atoi(args[1])
		}
		runs, err := sess.Runs(args[0], limit)
		if err != nil {
			return err
		}

		rows := [][]string{}
		for _, r := range runs {
			rows = append(rows, []string{
				humanize.Time(r.CreatedAt),
				r.Kind,
				host.FormatVector(r.Point),
				string(r.Result),
			})
		}
		tui.Table(out, []string{"when", "kind", "point", "result"}, rows)
		return nil
	},
}

func outputIndex(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func printMinimum(res *optim.Result) {
	fmt.Fprintf(out, "par:    %s\n", host.FormatVector(res.X))
	fmt.Fprintf(out, "value:  %.10g\n", res.F)
	fmt.Fprintf(out, "status: %s after %d iterations (%d function, %d gradient evaluations, %s)\n",
		res.Status, res.Iterations, res.FuncEvals, res.GradEvals, res.Runtime)
}
