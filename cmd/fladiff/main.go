// Package main provides the fladiff CLI.
//
// Commands:
//
//	fladiff repl                        interactive session
//	fladiff serve                       MCP tool server on stdio
//	fladiff eval <function> <point>     value
//	fladiff grad <function> <point>     Jacobian
//	fladiff hess <function> <point>     Hessian of one output
//	fladiff minimize <function> <start> BFGS (or configured method) with the AD gradient
//	fladiff version
//
// <function> is a built-in or stored function name, a path to a file holding
// a JavaScript function declaration, or the declaration itself.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/born-ml/fladiff/internal/config"
	"github.com/born-ml/fladiff/internal/eval"
	"github.com/born-ml/fladiff/internal/host"
	"github.com/born-ml/fladiff/internal/server"
	"github.com/born-ml/fladiff/internal/session"
	"github.com/born-ml/fladiff/internal/store"
)

const version = "v0.1.0"

// out receives command output; logs go to stderr.
var out io.Writer = os.Stdout

var (
	app = kingpin.New("fladiff", "Differentiate target functions written once over an abstract scalar backend.")

	configPath = app.Flag("config", "YAML settings file.").Short('c').String()
	logLevel   = app.Flag("log-level", "Log level (overrides the settings file).").String()
	storePath  = app.Flag("store", "SQLite function library (overrides the settings file).").String()
	hessMode   = app.Flag("hessian-mode", "Hessian mode: reverse or forward.").String()
	jacMode    = app.Flag("jacobian-mode", "Jacobian mode: reverse or forward.").String()

	replCmd  = app.Command("repl", "Start an interactive session.").Default()
	evalStr  = replCmd.Flag("eval", "List of commands to run, divided by a semicolon.").String()
	serveCmd = app.Command("serve", "Serve the session as MCP tools on stdio.")

	evalCmd   = app.Command("eval", "Evaluate a function.")
	evalFn    = evalCmd.Arg("function", "Function name, file or source.").Required().String()
	evalPoint = evalCmd.Arg("point", "Parameter vector, e.g. 'c(-1.2, 1)'.").Required().String()

	gradCmd   = app.Command("grad", "Jacobian of a function.")
	gradFn    = gradCmd.Arg("function", "Function name, file or source.").Required().String()
	gradPoint = gradCmd.Arg("point", "Parameter vector.").Required().String()

	hessCmd    = app.Command("hess", "Hessian of one output of a function.")
	hessFn     = hessCmd.Arg("function", "Function name, file or source.").Required().String()
	hessPoint  = hessCmd.Arg("point", "Parameter vector.").Required().String()
	hessOutput = hessCmd.Flag("output", "Output index.").Default("0").Int()

	minCmd    = app.Command("minimize", "Minimize one output of a function with its AD gradient.")
	minFn     = minCmd.Arg("function", "Function name, file or source.").Required().String()
	minStart  = minCmd.Arg("start", "Starting point.").Required().String()
	minOutput = minCmd.Flag("output", "Output index.").Default("0").Int()
	minMethod = minCmd.Flag("method", "bfgs, lbfgs, gradient-descent or nelder-mead.").String()

	versionCmd = app.Command("version", "Show version.")
)

func main() {
	app.Version(version)
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == versionCmd.FullCommand() {
		fmt.Fprintf(out, "fladiff %s\n", version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(cfg.Level())

	sess, cleanup, err := newSession(cfg)
	if err != nil {
		logrus.Fatal(err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command, sess); err != nil {
		cleanup()
		logrus.Fatal(err)
	}
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}
	if *hessMode != "" {
		cfg.HessianMode = *hessMode
	}
	if *jacMode != "" {
		cfg.JacobianMode = *jacMode
	}
	if *minMethod != "" {
		cfg.Optimizer.Method = *minMethod
	}
	return cfg, cfg.Validate()
}

func newSession(cfg config.Config) (*session.Session, func(), error) {
	sc := session.Config{
		Eval:     cfg.EvalOptions(),
		Minimize: cfg.MinimizeConfig(),
		Logger:   logrus.StandardLogger(),
	}

	cleanup := func() {}
	if cfg.Store.Path != "" {
		st, err := store.New(cfg.Store.Path)
		if err != nil {
			return nil, cleanup, err
		}
		sc.Store = st
		cleanup = func() { st.Close() }
	}

	sess, err := session.New(sc)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return sess, cleanup, nil
}

func run(ctx context.Context, command string, sess *session.Session) error {
	switch command {
	case replCmd.FullCommand():
		return repl(sess, *evalStr)

	case serveCmd.FullCommand():
		logrus.WithField("version", version).Info("serving MCP tools on stdio")
		server.Version = version
		return mcpserver.ServeStdio(server.New(sess))

	case evalCmd.FullCommand():
		name, x, err := resolve(sess, *evalFn, *evalPoint)
		if err != nil {
			return err
		}
		values, err := sess.Evaluate(name, x)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, host.FormatVector(values))

	case gradCmd.FullCommand():
		name, x, err := resolve(sess, *gradFn, *gradPoint)
		if err != nil {
			return err
		}
		jac, err := sess.Gradient(name, x)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, host.FormatMatrix(jac))

	case hessCmd.FullCommand():
		name, x, err := resolve(sess, *hessFn, *hessPoint)
		if err != nil {
			return err
		}
		h, err := sess.Hessian(name, x, *hessOutput)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, host.FormatMatrix(h))

	case minCmd.FullCommand():
		name, x0, err := resolve(sess, *minFn, *minStart)
		if err != nil {
			return err
		}
		res, err := sess.Minimize(ctx, name, x0, *minOutput)
		if err != nil {
			return err
		}
		printMinimum(res)
	}
	return nil
}

// resolve turns a function argument into a registered name and parses the
// point.
func resolve(sess *session.Session, fn, point string) (string, []float64, error) {
	x, err := host.ParseVector(point)
	if err != nil {
		return "", nil, err
	}

	src := ""
	switch {
	case strings.HasPrefix(strings.TrimSpace(fn), "function"):
		src = fn
	default:
		if data, err := os.ReadFile(fn); err == nil {
			src = string(data)
		}
	}
	if src == "" {
		return fn, x, nil
	}

	def, err := sess.Define("", src)
	if err != nil {
		return "", nil, err
	}
	return def.Name, x, nil
}

func printReport(r *eval.CheckReport) {
	fmt.Fprintln(out, r.String())
	fmt.Fprintf(out, "ad: %s\n", host.FormatVector(r.AD))
	fmt.Fprintf(out, "fd: %s\n", host.FormatVector(r.FD))
}
