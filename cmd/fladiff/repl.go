package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chzyer/readline"
	"github.com/evilsocket/islazy/str"

	"github.com/born-ml/fladiff/internal/session"
)

const prompt = "\033[31m»\033[0m "

var errQuit = errors.New("quit")

type handlerCb func(cmd string, args []string, sess *session.Session) error

type handler struct {
	Parser      *regexp.Regexp
	Completer   *readline.PrefixCompleter
	Name        string
	Mnemonic    string
	Description string
	Callback    handlerCb
}

var handlers = []handler{}
var completers = (*readline.PrefixCompleter)(nil)

func init() {
	handlers = []handler{
		helpHandler,
		quitHandler,
		infoHandler,
		defineHandler,
		listHandler,
		removeHandler,
		evalHandler,
		gradHandler,
		hessHandler,
		checkHandler,
		minimizeHandler,
		runsHandler,
	}

	tmp := []readline.PrefixCompleterInterface{}
	for _, h := range handlers {
		if h.Completer != nil {
			tmp = append(tmp, h.Completer)
		}
	}
	completers = readline.NewPrefixCompleter(tmp...)
}

func dispatch(cmd string, sess *session.Session) error {
	cmd = str.Trim(cmd)
	if cmd == "" {
		return nil
	}

	for _, handler := range handlers {
		match := false
		args := []string{}

		if handler.Parser != nil {
			if result := handler.Parser.FindStringSubmatch(cmd); result != nil && len(result) == handler.Parser.NumSubexp()+1 {
				cmd = result[1:][0]
				args = result[1:][1:]
				match = true
			}
		} else if strings.EqualFold(handler.Name, cmd) {
			match = true
		}

		if match {
			return handler.Callback(cmd, args, sess)
		}
	}

	return fmt.Errorf("command not found: %s", cmd)
}

// splitCommands splits a line on ';'. Function definitions keep their
// semicolons and must be the only command on their line.
func splitCommands(line string) []string {
	if defineHandler.Parser.MatchString(str.Trim(line)) {
		return []string{line}
	}
	return str.SplitBy(line, ";")
}

// runLine dispatches every command of line, printing errors. It reports
// whether the session should end.
func runLine(line string, sess *session.Session) bool {
	for _, cmd := range splitCommands(line) {
		if err := dispatch(cmd, sess); err != nil {
			if errors.Is(err, errQuit) {
				return true
			}
			fmt.Fprintf(out, "%s\n", err)
		}
	}
	return false
}

func repl(sess *session.Session, evalString string) error {
	history := filepath.Join(os.TempDir(), "fladiff.history")
	reader, err := readline.NewEx(&readline.Config{
		Prompt:          "fladiff " + prompt,
		HistoryFile:     history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completers,
	})
	if err != nil {
		return err
	}
	defer reader.Close()

	if evalString != "" && runLine(evalString, sess) {
		return nil
	}

	for {
		line, err := reader.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if runLine(line, sess) {
			return nil
		}
	}
}
