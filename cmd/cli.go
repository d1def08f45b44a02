package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/yuhonghong66/neo4j/log"
	"github.com/yuhonghong66/neo4j/runtime"
)

var (
	CliHistFileEnv     = "TUPLESETCLI_HISTFILE"
	CliHistFileDefault = ".tuplesetcli_history"
)

const (
	defaultCapacity = 16
	defaultWidth    = 1
)

type CliConfig struct {
	interactive bool
	historyFile string
	prompt      string
}

// SetCli is an interactive inspector for a TupleSet, meant for poking at the
// structure from a terminal during development.
type SetCli struct {
	config *CliConfig
	line   *liner.State
	set    *runtime.TupleSet
}

func NewSetCli() *SetCli {
	return &SetCli{
		config: &CliConfig{},
		set:    runtime.NewTupleSet(defaultCapacity, defaultWidth),
	}
}

func (cli *SetCli) Run() error {
	cli.line = liner.NewLiner()
	defer cli.line.Close()
	cli.line.SetCtrlCAborts(true)

	cli.config.interactive = isatty.IsTerminal(os.Stdin.Fd())
	if cli.config.interactive {
		// Keep in-memory history regardless of whether the history file
		// can be determined.
		cli.config.historyFile = getDotfilePath(CliHistFileEnv, CliHistFileDefault)
		if cli.config.historyFile != "" {
			cli.historyLoad(cli.config.historyFile)
		}
	}

	cli.refreshPrompt()
	for {
		input, err := cli.line.Prompt(cli.config.prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		argv := strings.Fields(input)
		if len(argv) == 0 {
			continue
		}
		if cli.config.interactive {
			cli.line.AppendHistory(input)
		}
		if quit := cli.dispatch(argv); quit {
			break
		}
	}

	if cli.config.historyFile != "" {
		cli.historySave(cli.config.historyFile)
	}
	return nil
}

func (cli *SetCli) dispatch(argv []string) (quit bool) {
	switch strings.ToLower(argv[0]) {
	case "quit", "exit":
		return true
	case "help":
		usage()
	case "clear":
		fmt.Print("\x1b[H\x1b[2J")
	case "new":
		cli.cmdNew(argv[1:])
	case "add":
		cli.cmdAdd(argv[1:])
	case "contains":
		cli.cmdContains(argv[1:])
	case "stats":
		cli.cmdStats()
	default:
		fmt.Printf("Unknown command '%s'. Try 'help'.\n", argv[0])
	}
	return false
}

func (cli *SetCli) cmdNew(args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: new <capacity> <width>")
		return
	}
	capacity, err1 := strconv.Atoi(args[0])
	width, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Println("capacity and width must be integers")
		return
	}
	if capacity < 1 || capacity&(capacity-1) != 0 {
		fmt.Println("capacity must be a power of 2")
		return
	}
	if width < 1 {
		fmt.Println("width must be larger than 0")
		return
	}
	cli.set = runtime.NewTupleSet(capacity, width)
	cli.refreshPrompt()
	fmt.Println("OK")
}

func (cli *SetCli) cmdAdd(args []string) {
	tuple, err := cli.parseTuple(args)
	if err != nil {
		fmt.Println(err)
		return
	}
	if cli.set.Add(tuple) {
		fmt.Println("added")
	} else {
		fmt.Println("already present")
	}
}

func (cli *SetCli) cmdContains(args []string) {
	tuple, err := cli.parseTuple(args)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(cli.set.Contains(tuple))
}

func (cli *SetCli) cmdStats() {
	fmt.Printf("len: %d\ncapacity: %d\nwidth: %d\nused memory: %d bytes\n",
		cli.set.Len(), cli.set.Capacity(), cli.set.Width(), runtime.UsedMemory())
}

// parseTuple turns prompt arguments into a tuple, reporting width and
// reserved-value violations as errors so user typos never panic the REPL.
func (cli *SetCli) parseTuple(args []string) ([]int64, error) {
	if len(args) != cli.set.Width() {
		return nil, fmt.Errorf("expected %d element(s), got %d", cli.set.Width(), len(args))
	}
	tuple := make([]int64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a valid int64", arg)
		}
		if v == -1 || v == -2 {
			return nil, fmt.Errorf("-1 and -2 are reserved and cannot be stored")
		}
		tuple[i] = v
	}
	return tuple, nil
}

func (cli *SetCli) refreshPrompt() {
	cli.config.prompt = fmt.Sprintf("tupleset[w%d]> ", cli.set.Width())
}

func (cli *SetCli) historyLoad(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	cli.line.ReadHistory(f)
}

func (cli *SetCli) historySave(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Logger.Warn("cannot save history file", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()
	cli.line.WriteHistory(f)
}

func getDotfilePath(envOverride, dotFilename string) string {
	path := os.Getenv(envOverride)
	if path != "" {
		if path == "/dev/null" {
			return ""
		}
		return path
	}
	if home := os.Getenv("HOME"); home != "" {
		return fmt.Sprintf("%s/%s", home, dotFilename)
	}
	return ""
}

func usage() {
	fmt.Print(`Commands:
  new <capacity> <width>   start over with an empty set (capacity must be a power of 2)
  add <e1> ... <eN>        insert a width-N tuple, reports whether it was new
  contains <e1> ... <eN>   membership test, never modifies the set
  stats                    len / capacity / width / used memory
  clear                    clear the screen
  quit                     exit
`)
}
