package scanning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anstrom/scangate/internal/validation"
)

const (
	// DefaultProgram is the scanner binary looked up on PATH.
	DefaultProgram = "nmap"

	// FlagDisableARPPing keeps nmap from sending raw ARP discovery probes.
	FlagDisableARPPing = "--disable-arp-ping"
	// FlagPorts precedes the port expression.
	FlagPorts = "-p"
)

// ErrUnsafeArgument is returned when an argument reaching the builder could
// be interpreted as anything other than a plain value. It wraps
// validation.ErrInjection.
var ErrUnsafeArgument = fmt.Errorf("unsafe scanner argument: %w", validation.ErrInjection)

// Command is a tokenized scanner invocation. Program and each element of Args
// are passed to the process launcher as separate tokens.
type Command struct {
	Program string
	Args    []string
}

// Argv returns program followed by its arguments.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Program)
	return append(argv, c.Args...)
}

// Target returns the final argument.
func (c Command) Target() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[len(c.Args)-1]
}

// Ports returns the value following the -p flag.
func (c Command) Ports() string {
	for i := 0; i < len(c.Args)-1; i++ {
		if c.Args[i] == FlagPorts {
			return c.Args[i+1]
		}
	}
	return ""
}

// String renders the command for logs. It is never executed.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// CommandBuilder builds scanner commands for a fixed program.
type CommandBuilder struct {
	program string
}

// NewCommandBuilder returns a builder for program. An empty program means nmap.
func NewCommandBuilder(program string) *CommandBuilder {
	if program == "" {
		program = DefaultProgram
	}
	return &CommandBuilder{program: program}
}

// Program returns the scanner binary commands are built for.
func (b *CommandBuilder) Program() string {
	return b.program
}

// Build returns the argument vector for target and ports. Inputs are expected
// to have passed validation already; Build still refuses anything that could
// reach nmap as an option or carry shell syntax.
func (b *CommandBuilder) Build(target, ports string) (Command, error) {
	if err := checkArgument("target", target); err != nil {
		return Command{}, err
	}
	if validation.ContainsShellMetacharacter(target) {
		return Command{}, fmt.Errorf("%w: target contains shell metacharacters", ErrUnsafeArgument)
	}
	if err := checkArgument("ports", ports); err != nil {
		return Command{}, err
	}

	return Command{
		Program: b.program,
		Args:    []string{FlagDisableARPPing, FlagPorts, ports, target},
	}, nil
}

// BuildCommand builds an nmap command with the default program.
func BuildCommand(target, ports string) (Command, error) {
	return NewCommandBuilder(DefaultProgram).Build(target, ports)
}

func checkArgument(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is empty", ErrUnsafeArgument, name)
	}
	if strings.HasPrefix(value, "-") {
		return fmt.Errorf("%w: %s starts with '-'", ErrUnsafeArgument, name)
	}
	return nil
}

// IsUnsafeArgument reports whether err came from the builder's own checks.
func IsUnsafeArgument(err error) bool {
	return errors.Is(err, ErrUnsafeArgument)
}
