package converter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirmer asks the user a yes/no question. yes and no are the literal
// answers that are accepted.
type Confirmer interface {
	Confirm(msg, yes, no string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(msg, yes, no string) (bool, error)

func (f ConfirmFunc) Confirm(msg, yes, no string) (bool, error) {
	return f(msg, yes, no)
}

// AutoConfirm answers every question with answer.
func AutoConfirm(answer bool) Confirmer {
	return ConfirmFunc(func(string, string, string) (bool, error) {
		return answer, nil
	})
}

// PromptConfirmer asks on Out and reads answers line by line from In until
// one of the two accepted literals is given.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// NewPromptConfirmer prompts on the terminal.
func NewPromptConfirmer() *PromptConfirmer {
	return &PromptConfirmer{In: os.Stdin, Out: os.Stderr}
}

func (p *PromptConfirmer) Confirm(msg, yes, no string) (bool, error) {
	in := bufio.NewScanner(p.In)
	for {
		fmt.Fprintf(p.Out, "%s [%s/%s]: ", msg, yes, no)
		if !in.Scan() {
			if err := in.Err(); err != nil {
				return false, err
			}
			return false, io.ErrUnexpectedEOF
		}
		switch strings.TrimSpace(in.Text()) {
		case yes:
			return true, nil
		case no:
			return false, nil
		}
		fmt.Fprintf(p.Out, "please answer %q or %q\n", yes, no)
	}
}
