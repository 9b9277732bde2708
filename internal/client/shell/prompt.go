// Package shell is the terminal front-end of the trip list.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/TripSync/internal/models"
)

// Prompter reads answers line by line from in and writes questions to out.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter returns a Prompter over in and out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Line prints prompt and returns the next input line without surrounding
// spaces. ok is false once input is exhausted.
func (p *Prompter) Line(prompt string) (line string, ok bool) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// PromptForTrip asks for the four add-trip fields.
func (p *Prompter) PromptForTrip() (models.TripInput, bool) {
	var in models.TripInput
	fields := []struct {
		label string
		dst   *string
	}{
		{"Place you explored: ", &in.PlaceName},
		{"Your experience: ", &in.Experience},
		{"Travelled with: ", &in.TravelWith},
		{"Travelled by: ", &in.TravelBy},
	}
	for _, f := range fields {
		v, ok := p.Line(f.label)
		if !ok {
			return models.TripInput{}, false
		}
		*f.dst = v
	}
	return in, true
}

// Confirm asks whether trip id should be deleted. Only "y" or "yes" agree.
func (p *Prompter) Confirm(id int64) bool {
	answer, ok := p.Line(fmt.Sprintf("Delete trip %d? [y/N] ", id))
	if !ok {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}
