// Package prompt asks the user to pick one of a few options.
package prompt

import (
	"context"
	"errors"
	"fmt"
)

// ErrDismissed is returned when the user closes the prompt without choosing.
var ErrDismissed = errors.New("prompt dismissed")

// Option is one choice offered to the user.
type Option struct {
	Key   string
	Label string
}

// Presenter shows a blocking choice and returns the selected option.
type Presenter interface {
	PresentChoice(ctx context.Context, title, message string, options []Option) (Option, error)
}

// Fixed answers every prompt without user interaction. An empty Key selects
// the first option. A non-nil Err is returned instead of a choice.
type Fixed struct {
	Key string
	Err error
}

// PresentChoice implements Presenter.
func (f Fixed) PresentChoice(ctx context.Context, title, message string, options []Option) (Option, error) {
	if err := ctx.Err(); err != nil {
		return Option{}, err
	}
	if f.Err != nil {
		return Option{}, f.Err
	}
	if len(options) == 0 {
		return Option{}, errors.New("no options to choose from")
	}
	if f.Key == "" {
		return options[0], nil
	}
	for _, opt := range options {
		if opt.Key == f.Key {
			return opt, nil
		}
	}
	return Option{}, fmt.Errorf("option %q not offered", f.Key)
}
