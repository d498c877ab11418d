package internal

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var ErrTooManyTries = errors.New("too many tries")

type promptValidator func(string) (bool, string)

type promptConfig struct {
	tries     int
	validator promptValidator
}

type promptOption func(*promptConfig)

func WithValidator(v promptValidator) promptOption {
	return func(cfg *promptConfig) {
		cfg.validator = v
	}
}

func WithMaxTries(i int) promptOption {
	return func(cfg *promptConfig) {
		cfg.tries = i
	}
}

// Prompt writes prompt to w and reads one line from br. Callers keep br for
// the whole connection so buffered input is never lost between prompts.
func Prompt(br *bufio.Reader, w io.Writer, prompt string, opts ...promptOption) (string, error) {
	config := &promptConfig{}
	for _, opt := range opts {
		opt(config)
	}

	tries := 0
	for {
		_, err := io.WriteString(w, prompt)
		if err != nil {
			return "", err
		}

		line, err := br.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return "", err
		}
		input := strings.TrimRight(line, "\r\n")

		if config.validator != nil {
			ok, msg := config.validator(input)
			if !ok {
				_, _ = io.WriteString(w, msg)

				tries++
				if config.tries > 0 && config.tries == tries {
					_, _ = io.WriteString(w, "too many tries\n")
					return "", ErrTooManyTries
				}

				continue
			}
		}

		return input, nil
	}
}
