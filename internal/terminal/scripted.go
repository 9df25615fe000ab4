package terminal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// ErrScriptExhausted is returned when a scripted driver runs out of answers.
var ErrScriptExhausted = errors.New("no scripted answer left")

// ScriptedDriver replays canned answers in order. Select answers are option
// indices and Confirm answers are "y" or "n". A validator that rejects an
// answer consumes it and moves on to the next one, the way a user retypes.
type ScriptedDriver struct {
	mu       sync.Mutex
	answers  []string
	Prompts  []string
	Messages []string
}

func NewScriptedDriver(answers ...string) *ScriptedDriver {
	return &ScriptedDriver{answers: answers}
}

func (d *ScriptedDriver) next(message string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Prompts = append(d.Prompts, message)
	if len(d.answers) == 0 {
		return "", fmt.Errorf("%w for %q", ErrScriptExhausted, message)
	}
	a := d.answers[0]
	d.answers = d.answers[1:]
	return a, nil
}

func (d *ScriptedDriver) ask(ctx context.Context, cfg InputConfig) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		a, err := d.next(cfg.Message)
		if err != nil {
			return "", err
		}
		if a == "" {
			a = cfg.Default
		}
		if cfg.Validator != nil {
			if verr := cfg.Validator(a); verr != nil {
				d.record(verr.Error())
				continue
			}
		}
		return a, nil
	}
}

func (d *ScriptedDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	return d.ask(ctx, cfg)
}

func (d *ScriptedDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	return d.ask(ctx, cfg)
}

func (d *ScriptedDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	a, err := d.next(cfg.Message)
	if err != nil {
		return 0, err
	}
	if a == "" {
		return cfg.DefaultIndex, nil
	}
	i, err := strconv.Atoi(a)
	if err != nil || i < 0 || i >= len(cfg.Options) {
		return 0, fmt.Errorf("scripted select answer %q out of range", a)
	}
	return i, nil
}

func (d *ScriptedDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a, err := d.next(cfg.Message)
	if err != nil {
		return false, err
	}
	switch a {
	case "":
		return cfg.Default, nil
	case "y", "yes", "s", "sim":
		return true, nil
	}
	return false, nil
}

func (d *ScriptedDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.record(msg)
	return nil
}

func (d *ScriptedDriver) record(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Messages = append(d.Messages, msg)
}

// Remaining reports how many answers were not consumed.
func (d *ScriptedDriver) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.answers)
}

// Output returns a copy of everything passed to Info and every validator
// rejection, in order.
func (d *ScriptedDriver) Output() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.Messages...)
}
