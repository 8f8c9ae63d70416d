// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// withSpinner runs fn while a stick-style spinner with text is shown. The
// spinner line is removed when fn returns.
func withSpinner[T any](text string, fn func() T) T {
	cursor.Hide()
	defer cursor.Show()

	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		return fn()
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for i := 0; ; i++ {
			area.Update(fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text))
			select {
			case <-t.C:
			case <-stop:
				return
			}
		}
	}()

	out := fn()
	close(stop)
	wg.Wait()
	_ = area.Stop()
	return out
}

type valueErr[T any] struct {
	v   T
	err error
}

// spin is withSpinner for functions returning a value and an error.
func spin[T any](text string, fn func() (T, error)) (T, error) {
	r := withSpinner(text, func() valueErr[T] {
		v, err := fn()
		return valueErr[T]{v, err}
	})
	return r.v, r.err
}
