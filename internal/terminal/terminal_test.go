// Copyright (c) 2025 CVFlow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package terminal

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrompterReadsLines(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("  demo@example.com \nsecret123\n"), &out)

	email, err := p.Line("Email")
	if err != nil || email != "demo@example.com" {
		t.Fatalf("Line() = %q, %v", email, err)
	}
	pw, err := p.Secret("Password")
	if err != nil || pw != "secret123" {
		t.Fatalf("Secret() = %q, %v", pw, err)
	}
	if got := out.String(); got != "Email: Password: " {
		t.Errorf("prompts = %q", got)
	}
	if p.Interactive() {
		t.Error("buffer prompter reported interactive")
	}
}

func TestPrompterLastLineWithoutNewline(t *testing.T) {
	p := New(strings.NewReader("abc"), &bytes.Buffer{})
	if s, err := p.Line("x"); err != nil || s != "abc" {
		t.Fatalf("Line() = %q, %v", s, err)
	}
	if _, err := p.Line("x"); err == nil {
		t.Fatal("Line() at EOF returned no error")
	}
}

func TestClearIsNoopOffTerminal(t *testing.T) {
	var out bytes.Buffer
	New(strings.NewReader(""), &out).ClearPreviousLines(120)
	if out.Len() != 0 {
		t.Errorf("ClearPreviousLines wrote %q", out.String())
	}
}
