// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRunStdin(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	code := run(nil, strings.NewReader("# Title\n\nBody text\n---\n"), stdout, stderr)
	if code != 0 {
		t.Fatalf("run(...) = %d; want 0 (stderr: %s)", code, stderr)
	}
	want := "1\tHeader(1)\t\"# Title\"\n" +
		"2\tBlankLine\t\"\"\n" +
		"3\tParagraph\t\"Body text\"\n" +
		"4\tSetextHeading\t\"---\"\n"
	if diff := cmp.Diff(want, stdout.String()); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestRunFlags(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.md")
	if err := os.WriteFile(in, []byte("Text\n    code\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.html")
	stderr := new(bytes.Buffer)
	code := run([]string{"--html", "-k", "-o", out, in}, strings.NewReader(""), new(bytes.Buffer), stderr)
	if code != 0 {
		t.Fatalf("run(...) = %d; want 0 (stderr: %s)", code, stderr)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "<p>Text</p>\n<pre><code>code\n</code></pre>\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestRunMultipleInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	if err := os.WriteFile(a, []byte("####### x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("***\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	if code := run([]string{a, b}, strings.NewReader(""), stdout, stderr); code != 0 {
		t.Fatalf("run(...) = %d; want 0 (stderr: %s)", code, stderr)
	}
	want := a + "\t1\tParagraph\t\"####### x\"\n" +
		b + "\t1\tThematicBreak\t\"***\"\n"
	if diff := cmp.Diff(want, stdout.String()); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestRunErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.md")
	stderr := new(bytes.Buffer)
	if code := run([]string{missing}, strings.NewReader(""), new(bytes.Buffer), stderr); code != 1 {
		t.Errorf("run([%q]) = %d; want 1", missing, code)
	}
	if !strings.HasPrefix(stderr.String(), missing+": ") {
		t.Errorf("stderr = %q; want prefix %q", stderr, missing+": ")
	}

	if code := run([]string{"--bogus"}, strings.NewReader(""), new(bytes.Buffer), new(bytes.Buffer)); code != 2 {
		t.Errorf("run([\"--bogus\"]) = %d; want 2", code)
	}
	if code := run([]string{"--help"}, strings.NewReader(""), new(bytes.Buffer), new(bytes.Buffer)); code != 0 {
		t.Errorf("run([\"--help\"]) = %d; want 0", code)
	}
}

func TestCloseOutput(t *testing.T) {
	stderr := new(bytes.Buffer)
	if code := closeOutput(errCloser{errors.New("disk full")}, stderr); code != 1 {
		t.Errorf("closeOutput(failing) = %d; want 1", code)
	}
	if got, want := stderr.String(), "close output: disk full\n"; got != want {
		t.Errorf("stderr = %q; want %q", got, want)
	}

	stderr.Reset()
	if code := closeOutput(errCloser{}, stderr); code != 0 || stderr.Len() > 0 {
		t.Errorf("closeOutput(ok) = %d, stderr %q; want 0, \"\"", code, stderr)
	}
}

func TestWriteOutputFailure(t *testing.T) {
	stderr := new(bytes.Buffer)
	cfg := &config{}
	code := writeOutput(cfg, strings.NewReader("# Title\n"), errWriter{errors.New("broken pipe")}, stderr)
	if code != 1 {
		t.Errorf("writeOutput(...) = %d; want 1", code)
	}
	if got, want := stderr.String(), "write output: broken pipe\n"; got != want {
		t.Errorf("stderr = %q; want %q", got, want)
	}
}

type errCloser struct {
	err error
}

func (c errCloser) Close() error {
	return c.err
}

type errWriter struct {
	err error
}

func (w errWriter) Write(p []byte) (int, error) {
	return 0, w.err
}
