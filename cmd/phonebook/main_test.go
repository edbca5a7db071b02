package main

import (
	"bytes"
	"testing"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"reports": true, "contacts": true, "worker": true, "migrate": true}
	for _, c := range root.Commands() {
		delete(want, c.Name())
	}
	if len(want) != 0 {
		t.Fatalf("missing subcommands: %v", want)
	}

	for name, hasAddr := range map[string]bool{"reports": true, "contacts": true, "worker": false} {
		cmd, _, err := root.Find([]string{name})
		if err != nil {
			t.Fatalf("find %s: %v", name, err)
		}
		if got := cmd.Flags().Lookup("addr") != nil; got != hasAddr {
			t.Fatalf("%s: addr flag present=%v, want %v", name, got, hasAddr)
		}
	}
}

func TestRejectsExtraArgs(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"migrate", "now"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected an error for unexpected arguments")
	}
}
