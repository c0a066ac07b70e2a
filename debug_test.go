package rig

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedArtboard(level zapcore.Level) (*Artboard, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	a := NewArtboard("t")
	a.SetLogger(zap.New(core))
	return a, logs
}

func TestDebugModeLogsStats(t *testing.T) {
	a, logs := observedArtboard(zapcore.DebugLevel)
	a.SetDebugMode(true)
	a.Add(a.Root().ID, NewNode("n"))
	a.RunUpdatePass()

	builds := logs.FilterMessage("build").All()
	if len(builds) != 1 {
		t.Fatalf("build logs = %d, want 1", len(builds))
	}
	if got := builds[0].ContextMap()["ordered"]; got != int64(2) {
		t.Errorf("ordered = %v, want 2", got)
	}
	passes := logs.FilterMessage("update pass").All()
	if len(passes) != 1 || passes[0].ContextMap()["updated"] != int64(2) {
		t.Errorf("pass logs = %+v", passes)
	}
}

func TestDebugModeOff(t *testing.T) {
	a, logs := observedArtboard(zapcore.DebugLevel)
	a.Add(a.Root().ID, NewNode("n"))
	a.RunUpdatePass()
	if n := logs.FilterLevelExact(zapcore.DebugLevel).Len(); n != 0 {
		t.Errorf("debug logs without debug mode = %d", n)
	}
}

func TestBuildErrorIsLogged(t *testing.T) {
	a, logs := observedArtboard(zapcore.WarnLevel)
	a.Add(999, NewNode("lost"))
	a.RunUpdatePass()

	excluded := logs.FilterMessage("component excluded").All()
	if len(excluded) != 1 {
		t.Fatalf("excluded logs = %d, want 1", len(excluded))
	}
	if got := excluded[0].ContextMap()["component"]; got != "lost" {
		t.Errorf("component field = %v, want lost", got)
	}
}

func TestUpdateErrorIsLogged(t *testing.T) {
	a, logs := observedArtboard(zapcore.ErrorLevel)
	a.Add(a.Root().ID, NewCustom("broken", func(*Component, ComponentDirt) error {
		return errFlaky
	}))
	a.RunUpdatePass()
	if n := logs.FilterMessage("component update failed").Len(); n != 1 {
		t.Errorf("update failure logs = %d, want 1", n)
	}
}

func TestDebugCheckDepth(t *testing.T) {
	a, logs := observedArtboard(zapcore.WarnLevel)
	a.SetDebugMode(true)
	parent := a.Root().ID
	for i := 0; i < debugMaxHierarchyDepth+2; i++ {
		parent = a.Add(parent, NewNode("deep"))
	}
	a.RunUpdatePass()
	if logs.FilterMessage("hierarchy too deep").Len() == 0 {
		t.Error("expected a depth warning")
	}
}

func TestStatsText(t *testing.T) {
	a := NewArtboard("t")
	a.Add(a.Root().ID, NewNode("n"))
	a.Add(999, NewNode("lost"))
	a.RunUpdatePass()

	got := statsText(a, 60, 60)
	want := "FPS: 60.0\nTPS: 60.0\nordered: 2\nexcluded: 1\nfailing: 0"
	if got != want {
		t.Errorf("statsText = %q, want %q", got, want)
	}
}
