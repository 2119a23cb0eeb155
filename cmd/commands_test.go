package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"breathpacer/internal/clock"
	"breathpacer/internal/core/model"
	"breathpacer/internal/core/pacer"
	"breathpacer/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolateConfig(t)
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCalcCommand(t *testing.T) {
	out, err := execute(t, "calc", "--age", "25", "--weight", "70", "--height", "1.75", "--par", "8", "--sex", "1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "BMI: 22.8571", lines[0])
	assert.Equal(t, "VO2max estimate: 55.9587", lines[1])
	assert.Equal(t, "Wmax estimate: 311.1029", lines[2])
	assert.Equal(t, "Untrained VO2max lower: 29.5136", lines[7])
}

func TestCalcCommandRejectsInvalidInput(t *testing.T) {
	_, err := execute(t, "calc", "--age", "0", "--weight", "70", "--height", "1.75", "--par", "8")
	assert.ErrorContains(t, err, "age")

	_, err = execute(t, "calc", "--age", "25")
	assert.Error(t, err)
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "Calm (4-6)")
	assert.Contains(t, out, "4s in / 6s out, unbounded")
	assert.Contains(t, out, "10 cycles")
}

func TestPaceRejectsUnknownPreset(t *testing.T) {
	_, err := execute(t, "pace", "--preset", "does not exist", "--sound=false")
	assert.ErrorIs(t, err, storage.ErrPresetNotFound)
}

func TestStreamSessionPrintsBoundedRun(t *testing.T) {
	manual := clock.NewManual(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))
	config := model.DefaultPacerConfig()
	require.NoError(t, config.SetBreathIn(2*time.Second))
	require.NoError(t, config.SetBreathOut(3*time.Second))
	require.NoError(t, config.SetCycleLimit(1))
	config.SetSoundEnabled(false)

	engine := pacer.New(config, pacer.Options{
		Clock:    manual,
		Logger:   zerolog.Nop(),
		NewRunID: func() string { return "run-1" },
	})
	t.Cleanup(engine.Close)
	events := engine.Subscribe(1 << 12)
	engine.Start()
	manual.Advance(time.Minute)

	var out bytes.Buffer
	require.NoError(t, streamSession(context.Background(), engine, events, &out))

	assert.Equal(t, []string{
		"starting run run-1",
		"3",
		"2",
		"1",
		"go",
		"inhale  cycle 1/1  2s",
		"  1s",
		"exhale  cycle 1/1  3s",
		"  2s",
		"  1s",
		"completed 1 cycles",
		"stopped (completed)",
	}, strings.Split(strings.TrimSpace(out.String()), "\n"))
}

func TestStreamSessionStopsOnCancel(t *testing.T) {
	manual := clock.NewManual(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))
	engine := pacer.New(model.DefaultPacerConfig(), pacer.Options{Clock: manual, Logger: zerolog.Nop()})
	t.Cleanup(engine.Close)
	events := engine.Subscribe(1 << 12)
	engine.Start()
	manual.Advance(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, streamSession(ctx, engine, events, &out))
	assert.Contains(t, out.String(), "stopped (stopped)")
	assert.Equal(t, pacer.ModeIdle, engine.Snapshot().Mode)
}

func TestApplyPresetKeepsExplicitFlags(t *testing.T) {
	paceCmd := newPaceCmd(&cli{})
	require.NoError(t, paceCmd.Flags().Set("in", "3000"))

	config := model.DefaultPacerConfig()
	config.BreathIn = 3 * time.Second
	preset := storage.Preset{Name: "Box", BreathIn: 4 * time.Second, BreathOut: 4 * time.Second, CycleLimit: 8}

	applied := applyPreset(paceCmd, preset, config)
	assert.Equal(t, 3*time.Second, applied.BreathIn)
	assert.Equal(t, 4*time.Second, applied.BreathOut)
	assert.Equal(t, 8, applied.CycleLimit)
}
