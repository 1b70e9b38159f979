/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsRegistered(t *testing.T) {
	a := NewLogger("REGISTRY_TEST")
	b := NewLogger("REGISTRY_TEST")
	assert.Same(t, a, b)

	assert.True(t, SetLoggerLevel("REGISTRY_TEST", "error"))
	assert.Equal(t, logrus.ErrorLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("NOBODY", "debug"))
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"trace":   logrus.TraceLevel,
		"DEBUG":   logrus.DebugLevel,
		" warn ":  logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func testEntry() *logrus.Entry {
	return &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2025, 3, 1, 10, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "slow query",
		Data:    logrus.Fields{"rows": 2, "model": "Note"},
	}
}

func TestLog4jColorFormatter(t *testing.T) {
	f := &Log4jColorFormatter{LoggerName: "CRUDKIT", NameWidth: 10, CallerWidth: 20}
	out, err := f.Format(testEntry())
	require.NoError(t, err)

	line := string(out)
	assert.Contains(t, line, "2025-03-01 10:04:05.000")
	assert.Contains(t, line, "WARNING")
	assert.Contains(t, line, "CRUDKIT")
	assert.Contains(t, line, "slow query model=Note rows=2\n")
}

func TestJSONLogFormatter(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "CRUDKIT"}
	entry := testEntry()
	entry.Data["error"] = assert.AnError
	out, err := f.Format(entry)
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &rec))
	assert.Equal(t, "warning", rec["level"])
	assert.Equal(t, "CRUDKIT", rec["logger"])
	assert.Equal(t, "slow query", rec["message"])
	fields := rec["fields"].(map[string]interface{})
	assert.Equal(t, "Note", fields["model"])
	assert.Equal(t, assert.AnError.Error(), fields["error"])
}

func TestConfigureConsole(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("CONSOLE_TEST")
	l.SetLevel(logrus.InfoLevel)
	ConfigureConsoleOutput(&buf)
	ConfigureConsoleLogFormat("json")
	t.Cleanup(func() {
		ConfigureConsoleLogFormat("text")
		ConfigureConsoleOutput(nil)
	})

	l.WithField("k", "v").Info("hello")
	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["message"])
	assert.Contains(t, rec["caller"], "utils/logger_test.go:")
}

func TestShortCaller(t *testing.T) {
	assert.Equal(t, "repository/base.go:42", shortCaller("/src/crudkit/repository/base.go", 42))
	assert.Equal(t, "main.go:7", shortCaller("main.go", 7))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("CRUDKIT_TEST_DUR", "30")
	assert.Equal(t, 30*time.Second, EnvDefaultDuration("CRUDKIT_TEST_DUR", time.Minute))
	t.Setenv("CRUDKIT_TEST_DUR", "1.5s")
	assert.Equal(t, 1500*time.Millisecond, EnvDefaultDuration("CRUDKIT_TEST_DUR", time.Minute))
	t.Setenv("CRUDKIT_TEST_DUR", "soon")
	assert.Equal(t, time.Minute, EnvDefaultDuration("CRUDKIT_TEST_DUR", time.Minute))

	t.Setenv("CRUDKIT_TEST_BOOL", "yes")
	assert.True(t, EnvDefaultBool("CRUDKIT_TEST_BOOL", false))
	t.Setenv("CRUDKIT_TEST_BOOL", "maybe")
	assert.True(t, EnvDefaultBool("CRUDKIT_TEST_BOOL", true))
	assert.Equal(t, "fallback", EnvDefaultString("CRUDKIT_TEST_UNSET", "fallback"))
}
